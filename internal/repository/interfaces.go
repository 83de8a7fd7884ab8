package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/tmori/recruitsum/internal/domain"
)

// RunLogRepository persists per-run outcomes and unmatched-label detail.
// The repository is optional at runtime; callers treat a nil repository as
// "logging disabled".
type RunLogRepository interface {
	RecordRun(ctx context.Context, entry domain.RunLogEntry) error
	RecordUnmatchedLabels(ctx context.Context, runID uuid.UUID, field string, counts map[string]int) error
	ListRuns(ctx context.Context, kind string, limit int) ([]domain.RunLogEntry, error)
}

package aggregation

import (
	"go.uber.org/zap"

	"github.com/tmori/recruitsum/internal/domain"
)

// DedupResult carries the surviving events plus what was dropped on the way.
type DedupResult struct {
	Events     []domain.EntryEvent
	Duplicates int
	Unlinked   int
}

// Dedup collapses events sharing a composite key (identity, category, event
// date, group code, group name) to their first occurrence, preserving
// first-seen order. Events missing the group code are excluded before
// keying and are not counted as duplicates.
func Dedup(events []domain.EntryEvent, logger *zap.Logger) DedupResult {
	if logger == nil {
		logger = zap.NewNop()
	}

	result := DedupResult{Events: make([]domain.EntryEvent, 0, len(events))}
	seen := make(map[domain.EventKey]struct{}, len(events))

	for _, event := range events {
		if !event.HasGroupCode() {
			result.Unlinked++
			continue
		}
		key := event.Key()
		if _, dup := seen[key]; dup {
			result.Duplicates++
			logger.Debug("duplicate event dropped",
				zap.String("identity", event.Identity),
				zap.String("category", event.Category),
				zap.String("event_date", event.EventDate))
			continue
		}
		seen[key] = struct{}{}
		result.Events = append(result.Events, event)
	}

	if result.Duplicates > 0 || result.Unlinked > 0 {
		logger.Info("event dedup",
			zap.Int("in", len(events)),
			zap.Int("out", len(result.Events)),
			zap.Int("duplicates", result.Duplicates),
			zap.Int("unlinked", result.Unlinked))
	}
	return result
}

package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tmori/recruitsum/internal/domain"
)

type runLogRepository struct {
	pool *pgxpool.Pool
}

// NewRunLogRepository wires a repository backed by pgxpool.
func NewRunLogRepository(pool *pgxpool.Pool) RunLogRepository {
	return &runLogRepository{pool: pool}
}

func (r *runLogRepository) RecordRun(ctx context.Context, entry domain.RunLogEntry) error {
	if r.pool == nil {
		return fmt.Errorf("run log repository not initialized")
	}

	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO aggregation_runs
		   (run_id, kind, date_key, destination_table, total_rows, matched_rows,
		    unmatched_rows, duplicate_rows, ok, error_message, started_at, finished_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		entry.RunID,
		entry.Kind,
		entry.DateKey,
		entry.DestinationTable,
		entry.TotalRows,
		entry.MatchedRows,
		entry.UnmatchedRows,
		entry.DuplicateRows,
		entry.OK,
		entry.ErrorMessage,
		entry.StartedAt,
		entry.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

func (r *runLogRepository) RecordUnmatchedLabels(ctx context.Context, runID uuid.UUID, field string, counts map[string]int) error {
	if r.pool == nil {
		return fmt.Errorf("run log repository not initialized")
	}

	for label, occurrences := range counts {
		_, err := r.pool.Exec(
			ctx,
			`INSERT INTO unmatched_labels (run_id, field, label, occurrences)
			 VALUES ($1, $2, $3, $4)`,
			runID, field, label, occurrences,
		)
		if err != nil {
			return fmt.Errorf("failed to record unmatched label %q: %w", label, err)
		}
	}
	return nil
}

func (r *runLogRepository) ListRuns(ctx context.Context, kind string, limit int) ([]domain.RunLogEntry, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("run log repository not initialized")
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.pool.Query(
		ctx,
		`SELECT id, run_id, kind, date_key, destination_table, total_rows, matched_rows,
		        unmatched_rows, duplicate_rows, ok, error_message, started_at, finished_at
		 FROM aggregation_runs
		 WHERE kind = $1
		 ORDER BY started_at DESC
		 LIMIT $2`,
		kind, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	entries := []domain.RunLogEntry{}
	for rows.Next() {
		var (
			entry      domain.RunLogEntry
			startedAt  pgtype.Timestamptz
			finishedAt pgtype.Timestamptz
		)
		if scanErr := rows.Scan(
			&entry.ID,
			&entry.RunID,
			&entry.Kind,
			&entry.DateKey,
			&entry.DestinationTable,
			&entry.TotalRows,
			&entry.MatchedRows,
			&entry.UnmatchedRows,
			&entry.DuplicateRows,
			&entry.OK,
			&entry.ErrorMessage,
			&startedAt,
			&finishedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan run: %w", scanErr)
		}
		if startedAt.Valid {
			entry.StartedAt = startedAt.Time
		}
		if finishedAt.Valid {
			entry.FinishedAt = finishedAt.Time
		}
		entries = append(entries, entry)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", rowsErr)
	}
	return entries, nil
}

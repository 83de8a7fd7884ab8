package domain

import (
	"time"

	"github.com/google/uuid"
)

// RunLogEntry records the outcome of one aggregation run for one kind.
type RunLogEntry struct {
	ID               int64     `json:"id"`
	RunID            uuid.UUID `json:"run_id"`
	Kind             string    `json:"kind"`
	DateKey          string    `json:"date_key"`
	DestinationTable string    `json:"destination_table"`
	TotalRows        int       `json:"total_rows"`
	MatchedRows      int       `json:"matched_rows"`
	UnmatchedRows    int       `json:"unmatched_rows"`
	DuplicateRows    int       `json:"duplicate_rows"`
	OK               bool      `json:"ok"`
	ErrorMessage     string    `json:"error_message,omitempty"`
	StartedAt        time.Time `json:"started_at"`
	FinishedAt       time.Time `json:"finished_at"`
}

// UnmatchedLabel records one distinct unrecognized label seen during a run.
type UnmatchedLabel struct {
	RunID       uuid.UUID `json:"run_id"`
	Field       string    `json:"field"`
	Label       string    `json:"label"`
	Occurrences int       `json:"occurrences"`
	CreatedAt   time.Time `json:"created_at"`
}

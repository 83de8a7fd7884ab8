// Package grid abstracts the destination report grid: an addressable 2D
// cell store with batch writes and range clears. Coordinates are zero-based.
package grid

import "context"

// CellUpdate addresses one cell write.
type CellUpdate struct {
	Row   int
	Col   int
	Value string
}

// Range is an inclusive rectangular cell region.
type Range struct {
	StartRow int
	StartCol int
	EndRow   int
	EndCol   int
}

// Client is the narrow grid-access collaborator. Implementations extend the
// grid as needed when a write or clear exceeds its current bounds.
type Client interface {
	// ReadAll returns every populated row of the table. Rows may be ragged.
	ReadAll(ctx context.Context, table string) ([][]string, error)
	// BatchWrite applies all updates as one submission. No partial-write
	// guarantee is made beyond what the backend provides.
	BatchWrite(ctx context.Context, table string, updates []CellUpdate) error
	// ClearRange blanks every cell in the range.
	ClearRange(ctx context.Context, table string, rng Range) error
}

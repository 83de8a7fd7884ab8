package aggregation

import (
	"context"

	"go.uber.org/zap"

	"github.com/tmori/recruitsum/internal/grid"
)

// LedgerWriter performs the idempotent block upsert on an append-style event
// ledger: locate any prior block for the date key, clear the larger of the
// old and new footprints, then write the new block in one batch. Column 0 of
// every block row carries the date key so the block boundary is
// self-describing on the next run.
type LedgerWriter struct {
	grid   grid.Client
	logger *zap.Logger
}

// NewLedgerWriter wires a ledger writer over a grid client.
func NewLedgerWriter(client grid.Client, logger *zap.Logger) *LedgerWriter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerWriter{grid: client, logger: logger}
}

// Upsert writes the payload rows as today's block. Payload rows must not
// include the date column; the writer owns column 0. An empty payload with a
// prior block clears that block.
func (w *LedgerWriter) Upsert(ctx context.Context, table, dateKey string, payload [][]string, headerRows int) error {
	cells, err := w.grid.ReadAll(ctx, table)
	if err != nil {
		return &ConnectionError{Op: "read", Table: table, Err: err}
	}

	start, found, oldLen := locateBlock(cells, dateKey, headerRows)

	newWidth := 1
	for _, row := range payload {
		if len(row)+1 > newWidth {
			newWidth = len(row) + 1
		}
	}

	if found {
		clearWidth := newWidth
		for i := start; i < start+oldLen && i < len(cells); i++ {
			if len(cells[i]) > clearWidth {
				clearWidth = len(cells[i])
			}
		}
		span := oldLen
		if len(payload) > span {
			span = len(payload)
		}
		rng := grid.Range{
			StartRow: start,
			StartCol: 0,
			EndRow:   start + span - 1,
			EndCol:   clearWidth - 1,
		}
		if err := w.grid.ClearRange(ctx, table, rng); err != nil {
			return &WriteError{Table: table, Err: err}
		}
		w.logger.Info("replacing ledger block",
			zap.String("table", table),
			zap.String("date_key", dateKey),
			zap.Int("old_rows", oldLen),
			zap.Int("new_rows", len(payload)))
	} else {
		start = allocateBlockStart(cells, headerRows)
	}

	if len(payload) == 0 {
		return nil
	}

	updates := make([]grid.CellUpdate, 0, len(payload)*newWidth)
	for i, row := range payload {
		updates = append(updates, grid.CellUpdate{Row: start + i, Col: 0, Value: dateKey})
		for j, value := range row {
			updates = append(updates, grid.CellUpdate{Row: start + i, Col: j + 1, Value: value})
		}
	}
	if err := w.grid.BatchWrite(ctx, table, updates); err != nil {
		return &WriteError{Table: table, Err: err}
	}
	return nil
}

// locateBlock finds the first row keyed by dateKey and the length of the
// contiguous run of rows sharing it.
func locateBlock(cells [][]string, dateKey string, headerRows int) (start int, found bool, length int) {
	for row := headerRows; row < len(cells); row++ {
		if cellAt(cells[row], 0) != dateKey {
			continue
		}
		start = row
		length = 1
		for row+length < len(cells) && cellAt(cells[row+length], 0) == dateKey {
			length++
		}
		return start, true, length
	}
	return 0, false, 0
}

// allocateBlockStart returns the first fully empty row below the headers, or
// the append position when none exists.
func allocateBlockStart(cells [][]string, headerRows int) int {
	for row := headerRows; row < len(cells); row++ {
		if rowEmpty(cells[row]) {
			return row
		}
	}
	if len(cells) < headerRows {
		return headerRows
	}
	return len(cells)
}

package grid

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/xuri/excelize/v2"
)

// Workbook is a Client backed by a shared .xlsx workbook. Each table is a
// sheet. Every call opens, mutates, and saves the file; the mutex keeps a
// single process from interleaving its own calls, nothing more (concurrent
// invocations against the same workbook are not supported).
type Workbook struct {
	path string
	mu   sync.Mutex
}

// NewWorkbook wires a workbook-backed grid client.
func NewWorkbook(path string) *Workbook {
	return &Workbook{path: path}
}

// ReadAll implements Client.
func (w *Workbook) ReadAll(ctx context.Context, table string) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := excelize.OpenFile(w.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return [][]string{}, nil
		}
		return nil, fmt.Errorf("open workbook %s: %w", w.path, err)
	}
	defer func() { _ = f.Close() }()

	idx, err := f.GetSheetIndex(table)
	if err != nil {
		return nil, fmt.Errorf("look up sheet %s: %w", table, err)
	}
	if idx < 0 {
		return [][]string{}, nil
	}

	rows, err := f.GetRows(table)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", table, err)
	}
	return rows, nil
}

// BatchWrite implements Client. All updates are applied to the in-memory
// workbook first and persisted with a single save.
func (w *Workbook) BatchWrite(ctx context.Context, table string, updates []CellUpdate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(updates) == 0 {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	f, created, err := w.open(table)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	for _, update := range updates {
		cell, err := excelize.CoordinatesToCellName(update.Col+1, update.Row+1)
		if err != nil {
			return fmt.Errorf("address cell (%d,%d): %w", update.Row, update.Col, err)
		}
		if err := f.SetCellValue(table, cell, update.Value); err != nil {
			return fmt.Errorf("set cell %s!%s: %w", table, cell, err)
		}
	}

	return w.save(f, created)
}

// ClearRange implements Client.
func (w *Workbook) ClearRange(ctx context.Context, table string, rng Range) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	f, created, err := w.open(table)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	for row := rng.StartRow; row <= rng.EndRow; row++ {
		for col := rng.StartCol; col <= rng.EndCol; col++ {
			cell, err := excelize.CoordinatesToCellName(col+1, row+1)
			if err != nil {
				return fmt.Errorf("address cell (%d,%d): %w", row, col, err)
			}
			if err := f.SetCellValue(table, cell, ""); err != nil {
				return fmt.Errorf("clear cell %s!%s: %w", table, cell, err)
			}
		}
	}

	return w.save(f, created)
}

// open loads the workbook, creating the file and sheet when missing. The
// second return reports whether a new file must be saved with SaveAs.
func (w *Workbook) open(table string) (*excelize.File, bool, error) {
	f, err := excelize.OpenFile(w.path)
	created := false
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, false, fmt.Errorf("open workbook %s: %w", w.path, err)
		}
		f = excelize.NewFile()
		created = true
	}

	idx, err := f.GetSheetIndex(table)
	if err != nil {
		_ = f.Close()
		return nil, false, fmt.Errorf("look up sheet %s: %w", table, err)
	}
	if idx < 0 {
		if _, err := f.NewSheet(table); err != nil {
			_ = f.Close()
			return nil, false, fmt.Errorf("create sheet %s: %w", table, err)
		}
	}
	return f, created, nil
}

func (w *Workbook) save(f *excelize.File, created bool) error {
	if created {
		if err := f.SaveAs(w.path); err != nil {
			return fmt.Errorf("save workbook %s: %w", w.path, err)
		}
		return nil
	}
	if err := f.Save(); err != nil {
		return fmt.Errorf("save workbook %s: %w", w.path, err)
	}
	return nil
}

package grid

import (
	"context"
	"sync"
)

// Memory is an in-process Client used by tests and dry runs. Writes grow the
// table as needed, mirroring the workbook backend's implicit extension.
type Memory struct {
	mu     sync.Mutex
	tables map[string][][]string
}

// NewMemory returns an empty in-memory grid.
func NewMemory() *Memory {
	return &Memory{tables: make(map[string][][]string)}
}

// Seed replaces a table's contents.
func (m *Memory) Seed(table string, cells [][]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[table] = copyCells(cells)
}

// Snapshot returns a copy of a table's current contents.
func (m *Memory) Snapshot(table string) [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyCells(m.tables[table])
}

// ReadAll implements Client.
func (m *Memory) ReadAll(ctx context.Context, table string) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyCells(m.tables[table]), nil
}

// BatchWrite implements Client.
func (m *Memory) BatchWrite(ctx context.Context, table string, updates []CellUpdate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cells := m.tables[table]
	for _, update := range updates {
		cells = growTo(cells, update.Row, update.Col)
		cells[update.Row][update.Col] = update.Value
	}
	m.tables[table] = cells
	return nil
}

// ClearRange implements Client.
func (m *Memory) ClearRange(ctx context.Context, table string, rng Range) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cells := m.tables[table]
	for row := rng.StartRow; row <= rng.EndRow && row < len(cells); row++ {
		for col := rng.StartCol; col <= rng.EndCol && col < len(cells[row]); col++ {
			cells[row][col] = ""
		}
	}
	m.tables[table] = cells
	return nil
}

func growTo(cells [][]string, row, col int) [][]string {
	for len(cells) <= row {
		cells = append(cells, []string{})
	}
	for len(cells[row]) <= col {
		cells[row] = append(cells[row], "")
	}
	return cells
}

func copyCells(cells [][]string) [][]string {
	out := make([][]string, len(cells))
	for i, row := range cells {
		out[i] = append([]string(nil), row...)
	}
	return out
}

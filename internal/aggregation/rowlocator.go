package aggregation

import "strings"

// RowLookup is the result of locating a date row: either the existing row
// for the key, or the row a new block should be written to.
type RowLookup struct {
	Row   int
	Found bool
}

// LocateDateRow scans column 0 below the header rows for an exact string
// match on the date key. When absent, it prefers the first fully empty row
// (reuse keeps the grid from growing without bound) and otherwise points one
// past the last row (append).
func LocateDateRow(cells [][]string, dateKey string, headerRows int) RowLookup {
	for row := headerRows; row < len(cells); row++ {
		if cellAt(cells[row], 0) == dateKey {
			return RowLookup{Row: row, Found: true}
		}
	}
	for row := headerRows; row < len(cells); row++ {
		if rowEmpty(cells[row]) {
			return RowLookup{Row: row}
		}
	}
	return RowLookup{Row: len(cells)}
}

func rowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

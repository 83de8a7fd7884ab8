// Package source reads raw platform exports as tabular data. The files are
// produced by the external collection step; this package only parses them.
package source

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat is returned for export files that are neither CSV nor
// xlsx.
var ErrUnsupportedFormat = errors.New("unsupported file format")

var byteOrderMark = []byte{0xEF, 0xBB, 0xBF}

// Reader is the source-reader collaborator: given a physical table
// identifier, return the export's header row and data rows.
type Reader interface {
	ReadAllRows(ctx context.Context, table string) (headers []string, rows [][]string, err error)
}

// FileReader reads exports from the local filesystem. The table identifier
// is a file path, resolved against dir when relative.
type FileReader struct {
	dir string
}

// NewFileReader creates a reader rooted at dir.
func NewFileReader(dir string) *FileReader {
	return &FileReader{dir: dir}
}

// ReadAllRows implements Reader.
func (r *FileReader) ReadAllRows(ctx context.Context, table string) ([]string, [][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	path := table
	if !filepath.IsAbs(path) && r.dir != "" {
		path = filepath.Join(r.dir, path)
	}

	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read export %s: %w", path, err)
	}
	if len(payload) == 0 {
		return nil, nil, fmt.Errorf("export %s is empty", path)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return parseCSV(payload)
	case ".xlsx":
		return parseExcel(payload)
	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

func parseCSV(payload []byte) ([]string, [][]string, error) {
	reader := bufio.NewReader(bytes.NewReader(payload))
	if prefix, err := reader.Peek(len(byteOrderMark)); err == nil && bytes.Equal(prefix, byteOrderMark) {
		_, _ = reader.Discard(len(byteOrderMark))
	}

	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("parse csv: %w", err)
	}
	return normalizeTable(records)
}

func parseExcel(payload []byte) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		return nil, nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, errors.New("xlsx export has no sheets")
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("read xlsx rows: %w", err)
	}
	return normalizeTable(records)
}

// normalizeTable takes the first non-empty row as the header, pads data rows
// to the header width, and drops fully empty rows.
func normalizeTable(records [][]string) ([]string, [][]string, error) {
	var headers []string
	var rows [][]string
	for _, record := range records {
		if isEmptyRow(record) {
			continue
		}
		if headers == nil {
			headers = make([]string, len(record))
			for i, cell := range record {
				headers[i] = strings.TrimSpace(cell)
			}
			continue
		}
		rows = append(rows, padRow(record, len(headers)))
	}
	if headers == nil {
		return nil, nil, errors.New("no header row detected")
	}
	return headers, rows, nil
}

// MissingColumns reports required source columns absent from the header.
func MissingColumns(headers []string, required ...string) []string {
	present := make(map[string]struct{}, len(headers))
	for _, header := range headers {
		present[strings.TrimSpace(header)] = struct{}{}
	}
	var missing []string
	for _, name := range required {
		if name == "" {
			continue
		}
		if _, ok := present[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func padRow(row []string, length int) []string {
	if len(row) >= length {
		return row[:length]
	}
	padded := make([]string, length)
	copy(padded, row)
	return padded
}

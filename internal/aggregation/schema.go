package aggregation

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/tmori/recruitsum/internal/domain"
)

// SectionCategory is one (section, category) coordinate in the report.
type SectionCategory struct {
	Section  string
	Category string
}

// ColumnMap resolves (section, category) pairs to zero-based column indices.
// It is built once per run from the current header rows and must be
// column-unique.
type ColumnMap map[SectionCategory]int

// Columns returns the column index for a pair.
func (m ColumnMap) Column(section, category string) (int, bool) {
	col, ok := m[SectionCategory{Section: section, Category: category}]
	return col, ok
}

type sectionSpan struct {
	label string
	start int // first column of the span
	end   int // exclusive
}

// SchemaResolver discovers the report's column layout purely from its two
// header rows. Row 1 carries sparse section labels (a label owns all columns
// up to the next non-empty label); row 2 carries category labels scoped to
// the enclosing section span. Column 0 is reserved for the date key.
type SchemaResolver struct {
	categories domain.Vocabulary
	totalLabel string
	excluded   []string
	logger     *zap.Logger
}

// NewSchemaResolver builds a resolver. totalLabel, when non-empty, is
// matched in row 2 to place the derived per-section total column.
// excludedMarkers are substrings (matched case-insensitively on normalized
// row-2 text) that mark derived delta/subtotal columns the sequential
// fallback must skip.
func NewSchemaResolver(categories domain.Vocabulary, totalLabel string, excludedMarkers []string, logger *zap.Logger) *SchemaResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	excluded := make([]string, 0, len(excludedMarkers))
	for _, marker := range excludedMarkers {
		marker = strings.ToLower(domain.Normalize(marker))
		if marker != "" {
			excluded = append(excluded, marker)
		}
	}
	return &SchemaResolver{
		categories: categories,
		totalLabel: domain.Normalize(totalLabel),
		excluded:   excluded,
		logger:     logger,
	}
}

// Resolve builds the ColumnMap for the given header rows. A column claimed
// by two pairs is an invariant violation and yields a SchemaError. Pairs
// that cannot be placed are simply absent from the map.
func (r *SchemaResolver) Resolve(sectionRow, categoryRow []string) (ColumnMap, error) {
	spans := discoverSections(sectionRow, len(categoryRow))

	columns := make(ColumnMap)
	claimed := make(map[int]SectionCategory)

	assign := func(pair SectionCategory, col int) error {
		if prior, taken := claimed[col]; taken {
			return &SchemaError{Reason: fmt.Sprintf(
				"column %d claimed by both (%s, %s) and (%s, %s)",
				col, prior.Section, prior.Category, pair.Section, pair.Category)}
		}
		if prior, taken := columns[pair]; taken {
			return &SchemaError{Reason: fmt.Sprintf(
				"(%s, %s) resolves to both column %d and column %d",
				pair.Section, pair.Category, prior, col)}
		}
		claimed[col] = pair
		columns[pair] = col
		return nil
	}

	for _, span := range spans {
		matched := false

		// Direct matches: any row-2 cell inside the span whose normalized
		// text is a vocabulary category, plus the derived total label.
		for col := span.start; col < span.end; col++ {
			label := cellAt(categoryRow, col)
			if category, ok := r.categories.Canonical(label); ok {
				if err := assign(SectionCategory{Section: span.label, Category: category}, col); err != nil {
					return nil, err
				}
				matched = true
				continue
			}
			if r.totalLabel != "" && domain.Normalize(label) == r.totalLabel {
				if err := assign(SectionCategory{Section: span.label, Category: r.totalLabel}, col); err != nil {
					return nil, err
				}
			}
		}
		if matched {
			continue
		}

		// Fallback: no row-2 cell in this span named a category, so assign
		// categories to the span's columns sequentially in vocabulary order,
		// skipping derived (excluded-marker) columns and the total column.
		next := 0
		labels := r.categories.Labels()
		for col := span.start; col < span.end && next < len(labels); col++ {
			if _, taken := claimed[col]; taken {
				continue
			}
			if r.isExcluded(cellAt(categoryRow, col)) {
				continue
			}
			if err := assign(SectionCategory{Section: span.label, Category: labels[next]}, col); err != nil {
				return nil, err
			}
			next++
		}
		if next < len(labels) {
			r.logger.Warn("section has unmapped categories",
				zap.String("section", span.label),
				zap.Strings("categories", labels[next:]))
		}
	}

	return columns, nil
}

// discoverSections scans row 1 left to right from column 1 (column 0 is the
// date column). Every non-empty cell opens a span extending through the
// following empty cells; the last span runs to the wider of the two header
// rows.
func discoverSections(sectionRow []string, categoryWidth int) []sectionSpan {
	width := len(sectionRow)
	if categoryWidth > width {
		width = categoryWidth
	}

	var spans []sectionSpan
	for col := 1; col < len(sectionRow); col++ {
		label := domain.Normalize(sectionRow[col])
		if label == "" {
			continue
		}
		if n := len(spans); n > 0 {
			spans[n-1].end = col
		}
		spans = append(spans, sectionSpan{label: label, start: col, end: width})
	}
	return spans
}

func (r *SchemaResolver) isExcluded(label string) bool {
	text := strings.ToLower(domain.Normalize(label))
	if text == "" {
		return false
	}
	if r.totalLabel != "" && text == strings.ToLower(r.totalLabel) {
		return true
	}
	for _, marker := range r.excluded {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

func cellAt(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}

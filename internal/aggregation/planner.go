package aggregation

import (
	"strconv"

	"go.uber.org/zap"

	"github.com/tmori/recruitsum/internal/domain"
	"github.com/tmori/recruitsum/internal/grid"
)

// Planner turns bucket counts plus a ColumnMap into the minimal list of cell
// writes for one date row, including derived per-section totals where the
// map carries a total column.
type Planner struct {
	totalLabel string
	logger     *zap.Logger
}

// NewPlanner creates a planner. totalLabel names the derived total category
// in the ColumnMap; empty disables total cells.
func NewPlanner(totalLabel string, logger *zap.Logger) *Planner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Planner{totalLabel: domain.Normalize(totalLabel), logger: logger}
}

// Plan produces one update per resolvable (section, category) pair plus the
// date key in column 0. sections maps bucket keys (including "overall") to
// the section labels used in the report header. Unmapped pairs are logged
// and skipped, never fatal.
func (p *Planner) Plan(buckets *domain.BucketSet, columns ColumnMap, row int, dateKey string, sections map[string]string) []grid.CellUpdate {
	updates := []grid.CellUpdate{{Row: row, Col: 0, Value: dateKey}}

	bucketKeys := append([]string{domain.OverallKey}, buckets.Subdimensions()...)
	for _, key := range bucketKeys {
		section, bound := sections[key]
		if !bound {
			p.logger.Warn("bucket has no report section", zap.String("bucket", key))
			continue
		}
		section = domain.Normalize(section)

		sectionTotal := 0
		for _, category := range buckets.Categories().Labels() {
			count := buckets.Count(key, category)
			sectionTotal += count
			col, ok := columns.Column(section, category)
			if !ok {
				p.logger.Warn("unmapped report column",
					zap.String("section", section),
					zap.String("category", category))
				continue
			}
			updates = append(updates, grid.CellUpdate{Row: row, Col: col, Value: strconv.Itoa(count)})
		}

		if p.totalLabel == "" {
			continue
		}
		if col, ok := columns.Column(section, p.totalLabel); ok {
			updates = append(updates, grid.CellUpdate{Row: row, Col: col, Value: strconv.Itoa(sectionTotal)})
		}
	}

	return updates
}

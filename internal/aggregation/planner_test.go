package aggregation

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tmori/recruitsum/internal/domain"
	"github.com/tmori/recruitsum/internal/grid"
)

func TestPlanWritesDateCountsAndTotals(t *testing.T) {
	categories := domain.NewVocabulary([]string{"A", "B"})
	buckets := domain.NewBucketSet(categories, []string{"Referral"})
	buckets.Add(domain.OverallKey, "A")
	buckets.Add(domain.OverallKey, "A")
	buckets.Add(domain.OverallKey, "B")
	buckets.Add("Referral", "B")

	columns := ColumnMap{
		{Section: "Overall", Category: "A"}:      1,
		{Section: "Overall", Category: "B"}:      2,
		{Section: "Overall", Category: "Total"}:  3,
		{Section: "Referral", Category: "A"}:     4,
		{Section: "Referral", Category: "B"}:     5,
		{Section: "Referral", Category: "Total"}: 6,
	}
	sections := map[string]string{
		domain.OverallKey: "Overall",
		"Referral":        "Referral",
	}

	planner := NewPlanner("Total", zap.NewNop())
	updates := planner.Plan(buckets, columns, 7, "2026/08/23", sections)

	require.ElementsMatch(t, []grid.CellUpdate{
		{Row: 7, Col: 0, Value: "2026/08/23"},
		{Row: 7, Col: 1, Value: "2"},
		{Row: 7, Col: 2, Value: "1"},
		{Row: 7, Col: 3, Value: "3"},
		{Row: 7, Col: 4, Value: "0"},
		{Row: 7, Col: 5, Value: "1"},
		{Row: 7, Col: 6, Value: "1"},
	}, updates)
}

func TestPlanSkipsUnmappedPairs(t *testing.T) {
	categories := domain.NewVocabulary([]string{"A", "B"})
	buckets := domain.NewBucketSet(categories, nil)
	buckets.Add(domain.OverallKey, "A")

	// Only A has a column; B is unmapped and no total column exists.
	columns := ColumnMap{{Section: "Overall", Category: "A"}: 1}
	sections := map[string]string{domain.OverallKey: "Overall"}

	planner := NewPlanner("Total", zap.NewNop())
	updates := planner.Plan(buckets, columns, 2, "2026/08/23", sections)

	require.ElementsMatch(t, []grid.CellUpdate{
		{Row: 2, Col: 0, Value: "2026/08/23"},
		{Row: 2, Col: 1, Value: "1"},
	}, updates)
}

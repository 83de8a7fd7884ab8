package aggregation

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tmori/recruitsum/internal/domain"
)

func newResolver(categories []string) *SchemaResolver {
	return NewSchemaResolver(
		domain.NewVocabulary(categories),
		"Total",
		[]string{"diff", "subtotal"},
		zap.NewNop(),
	)
}

func TestResolveDirectMatches(t *testing.T) {
	r := newResolver([]string{"A", "B"})

	sectionRow := []string{"Date", "Overall", "", "", "RouteX", "", ""}
	categoryRow := []string{"Date", "A", "B", "Total", "A", "B", "Total"}

	columns, err := r.Resolve(sectionRow, categoryRow)
	require.NoError(t, err)

	expect := map[SectionCategory]int{
		{Section: "Overall", Category: "A"}:     1,
		{Section: "Overall", Category: "B"}:     2,
		{Section: "Overall", Category: "Total"}: 3,
		{Section: "RouteX", Category: "A"}:      4,
		{Section: "RouteX", Category: "B"}:      5,
		{Section: "RouteX", Category: "Total"}:  6,
	}
	require.Equal(t, ColumnMap(expect), columns)
}

func TestResolveFullGridIsColumnUnique(t *testing.T) {
	sections := []string{"Overall", "Referral", "Agency", "Direct"}
	categories := []string{"A", "B", "C", "D", "E"}
	r := newResolver(categories)

	sectionRow := []string{"Date"}
	categoryRow := []string{"Date"}
	for _, section := range sections {
		for i, category := range categories {
			if i == 0 {
				sectionRow = append(sectionRow, section)
			} else {
				sectionRow = append(sectionRow, "")
			}
			categoryRow = append(categoryRow, category)
		}
	}

	columns, err := r.Resolve(sectionRow, categoryRow)
	require.NoError(t, err)
	require.Len(t, columns, len(sections)*len(categories))

	seen := make(map[int]bool)
	for _, col := range columns {
		require.False(t, seen[col], "column %d mapped twice", col)
		seen[col] = true
	}
}

func TestResolveCollisionRaisesSchemaError(t *testing.T) {
	r := newResolver([]string{"A"})

	// Two spans carrying the same section label make (Overall, A) resolve
	// to two different columns.
	sectionRow := []string{"Date", "Overall", "Overall"}
	categoryRow := []string{"Date", "A", "A"}

	_, err := r.Resolve(sectionRow, categoryRow)
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
}

func TestResolveFallbackSequentialAssignment(t *testing.T) {
	r := newResolver([]string{"A", "B", "C"})

	// Row 2 carries no recognizable category labels for the span.
	sectionRow := []string{"Date", "Overall", "", ""}
	categoryRow := []string{"Date", "", "", ""}

	columns, err := r.Resolve(sectionRow, categoryRow)
	require.NoError(t, err)

	require.Equal(t, ColumnMap{
		{Section: "Overall", Category: "A"}: 1,
		{Section: "Overall", Category: "B"}: 2,
		{Section: "Overall", Category: "C"}: 3,
	}, columns)
}

func TestResolveFallbackSkipsExcludedColumns(t *testing.T) {
	r := newResolver([]string{"A", "B"})

	sectionRow := []string{"Date", "Overall", "", "", ""}
	categoryRow := []string{"Date", "", "Diff", "Subtotal (wk)", ""}

	columns, err := r.Resolve(sectionRow, categoryRow)
	require.NoError(t, err)

	require.Equal(t, ColumnMap{
		{Section: "Overall", Category: "A"}: 1,
		{Section: "Overall", Category: "B"}: 4,
	}, columns)
}

func TestResolveSectionWithNoRoomYieldsNoMappings(t *testing.T) {
	r := newResolver([]string{"A", "B"})

	// The Narrow span has a single column occupied by an excluded marker.
	sectionRow := []string{"Date", "Narrow", "Wide", ""}
	categoryRow := []string{"Date", "Diff", "", ""}

	columns, err := r.Resolve(sectionRow, categoryRow)
	require.NoError(t, err)

	require.Equal(t, ColumnMap{
		{Section: "Wide", Category: "A"}: 2,
		{Section: "Wide", Category: "B"}: 3,
	}, columns)
}

func TestResolveUnmatchedPairSimplyAbsent(t *testing.T) {
	r := newResolver([]string{"A", "B", "C"})

	// Only A and B are labeled; C has no column anywhere.
	sectionRow := []string{"Date", "Overall", ""}
	categoryRow := []string{"Date", "A", "B"}

	columns, err := r.Resolve(sectionRow, categoryRow)
	require.NoError(t, err)

	_, ok := columns.Column("Overall", "C")
	require.False(t, ok)
	require.Len(t, columns, 2)
}

func TestResolveMatchesHeaderAcrossNormalizationForms(t *testing.T) {
	// Header cell in NFD, vocabulary in NFC.
	r := newResolver([]string{"Présélection"})

	sectionRow := []string{"Date", "Overall"}
	categoryRow := []string{"Date", "Présélection"}

	columns, err := r.Resolve(sectionRow, categoryRow)
	require.NoError(t, err)
	col, ok := columns.Column("Overall", "Présélection")
	require.True(t, ok)
	require.Equal(t, 1, col)
}

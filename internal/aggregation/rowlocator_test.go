package aggregation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocateDateRowFindsExistingRow(t *testing.T) {
	cells := [][]string{
		{"Date", "Overall"},
		{"Date", "A"},
		{"2026/08/21", "3"},
		{"2026/08/22", "5"},
	}

	lookup := LocateDateRow(cells, "2026/08/22", 2)
	require.True(t, lookup.Found)
	require.Equal(t, 3, lookup.Row)
}

func TestLocateDateRowReusesFirstEmptyRow(t *testing.T) {
	cells := [][]string{
		{"Date", "Overall"},
		{"Date", "A"},
		{"", ""},
		{"2026/08/21", "3"},
	}

	lookup := LocateDateRow(cells, "2026/08/22", 2)
	require.False(t, lookup.Found)
	require.Equal(t, 2, lookup.Row)
}

func TestLocateDateRowAppendsWhenFull(t *testing.T) {
	cells := [][]string{
		{"Date", "Overall"},
		{"Date", "A"},
		{"2026/08/21", "3"},
	}

	lookup := LocateDateRow(cells, "2026/08/22", 2)
	require.False(t, lookup.Found)
	require.Equal(t, 3, lookup.Row)
}

func TestLocateDateRowComparesKeysAsStrings(t *testing.T) {
	// "2026/8/22" names the same calendar day but is a different string,
	// so it must not match.
	cells := [][]string{
		{"Date"},
		{"Date"},
		{"2026/8/22"},
	}

	lookup := LocateDateRow(cells, "2026/08/22", 2)
	require.False(t, lookup.Found)
}

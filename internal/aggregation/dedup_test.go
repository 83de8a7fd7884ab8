package aggregation

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tmori/recruitsum/internal/domain"
)

func event(identity, category, date, code, name string) domain.EntryEvent {
	return domain.EntryEvent{
		Identity:  identity,
		Category:  category,
		EventDate: date,
		GroupCode: code,
		GroupName: name,
	}
}

func TestDedupCollapsesDuplicatesFirstSeenWins(t *testing.T) {
	events := []domain.EntryEvent{
		event("u1", "Offer", "2026/08/20", "G1", "Sales"),
		event("u2", "Offer", "2026/08/20", "G1", "Sales"),
		event("u1", "Offer", "2026/08/20", "G1", "Sales"), // dup of first
		event("u1", "Hired", "2026/08/21", "G1", "Sales"),
		event("u2", "Offer", "2026/08/20", "G1", "Sales"), // dup of second
	}

	result := Dedup(events, zap.NewNop())

	require.Len(t, result.Events, 3)
	require.Equal(t, 2, result.Duplicates)
	require.Equal(t, 0, result.Unlinked)

	// First-seen order preserved.
	require.Equal(t, "u1", result.Events[0].Identity)
	require.Equal(t, "u2", result.Events[1].Identity)
	require.Equal(t, "Hired", result.Events[2].Category)
}

func TestDedupNMinusK(t *testing.T) {
	events := []domain.EntryEvent{
		event("u1", "A", "2026/08/20", "G1", "X"),
		event("u1", "A", "2026/08/20", "G1", "X"),
		event("u1", "A", "2026/08/20", "G1", "X"),
		event("u2", "A", "2026/08/20", "G1", "X"),
	}
	n, k := len(events), 2

	result := Dedup(events, zap.NewNop())
	require.Len(t, result.Events, n-k)
}

func TestDedupDifferentKeyFieldsStayDistinct(t *testing.T) {
	events := []domain.EntryEvent{
		event("u1", "A", "2026/08/20", "G1", "X"),
		event("u1", "A", "2026/08/20", "G2", "X"), // different group code
		event("u1", "A", "2026/08/21", "G1", "X"), // different date
	}

	result := Dedup(events, zap.NewNop())
	require.Len(t, result.Events, 3)
	require.Equal(t, 0, result.Duplicates)
}

func TestDedupExcludesUnlinkedBeforeKeying(t *testing.T) {
	events := []domain.EntryEvent{
		event("u1", "A", "2026/08/20", "", "X"),
		event("u1", "A", "2026/08/20", "", "X"),
		event("u2", "A", "2026/08/20", "G1", "X"),
	}

	result := Dedup(events, zap.NewNop())

	require.Len(t, result.Events, 1)
	require.Equal(t, 2, result.Unlinked)
	// Unlinked rows are not duplicates, even when identical.
	require.Equal(t, 0, result.Duplicates)
}

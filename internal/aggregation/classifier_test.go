package aggregation

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tmori/recruitsum/internal/domain"
)

func newRecord(t *testing.T, headers []string, values []string) domain.RawRecord {
	t.Helper()
	return domain.NewRawRecord(headers, values)
}

func TestClassifierCountsKnownAndExcludesUnknown(t *testing.T) {
	categories := domain.NewVocabulary([]string{"A", "B", "C"})
	routes := domain.NewVocabulary(nil)
	classifier := NewClassifier(categories, routes, zap.NewNop())
	buckets := domain.NewBucketSet(categories, nil)

	headers := []string{"Phase"}
	for _, value := range []string{"A", "B", "A", "X", "B"} {
		cl, err := classifier.Classify(newRecord(t, headers, []string{value}), "Phase", "")
		require.NoError(t, err)
		classifier.Accumulate(buckets, cl)
	}

	require.Equal(t, 2, buckets.Count(domain.OverallKey, "A"))
	require.Equal(t, 2, buckets.Count(domain.OverallKey, "B"))
	require.Equal(t, 0, buckets.Count(domain.OverallKey, "C"))
	require.Equal(t, map[string]int{"X": 1}, classifier.UnmatchedCategories())
	require.Equal(t, 1, classifier.UnmatchedCategoryTotal())
}

func TestClassifierConservation(t *testing.T) {
	categories := domain.NewVocabulary([]string{"Applied", "Offer", "Hired"})
	classifier := NewClassifier(categories, domain.NewVocabulary(nil), zap.NewNop())
	buckets := domain.NewBucketSet(categories, nil)

	headers := []string{"Phase"}
	values := []string{"Applied", "Offer", "bogus", "Hired", "Applied", "??", "Offer"}
	matched := 0
	for _, value := range values {
		cl, err := classifier.Classify(newRecord(t, headers, []string{value}), "Phase", "")
		require.NoError(t, err)
		classifier.Accumulate(buckets, cl)
		if cl.CategoryOK {
			matched++
		}
	}

	require.Equal(t, matched, buckets.Total(domain.OverallKey),
		"overall bucket sum must equal the number of vocabulary-matched records")
}

func TestClassifierAccumulatesSubdimension(t *testing.T) {
	categories := domain.NewVocabulary([]string{"A"})
	routes := domain.NewVocabulary([]string{"Referral"})
	classifier := NewClassifier(categories, routes, zap.NewNop())
	buckets := domain.NewBucketSet(categories, routes.Labels())

	headers := []string{"Phase", "Route"}
	cl, err := classifier.Classify(newRecord(t, headers, []string{"A", "Referral"}), "Phase", "Route")
	require.NoError(t, err)
	classifier.Accumulate(buckets, cl)

	cl, err = classifier.Classify(newRecord(t, headers, []string{"A", "Billboard"}), "Phase", "Route")
	require.NoError(t, err)
	classifier.Accumulate(buckets, cl)

	require.Equal(t, 2, buckets.Count(domain.OverallKey, "A"))
	require.Equal(t, 1, buckets.Count("Referral", "A"))
	require.Equal(t, map[string]int{"Billboard": 1}, classifier.UnmatchedSubdimensions())
}

func TestClassifierBlankRouteDefaultsToUnknown(t *testing.T) {
	categories := domain.NewVocabulary([]string{"A"})
	routes := domain.NewVocabulary([]string{"Referral"})
	classifier := NewClassifier(categories, routes, zap.NewNop())

	cl, err := classifier.Classify(newRecord(t, []string{"Phase", "Route"}, []string{"A", "  "}), "Phase", "Route")
	require.NoError(t, err)
	require.Equal(t, domain.UnknownSubdimension, cl.Subdimension)
	require.False(t, cl.SubdimensionOK)
	// Blank is not an unmatched value, so nothing is counted.
	require.Empty(t, classifier.UnmatchedSubdimensions())
}

func TestClassifierNormalizationEquivalence(t *testing.T) {
	// Same visible label in NFC and NFD forms must land in one bucket.
	composed := "Présélection"
	decomposed := "Présélection"

	categories := domain.NewVocabulary([]string{composed})
	classifier := NewClassifier(categories, domain.NewVocabulary(nil), zap.NewNop())
	buckets := domain.NewBucketSet(categories, nil)

	for _, value := range []string{composed, decomposed} {
		cl, err := classifier.Classify(newRecord(t, []string{"Phase"}, []string{value}), "Phase", "")
		require.NoError(t, err)
		require.True(t, cl.CategoryOK)
		classifier.Accumulate(buckets, cl)
	}

	require.Equal(t, 2, buckets.Count(domain.OverallKey, composed))
	require.Empty(t, classifier.UnmatchedCategories())
}

func TestClassifierMissingCategoryColumnIsDataError(t *testing.T) {
	categories := domain.NewVocabulary([]string{"A"})
	classifier := NewClassifier(categories, domain.NewVocabulary(nil), zap.NewNop())

	_, err := classifier.Classify(newRecord(t, []string{"Other"}, []string{"x"}), "Phase", "")
	var dataErr *DataError
	require.ErrorAs(t, err, &dataErr)
}

package aggregation

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/tmori/recruitsum/internal/domain"
)

// Classification is the normalized result for one record.
type Classification struct {
	Category       string
	CategoryOK     bool
	Subdimension   string
	SubdimensionOK bool
}

// Classifier matches raw record text against the category and subdimension
// vocabularies. Unrecognized values are counted and logged once per distinct
// value; they never fail a run.
type Classifier struct {
	categories domain.Vocabulary
	routes     domain.Vocabulary
	logger     *zap.Logger

	unknownCategories map[string]int
	unknownRoutes     map[string]int
}

// NewClassifier creates a classifier over the given vocabularies.
func NewClassifier(categories, routes domain.Vocabulary, logger *zap.Logger) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classifier{
		categories:        categories,
		routes:            routes,
		logger:            logger,
		unknownCategories: make(map[string]int),
		unknownRoutes:     make(map[string]int),
	}
}

// Classify normalizes the record's category and subdimension fields. A
// structurally missing category column is a DataError; unmatched label text
// is not. The subdimension defaults to "unknown" when the field is blank,
// absent, or routeField is empty.
func (c *Classifier) Classify(rec domain.RawRecord, categoryField, routeField string) (Classification, error) {
	raw, ok := rec.Get(categoryField)
	if !ok {
		return Classification{}, &DataError{Reason: fmt.Sprintf("record has no %q field", categoryField)}
	}

	result := Classification{Subdimension: domain.UnknownSubdimension}

	if category, matched := c.categories.Canonical(raw); matched {
		result.Category = category
		result.CategoryOK = true
	} else {
		result.Category = domain.Normalize(raw)
		c.noteUnknown(c.unknownCategories, categoryField, raw)
	}

	if routeField != "" {
		if rawRoute, present := rec.Get(routeField); present && strings.TrimSpace(rawRoute) != "" {
			if route, matched := c.routes.Canonical(rawRoute); matched {
				result.Subdimension = route
				result.SubdimensionOK = true
			} else {
				c.noteUnknown(c.unknownRoutes, routeField, rawRoute)
			}
		}
	}

	return result, nil
}

// Accumulate counts a classification into the buckets: always "overall" for
// a recognized category, plus the subdimension bucket when that axis also
// matched. Unrecognized categories are excluded entirely.
func (c *Classifier) Accumulate(buckets *domain.BucketSet, cl Classification) {
	if !cl.CategoryOK {
		return
	}
	buckets.Add(domain.OverallKey, cl.Category)
	if cl.SubdimensionOK {
		buckets.Add(cl.Subdimension, cl.Category)
	}
}

func (c *Classifier) noteUnknown(seen map[string]int, field, raw string) {
	key := domain.Normalize(raw)
	if seen[key] == 0 {
		c.logger.Warn("unmatched label",
			zap.String("field", field),
			zap.String("value", key))
	}
	seen[key]++
}

// UnmatchedCategories returns distinct unrecognized category values and how
// often each occurred.
func (c *Classifier) UnmatchedCategories() map[string]int {
	return copyCounts(c.unknownCategories)
}

// UnmatchedSubdimensions returns distinct unrecognized subdimension values.
func (c *Classifier) UnmatchedSubdimensions() map[string]int {
	return copyCounts(c.unknownRoutes)
}

// UnmatchedCategoryTotal returns the number of records whose category did
// not match the vocabulary.
func (c *Classifier) UnmatchedCategoryTotal() int {
	total := 0
	for _, n := range c.unknownCategories {
		total += n
	}
	return total
}

func copyCounts(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

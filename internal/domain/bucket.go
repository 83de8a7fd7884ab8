package domain

const (
	// OverallKey is the bucket every recognized record counts toward.
	OverallKey = "overall"
	// UnknownSubdimension is used when a record's subdimension field is
	// blank, absent, or unmatched. It never owns a bucket.
	UnknownSubdimension = "unknown"
)

// BucketSet holds per-(subdimension, category) counts for one aggregation
// run. All buckets start at zero so that untouched categories still write
// explicit zeros to the report.
type BucketSet struct {
	categories    Vocabulary
	subdimensions []string
	counts        map[string]map[string]int
}

// NewBucketSet initializes zeroed buckets for "overall" plus each known
// subdimension.
func NewBucketSet(categories Vocabulary, subdimensions []string) *BucketSet {
	b := &BucketSet{
		categories: categories,
		counts:     make(map[string]map[string]int, len(subdimensions)+1),
	}
	b.addBucket(OverallKey)
	for _, sub := range subdimensions {
		key := Normalize(sub)
		if key == "" || key == OverallKey {
			continue
		}
		if _, exists := b.counts[key]; exists {
			continue
		}
		b.subdimensions = append(b.subdimensions, key)
		b.addBucket(key)
	}
	return b
}

func (b *BucketSet) addBucket(key string) {
	bucket := make(map[string]int, b.categories.Len())
	for _, category := range b.categories.Labels() {
		bucket[category] = 0
	}
	b.counts[key] = bucket
}

// Add increments the (subdimension, category) count. It returns false when
// either axis is not a known bucket key, leaving all counts untouched.
func (b *BucketSet) Add(subdimension, category string) bool {
	bucket, ok := b.counts[Normalize(subdimension)]
	if !ok {
		return false
	}
	canonical, ok := b.categories.Canonical(category)
	if !ok {
		return false
	}
	bucket[canonical]++
	return true
}

// Count returns the current count for a (subdimension, category) pair.
func (b *BucketSet) Count(subdimension, category string) int {
	bucket, ok := b.counts[Normalize(subdimension)]
	if !ok {
		return 0
	}
	canonical, ok := b.categories.Canonical(category)
	if !ok {
		return 0
	}
	return bucket[canonical]
}

// Total sums all category counts within one subdimension bucket.
func (b *BucketSet) Total(subdimension string) int {
	bucket, ok := b.counts[Normalize(subdimension)]
	if !ok {
		return 0
	}
	total := 0
	for _, n := range bucket {
		total += n
	}
	return total
}

// Has reports whether the key owns a bucket.
func (b *BucketSet) Has(subdimension string) bool {
	_, ok := b.counts[Normalize(subdimension)]
	return ok
}

// Subdimensions returns the non-overall bucket keys in declaration order.
func (b *BucketSet) Subdimensions() []string {
	return append([]string(nil), b.subdimensions...)
}

// Categories returns the category vocabulary the buckets were built from.
func (b *BucketSet) Categories() Vocabulary {
	return b.categories
}

package domain

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// DateKeyLayout is the fixed textual format of date keys in column 0 of the
// destination grid. Date keys are compared as strings, never parsed.
const DateKeyLayout = "2006/01/02"

// Normalize maps label text to its canonical comparison form: Unicode NFC
// plus surrounding-whitespace trim. Two encodings of the same visible string
// normalize to the same value.
func Normalize(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// Vocabulary is an ordered, immutable set of canonical labels. Matching is
// exact equality after Normalize; there is no fuzzy matching.
type Vocabulary struct {
	labels []string
	index  map[string]string
}

// NewVocabulary builds a vocabulary from canonical labels, preserving order.
// Blank entries and duplicates (after normalization) are dropped.
func NewVocabulary(labels []string) Vocabulary {
	v := Vocabulary{index: make(map[string]string, len(labels))}
	for _, label := range labels {
		canonical := Normalize(label)
		if canonical == "" {
			continue
		}
		if _, seen := v.index[canonical]; seen {
			continue
		}
		v.index[canonical] = canonical
		v.labels = append(v.labels, canonical)
	}
	return v
}

// Canonical resolves raw text to its canonical label.
func (v Vocabulary) Canonical(raw string) (string, bool) {
	label, ok := v.index[Normalize(raw)]
	return label, ok
}

// Contains reports whether raw text matches any vocabulary entry.
func (v Vocabulary) Contains(raw string) bool {
	_, ok := v.Canonical(raw)
	return ok
}

// Labels returns the canonical labels in declaration order.
func (v Vocabulary) Labels() []string {
	return append([]string(nil), v.labels...)
}

// Len returns the number of canonical labels.
func (v Vocabulary) Len() int {
	return len(v.labels)
}

package domain

import "testing"

func TestVocabularyKeepsOrderAndDropsDuplicates(t *testing.T) {
	v := NewVocabulary([]string{"Applied", " Screening ", "", "Applied", "Offer"})

	labels := v.Labels()
	expected := []string{"Applied", "Screening", "Offer"}
	if len(labels) != len(expected) {
		t.Fatalf("expected %d labels, got %d: %v", len(expected), len(labels), labels)
	}
	for i, label := range expected {
		if labels[i] != label {
			t.Fatalf("label %d: expected %q, got %q", i, label, labels[i])
		}
	}
}

func TestVocabularyMatchesAcrossNormalizationForms(t *testing.T) {
	// Precomposed e-acute (U+00E9) vs combining acute accent (e + U+0301);
	// both render as the same visible text.
	composed := "Présélection"
	decomposed := "Présélection"

	v := NewVocabulary([]string{composed})

	first, ok := v.Canonical(composed)
	if !ok {
		t.Fatalf("composed form did not match")
	}
	second, ok := v.Canonical(decomposed)
	if !ok {
		t.Fatalf("decomposed form did not match")
	}
	if first != second {
		t.Fatalf("forms resolved to different labels: %q vs %q", first, second)
	}
}

func TestVocabularyTrimsSurroundingWhitespace(t *testing.T) {
	v := NewVocabulary([]string{"Hired"})
	if !v.Contains("  Hired\t") {
		t.Fatalf("whitespace-padded label did not match")
	}
	if v.Contains("Hi red") {
		t.Fatalf("interior whitespace must not be ignored")
	}
}

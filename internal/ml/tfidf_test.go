package ml

import (
	"errors"
	"math"
	"testing"
)

func TestTokenize(t *testing.T) {
	got := Tokenize("The Cat's 9 lives, a_b!")
	want := []string{"the", "cat", "lives", "a_b"}
	if len(got) != len(want) {
		t.Fatalf("tokens = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("tokens = %q, want %q", got, want)
		}
	}
}

func TestTFIDFFitTransform(t *testing.T) {
	v := NewTFIDF(true)
	x, err := v.FitTransform([]string{"the cat sat", "the dog sat"})
	if err != nil {
		t.Fatalf("FitTransform: %v", err)
	}
	vocab := v.Vocabulary()
	if len(vocab) != 3 || vocab[0] != "cat" || vocab[1] != "dog" || vocab[2] != "sat" {
		t.Fatalf("vocabulary = %q", vocab)
	}
	if got, want := v.IDF("cat"), math.Log(3.0/2.0)+1; math.Abs(got-want) > 1e-12 {
		t.Fatalf("idf(cat) = %v, want %v", got, want)
	}
	if got := v.IDF("sat"); math.Abs(got-1) > 1e-12 {
		t.Fatalf("idf(sat) = %v, want 1", got)
	}
	for i, row := range x.Rows {
		if math.Abs(row.Norm()-1) > 1e-9 {
			t.Fatalf("row %d norm = %v", i, row.Norm())
		}
	}
	if r, c := x.Dims(); r != 2 || c != 3 {
		t.Fatalf("dims = %dx%d", r, c)
	}
}

func TestTFIDFNormNoneKeepsRawWeights(t *testing.T) {
	v := NewTFIDF(false)
	v.Norm = NormNone
	x, err := v.FitTransform([]string{"go go gopher", "gopher"})
	if err != nil {
		t.Fatalf("FitTransform: %v", err)
	}
	// vocabulary: go, gopher
	row := x.Row(0)
	if row.Idx[0] != 0 || math.Abs(row.Val[0]-2*(math.Log(3.0/2.0)+1)) > 1e-12 {
		t.Fatalf("row 0 = %+v", row)
	}
}

func TestTFIDFErrors(t *testing.T) {
	v := NewTFIDF(true)
	if _, err := v.Transform([]string{"x"}); !errors.Is(err, ErrNotFitted) {
		t.Fatalf("expected ErrNotFitted, got %v", err)
	}
	if err := v.Fit([]string{"the and of", ""}); !errors.Is(err, ErrEmptyVocabulary) {
		t.Fatalf("expected ErrEmptyVocabulary, got %v", err)
	}
	if err := v.Fit([]string{"heist crew"}); err != nil {
		t.Fatalf("Fit: %v", err)
	}
	x, err := v.Transform([]string{"zebra stripes"})
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if x.Row(0).NNZ() != 0 {
		t.Fatalf("unknown terms should be ignored: %+v", x.Row(0))
	}
}

func TestTopTerms(t *testing.T) {
	v := NewTFIDF(false)
	if err := v.Fit([]string{"alpha beta gamma"}); err != nil {
		t.Fatalf("Fit: %v", err)
	}
	got := v.TopTerms([]float64{0.1, 0.5, 0.5}, 2)
	if len(got) != 2 || got[0] != "beta" || got[1] != "gamma" {
		t.Fatalf("top terms = %q", got)
	}
	if got := v.TopTerms([]float64{0, 0, 0}, 3); len(got) != 0 {
		t.Fatalf("zero weights reported: %q", got)
	}
}

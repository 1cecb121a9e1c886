package ml

import (
	"errors"
	"math"
	"testing"

	"github.com/KaramelBytes/flixlens-cli/internal/dataset"
)

func catalog() *dataset.Table {
	return dataset.NewTable("catalog", []string{"title", "description", "duration"}, [][]string{
		{"A", "space adventure crew ship", "90"},
		{"B", "space crew survival ship", "100"},
		{"C", "cooking competition chefs", ""},
		{"D", "chefs cooking baking", "45"},
		{"E", "space station crew", "120"},
	})
}

func TestPrepareFeatures(t *testing.T) {
	m := NewModel(DefaultOptions())
	f, err := m.PrepareFeatures(catalog())
	if err != nil {
		t.Fatalf("PrepareFeatures: %v", err)
	}
	if !f.Has(FeatureDescription) || !f.Has(FeatureNumerical) {
		t.Fatalf("kinds = %v", f.Kinds())
	}
	if r, c := f.DescriptionVec.Dims(); r != 5 || c != 10 {
		t.Fatalf("description dims = %dx%d", r, c)
	}
	var sum float64
	for i := 0; i < 5; i++ {
		sum += f.Numerical.At(i, 0)
	}
	if math.Abs(sum) > 1e-9 {
		t.Fatalf("scaled durations should be centred, sum = %v", sum)
	}
	// Missing duration is filled with 0 before scaling.
	if mean := m.Scaler.Mean()[0]; math.Abs(mean-71) > 1e-9 {
		t.Fatalf("duration mean = %v, want 71", mean)
	}
}

func TestPrepareFeaturesRemembersCapabilities(t *testing.T) {
	tbl := catalog()
	m := NewModel(DefaultOptions())
	if m.Capabilities(tbl).Has(dataset.ColRating) || !m.Capabilities(tbl).Has(dataset.ColDescription) {
		t.Fatalf("unprepared table should be inspected directly")
	}
	if _, err := m.PrepareFeatures(tbl); err != nil {
		t.Fatalf("PrepareFeatures: %v", err)
	}
	if m.table != tbl || !m.caps.Has(dataset.ColDescription) || !m.caps.Has(dataset.ColDuration) {
		t.Fatalf("schema not kept after PrepareFeatures")
	}
	other := dataset.NewTable("t", []string{"title"}, [][]string{{"A"}})
	if m.Capabilities(other).Has(dataset.ColDescription) {
		t.Fatalf("another table must get its own schema")
	}
}

func TestPrepareFeaturesWithoutColumns(t *testing.T) {
	m := NewModel(DefaultOptions())
	f, err := m.PrepareFeatures(dataset.NewTable("t", []string{"title"}, [][]string{{"A"}}))
	if err != nil {
		t.Fatalf("PrepareFeatures: %v", err)
	}
	if len(f.Kinds()) != 0 {
		t.Fatalf("expected empty bundle, got %v", f.Kinds())
	}
	if _, err := m.ClusterContent(f, 2); !errors.Is(err, ErrMissingFeature) {
		t.Fatalf("expected ErrMissingFeature, got %v", err)
	}
	if _, err := m.ReduceDimensions(f, 2); !errors.Is(err, ErrMissingFeature) {
		t.Fatalf("expected ErrMissingFeature, got %v", err)
	}
}

func TestClusterContentIsDeterministic(t *testing.T) {
	m := NewModel(DefaultOptions())
	f, err := m.PrepareFeatures(catalog())
	if err != nil {
		t.Fatalf("PrepareFeatures: %v", err)
	}
	a, err := m.ClusterContent(f, 2)
	if err != nil {
		t.Fatalf("ClusterContent: %v", err)
	}
	b, err := m.ClusterContent(f, 2)
	if err != nil {
		t.Fatalf("ClusterContent: %v", err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("labels differ: %v vs %v", a, b)
		}
	}
	kw, err := m.ClusterKeywords(3)
	if err != nil {
		t.Fatalf("ClusterKeywords: %v", err)
	}
	if len(kw) != 2 {
		t.Fatalf("keywords = %v", kw)
	}
	if _, err := m.ClusterContent(f, 9); !errors.Is(err, ErrInvalidK) {
		t.Fatalf("expected ErrInvalidK, got %v", err)
	}
}

func TestReduceDimensions(t *testing.T) {
	m := NewModel(DefaultOptions())
	f, _ := m.PrepareFeatures(catalog())
	out, err := m.ReduceDimensions(f, 0)
	if err != nil {
		t.Fatalf("ReduceDimensions: %v", err)
	}
	if r, c := out.Dims(); r != 5 || c != 2 {
		t.Fatalf("dims = %dx%d", r, c)
	}
}

func TestSimilarContentExcludesQuery(t *testing.T) {
	tbl := catalog()
	m := NewModel(DefaultOptions())
	if _, err := m.SimilarContent(tbl, "A", 2); !errors.Is(err, ErrNotFitted) {
		t.Fatalf("expected ErrNotFitted before PrepareFeatures, got %v", err)
	}
	if _, err := m.PrepareFeatures(tbl); err != nil {
		t.Fatalf("PrepareFeatures: %v", err)
	}
	got, err := m.SimilarContent(tbl, "A", 0)
	if err != nil {
		t.Fatalf("SimilarContent: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("results = %d, want 4", len(got))
	}
	for _, it := range got {
		if it.Title == "A" {
			t.Fatalf("query row returned: %+v", got)
		}
	}
	if got[0].Title != "B" || got[1].Title != "E" {
		t.Fatalf("ranking = %+v", got)
	}
	if got[0].Description != "space crew survival ship" {
		t.Fatalf("description = %q", got[0].Description)
	}
	for i := 1; i < len(got); i++ {
		if got[i].Score > got[i-1].Score {
			t.Fatalf("not sorted: %+v", got)
		}
	}
}

func TestSimilarContentFailures(t *testing.T) {
	m := NewModel(DefaultOptions())
	tbl := catalog()
	if _, err := m.PrepareFeatures(tbl); err != nil {
		t.Fatalf("PrepareFeatures: %v", err)
	}
	if _, err := m.SimilarContent(tbl, "Nope", 3); !errors.Is(err, ErrTitleNotFound) {
		t.Fatalf("expected ErrTitleNotFound, got %v", err)
	}
	noDesc := dataset.NewTable("t", []string{"title"}, [][]string{{"A"}})
	if _, err := m.SimilarContent(noDesc, "A", 3); !errors.Is(err, dataset.ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}
	if _, err := m.SimilarContent(nil, "A", 3); !errors.Is(err, dataset.ErrNoTable) {
		t.Fatalf("expected ErrNoTable, got %v", err)
	}
}

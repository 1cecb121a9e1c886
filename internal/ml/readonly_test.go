package ml

import (
	"reflect"
	"testing"

	"github.com/KaramelBytes/flixlens-cli/internal/analysis"
	"github.com/KaramelBytes/flixlens-cli/internal/dataset"
)

type columnSnapshot struct {
	Kind   dataset.Kind
	Values []dataset.Value
}

func snapshot(t *dataset.Table) map[string]columnSnapshot {
	out := map[string]columnSnapshot{}
	for _, name := range t.Columns() {
		c, _ := t.Column(name)
		out[name] = columnSnapshot{Kind: c.Kind, Values: append([]dataset.Value(nil), c.Values...)}
	}
	return out
}

func TestAnalysisAndModelLeaveTableUntouched(t *testing.T) {
	tbl := dataset.NewTable("netflix_titles.csv",
		[]string{"title", "description", "listed_in", "date_added", "duration", "rating"},
		[][]string{
			{"A", "space adventure crew ship", "Dramas, Sci-Fi", "September 25, 2021", "90 min", "PG"},
			{"B", "space crew survival ship", "Sci-Fi", "2020-01-15", "2 Seasons", ""},
			{"C", "cooking competition chefs", "Reality TV", "", "", "TV-14"},
			{"D", "chefs cooking baking", "Reality TV, Dramas", "not a date", "45 min", "TV-G"},
			{"", "space station crew", "", "2019-06-01", "120 min", "R"},
		})
	dataset.Preprocess(tbl, dataset.DefaultPreprocessOptions())
	before := snapshot(tbl)
	cols := tbl.Columns()

	a, err := analysis.New(tbl)
	if err != nil {
		t.Fatalf("analysis.New: %v", err)
	}
	if _, err := a.BuildReport(analysis.ReportOptions{TopN: 3}); err != nil {
		t.Fatalf("BuildReport: %v", err)
	}

	m := NewModel(DefaultOptions())
	f, err := m.PrepareFeatures(tbl)
	if err != nil {
		t.Fatalf("PrepareFeatures: %v", err)
	}
	if _, err := m.ClusterContent(f, 2); err != nil {
		t.Fatalf("ClusterContent: %v", err)
	}
	if _, err := m.ReduceDimensions(f, 2); err != nil {
		t.Fatalf("ReduceDimensions: %v", err)
	}
	if _, err := m.SimilarContent(tbl, "A", 3); err != nil {
		t.Fatalf("SimilarContent: %v", err)
	}

	if !reflect.DeepEqual(tbl.Columns(), cols) {
		t.Fatalf("columns changed: %v -> %v", cols, tbl.Columns())
	}
	if after := snapshot(tbl); !reflect.DeepEqual(before, after) {
		t.Fatalf("table was modified:\nbefore %+v\nafter  %+v", before, after)
	}
}

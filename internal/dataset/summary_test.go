package dataset

import (
	"errors"
	"testing"
)

func TestSummaryStats(t *testing.T) {
	p := writeFile(t, "netflix_titles.csv", catalogCSV)
	tbl, err := Load(p, DefaultOptions())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	Preprocess(tbl, DefaultPreprocessOptions())
	s, err := SummaryStats(tbl)
	if err != nil {
		t.Fatalf("SummaryStats: %v", err)
	}
	if s.TotalEntries != tbl.Len() {
		t.Fatalf("total = %d, want %d", s.TotalEntries, tbl.Len())
	}
	if s.UniqueTitles != 4 {
		t.Fatalf("unique titles = %d", s.UniqueTitles)
	}
	// Documentaries, International TV Shows, TV Dramas, TV Mysteries, Crime TV Shows,
	// TV Action & Adventure, Docuseries, Reality TV
	if s.UniqueGenres != 8 {
		t.Fatalf("unique genres = %d, want 8", s.UniqueGenres)
	}
	if s.TimeSpan != "2021-09-24 to 2021-09-25" {
		t.Fatalf("time span = %q", s.TimeSpan)
	}
}

func TestSummaryStatsAbsentColumns(t *testing.T) {
	tbl := NewTable("t", []string{"show_id"}, [][]string{{"s1"}, {"s2"}, {"s3"}})
	s, err := SummaryStats(tbl)
	if err != nil {
		t.Fatalf("SummaryStats: %v", err)
	}
	if s.TotalEntries != 3 || s.UniqueTitles != 0 || s.UniqueGenres != 0 {
		t.Fatalf("summary = %+v", s)
	}
	if s.TimeSpan != "No date information available" {
		t.Fatalf("time span = %q", s.TimeSpan)
	}

	dated := NewTable("t", []string{"date_added"}, [][]string{{""}, {"garbage"}})
	Preprocess(dated, DefaultPreprocessOptions())
	s, _ = SummaryStats(dated)
	if s.TimeSpan != "No valid dates" {
		t.Fatalf("time span = %q", s.TimeSpan)
	}
}

func TestSummaryStatsParsesUnprocessedDates(t *testing.T) {
	tbl := NewTable("t", []string{"date_added", "title"}, [][]string{{"2019-03-01", "A"}, {"2018-12-31", "A"}, {"", ""}})
	s, err := SummaryStats(tbl)
	if err != nil {
		t.Fatalf("SummaryStats: %v", err)
	}
	if s.TimeSpan != "2018-12-31 to 2019-03-01" || s.UniqueTitles != 1 {
		t.Fatalf("summary = %+v", s)
	}
}

func TestSummaryStatsNilTable(t *testing.T) {
	if _, err := SummaryStats(nil); !errors.Is(err, ErrNoTable) {
		t.Fatalf("expected ErrNoTable, got %v", err)
	}
}

func TestSplitTags(t *testing.T) {
	got := SplitTags(" Dramas,  Comedies ,,International Movies")
	want := []string{"Dramas", "Comedies", "International Movies"}
	if len(got) != len(want) {
		t.Fatalf("tags = %q", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("tags = %q, want %q", got, want)
		}
	}
}

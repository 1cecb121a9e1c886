package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCLI_AnalyzeMarkdown(t *testing.T) {
	home := tempHome(t)
	p := writeFixture(t, home, "catalog.csv", catalogCSV)

	out := runCmd(t, "analyze", p)
	for _, want := range []string{
		"[DATASET SUMMARY]",
		"Rows: 5",
		"[TOP GENRES]",
		"1. Dramas (3)",
		"[YEARLY ADDITIONS]",
		"- 2019: 1",
		"- 2020: 2",
		"- 2021: 2",
		"[DURATION]",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestCLI_AnalyzeJSONToFile(t *testing.T) {
	home := tempHome(t)
	p := writeFixture(t, home, "catalog.csv", catalogCSV)
	dst := filepath.Join(home, "out", "report.json")

	out := runCmd(t, "analyze", p, "--top-n", "2", "-f", "json", "-o", dst)
	if !strings.Contains(out, "✓ Wrote analysis to") {
		t.Fatalf("unexpected output: %s", out)
	}
	b, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	var rep struct {
		Summary struct {
			TotalEntries int `json:"total_entries"`
		} `json:"summary"`
		Genres []struct {
			Value string `json:"value"`
			Count int    `json:"count"`
		} `json:"top_genres"`
	}
	if err := json.Unmarshal(b, &rep); err != nil {
		t.Fatalf("decode: %v\n%s", err, b)
	}
	if rep.Summary.TotalEntries != 5 {
		t.Fatalf("total_entries = %d", rep.Summary.TotalEntries)
	}
	if len(rep.Genres) != 2 || rep.Genres[0].Value != "Dramas" || rep.Genres[0].Count != 3 {
		t.Fatalf("genres = %+v", rep.Genres)
	}
}

func TestCLI_AnalyzeRejectsUnknownFormat(t *testing.T) {
	home := tempHome(t)
	p := writeFixture(t, home, "catalog.csv", catalogCSV)
	if _, err := execCmd(t, "analyze", p, "-f", "xml"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestCLI_AnalyzeMissingFile(t *testing.T) {
	home := tempHome(t)
	if _, err := execCmd(t, "analyze", filepath.Join(home, "nope.csv")); err == nil {
		t.Fatalf("expected load error")
	}
}

func TestCLI_SaveThenRuns(t *testing.T) {
	home := tempHome(t)
	p := writeFixture(t, home, "catalog.csv", catalogCSV)

	out := runCmd(t, "analyze", p, "--save")
	if !strings.Contains(out, "✓ Saved run") {
		t.Fatalf("expected saved run in output:\n%s", out)
	}
	runsRoot := filepath.Join(home, ".flixlens", "runs")
	entries, err := os.ReadDir(runsRoot)
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected one run dir, got %v (%v)", entries, err)
	}
	id := entries[0].Name()
	for _, f := range []string{"run.json", "analysis.md", "genres.png", "yearly.png"} {
		if _, err := os.Stat(filepath.Join(runsRoot, id, f)); err != nil {
			t.Fatalf("missing %s: %v", f, err)
		}
	}

	list := runCmd(t, "runs")
	if !strings.Contains(list, id[:8]) || !strings.Contains(list, "analyze") {
		t.Fatalf("runs output missing run:\n%s", list)
	}
	show := runCmd(t, "runs", "show", id[:8])
	for _, want := range []string{"command: analyze", "top_n: 10", "- analysis.md (analysis)", "- genres.png (chart)"} {
		if !strings.Contains(show, want) {
			t.Fatalf("expected %q in:\n%s", want, show)
		}
	}
	if _, err := execCmd(t, "runs", "show", "zzzz"); err == nil {
		t.Fatalf("expected error for unknown run")
	}
}

func TestCLI_RunsEmpty(t *testing.T) {
	tempHome(t)
	if out := runCmd(t, "runs"); !strings.Contains(out, "(no runs)") {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestCLI_SimilarCatalog(t *testing.T) {
	home := tempHome(t)
	p := writeFixture(t, home, "catalog.csv", catalogCSV)

	out := runCmd(t, "similar", p, "A", "-n", "2", "-f", "json")
	var items []struct {
		Title string  `json:"title"`
		Score float64 `json:"score"`
	}
	if err := json.Unmarshal([]byte(out), &items); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(items) != 2 || items[0].Title != "B" || items[1].Title != "E" {
		t.Fatalf("items = %+v", items)
	}
	if _, err := execCmd(t, "similar", p, "Nope"); err == nil {
		t.Fatalf("expected error for unknown title")
	}
}

func TestCLI_SimilarViewing(t *testing.T) {
	home := tempHome(t)
	p := writeFixture(t, home, "history.csv", viewingCSV)

	out := runCmd(t, "similar", p, "Show: Ep1", "--viewing")
	if !strings.Contains(out, "[SIMILAR VIEWS] Show: Ep1") || !strings.Contains(out, "1. Show: Ep2, watched 2024-01-01 22:00") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if strings.Index(out, "Show: Ep3") > strings.Index(out, "Movie") {
		t.Fatalf("unrelated title ranked above a sibling episode:\n%s", out)
	}
}

func TestCLI_Cluster(t *testing.T) {
	home := tempHome(t)
	p := writeFixture(t, home, "catalog.csv", catalogCSV)

	out := runCmd(t, "cluster", p, "-k", "2", "-f", "json")
	var res struct {
		K           int `json:"k"`
		Assignments []struct {
			Title   string `json:"title"`
			Cluster int    `json:"cluster"`
		} `json:"assignments"`
		Clusters []struct {
			Size     int      `json:"size"`
			Keywords []string `json:"keywords"`
		} `json:"clusters"`
	}
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if res.K != 2 || len(res.Assignments) != 5 || len(res.Clusters) != 2 {
		t.Fatalf("result = %+v", res)
	}
	if res.Clusters[0].Size+res.Clusters[1].Size != 5 {
		t.Fatalf("sizes = %+v", res.Clusters)
	}
	if _, err := execCmd(t, "cluster", p, "-k", "9"); err == nil {
		t.Fatalf("expected error for k > rows")
	}
}

func TestCLI_ClusterChart(t *testing.T) {
	home := tempHome(t)
	p := writeFixture(t, home, "catalog.csv", catalogCSV)
	dir := filepath.Join(home, "charts")

	runCmd(t, "cluster", p, "-k", "2", "--chart-dir", dir)
	if _, err := os.Stat(filepath.Join(dir, "clusters.png")); err != nil {
		t.Fatalf("missing scatter: %v", err)
	}
}

func TestCLI_Patterns(t *testing.T) {
	home := tempHome(t)
	p := writeFixture(t, home, "history.csv", viewingCSV)

	out := runCmd(t, "patterns", p, "-k", "2")
	for _, want := range []string{
		"Entries: 4",
		"Binge ratio: 0.25",
		"1. Show: Ep2 (1)",
		"Most likely hour: 21:00",
		"[VIEWING CLUSTERS]",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}

	// A wider window turns the next-evening episode into a binge too.
	out = runCmd(t, "patterns", p, "--binge-gap", "48", "--no-clusters")
	if !strings.Contains(out, "Binge ratio: 0.50") {
		t.Fatalf("unexpected output with --binge-gap:\n%s", out)
	}
	if strings.Contains(out, "[VIEWING CLUSTERS]") {
		t.Fatalf("clusters should be skipped:\n%s", out)
	}
}

func TestCLI_PatternsRequiresViewingColumns(t *testing.T) {
	home := tempHome(t)
	p := writeFixture(t, home, "catalog.csv", catalogCSV)
	if _, err := execCmd(t, "patterns", p); err == nil {
		t.Fatalf("expected missing column error")
	}
}

func TestCLI_ConfigSetShow(t *testing.T) {
	home := tempHome(t)

	runCmd(t, "config", "set", "top_n", "1")
	if _, err := os.Stat(filepath.Join(home, ".flixlens", "config.yaml")); err != nil {
		t.Fatalf("config not saved: %v", err)
	}
	out := runCmd(t, "config", "show")
	if !strings.Contains(out, "top_n: 1") {
		t.Fatalf("expected saved value in:\n%s", out)
	}
	if _, err := execCmd(t, "config", "set", "stop_words", "klingon"); err == nil {
		t.Fatalf("expected validation error")
	}
	if _, err := execCmd(t, "config", "set", "nope", "1"); err == nil {
		t.Fatalf("expected unknown key error")
	}

	p := writeFixture(t, home, "catalog.csv", catalogCSV)
	rep := runCmd(t, "analyze", p)
	if !strings.Contains(rep, "1. Dramas (3)") || strings.Contains(rep, "Sci-Fi (2)") {
		t.Fatalf("top_n from config not applied:\n%s", rep)
	}
}

func TestCLI_ConfigSetKeepsInvalidFile(t *testing.T) {
	home := tempHome(t)
	body := "top_n: 0\nclusters: 7\nrating_fill: Unrated\n"
	p := writeFixture(t, home, filepath.Join(".flixlens", "config.yaml"), body)

	if _, err := execCmd(t, "config", "set", "top_n", "5"); err == nil {
		t.Fatalf("expected config set to fail on an invalid config file")
	}
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if string(b) != body {
		t.Fatalf("config file was rewritten:\n%s", b)
	}

	// Read paths still run on the defaults.
	out := runCmd(t, "config", "show")
	if !strings.Contains(out, "clusters: 5") {
		t.Fatalf("expected defaults in:\n%s", out)
	}
}

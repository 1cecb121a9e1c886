package run_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/KaramelBytes/flixlens-cli/internal/run"
)

func TestSaveLoadAndArtifacts(t *testing.T) {
	dir := t.TempDir()
	r := run.New(dir, "analyze", "netflix_titles.csv")
	if _, err := uuid.Parse(r.ID); err != nil {
		t.Fatalf("id %q is not a uuid: %v", r.ID, err)
	}
	r.Params["top_n"] = "10"
	p, err := r.WriteArtifact("report.md", "report", []byte("[DATASET SUMMARY]\n"))
	if err != nil {
		t.Fatalf("WriteArtifact: %v", err)
	}
	if _, err := os.Stat(p); err != nil {
		t.Fatalf("artifact missing: %v", err)
	}
	if err := r.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := run.Load(r.RootDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.ID != r.ID || got.Command != "analyze" || got.Params["top_n"] != "10" {
		t.Fatalf("loaded = %+v", got)
	}
	if len(got.Artifacts) != 1 || got.Artifacts[0].Name != "report.md" || got.Artifacts[0].Kind != "report" {
		t.Fatalf("artifacts = %+v", got.Artifacts)
	}
}

func TestListAndFind(t *testing.T) {
	dir := t.TempDir()
	a := run.New(dir, "analyze", "a.csv")
	b := run.New(dir, "cluster", "b.csv")
	b.CreatedAt = a.CreatedAt.Add(1)
	for _, r := range []*run.Run{a, b} {
		if err := r.Save(); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}
	if err := os.MkdirAll(filepath.Join(dir, "junk"), 0o755); err != nil {
		t.Fatal(err)
	}
	runs, err := run.List(dir)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != b.ID {
		t.Fatalf("runs = %+v", runs)
	}
	found, err := run.Find(dir, a.ID[:8])
	if err != nil || found.ID != a.ID {
		t.Fatalf("Find = %v, %v", found, err)
	}
	if _, err := run.Find(dir, "zzzz"); !errors.Is(err, run.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if runs, err := run.List(filepath.Join(dir, "missing")); err != nil || len(runs) != 0 {
		t.Fatalf("missing dir = %v, %v", runs, err)
	}
}

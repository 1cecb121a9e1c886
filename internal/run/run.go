// Package run records one CLI analysis on disk: a run.json manifest plus the
// reports and charts it produced, in a directory named by a random UUID.
package run

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/KaramelBytes/flixlens-cli/internal/utils"
)

const manifestName = "run.json"

// ErrNotFound is returned when no run matches an ID prefix.
var ErrNotFound = errors.New("run not found")

// Artifact is one file produced by a run.
type Artifact struct {
	Name      string    `json:"name"`
	Kind      string    `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
}

// Run is a saved analysis.
type Run struct {
	ID        string            `json:"id"`
	Command   string            `json:"command"`
	Source    string            `json:"source"`
	Params    map[string]string `json:"params,omitempty"`
	Artifacts []Artifact        `json:"artifacts"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`

	// Not serialized: on-disk location of the run.json
	rootDir string `json:"-"`
}

// New constructs an in-memory run under runsDir. Call Save() to persist.
func New(runsDir, command, source string) *Run {
	id := uuid.NewString()
	now := time.Now()
	return &Run{
		ID:        id,
		Command:   command,
		Source:    source,
		Params:    map[string]string{},
		CreatedAt: now,
		UpdatedAt: now,
		rootDir:   filepath.Join(runsDir, id),
	}
}

// Load reads run.json from dir.
func Load(dir string) (*Run, error) {
	path := filepath.Join(dir, manifestName)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("run not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("read run: %w", err)
	}
	var r Run
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("parse run: %w", err)
	}
	r.rootDir = dir
	return &r, nil
}

// RootDir returns the run directory.
func (r *Run) RootDir() string { return r.rootDir }

// Save writes run.json using atomic write.
func (r *Run) Save() error {
	if r.rootDir == "" {
		return errors.New("run directory not set")
	}
	if err := utils.EnsureDir(r.rootDir); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	r.UpdatedAt = time.Now()
	data, err := utils.PrettyJSON(r)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(filepath.Join(r.rootDir, manifestName), data)
}

// Path returns where an artifact called name lives inside the run.
func (r *Run) Path(name string) string { return filepath.Join(r.rootDir, filepath.Base(name)) }

// Record adds an artifact already written to Path(name).
func (r *Run) Record(name, kind string) {
	r.Artifacts = append(r.Artifacts, Artifact{Name: filepath.Base(name), Kind: kind, CreatedAt: time.Now()})
}

// WriteArtifact writes data into the run directory and records it.
func (r *Run) WriteArtifact(name, kind string, data []byte) (string, error) {
	if err := utils.EnsureDir(r.rootDir); err != nil {
		return "", fmt.Errorf("ensure dir: %w", err)
	}
	p := r.Path(name)
	if err := utils.SafeWriteFile(p, data); err != nil {
		return "", err
	}
	r.Record(name, kind)
	return p, nil
}

// List loads every run under runsDir, newest first. Directories without a
// readable manifest are skipped. A missing runsDir yields no runs.
func List(runsDir string) ([]*Run, error) {
	entries, err := os.ReadDir(runsDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list runs: %w", err)
	}
	var out []*Run
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		r, err := Load(filepath.Join(runsDir, e.Name()))
		if err != nil {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Find returns the single run whose ID starts with prefix.
func Find(runsDir, prefix string) (*Run, error) {
	runs, err := List(runsDir)
	if err != nil {
		return nil, err
	}
	var match *Run
	for _, r := range runs {
		if !strings.HasPrefix(r.ID, prefix) {
			continue
		}
		if match != nil {
			return nil, fmt.Errorf("run prefix %q is ambiguous", prefix)
		}
		match = r
	}
	if match == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, prefix)
	}
	return match, nil
}

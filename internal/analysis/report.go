package analysis

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/KaramelBytes/flixlens-cli/internal/dataset"
)

// ReportOptions controls BuildReport.
type ReportOptions struct {
	TopN int
}

// Report bundles the summary and the three views. Views skipped for a
// missing column are recorded in Notes.
type Report struct {
	Name     string           `json:"name" yaml:"name"`
	Summary  *dataset.Summary `json:"summary" yaml:"summary"`
	Genres   []CategoryCount  `json:"top_genres,omitempty" yaml:"top_genres,omitempty"`
	Years    []YearCount      `json:"yearly_additions,omitempty" yaml:"yearly_additions,omitempty"`
	Duration *DurationStats   `json:"duration,omitempty" yaml:"duration,omitempty"`
	Notes    []string         `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// BuildReport computes every view. Only unexpected errors abort the report.
func (a *Analyzer) BuildReport(opt ReportOptions) (*Report, error) {
	sum, err := dataset.SummaryStats(a.table)
	if err != nil {
		return nil, err
	}
	r := &Report{Name: a.table.Name, Summary: sum}
	if r.Genres, err = a.GenreDistribution(opt.TopN); err != nil {
		if !r.note(err) {
			return nil, err
		}
	}
	if r.Years, err = a.YearlyAdditions(); err != nil {
		if !r.note(err) {
			return nil, err
		}
	}
	if r.Duration, err = a.DurationStats(); err != nil {
		if !r.note(err) {
			return nil, err
		}
	}
	return r, nil
}

// note records soft failures and reports whether err was one.
func (r *Report) note(err error) bool {
	switch {
	case errors.Is(err, dataset.ErrMissingColumn):
		r.Notes = append(r.Notes, err.Error())
	case errors.Is(err, ErrNoNumericValues):
		r.Notes = append(r.Notes, "Duration column has no numeric values")
	default:
		return false
	}
	return true
}

// Markdown renders the report in compact sections.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	if s := r.Summary; s != nil {
		b.WriteString(fmt.Sprintf("Rows: %d\n", s.TotalEntries))
		b.WriteString(fmt.Sprintf("Unique titles: %d\n", s.UniqueTitles))
		b.WriteString(fmt.Sprintf("Unique genres: %d\n", s.UniqueGenres))
		b.WriteString(fmt.Sprintf("Time span: %s\n", s.TimeSpan))
	}
	if len(r.Genres) > 0 {
		b.WriteString("\n[TOP GENRES]\n")
		for i, g := range r.Genres {
			b.WriteString(fmt.Sprintf("%d. %s (%d)\n", i+1, safeVal(g.Value), g.Count))
		}
	}
	if len(r.Years) > 0 {
		b.WriteString("\n[YEARLY ADDITIONS]\n")
		for _, y := range r.Years {
			b.WriteString(fmt.Sprintf("- %d: %d\n", y.Year, y.Count))
		}
	}
	if d := r.Duration; d != nil {
		b.WriteString("\n[DURATION]\n")
		b.WriteString(fmt.Sprintf("n=%d, mean %.4g, median %.4g, std %s, min %.4g, max %.4g\n",
			d.Count, d.Mean, d.Median, fmtStd(d.Std), d.Min, d.Max))
	}
	if len(r.Notes) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, n := range r.Notes {
			b.WriteString("- ")
			b.WriteString(n)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func fmtStd(x float64) string {
	if math.IsNaN(x) {
		return "n/a"
	}
	return fmt.Sprintf("%.4g", x)
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }

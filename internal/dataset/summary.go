package dataset

import (
	"fmt"
	"strings"
)

// Summary holds the basic counts reported right after loading.
type Summary struct {
	TotalEntries int    `json:"total_entries" yaml:"total_entries"`
	UniqueTitles int    `json:"unique_titles" yaml:"unique_titles"`
	UniqueGenres int    `json:"unique_genres" yaml:"unique_genres"`
	TimeSpan     string `json:"time_span" yaml:"time_span"`
}

// SummaryStats computes row, title, genre and date-span counts.
func SummaryStats(t *Table) (*Summary, error) {
	if t == nil {
		return nil, ErrNoTable
	}
	s := &Summary{TotalEntries: t.Len()}
	if c, ok := t.Column(ColTitle); ok {
		seen := map[string]struct{}{}
		for _, v := range c.Values {
			if !v.Null {
				seen[v.Str] = struct{}{}
			}
		}
		s.UniqueTitles = len(seen)
	}
	if c, ok := t.Column(ColListedIn); ok {
		seen := map[string]struct{}{}
		for _, v := range c.Values {
			if v.Null {
				continue
			}
			for _, g := range SplitTags(v.Str) {
				seen[g] = struct{}{}
			}
		}
		s.UniqueGenres = len(seen)
	}
	s.TimeSpan = timeSpan(t)
	return s, nil
}

func timeSpan(t *Table) string {
	c, ok := t.Column(ColDateAdded)
	if !ok {
		return missingMessages[ColDateAdded]
	}
	times := c.Times()
	if len(times) == 0 {
		return "No valid dates"
	}
	lo, hi := times[0], times[0]
	for _, ts := range times[1:] {
		if ts.Before(lo) {
			lo = ts
		}
		if ts.After(hi) {
			hi = ts
		}
	}
	return fmt.Sprintf("%s to %s", lo.Format("2006-01-02"), hi.Format("2006-01-02"))
}

// SplitTags splits a comma-separated tag list, trimming whitespace and
// dropping empty tags.
func SplitTags(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

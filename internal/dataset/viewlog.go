package dataset

import (
	"sort"
	"time"

	"github.com/KaramelBytes/flixlens-cli/internal/logging"
)

// ViewingEntry is one row of a viewing-history export.
type ViewingEntry struct {
	Title string    `json:"title" yaml:"title"`
	Date  time.Time `json:"date" yaml:"date"`
}

// ViewingLog is a viewing history sorted by date ascending.
type ViewingLog struct {
	Entries []ViewingEntry
	// Dropped counts rows skipped because their date could not be parsed.
	Dropped int
}

// NewViewingLog extracts Title and Date from a table, drops rows with
// unparseable dates and stable-sorts the rest by date.
func NewViewingLog(t *Table) (*ViewingLog, error) {
	if t == nil {
		return nil, ErrNoTable
	}
	if err := DetectSchema(t).Require(ColViewTitle, ColViewDate); err != nil {
		return nil, err
	}
	titles, _ := t.Column(ColViewTitle)
	dates, _ := t.Column(ColViewDate)
	log := &ViewingLog{Entries: make([]ViewingEntry, 0, t.Len())}
	for i := 0; i < t.Len(); i++ {
		d := dates.Values[i]
		ts := d.Time
		if dates.Kind != KindDatetime {
			var ok bool
			if d.Null {
				log.Dropped++
				continue
			}
			if ts, ok = parseTimeMaybe(d.Str); !ok {
				log.Dropped++
				continue
			}
		} else if d.Null {
			log.Dropped++
			continue
		}
		log.Entries = append(log.Entries, ViewingEntry{Title: titles.String(i), Date: ts})
	}
	if log.Dropped > 0 {
		logging.Warn().Int("rows", log.Dropped).Msg("viewing rows without a parseable date were dropped")
	}
	sort.SliceStable(log.Entries, func(i, j int) bool { return log.Entries[i].Date.Before(log.Entries[j].Date) })
	return log, nil
}

// Len returns the number of entries.
func (l *ViewingLog) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Entries)
}

// Titles returns the entry titles in date order.
func (l *ViewingLog) Titles() []string {
	out := make([]string, len(l.Entries))
	for i, e := range l.Entries {
		out[i] = e.Title
	}
	return out
}

package dataset

import (
	"strconv"

	"github.com/KaramelBytes/flixlens-cli/internal/logging"
)

// PreprocessOptions controls the cleaning pass.
type PreprocessOptions struct {
	// ParseDuration turns text durations like "90 min" or "2 Seasons" into numbers.
	ParseDuration bool
	DurationFill  float64
	RatingFill    string
}

// DefaultPreprocessOptions returns the standard fill values.
func DefaultPreprocessOptions() PreprocessOptions {
	return PreprocessOptions{ParseDuration: true, DurationFill: 0, RatingFill: "Not Rated"}
}

// Preprocess coerces date_added to timestamps and fills missing duration and
// rating cells, mutating t in place. Every other column, including its
// missing cells, is left untouched. A nil table is returned as nil.
func Preprocess(t *Table, opt PreprocessOptions) *Table {
	if t == nil {
		return nil
	}
	if c, ok := t.Column(ColDateAdded); ok && c.Kind != KindDatetime {
		bad := 0
		for i, v := range c.Values {
			if v.Null {
				continue
			}
			ts, ok := parseTimeMaybe(v.Str)
			if !ok {
				c.Values[i] = Value{Null: true}
				bad++
				continue
			}
			c.Values[i].Time = ts
		}
		c.Kind = KindDatetime
		if bad > 0 {
			logging.Warn().Int("cells", bad).Str("column", ColDateAdded).Msg("unparseable dates set to null")
		}
	}
	if c, ok := t.Column(ColDuration); ok {
		if opt.ParseDuration && c.Kind == KindText {
			for i, v := range c.Values {
				if v.Null {
					continue
				}
				x, ok := leadingNumber(v.Str)
				if !ok {
					c.Values[i] = Value{Null: true}
					continue
				}
				c.Values[i].Num = x
			}
			c.Kind = KindNumeric
		}
		fill := strconv.FormatFloat(opt.DurationFill, 'f', -1, 64)
		for i, v := range c.Values {
			if v.Null {
				c.Values[i] = Value{Str: fill, Num: opt.DurationFill}
			}
		}
	}
	if c, ok := t.Column(ColRating); ok {
		for i, v := range c.Values {
			if v.Null {
				c.Values[i] = Value{Str: opt.RatingFill}
			}
		}
		// An all-numeric rating column stops being numeric once the text fill lands.
		if c.Kind == KindNumeric {
			for _, v := range c.Values {
				if _, ok := parseNumber(v.Str); !ok {
					c.Kind = KindText
					break
				}
			}
		}
	}
	return t
}

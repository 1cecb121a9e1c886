package dataset

import (
	"strconv"
	"strings"
	"time"
	"unicode"
)

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006/01/02",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"1/2/2006",
	"1/2/06",
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	"02.01.2006",
}

func parseTimeMaybe(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, l := range timeLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// leadingNumber extracts the number at the start of values like "90 min"
// or "2 Seasons".
func leadingNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	end := 0
	seenDot := false
	for i, r := range s {
		if unicode.IsDigit(r) {
			end = i + 1
			continue
		}
		if r == '.' && !seenDot {
			seenDot = true
			continue
		}
		if (r == '-' || r == '+') && i == 0 {
			continue
		}
		break
	}
	if end == 0 {
		return 0, false
	}
	return parseNumber(s[:end])
}

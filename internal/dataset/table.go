// Package dataset loads tabular catalog and viewing-log sources into an
// in-memory, column-oriented table and provides the cleaning and summary
// steps that run once after load.
package dataset

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Kind is the inferred or coerced type of a column.
type Kind string

const (
	KindText     Kind = "text"
	KindNumeric  Kind = "numeric"
	KindDatetime Kind = "datetime"
)

// Value is one cell. Str always holds the source text (or the fill value);
// Num and Time are only meaningful for numeric and datetime columns.
type Value struct {
	Null bool
	Str  string
	Num  float64
	Time time.Time
}

// Column is a named, typed slice of cells.
type Column struct {
	Name   string
	Kind   Kind
	Values []Value
}

// Len returns the number of cells.
func (c *Column) Len() int { return len(c.Values) }

// String returns the text of cell i, or "" when it is null.
func (c *Column) String(i int) string {
	if i < 0 || i >= len(c.Values) || c.Values[i].Null {
		return ""
	}
	return c.Values[i].Str
}

// Strings returns every cell as text with nulls as "".
func (c *Column) Strings() []string {
	out := make([]string, len(c.Values))
	for i := range c.Values {
		out[i] = c.String(i)
	}
	return out
}

// Floats returns the numeric values of non-null cells. Text columns are
// parsed cell by cell and unparseable cells are skipped.
func (c *Column) Floats() []float64 {
	out := make([]float64, 0, len(c.Values))
	for _, v := range c.Values {
		if v.Null {
			continue
		}
		if c.Kind == KindNumeric {
			out = append(out, v.Num)
			continue
		}
		if x, ok := parseNumber(v.Str); ok {
			out = append(out, x)
		}
	}
	return out
}

// Times returns the timestamps of non-null cells. Text columns are parsed
// cell by cell and unparseable cells are skipped.
func (c *Column) Times() []time.Time {
	out := make([]time.Time, 0, len(c.Values))
	for _, v := range c.Values {
		if v.Null {
			continue
		}
		if c.Kind == KindDatetime {
			out = append(out, v.Time)
			continue
		}
		if t, ok := parseTimeMaybe(v.Str); ok {
			out = append(out, t)
		}
	}
	return out
}

// Table is an ordered collection of rows stored column by column.
type Table struct {
	Name  string
	cols  []*Column
	index map[string]int
	rows  int
}

// NewTable builds a table from a header and raw records. Empty cells are
// null. A column whose every non-null cell parses as a number is numeric.
func NewTable(name string, header []string, records [][]string) *Table {
	t := &Table{Name: name, index: make(map[string]int, len(header)), rows: len(records)}
	for j, h := range header {
		colName := strings.TrimSpace(h)
		if colName == "" {
			colName = fmt.Sprintf("column_%d", j+1)
		}
		if _, dup := t.index[colName]; dup {
			colName = uniqueName(t.index, colName)
		}
		col := &Column{Name: colName, Kind: KindText, Values: make([]Value, len(records))}
		numeric, nonNull := true, 0
		for i, rec := range records {
			var raw string
			if j < len(rec) {
				raw = strings.TrimSpace(rec[j])
			}
			if raw == "" {
				col.Values[i] = Value{Null: true}
				continue
			}
			nonNull++
			v := Value{Str: raw}
			if numeric {
				if x, err := strconv.ParseFloat(raw, 64); err == nil {
					v.Num = x
				} else {
					numeric = false
				}
			}
			col.Values[i] = v
		}
		if numeric && nonNull > 0 {
			col.Kind = KindNumeric
		}
		t.index[colName] = len(t.cols)
		t.cols = append(t.cols, col)
	}
	return t
}

func uniqueName(index map[string]int, name string) string {
	for n := 1; ; n++ {
		cand := fmt.Sprintf("%s.%d", name, n)
		if _, ok := index[cand]; !ok {
			return cand
		}
	}
}

// Len returns the row count.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return t.rows
}

// Columns returns column names in source order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.cols))
	for i, c := range t.cols {
		out[i] = c.Name
	}
	return out
}

// Has reports whether the named column exists.
func (t *Table) Has(name string) bool {
	if t == nil {
		return false
	}
	_, ok := t.index[name]
	return ok
}

// Column returns the named column.
func (t *Table) Column(name string) (*Column, bool) {
	if t == nil {
		return nil, false
	}
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.cols[i], true
}

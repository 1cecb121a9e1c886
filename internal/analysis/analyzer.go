// Package analysis derives descriptive views from a loaded catalog: genre
// frequencies, additions per year and duration statistics.
package analysis

import (
	"errors"
	"sort"

	"github.com/KaramelBytes/flixlens-cli/internal/dataset"
	"github.com/KaramelBytes/flixlens-cli/internal/logging"
)

// DefaultTopN is used when a non-positive topN is requested.
const DefaultTopN = 10

// ErrNoNumericValues means a column exists but carries no usable numbers.
var ErrNoNumericValues = errors.New("no numeric values")

// CategoryCount is a tag with its frequency.
type CategoryCount struct {
	Value string `json:"value" yaml:"value"`
	Count int    `json:"count" yaml:"count"`
}

// YearCount is the number of rows added in a calendar year.
type YearCount struct {
	Year  int `json:"year" yaml:"year"`
	Count int `json:"count" yaml:"count"`
}

// Analyzer reads a table without modifying it.
type Analyzer struct {
	table *dataset.Table
	caps  dataset.Capabilities
}

// New wraps t. A nil table yields dataset.ErrNoTable.
func New(t *dataset.Table) (*Analyzer, error) {
	if t == nil {
		return nil, dataset.ErrNoTable
	}
	return &Analyzer{table: t, caps: dataset.DetectSchema(t)}, nil
}

// Capabilities returns the schema descriptor computed at construction.
func (a *Analyzer) Capabilities() dataset.Capabilities { return a.caps }

func (a *Analyzer) require(col string) error {
	if err := a.caps.Require(col); err != nil {
		logging.Warn().Str("column", col).Msg(err.Error())
		return err
	}
	return nil
}

// GenreDistribution counts comma-separated listed_in tags and returns the
// topN most frequent. Equal counts keep first-seen order.
func (a *Analyzer) GenreDistribution(topN int) ([]CategoryCount, error) {
	if err := a.require(dataset.ColListedIn); err != nil {
		return nil, err
	}
	if topN <= 0 {
		topN = DefaultTopN
	}
	c, _ := a.table.Column(dataset.ColListedIn)
	idx := map[string]int{}
	var out []CategoryCount
	for _, v := range c.Values {
		if v.Null {
			continue
		}
		for _, g := range dataset.SplitTags(v.Str) {
			if i, ok := idx[g]; ok {
				out[i].Count++
				continue
			}
			idx[g] = len(out)
			out = append(out, CategoryCount{Value: g, Count: 1})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > topN {
		out = out[:topN]
	}
	return out, nil
}

// YearlyAdditions counts rows per calendar year of date_added, ascending.
// Null and unparseable dates are ignored.
func (a *Analyzer) YearlyAdditions() ([]YearCount, error) {
	if err := a.require(dataset.ColDateAdded); err != nil {
		return nil, err
	}
	c, _ := a.table.Column(dataset.ColDateAdded)
	counts := map[int]int{}
	for _, ts := range c.Times() {
		counts[ts.Year()]++
	}
	out := make([]YearCount, 0, len(counts))
	for y, n := range counts {
		out = append(out, YearCount{Year: y, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out, nil
}

package analysis

import (
	"math"
	"sort"

	"github.com/goccy/go-json"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/flixlens-cli/internal/dataset"
)

// DurationStats summarises the numeric duration values. Std is the sample
// deviation and is NaN for a single value.
type DurationStats struct {
	Count  int     `json:"count" yaml:"count"`
	Mean   float64 `json:"mean_duration" yaml:"mean_duration"`
	Median float64 `json:"median_duration" yaml:"median_duration"`
	Std    float64 `json:"std_duration" yaml:"std_duration"`
	Min    float64 `json:"min_duration" yaml:"min_duration"`
	Max    float64 `json:"max_duration" yaml:"max_duration"`
}

// MarshalJSON writes a NaN deviation as null.
func (d DurationStats) MarshalJSON() ([]byte, error) {
	type alias DurationStats
	var std *float64
	if !math.IsNaN(d.Std) {
		std = &d.Std
	}
	return json.Marshal(struct {
		alias
		Std *float64 `json:"std_duration"`
	}{alias: alias(d), Std: std})
}

// DurationStats computes mean, median, std, min and max over duration.
func (a *Analyzer) DurationStats() (*DurationStats, error) {
	if err := a.require(dataset.ColDuration); err != nil {
		return nil, err
	}
	c, _ := a.table.Column(dataset.ColDuration)
	return describe(c.Floats())
}

func describe(vals []float64) (*DurationStats, error) {
	if len(vals) == 0 {
		return nil, ErrNoNumericValues
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	return &DurationStats{
		Count:  len(vals),
		Mean:   stat.Mean(vals, nil),
		Median: quantile(sorted, 0.5),
		Std:    stat.StdDev(vals, nil),
		Min:    floats.Min(vals),
		Max:    floats.Max(vals),
	}, nil
}

// quantile interpolates linearly between the closest ranks of sorted.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

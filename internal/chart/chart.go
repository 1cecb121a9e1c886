// Package chart renders analysis and clustering results with gonum/plot.
package chart

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/KaramelBytes/flixlens-cli/internal/analysis"
)

// ErrNoData is returned when there is nothing to draw.
var ErrNoData = errors.New("no data to plot")

// Size is the output canvas size.
type Size struct {
	Width  vg.Length
	Height vg.Length
}

// SizeCM builds a Size from centimetres.
func SizeCM(w, h float64) Size {
	return Size{Width: vg.Length(w) * vg.Centimeter, Height: vg.Length(h) * vg.Centimeter}
}

// DefaultSize is 16cm x 9cm.
var DefaultSize = SizeCM(16, 9)

// GenreBar draws the topN genres as horizontal bars, most frequent on top.
func GenreBar(counts []analysis.CategoryCount, topN int) (*plot.Plot, error) {
	if len(counts) == 0 {
		return nil, ErrNoData
	}
	if topN <= 0 || topN > len(counts) {
		topN = len(counts)
	}
	counts = counts[:topN]
	vals := make(plotter.Values, topN)
	names := make([]string, topN)
	for i, c := range counts {
		// bottom-up axis: reverse so the first entry is drawn on top
		vals[topN-1-i] = float64(c.Count)
		names[topN-1-i] = c.Value
	}
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Top %d Genres", topN)
	p.X.Label.Text = "Count"
	p.Y.Label.Text = "Genre"
	bars, err := plotter.NewBarChart(vals, vg.Points(12))
	if err != nil {
		return nil, fmt.Errorf("genre bars: %w", err)
	}
	bars.Horizontal = true
	bars.Color = plotutil.Color(0)
	p.Add(bars)
	p.NominalY(names...)
	return p, nil
}

// YearlyLine draws additions per year as a line with points.
func YearlyLine(series []analysis.YearCount) (*plot.Plot, error) {
	if len(series) == 0 {
		return nil, ErrNoData
	}
	xys := make(plotter.XYs, len(series))
	for i, y := range series {
		xys[i].X = float64(y.Year)
		xys[i].Y = float64(y.Count)
	}
	p := plot.New()
	p.Title.Text = "Content Added by Year"
	p.X.Label.Text = "Year"
	p.Y.Label.Text = "Number of Titles Added"
	p.Add(plotter.NewGrid())
	line, points, err := plotter.NewLinePoints(xys)
	if err != nil {
		return nil, fmt.Errorf("yearly line: %w", err)
	}
	p.Add(line, points)
	return p, nil
}

// Scatter draws the first two columns of coords, one series per label.
// A nil labels slice draws a single series.
func Scatter(coords mat.Matrix, labels []int) (*plot.Plot, error) {
	if coords == nil {
		return nil, ErrNoData
	}
	n, d := coords.Dims()
	if n == 0 || d < 2 {
		return nil, ErrNoData
	}
	if labels != nil && len(labels) != n {
		return nil, fmt.Errorf("scatter: %d labels for %d points", len(labels), n)
	}
	groups := map[int]plotter.XYs{}
	for i := 0; i < n; i++ {
		l := 0
		if labels != nil {
			l = labels[i]
		}
		groups[l] = append(groups[l], plotter.XY{X: coords.At(i, 0), Y: coords.At(i, 1)})
	}
	keys := make([]int, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	p := plot.New()
	p.Title.Text = "Content Clusters"
	p.X.Label.Text = "PC1"
	p.Y.Label.Text = "PC2"
	for i, k := range keys {
		s, err := plotter.NewScatter(groups[k])
		if err != nil {
			return nil, fmt.Errorf("scatter: %w", err)
		}
		s.GlyphStyle.Color = plotutil.Color(i)
		s.GlyphStyle.Shape = plotutil.Shape(i)
		p.Add(s)
		if labels != nil {
			p.Legend.Add(fmt.Sprintf("cluster %d", k), s)
		}
	}
	return p, nil
}

// Save writes p to path; the extension picks the format (png, svg, pdf, ...).
func Save(p *plot.Plot, path string, size Size) error {
	if p == nil {
		return ErrNoData
	}
	if size.Width <= 0 || size.Height <= 0 {
		size = DefaultSize
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := p.Save(size.Width, size.Height, path); err != nil {
		return fmt.Errorf("save chart %s: %w", path, err)
	}
	return nil
}

package ml

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// StandardScaler centres each column on its mean and divides by its
// population standard deviation. Constant columns are divided by 1.
type StandardScaler struct {
	mean  []float64
	scale []float64
}

// Fit learns per-column mean and scale.
func (s *StandardScaler) Fit(x mat.Matrix) error {
	r, c := x.Dims()
	if r == 0 || c == 0 {
		return fmt.Errorf("scaler: empty input")
	}
	s.mean = make([]float64, c)
	s.scale = make([]float64, c)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, x)
		m, sd := stat.PopMeanStdDev(col, nil)
		if sd == 0 {
			sd = 1
		}
		s.mean[j], s.scale[j] = m, sd
	}
	return nil
}

// Transform standardizes x with the fitted parameters.
func (s *StandardScaler) Transform(x mat.Matrix) (*mat.Dense, error) {
	if s.mean == nil {
		return nil, ErrNotFitted
	}
	r, c := x.Dims()
	if c != len(s.mean) {
		return nil, fmt.Errorf("scaler: got %d columns, fitted on %d", c, len(s.mean))
	}
	out := mat.NewDense(r, c, nil)
	out.Apply(func(i, j int, v float64) float64 {
		return (v - s.mean[j]) / s.scale[j]
	}, x)
	return out, nil
}

// FitTransform fits on x and standardizes it.
func (s *StandardScaler) FitTransform(x mat.Matrix) (*mat.Dense, error) {
	if err := s.Fit(x); err != nil {
		return nil, err
	}
	return s.Transform(x)
}

// Mean returns the fitted column means.
func (s *StandardScaler) Mean() []float64 { return append([]float64(nil), s.mean...) }

// Scale returns the fitted column deviations (1 for constant columns).
func (s *StandardScaler) Scale() []float64 { return append([]float64(nil), s.scale...) }

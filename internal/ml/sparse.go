package ml

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// SparseVec is a sparse row with strictly increasing indices.
type SparseVec struct {
	Idx []int
	Val []float64
}

// NNZ returns the number of stored entries.
func (v SparseVec) NNZ() int { return len(v.Idx) }

// Dot returns the inner product of two sparse rows.
func (v SparseVec) Dot(w SparseVec) float64 {
	var s float64
	i, j := 0, 0
	for i < len(v.Idx) && j < len(w.Idx) {
		switch {
		case v.Idx[i] == w.Idx[j]:
			s += v.Val[i] * w.Val[j]
			i++
			j++
		case v.Idx[i] < w.Idx[j]:
			i++
		default:
			j++
		}
	}
	return s
}

// DotDense returns the inner product with a dense vector of the row's width.
func (v SparseVec) DotDense(d []float64) float64 {
	var s float64
	for k, i := range v.Idx {
		s += v.Val[k] * d[i]
	}
	return s
}

// SqNorm returns the squared Euclidean norm.
func (v SparseVec) SqNorm() float64 {
	var s float64
	for _, x := range v.Val {
		s += x * x
	}
	return s
}

// Norm returns the Euclidean norm.
func (v SparseVec) Norm() float64 { return math.Sqrt(v.SqNorm()) }

// Sparse is a row-major sparse matrix.
type Sparse struct {
	Rows []SparseVec
	Cols int
}

// Dims returns rows and columns.
func (s *Sparse) Dims() (int, int) {
	if s == nil {
		return 0, 0
	}
	return len(s.Rows), s.Cols
}

// Row returns row i.
func (s *Sparse) Row(i int) SparseVec { return s.Rows[i] }

// Dense materializes the matrix.
func (s *Sparse) Dense() *mat.Dense {
	r, c := s.Dims()
	if r == 0 || c == 0 {
		return &mat.Dense{}
	}
	d := mat.NewDense(r, c, nil)
	for i, row := range s.Rows {
		for k, j := range row.Idx {
			d.Set(i, j, row.Val[k])
		}
	}
	return d
}

// SparseFromDense copies the non-zero entries of m.
func SparseFromDense(m mat.Matrix) *Sparse {
	r, c := m.Dims()
	s := &Sparse{Rows: make([]SparseVec, r), Cols: c}
	for i := 0; i < r; i++ {
		var v SparseVec
		for j := 0; j < c; j++ {
			if x := m.At(i, j); x != 0 {
				v.Idx = append(v.Idx, j)
				v.Val = append(v.Val, x)
			}
		}
		s.Rows[i] = v
	}
	return s
}

// sparseFromMap builds a row from column->value, dropping zeros.
func sparseFromMap(m map[int]float64) SparseVec {
	v := SparseVec{Idx: make([]int, 0, len(m)), Val: make([]float64, 0, len(m))}
	for j, x := range m {
		if x != 0 {
			v.Idx = append(v.Idx, j)
		}
	}
	sort.Ints(v.Idx)
	for _, j := range v.Idx {
		v.Val = append(v.Val, m[j])
	}
	return v
}

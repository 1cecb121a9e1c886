package ml

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// PCA centres the columns of x and projects the rows onto the top k
// principal axes, returning an n x k matrix.
func PCA(x mat.Matrix, k int) (*mat.Dense, error) {
	n, d := x.Dims()
	if k < 1 || k > min(n, d) {
		return nil, ErrInvalidK
	}
	var pc stat.PC
	if ok := pc.PrincipalComponents(x, nil); !ok {
		return nil, fmt.Errorf("pca: decomposition failed")
	}
	var vecs mat.Dense
	pc.VectorsTo(&vecs)

	centred := mat.DenseCopyOf(x)
	col := make([]float64, n)
	for j := 0; j < d; j++ {
		mat.Col(col, j, centred)
		m := stat.Mean(col, nil)
		for i := range col {
			col[i] -= m
		}
		centred.SetCol(j, col)
	}
	out := mat.NewDense(n, k, nil)
	out.Mul(centred, vecs.Slice(0, d, 0, k))
	return out, nil
}

package ml

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// KMeans partitions sparse rows into K groups with Lloyd iterations and
// k-means++ seeding. Centroids are dense.
type KMeans struct {
	K       int
	Seed    int64
	MaxIter int
	Tol     float64
	NInit   int

	centroids [][]float64
	labels    []int
	inertia   float64
	iters     int
}

// NewKMeans returns a model with the default iteration settings.
func NewKMeans(k int, seed int64) *KMeans {
	return &KMeans{K: k, Seed: seed, MaxIter: 300, Tol: 1e-4, NInit: 1}
}

// Fit clusters x and returns one label per row. Identical input, K and Seed
// give identical labels.
func (km *KMeans) Fit(x *Sparse) ([]int, error) {
	n, d := x.Dims()
	if km.K < 1 || km.K > n {
		return nil, ErrInvalidK
	}
	maxIter, nInit := km.MaxIter, km.NInit
	if maxIter <= 0 {
		maxIter = 300
	}
	if nInit <= 0 {
		nInit = 1
	}
	sq := make([]float64, n)
	for i := range sq {
		sq[i] = x.Rows[i].SqNorm()
	}
	tol := km.Tol * meanVariance(x)
	rng := rand.New(rand.NewSource(km.Seed))

	best := math.Inf(1)
	for run := 0; run < nInit; run++ {
		cents := seedPlusPlus(x, sq, km.K, d, rng)
		cents, labels, inertia, iters := lloyd(x, sq, cents, maxIter, tol)
		if inertia < best {
			best = inertia
			km.centroids, km.labels, km.inertia, km.iters = cents, labels, inertia, iters
		}
	}
	return append([]int(nil), km.labels...), nil
}

// Predict assigns each row of x to its nearest fitted centroid.
func (km *KMeans) Predict(x *Sparse) ([]int, error) {
	if km.centroids == nil {
		return nil, ErrNotFitted
	}
	_, d := x.Dims()
	if d != len(km.centroids[0]) {
		return nil, ErrInvalidK
	}
	labels := make([]int, len(x.Rows))
	cn := centroidNorms(km.centroids)
	for i, row := range x.Rows {
		labels[i], _ = nearest(row, row.SqNorm(), km.centroids, cn)
	}
	return labels, nil
}

// Centroids returns a copy of the fitted centroids as a K x d matrix.
func (km *KMeans) Centroids() *mat.Dense {
	if km.centroids == nil {
		return nil
	}
	d := mat.NewDense(len(km.centroids), len(km.centroids[0]), nil)
	for i, c := range km.centroids {
		d.SetRow(i, c)
	}
	return d
}

// Inertia is the sum of squared distances to the assigned centroids.
func (km *KMeans) Inertia() float64 { return km.inertia }

// Iterations is the number of Lloyd steps the kept run took.
func (km *KMeans) Iterations() int { return km.iters }

func seedPlusPlus(x *Sparse, sq []float64, k, d int, rng *rand.Rand) [][]float64 {
	n := len(x.Rows)
	cents := make([][]float64, 0, k)
	cents = append(cents, densify(x.Rows[rng.Intn(n)], d))
	dist := make([]float64, n)
	for i := range dist {
		dist[i] = sqDist(x.Rows[i], sq[i], cents[0], floats.Dot(cents[0], cents[0]))
	}
	for len(cents) < k {
		total := floats.Sum(dist)
		pick := 0
		if total <= 0 {
			pick = rng.Intn(n)
		} else {
			r := rng.Float64() * total
			for i, w := range dist {
				r -= w
				if r <= 0 {
					pick = i
					break
				}
				pick = i
			}
		}
		c := densify(x.Rows[pick], d)
		cents = append(cents, c)
		cn := floats.Dot(c, c)
		for i := range dist {
			if dd := sqDist(x.Rows[i], sq[i], c, cn); dd < dist[i] {
				dist[i] = dd
			}
		}
	}
	return cents
}

func lloyd(x *Sparse, sq []float64, cents [][]float64, maxIter int, tol float64) ([][]float64, []int, float64, int) {
	n := len(x.Rows)
	k, d := len(cents), len(cents[0])
	labels := make([]int, n)
	dists := make([]float64, n)
	iters := 0
	for iters < maxIter {
		iters++
		cn := centroidNorms(cents)
		for i, row := range x.Rows {
			labels[i], dists[i] = nearest(row, sq[i], cents, cn)
		}
		next := make([][]float64, k)
		counts := make([]int, k)
		for c := range next {
			next[c] = make([]float64, d)
		}
		for i, row := range x.Rows {
			c := labels[i]
			counts[c]++
			for p, j := range row.Idx {
				next[c][j] += row.Val[p]
			}
		}
		for c := range next {
			if counts[c] == 0 {
				// Re-seed with the point farthest from its centroid.
				far := floats.MaxIdx(dists)
				next[c] = densify(x.Rows[far], d)
				dists[far] = 0
				continue
			}
			floats.Scale(1/float64(counts[c]), next[c])
		}
		var shift float64
		for c := range next {
			dd := floats.Distance(next[c], cents[c], 2)
			shift += dd * dd
		}
		cents = next
		if shift <= tol {
			break
		}
	}
	cn := centroidNorms(cents)
	var inertia float64
	for i, row := range x.Rows {
		labels[i], dists[i] = nearest(row, sq[i], cents, cn)
		inertia += dists[i]
	}
	return cents, labels, inertia, iters
}

func nearest(row SparseVec, sq float64, cents [][]float64, cn []float64) (int, float64) {
	best, bestD := 0, math.Inf(1)
	for c, cent := range cents {
		if d := sqDist(row, sq, cent, cn[c]); d < bestD {
			best, bestD = c, d
		}
	}
	return best, bestD
}

func sqDist(row SparseVec, rowSq float64, cent []float64, centSq float64) float64 {
	d := rowSq - 2*row.DotDense(cent) + centSq
	if d < 0 {
		return 0
	}
	return d
}

func centroidNorms(cents [][]float64) []float64 {
	out := make([]float64, len(cents))
	for i, c := range cents {
		out[i] = floats.Dot(c, c)
	}
	return out
}

func densify(v SparseVec, d int) []float64 {
	out := make([]float64, d)
	for k, j := range v.Idx {
		out[j] = v.Val[k]
	}
	return out
}

// meanVariance is the mean over columns of the per-column population variance.
func meanVariance(x *Sparse) float64 {
	n, d := x.Dims()
	if n == 0 || d == 0 {
		return 0
	}
	sum := make([]float64, d)
	sumSq := make([]float64, d)
	for _, row := range x.Rows {
		for k, j := range row.Idx {
			sum[j] += row.Val[k]
			sumSq[j] += row.Val[k] * row.Val[k]
		}
	}
	var total float64
	for j := 0; j < d; j++ {
		m := sum[j] / float64(n)
		total += sumSq[j]/float64(n) - m*m
	}
	return total / float64(d)
}

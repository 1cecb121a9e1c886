package ml

import "sort"

// CosineSim returns the cosine of the angle between two sparse rows, or 0
// when either is all zeros.
func CosineSim(a, b SparseVec) float64 {
	na, nb := a.Norm(), b.Norm()
	if na == 0 || nb == 0 {
		return 0
	}
	return a.Dot(b) / (na * nb)
}

type scored struct {
	row   int
	score float64
}

// rank scores every row of x against query, skips rows rejected by skip and
// returns the top k by descending score. Equal scores keep row order.
func rank(x *Sparse, query SparseVec, score func(a, b SparseVec) float64, skip func(row int) bool, k int) []scored {
	out := make([]scored, 0, len(x.Rows))
	for i, r := range x.Rows {
		if skip != nil && skip(i) {
			continue
		}
		out = append(out, scored{row: i, score: score(query, r)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].score > out[j].score })
	if k > 0 && len(out) > k {
		out = out[:k]
	}
	return out
}

func dot(a, b SparseVec) float64 { return a.Dot(b) }

package ml

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// Norm selects the per-row normalization applied by TFIDF.
type Norm int

const (
	NormL2 Norm = iota
	NormNone
)

var tokenRe = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Tokenize lowercases s and returns runs of two or more letters, digits or underscores.
func Tokenize(s string) []string {
	return tokenRe.FindAllString(strings.ToLower(s), -1)
}

// TFIDF turns documents into weighted term-frequency rows. The vocabulary and
// IDF weights learned by Fit are reused by every later Transform.
type TFIDF struct {
	StopWords map[string]struct{}
	Norm      Norm

	vocab map[string]int
	terms []string
	idf   []float64
}

// NewTFIDF returns an L2-normalized vectorizer, with English stop words removed when stopWords is set.
func NewTFIDF(stopWords bool) *TFIDF {
	v := &TFIDF{Norm: NormL2}
	if stopWords {
		v.StopWords = EnglishStopWords
	}
	return v
}

func (v *TFIDF) tokens(doc string) []string {
	toks := Tokenize(doc)
	if v.StopWords == nil {
		return toks
	}
	out := toks[:0]
	for _, t := range toks {
		if _, stop := v.StopWords[t]; !stop {
			out = append(out, t)
		}
	}
	return out
}

// Fit learns a sorted vocabulary and smoothed IDF weights ln((1+n)/(1+df))+1.
func (v *TFIDF) Fit(docs []string) error {
	df := map[string]int{}
	for _, d := range docs {
		seen := map[string]struct{}{}
		for _, t := range v.tokens(d) {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			df[t]++
		}
	}
	if len(df) == 0 {
		return ErrEmptyVocabulary
	}
	terms := make([]string, 0, len(df))
	for t := range df {
		terms = append(terms, t)
	}
	sort.Strings(terms)
	n := float64(len(docs))
	v.terms = terms
	v.vocab = make(map[string]int, len(terms))
	v.idf = make([]float64, len(terms))
	for i, t := range terms {
		v.vocab[t] = i
		v.idf[i] = math.Log((1+n)/(1+float64(df[t]))) + 1
	}
	return nil
}

// Transform encodes docs with the fitted vocabulary. Unknown terms are ignored.
func (v *TFIDF) Transform(docs []string) (*Sparse, error) {
	if !v.Fitted() {
		return nil, ErrNotFitted
	}
	out := &Sparse{Rows: make([]SparseVec, len(docs)), Cols: len(v.terms)}
	for i, d := range docs {
		counts := map[int]float64{}
		for _, t := range v.tokens(d) {
			if j, ok := v.vocab[t]; ok {
				counts[j]++
			}
		}
		for j := range counts {
			counts[j] *= v.idf[j]
		}
		row := sparseFromMap(counts)
		if v.Norm == NormL2 {
			if n := row.Norm(); n > 0 {
				for k := range row.Val {
					row.Val[k] /= n
				}
			}
		}
		out.Rows[i] = row
	}
	return out, nil
}

// FitTransform fits on docs and encodes them.
func (v *TFIDF) FitTransform(docs []string) (*Sparse, error) {
	if err := v.Fit(docs); err != nil {
		return nil, err
	}
	return v.Transform(docs)
}

// Fitted reports whether Fit has succeeded.
func (v *TFIDF) Fitted() bool { return v != nil && v.vocab != nil }

// Vocabulary returns the fitted terms in column order.
func (v *TFIDF) Vocabulary() []string {
	return append([]string(nil), v.terms...)
}

// IDF returns the weight of term, or 0 when it is not in the vocabulary.
func (v *TFIDF) IDF(term string) float64 {
	if j, ok := v.vocab[term]; ok {
		return v.idf[j]
	}
	return 0
}

// TopTerms names the n heaviest columns of a dense vector over the vocabulary.
// Ties keep vocabulary order; zero weights are never reported.
func (v *TFIDF) TopTerms(vec []float64, n int) []string {
	if !v.Fitted() || n <= 0 {
		return nil
	}
	idx := make([]int, 0, len(vec))
	for j, x := range vec {
		if j < len(v.terms) && x > 0 {
			idx = append(idx, j)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool { return vec[idx[a]] > vec[idx[b]] })
	if len(idx) > n {
		idx = idx[:n]
	}
	out := make([]string, len(idx))
	for k, j := range idx {
		out[k] = v.terms[j]
	}
	return out
}

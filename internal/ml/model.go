// Package ml holds the feature builders and classic learners used on the
// catalog and on viewing logs: TF-IDF, standard scaling, k-means and PCA.
package ml

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	"github.com/KaramelBytes/flixlens-cli/internal/dataset"
	"github.com/KaramelBytes/flixlens-cli/internal/logging"
)

// Feature kinds stored in a Features bundle.
const (
	FeatureDescription = "description_vec"
	FeatureNumerical   = "numerical"
)

const (
	DefaultSeed       = 42
	DefaultClusters   = 5
	DefaultComponents = 2
	DefaultSimilarN   = 5
)

// Features is the per-call bundle built by PrepareFeatures.
type Features struct {
	DescriptionVec *Sparse
	Numerical      *mat.Dense
}

// Has reports whether the bundle carries the given kind.
func (f *Features) Has(kind string) bool {
	if f == nil {
		return false
	}
	switch kind {
	case FeatureDescription:
		return f.DescriptionVec != nil
	case FeatureNumerical:
		return f.Numerical != nil
	}
	return false
}

// Kinds lists the present kinds.
func (f *Features) Kinds() []string {
	var out []string
	for _, k := range []string{FeatureDescription, FeatureNumerical} {
		if f.Has(k) {
			out = append(out, k)
		}
	}
	return out
}

// Options configures a model session.
type Options struct {
	StopWords bool
	Seed      int64
}

// DefaultOptions removes English stop words and seeds with 42.
func DefaultOptions() Options { return Options{StopWords: true, Seed: DefaultSeed} }

// Model is a catalog session. The vectorizer and scaler keep what they learned
// in PrepareFeatures, and KMeans holds the last clustering.
type Model struct {
	Vectorizer *TFIDF
	Scaler     *StandardScaler
	KMeans     *KMeans
	seed       int64
	log        zerolog.Logger

	// schema of the table last passed to PrepareFeatures
	table *dataset.Table
	caps  dataset.Capabilities
}

// NewModel returns an unfitted session.
func NewModel(opt Options) *Model {
	return &Model{
		Vectorizer: NewTFIDF(opt.StopWords),
		Scaler:     &StandardScaler{},
		seed:       opt.Seed,
		log:        logging.With().Str("component", "ml").Logger(),
	}
}

// Capabilities returns the schema of the table last prepared, or of t when
// the session has not seen it yet.
func (m *Model) Capabilities(t *dataset.Table) dataset.Capabilities {
	if t != nil && t == m.table {
		return m.caps
	}
	return dataset.DetectSchema(t)
}

// PrepareFeatures fits the vectorizer on description and the scaler on
// duration. A table with neither column yields an empty bundle.
func (m *Model) PrepareFeatures(t *dataset.Table) (*Features, error) {
	if t == nil {
		return nil, dataset.ErrNoTable
	}
	m.table, m.caps = t, dataset.DetectSchema(t)
	f := &Features{}
	if m.caps.Has(dataset.ColDescription) {
		c, _ := t.Column(dataset.ColDescription)
		vec, err := m.Vectorizer.FitTransform(c.Strings())
		if err != nil {
			return nil, fmt.Errorf("description features: %w", err)
		}
		f.DescriptionVec = vec
	}
	if m.caps.Has(dataset.ColDuration) && t.Len() > 0 {
		c, _ := t.Column(dataset.ColDuration)
		x := mat.NewDense(c.Len(), 1, nil)
		for i, v := range c.Values {
			x.Set(i, 0, numericOrZero(c.Kind, v))
		}
		num, err := m.Scaler.FitTransform(x)
		if err != nil {
			return nil, fmt.Errorf("numerical features: %w", err)
		}
		f.Numerical = num
	}
	if len(f.Kinds()) == 0 {
		m.log.Debug().Msg("no description or duration column; feature bundle is empty")
	}
	return f, nil
}

func numericOrZero(kind dataset.Kind, v dataset.Value) float64 {
	if v.Null {
		return 0
	}
	if kind == dataset.KindNumeric {
		return v.Num
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
	if err != nil {
		return 0
	}
	return x
}

// ClusterContent runs k-means over description vectors. k <= 0 uses 5.
func (m *Model) ClusterContent(f *Features, k int) ([]int, error) {
	if !f.Has(FeatureDescription) {
		return nil, fmt.Errorf("cluster content: %w: %s", ErrMissingFeature, FeatureDescription)
	}
	if k <= 0 {
		k = DefaultClusters
	}
	km := NewKMeans(k, m.seed)
	labels, err := km.Fit(f.DescriptionVec)
	if err != nil {
		return nil, fmt.Errorf("cluster content: %w", err)
	}
	m.KMeans = km
	m.log.Info().Int("k", k).Int("rows", len(labels)).Msg("content clustered")
	return labels, nil
}

// ClusterKeywords names the n heaviest terms of each fitted centroid.
func (m *Model) ClusterKeywords(n int) ([][]string, error) {
	if m.KMeans == nil || m.KMeans.centroids == nil || !m.Vectorizer.Fitted() {
		return nil, ErrNotFitted
	}
	out := make([][]string, len(m.KMeans.centroids))
	for i, c := range m.KMeans.centroids {
		out[i] = m.Vectorizer.TopTerms(c, n)
	}
	return out, nil
}

// ReduceDimensions projects the dense description vectors onto k principal axes. k <= 0 uses 2.
func (m *Model) ReduceDimensions(f *Features, k int) (*mat.Dense, error) {
	if !f.Has(FeatureDescription) {
		return nil, fmt.Errorf("reduce dimensions: %w: %s", ErrMissingFeature, FeatureDescription)
	}
	if k <= 0 {
		k = DefaultComponents
	}
	out, err := PCA(f.DescriptionVec.Dense(), k)
	if err != nil {
		return nil, fmt.Errorf("reduce dimensions: %w", err)
	}
	return out, nil
}

// SimilarItem is one ranked catalog row.
type SimilarItem struct {
	Title       string  `json:"title" yaml:"title"`
	Description string  `json:"description" yaml:"description"`
	Score       float64 `json:"score" yaml:"score"`
}

// SimilarContent ranks rows by the dot product of their description vectors
// with the first row titled title. The query row is never returned. n <= 0 uses 5.
func (m *Model) SimilarContent(t *dataset.Table, title string, n int) ([]SimilarItem, error) {
	if t == nil {
		return nil, dataset.ErrNoTable
	}
	if err := m.Capabilities(t).Require(dataset.ColDescription, dataset.ColTitle); err != nil {
		return nil, err
	}
	if n <= 0 {
		n = DefaultSimilarN
	}
	titles, _ := t.Column(dataset.ColTitle)
	descs, _ := t.Column(dataset.ColDescription)
	query := -1
	for i, v := range titles.Values {
		if !v.Null && v.Str == title {
			query = i
			break
		}
	}
	if query < 0 {
		return nil, ErrTitleNotFound
	}
	vecs, err := m.Vectorizer.Transform(descs.Strings())
	if err != nil {
		return nil, fmt.Errorf("similar content: %w", err)
	}
	ranked := rank(vecs, vecs.Row(query), dot, func(i int) bool { return i == query }, n)
	out := make([]SimilarItem, len(ranked))
	for i, r := range ranked {
		out[i] = SimilarItem{Title: titles.String(r.row), Description: descs.String(r.row), Score: r.score}
	}
	return out, nil
}

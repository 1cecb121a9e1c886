package ml

import (
	"fmt"
	"sort"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/KaramelBytes/flixlens-cli/internal/dataset"
)

const (
	DefaultPatternClusters = 4
	DefaultBingeGap        = 24 * time.Hour
	topBingedShows         = 5
)

// Weekdays are indexed Monday=0.
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

func weekdayIndex(t time.Time) int { return (int(t.Weekday()) + 6) % 7 }

// ViewingModel is a viewing-log session with its own fitted state.
type ViewingModel struct {
	Vectorizer *TFIDF
	Scaler     *StandardScaler
	KMeans     *KMeans
	// BingeGap is the largest gap between consecutive views that still counts as a binge.
	BingeGap time.Duration
	seed     int64
}

// NewViewingModel returns an unfitted session with a 24h binge gap.
func NewViewingModel(opt Options) *ViewingModel {
	return &ViewingModel{
		Vectorizer: NewTFIDF(opt.StopWords),
		Scaler:     &StandardScaler{},
		BingeGap:   DefaultBingeGap,
		seed:       opt.Seed,
	}
}

// SimilarViewing is one ranked viewing-log row.
type SimilarViewing struct {
	Title string    `json:"title" yaml:"title"`
	Date  time.Time `json:"date" yaml:"date"`
	Score float64   `json:"score" yaml:"score"`
}

// FindSimilarContent ranks log rows by cosine similarity of their title
// vectors to title. Rows titled exactly title are excluded. n <= 0 uses 5.
func (m *ViewingModel) FindSimilarContent(log *dataset.ViewingLog, title string, n int) ([]SimilarViewing, error) {
	if log.Len() == 0 {
		return nil, ErrEmptyLog
	}
	if n <= 0 {
		n = DefaultSimilarN
	}
	titles := log.Titles()
	vecs, err := m.Vectorizer.FitTransform(titles)
	if err != nil {
		return nil, fmt.Errorf("find similar content: %w", err)
	}
	var query SparseVec
	found := false
	for i, t := range titles {
		if t == title {
			query, found = vecs.Row(i), true
			break
		}
	}
	if !found {
		q, err := m.Vectorizer.Transform([]string{title})
		if err != nil {
			return nil, err
		}
		query = q.Row(0)
	}
	if query.NNZ() == 0 {
		return nil, ErrTitleNotFound
	}
	ranked := rank(vecs, query, CosineSim, func(i int) bool { return titles[i] == title }, n)
	out := make([]SimilarViewing, len(ranked))
	for i, r := range ranked {
		e := log.Entries[r.row]
		out[i] = SimilarViewing{Title: e.Title, Date: e.Date, Score: r.score}
	}
	return out, nil
}

// ClusterViewingPatterns clusters rows on standardized {hour, weekday, month}.
// k <= 0 uses 4.
func (m *ViewingModel) ClusterViewingPatterns(log *dataset.ViewingLog, k int) ([]int, error) {
	if log.Len() == 0 {
		return nil, ErrEmptyLog
	}
	if k <= 0 {
		k = DefaultPatternClusters
	}
	x := mat.NewDense(log.Len(), 3, nil)
	for i, e := range log.Entries {
		x.SetRow(i, []float64{float64(e.Date.Hour()), float64(weekdayIndex(e.Date)), float64(e.Date.Month())})
	}
	scaled, err := m.Scaler.FitTransform(x)
	if err != nil {
		return nil, fmt.Errorf("cluster viewing patterns: %w", err)
	}
	km := NewKMeans(k, m.seed)
	labels, err := km.Fit(SparseFromDense(scaled))
	if err != nil {
		return nil, fmt.Errorf("cluster viewing patterns: %w", err)
	}
	m.KMeans = km
	return labels, nil
}

// ViewingPrediction is the most likely hour and weekday with their distributions.
type ViewingPrediction struct {
	MostLikelyHour    int                `json:"most_likely_hour" yaml:"most_likely_hour"`
	MostLikelyDay     string             `json:"most_likely_day" yaml:"most_likely_day"`
	HourProbabilities map[int]float64    `json:"hour_probabilities" yaml:"hour_probabilities"`
	DayProbabilities  map[string]float64 `json:"day_probabilities" yaml:"day_probabilities"`
}

// PredictNextViewingTime reports the empirical hour and weekday
// distributions. Ties go to the lowest hour and the earliest weekday.
func (m *ViewingModel) PredictNextViewingTime(log *dataset.ViewingLog) (*ViewingPrediction, error) {
	if log.Len() == 0 {
		return nil, ErrEmptyLog
	}
	var hours [24]int
	var days [7]int
	for _, e := range log.Entries {
		hours[e.Date.Hour()]++
		days[weekdayIndex(e.Date)]++
	}
	total := float64(log.Len())
	p := &ViewingPrediction{HourProbabilities: map[int]float64{}, DayProbabilities: map[string]float64{}}
	bestH, bestD := 0, 0
	for h, c := range hours {
		if c == 0 {
			continue
		}
		p.HourProbabilities[h] = float64(c) / total
		if c > hours[bestH] {
			bestH = h
		}
	}
	for d, c := range days {
		if c == 0 {
			continue
		}
		p.DayProbabilities[Weekdays[d]] = float64(c) / total
		if c > days[bestD] {
			bestD = d
		}
	}
	p.MostLikelyHour, p.MostLikelyDay = bestH, Weekdays[bestD]
	return p, nil
}

// ShowCount is a title with a count.
type ShowCount struct {
	Title string `json:"title" yaml:"title"`
	Count int    `json:"count" yaml:"count"`
}

// BingeStats summarises binge behaviour.
type BingeStats struct {
	BingeRatio     float64     `json:"binge_ratio" yaml:"binge_ratio"`
	TopBingedShows []ShowCount `json:"top_binged_shows" yaml:"top_binged_shows"`
	// BingedRows counts flagged rows. The key name is historical; it is not a length.
	BingedRows int `json:"average_session_length" yaml:"average_session_length"`
}

// AnalyzeBingePatterns flags each row whose gap to the previous row is at
// most BingeGap. The first row has no predecessor and is never flagged.
func (m *ViewingModel) AnalyzeBingePatterns(log *dataset.ViewingLog) (*BingeStats, error) {
	if log.Len() == 0 {
		return nil, ErrEmptyLog
	}
	gap := m.BingeGap
	if gap <= 0 {
		gap = DefaultBingeGap
	}
	counts := map[string]int{}
	var order []string
	flagged := 0
	for i := 1; i < len(log.Entries); i++ {
		if log.Entries[i].Date.Sub(log.Entries[i-1].Date) > gap {
			continue
		}
		flagged++
		t := log.Entries[i].Title
		if _, ok := counts[t]; !ok {
			order = append(order, t)
		}
		counts[t]++
	}
	shows := make([]ShowCount, len(order))
	for i, t := range order {
		shows[i] = ShowCount{Title: t, Count: counts[t]}
	}
	sort.SliceStable(shows, func(i, j int) bool { return shows[i].Count > shows[j].Count })
	if len(shows) > topBingedShows {
		shows = shows[:topBingedShows]
	}
	return &BingeStats{
		BingeRatio:     float64(flagged) / float64(log.Len()),
		TopBingedShows: shows,
		BingedRows:     flagged,
	}, nil
}

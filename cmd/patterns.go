package cmd

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/flixlens-cli/internal/dataset"
	"github.com/KaramelBytes/flixlens-cli/internal/ml"
)

var (
	patSource   sourceFlags
	patOut      outputFlags
	patK        int
	patBingeGap float64
	patNoKMeans bool
)

// patternCluster is the size and typical time of one viewing cluster.
type patternCluster struct {
	Cluster    int    `json:"cluster" yaml:"cluster"`
	Size       int    `json:"size" yaml:"size"`
	TypicalDay string `json:"typical_day" yaml:"typical_day"`
	MedianHour int    `json:"median_hour" yaml:"median_hour"`
}

type patternsResult struct {
	Entries    int                   `json:"entries" yaml:"entries"`
	Dropped    int                   `json:"dropped_rows" yaml:"dropped_rows"`
	First      time.Time             `json:"first_view" yaml:"first_view"`
	Last       time.Time             `json:"last_view" yaml:"last_view"`
	Binge      *ml.BingeStats        `json:"binge" yaml:"binge"`
	Prediction *ml.ViewingPrediction `json:"prediction" yaml:"prediction"`
	Clusters   []patternCluster      `json:"clusters,omitempty" yaml:"clusters,omitempty"`
}

func (p *patternsResult) Markdown() string {
	var b strings.Builder
	b.WriteString("[VIEWING SUMMARY]\n")
	fmt.Fprintf(&b, "Entries: %d\n", p.Entries)
	if p.Dropped > 0 {
		fmt.Fprintf(&b, "Dropped rows (unparseable date): %d\n", p.Dropped)
	}
	fmt.Fprintf(&b, "Span: %s to %s\n", stamp(p.First), stamp(p.Last))

	b.WriteString("\n[BINGE PATTERNS]\n")
	fmt.Fprintf(&b, "Binge ratio: %.2f\n", p.Binge.BingeRatio)
	fmt.Fprintf(&b, "Binged rows: %d\n", p.Binge.BingedRows)
	for i, s := range p.Binge.TopBingedShows {
		fmt.Fprintf(&b, "%d. %s (%d)\n", i+1, s.Title, s.Count)
	}

	b.WriteString("\n[NEXT VIEWING]\n")
	fmt.Fprintf(&b, "Most likely hour: %02d:00 (%.0f%%)\n", p.Prediction.MostLikelyHour, 100*p.Prediction.HourProbabilities[p.Prediction.MostLikelyHour])
	fmt.Fprintf(&b, "Most likely day: %s (%.0f%%)\n", p.Prediction.MostLikelyDay, 100*p.Prediction.DayProbabilities[p.Prediction.MostLikelyDay])

	if len(p.Clusters) > 0 {
		b.WriteString("\n[VIEWING CLUSTERS]\n")
		for _, c := range p.Clusters {
			fmt.Fprintf(&b, "- cluster %d: %d views, mostly %s around %02d:00\n", c.Cluster, c.Size, c.TypicalDay, c.MedianHour)
		}
	}
	return b.String()
}

var patternsCmd = &cobra.Command{
	Use:   "patterns <file>",
	Short: "Binge, time-of-day and clustering heuristics over a viewing-history export",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		log, err := loadViewingLog(path, &patSource)
		if err != nil {
			return err
		}
		if log.Len() == 0 {
			return ml.ErrEmptyLog
		}
		c := settings()
		gap := patBingeGap
		if gap <= 0 {
			gap = c.BingeGapHours
		}
		r, err := patOut.startRun("patterns", path)
		if err != nil {
			return err
		}
		if r != nil {
			r.Params["binge_gap_hours"] = strconv.FormatFloat(gap, 'f', -1, 64)
		}
		m := ml.NewViewingModel(modelOptions())
		m.BingeGap = time.Duration(gap * float64(time.Hour))

		res := &patternsResult{
			Entries: log.Len(),
			Dropped: log.Dropped,
			First:   log.Entries[0].Date,
			Last:    log.Entries[log.Len()-1].Date,
		}
		if res.Binge, err = m.AnalyzeBingePatterns(log); err != nil {
			return err
		}
		if res.Prediction, err = m.PredictNextViewingTime(log); err != nil {
			return err
		}
		if !patNoKMeans {
			k := patK
			if k <= 0 {
				k = c.PatternClusters
			}
			if k > log.Len() {
				k = log.Len()
			}
			labels, err := m.ClusterViewingPatterns(log, k)
			if err != nil {
				return err
			}
			res.Clusters = summarisePatternClusters(log, labels, k)
		}
		if err := patOut.emit(cmd, r, "patterns", res, res.Markdown); err != nil {
			return err
		}
		return finishRun(cmd, r)
	},
}

// summarisePatternClusters reports, per cluster, its size, modal weekday and median hour.
func summarisePatternClusters(log *dataset.ViewingLog, labels []int, k int) []patternCluster {
	hours := make([][]int, k)
	days := make([][7]int, k)
	for i, l := range labels {
		d := log.Entries[i].Date
		hours[l] = append(hours[l], d.Hour())
		days[l][(int(d.Weekday())+6)%7]++
	}
	out := make([]patternCluster, k)
	for c := 0; c < k; c++ {
		out[c] = patternCluster{Cluster: c, Size: len(hours[c])}
		if len(hours[c]) == 0 {
			continue
		}
		sort.Ints(hours[c])
		out[c].MedianHour = hours[c][len(hours[c])/2]
		best := 0
		for d, n := range days[c] {
			if n > days[c][best] {
				best = d
			}
		}
		out[c].TypicalDay = ml.Weekdays[best]
	}
	return out
}

func init() {
	rootCmd.AddCommand(patternsCmd)
	patSource.register(patternsCmd)
	patOut.register(patternsCmd)
	patternsCmd.Flags().IntVarP(&patK, "clusters", "k", 0, "number of viewing-pattern clusters (default from config)")
	patternsCmd.Flags().Float64Var(&patBingeGap, "binge-gap", 0, "largest gap in hours between views that still counts as a binge (default from config)")
	patternsCmd.Flags().BoolVar(&patNoKMeans, "no-clusters", false, "skip k-means clustering of viewing times")
}

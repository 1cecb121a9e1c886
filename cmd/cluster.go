package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/flixlens-cli/internal/chart"
	"github.com/KaramelBytes/flixlens-cli/internal/dataset"
	"github.com/KaramelBytes/flixlens-cli/internal/ml"
)

var (
	clSource     sourceFlags
	clOut        outputFlags
	clK          int
	clKeywords   int
	clComponents int
	clChart      bool
	clChartDir   string
)

// clusterAssignment is one title and its cluster.
type clusterAssignment struct {
	Title   string `json:"title" yaml:"title"`
	Cluster int    `json:"cluster" yaml:"cluster"`
}

// clusterGroup summarises one cluster.
type clusterGroup struct {
	Cluster  int      `json:"cluster" yaml:"cluster"`
	Size     int      `json:"size" yaml:"size"`
	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
}

type clusterResult struct {
	K           int                 `json:"k" yaml:"k"`
	Inertia     float64             `json:"inertia" yaml:"inertia"`
	Iterations  int                 `json:"iterations" yaml:"iterations"`
	Groups      []clusterGroup      `json:"clusters" yaml:"clusters"`
	Assignments []clusterAssignment `json:"assignments" yaml:"assignments"`
}

func (c *clusterResult) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[CLUSTERS] k=%d inertia=%.4f iterations=%d\n", c.K, c.Inertia, c.Iterations)
	for _, g := range c.Groups {
		fmt.Fprintf(&b, "- cluster %d: %d titles", g.Cluster, g.Size)
		if len(g.Keywords) > 0 {
			fmt.Fprintf(&b, " [%s]", strings.Join(g.Keywords, ", "))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n[ASSIGNMENTS]\n")
	for _, a := range c.Assignments {
		fmt.Fprintf(&b, "%d\t%s\n", a.Cluster, a.Title)
	}
	return b.String()
}

var clusterCmd = &cobra.Command{
	Use:   "cluster <file>",
	Short: "Group catalog titles by description with TF-IDF and k-means",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		t, err := loadCatalog(path, &clSource)
		if err != nil {
			return err
		}
		c := settings()
		k := clK
		if k <= 0 {
			k = c.Clusters
		}
		r, err := clOut.startRun("cluster", path)
		if err != nil {
			return err
		}
		if r != nil {
			r.Params["k"] = strconv.Itoa(k)
		}
		m := ml.NewModel(modelOptions())
		f, err := m.PrepareFeatures(t)
		if err != nil {
			return err
		}
		labels, err := m.ClusterContent(f, k)
		if err != nil {
			return err
		}
		res := &clusterResult{K: k, Inertia: m.KMeans.Inertia(), Iterations: m.KMeans.Iterations()}
		var kw [][]string
		if clKeywords > 0 {
			if kw, err = m.ClusterKeywords(clKeywords); err != nil {
				return err
			}
		}
		res.Groups = make([]clusterGroup, k)
		for i := range res.Groups {
			res.Groups[i].Cluster = i
			if kw != nil {
				res.Groups[i].Keywords = kw[i]
			}
		}
		titles, _ := t.Column(dataset.ColTitle)
		for i, l := range labels {
			res.Groups[l].Size++
			name := fmt.Sprintf("row %d", i+1)
			if titles != nil && titles.String(i) != "" {
				name = titles.String(i)
			}
			res.Assignments = append(res.Assignments, clusterAssignment{Title: name, Cluster: l})
		}

		if clChart || clChartDir != "" {
			comps := clComponents
			if comps <= 0 {
				comps = c.Components
			}
			if comps < 2 {
				comps = 2
			}
			coords, err := m.ReduceDimensions(f, comps)
			if err != nil {
				return err
			}
			pl, err := chart.Scatter(coords, labels)
			if err != nil {
				return err
			}
			if err := saveChart(cmd, r, pl, chartPath(r, clChartDir, "clusters.png"), chartSize()); err != nil {
				return err
			}
		}
		if err := clOut.emit(cmd, r, "clusters", res, res.Markdown); err != nil {
			return err
		}
		return finishRun(cmd, r)
	},
}

func init() {
	rootCmd.AddCommand(clusterCmd)
	clSource.register(clusterCmd)
	clOut.register(clusterCmd)
	clusterCmd.Flags().IntVarP(&clK, "clusters", "k", 0, "number of clusters (default from config)")
	clusterCmd.Flags().IntVar(&clKeywords, "keywords", 5, "top terms to report per cluster (0 disables)")
	clusterCmd.Flags().IntVar(&clComponents, "components", 0, "PCA components for the scatter chart (default from config)")
	clusterCmd.Flags().BoolVar(&clChart, "chart", false, "draw a PCA scatter of the clusters into charts_dir")
	clusterCmd.Flags().StringVar(&clChartDir, "chart-dir", "", "directory for the scatter PNG (implies --chart)")
}

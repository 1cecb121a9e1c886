package cmd

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"gonum.org/v1/plot"

	"github.com/KaramelBytes/flixlens-cli/internal/analysis"
	"github.com/KaramelBytes/flixlens-cli/internal/chart"
	"github.com/KaramelBytes/flixlens-cli/internal/dataset"
	"github.com/KaramelBytes/flixlens-cli/internal/logging"
	"github.com/KaramelBytes/flixlens-cli/internal/run"
)

var (
	anaSource   sourceFlags
	anaOut      outputFlags
	anaTopN     int
	anaChartDir string
	anaCharts   bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Summarise a catalog: genres, yearly additions and durations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		t, err := loadCatalog(path, &anaSource)
		if err != nil {
			return err
		}
		topN := anaTopN
		if topN <= 0 {
			topN = settings().TopN
		}
		r, err := anaOut.startRun("analyze", path)
		if err != nil {
			return err
		}
		if r != nil {
			r.Params["top_n"] = strconv.Itoa(topN)
		}
		rep, err := buildReport(t, topN)
		if err != nil {
			return err
		}
		if anaCharts || anaChartDir != "" || r != nil {
			if err := drawReportCharts(cmd, r, anaChartDir, rep, topN); err != nil {
				return err
			}
		}
		if err := anaOut.emit(cmd, r, "analysis", rep, rep.Markdown); err != nil {
			return err
		}
		return finishRun(cmd, r)
	},
}

func buildReport(t *dataset.Table, topN int) (*analysis.Report, error) {
	a, err := analysis.New(t)
	if err != nil {
		return nil, err
	}
	logging.Debug().Str("table", t.Name).Interface("columns", a.Capabilities().Optional()).Msg("schema detected")
	return a.BuildReport(analysis.ReportOptions{TopN: topN})
}

// drawReportCharts renders the genre and yearly charts that have data.
func drawReportCharts(cmd *cobra.Command, r *run.Run, dir string, rep *analysis.Report, topN int) error {
	size := chartSize()
	if len(rep.Genres) > 0 {
		pl, err := chart.GenreBar(rep.Genres, topN)
		if err != nil {
			return err
		}
		if err := saveChart(cmd, r, pl, chartPath(r, dir, "genres.png"), size); err != nil {
			return err
		}
	}
	if len(rep.Years) > 0 {
		pl, err := chart.YearlyLine(rep.Years)
		if err != nil {
			return err
		}
		if err := saveChart(cmd, r, pl, chartPath(r, dir, "yearly.png"), size); err != nil {
			return err
		}
	}
	return nil
}

func saveChart(cmd *cobra.Command, r *run.Run, pl *plot.Plot, path string, size chart.Size) error {
	if err := chart.Save(pl, path, size); err != nil {
		return err
	}
	if r != nil {
		r.Record(filepath.Base(path), "chart")
	}
	logging.Debug().Str("path", path).Msg("chart saved")
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Saved chart to %s\n", path)
	return nil
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	anaSource.register(analyzeCmd)
	anaOut.register(analyzeCmd)
	analyzeCmd.Flags().IntVar(&anaTopN, "top-n", 0, "number of genres to report (default from config)")
	analyzeCmd.Flags().BoolVar(&anaCharts, "charts", false, "draw genre and yearly charts into charts_dir")
	analyzeCmd.Flags().StringVar(&anaChartDir, "chart-dir", "", "directory for chart PNGs (implies --charts)")
}

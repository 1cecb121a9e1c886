package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/flixlens-cli/internal/ml"
)

var (
	simSource  sourceFlags
	simOut     outputFlags
	simN       int
	simViewing bool
)

var similarCmd = &cobra.Command{
	Use:   "similar <file> <title>",
	Short: "Find titles whose descriptions (or, with --viewing, titles) are most alike",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, title := args[0], args[1]
		n := simN
		if n <= 0 {
			n = settings().SimilarN
		}
		r, err := simOut.startRun("similar", path)
		if err != nil {
			return err
		}
		if r != nil {
			r.Params["title"] = title
			r.Params["n"] = strconv.Itoa(n)
		}
		var result any
		var md func() string
		if simViewing {
			log, err := loadViewingLog(path, &simSource)
			if err != nil {
				return err
			}
			items, err := ml.NewViewingModel(modelOptions()).FindSimilarContent(log, title, n)
			if err != nil {
				return err
			}
			result, md = items, func() string { return similarViewingMarkdown(title, items) }
		} else {
			t, err := loadCatalog(path, &simSource)
			if err != nil {
				return err
			}
			m := ml.NewModel(modelOptions())
			if _, err := m.PrepareFeatures(t); err != nil {
				return err
			}
			items, err := m.SimilarContent(t, title, n)
			if err != nil {
				return err
			}
			result, md = items, func() string { return similarMarkdown(title, items) }
		}
		if err := simOut.emit(cmd, r, "similar", result, md); err != nil {
			return err
		}
		return finishRun(cmd, r)
	},
}

func similarMarkdown(title string, items []ml.SimilarItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[SIMILAR TO] %s\n", title)
	if len(items) == 0 {
		b.WriteString("(no other titles)\n")
	}
	for i, it := range items {
		fmt.Fprintf(&b, "%d. %s (%.3f)\n", i+1, it.Title, it.Score)
		if d := strings.TrimSpace(it.Description); d != "" {
			fmt.Fprintf(&b, "   %s\n", d)
		}
	}
	return b.String()
}

func similarViewingMarkdown(title string, items []ml.SimilarViewing) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[SIMILAR VIEWS] %s\n", title)
	if len(items) == 0 {
		b.WriteString("(no other titles)\n")
	}
	for i, it := range items {
		fmt.Fprintf(&b, "%d. %s, watched %s (%.3f)\n", i+1, it.Title, stamp(it.Date), it.Score)
	}
	return b.String()
}

func init() {
	rootCmd.AddCommand(similarCmd)
	simSource.register(similarCmd)
	simOut.register(similarCmd)
	similarCmd.Flags().IntVarP(&simN, "count", "n", 0, "number of results (default from config)")
	similarCmd.Flags().BoolVar(&simViewing, "viewing", false, "treat <file> as a Title/Date viewing-history export")
}

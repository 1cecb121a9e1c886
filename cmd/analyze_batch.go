package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/flixlens-cli/internal/logging"
	"github.com/KaramelBytes/flixlens-cli/internal/utils"
)

var (
	abSource    sourceFlags
	abFormat    string
	abOutputDir string
	abTopN      int
	abQuiet     bool
	abKeepGoing bool
)

var analyzeBatchCmd = &cobra.Command{
	Use:   "analyze-batch <files...>",
	Short: "Analyze multiple catalog files (globs allowed) with progress",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files := expandInputs(args)
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}
		topN := abTopN
		if topN <= 0 {
			topN = settings().TopN
		}
		out := cmd.OutOrStdout()
		of := outputFlags{format: abFormat}
		var failed []string
		total := len(files)
		for i, path := range files {
			if !abQuiet {
				fmt.Fprintf(out, "[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			}
			t, err := loadCatalog(path, &abSource)
			if err == nil {
				var b []byte
				rep, rerr := buildReport(t, topN)
				if rerr == nil {
					b, rerr = render(abFormat, rep, rep.Markdown)
				}
				if rerr == nil {
					rerr = writeBatchResult(cmd, path, of.ext(), b)
				}
				err = rerr
			}
			if err != nil {
				if !abKeepGoing {
					return err
				}
				logging.Warn().Err(err).Str("file", path).Msg("analysis failed")
				failed = append(failed, filepath.Base(path))
			}
		}
		if len(failed) > 0 {
			return fmt.Errorf("%d of %d files failed: %s", len(failed), total, strings.Join(failed, ", "))
		}
		return nil
	},
}

// expandInputs resolves globs and literal paths, dropping duplicates, in sorted order.
func expandInputs(args []string) []string {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			// treat as literal path if exists
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files
}

func writeBatchResult(cmd *cobra.Command, path, ext string, b []byte) error {
	out := cmd.OutOrStdout()
	if abOutputDir == "" {
		if !abQuiet {
			fmt.Fprintln(out, string(b))
		}
		return nil
	}
	if err := utils.EnsureDir(abOutputDir); err != nil {
		return err
	}
	base := filepath.Base(path)
	safe := strings.TrimSuffix(base, filepath.Ext(base))
	outFile := filepath.Join(abOutputDir, safe+".summary"+ext)
	if _, statErr := os.Stat(outFile); statErr == nil {
		idx := 2
		for {
			cand := filepath.Join(abOutputDir, fmt.Sprintf("%s__%d.summary%s", safe, idx, ext))
			if _, err := os.Stat(cand); errors.Is(err, os.ErrNotExist) {
				if !abQuiet {
					fmt.Fprintf(out, "⚠ Detected existing summary, writing to %s to avoid overwrite.\n", filepath.Base(cand))
				}
				outFile = cand
				break
			}
			idx++
		}
	}
	if err := utils.SafeWriteFile(outFile, b); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	if !abQuiet {
		fmt.Fprintf(out, "✓ Wrote analysis to %s\n", outFile)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(analyzeBatchCmd)
	abSource.register(analyzeBatchCmd)
	analyzeBatchCmd.Flags().StringVarP(&abFormat, "format", "f", "markdown", "output format: markdown | json | yaml")
	analyzeBatchCmd.Flags().StringVar(&abOutputDir, "output-dir", "", "write one <name>.summary file per input into this directory")
	analyzeBatchCmd.Flags().IntVar(&abTopN, "top-n", 0, "number of genres to report (default from config)")
	analyzeBatchCmd.Flags().BoolVar(&abQuiet, "quiet", false, "suppress progress and non-essential output")
	analyzeBatchCmd.Flags().BoolVar(&abKeepGoing, "keep-going", false, "continue past files that fail to load")
}

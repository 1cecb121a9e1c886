package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/flixlens-cli/internal/chart"
	"github.com/KaramelBytes/flixlens-cli/internal/dataset"
	"github.com/KaramelBytes/flixlens-cli/internal/ml"
	"github.com/KaramelBytes/flixlens-cli/internal/run"
	"github.com/KaramelBytes/flixlens-cli/internal/utils"
)

// sourceFlags are the loader flags shared by every command that reads a file.
type sourceFlags struct {
	delimiter  string
	sheetName  string
	sheetIndex int
	maxRows    int
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' | '|' (sniffed from extension if omitted)")
	cmd.Flags().StringVar(&f.sheetName, "sheet-name", "", "XLSX: sheet name to load")
	cmd.Flags().IntVar(&f.sheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
	cmd.Flags().IntVar(&f.maxRows, "max-rows", -1, "maximum rows to load (0 = unlimited, default from config)")
}

func (f *sourceFlags) options() (dataset.Options, error) {
	opt := dataset.DefaultOptions()
	d, err := dataset.ParseDelimiter(f.delimiter)
	if err != nil {
		return opt, fmt.Errorf("unsupported --delimiter: %s", f.delimiter)
	}
	opt.Delimiter = d
	opt.SheetName = f.sheetName
	opt.SheetIndex = f.sheetIndex
	opt.MaxRows = settings().MaxRows
	if f.maxRows >= 0 {
		opt.MaxRows = f.maxRows
	}
	return opt, nil
}

// loadCatalog loads and cleans a catalog file.
func loadCatalog(path string, f *sourceFlags) (*dataset.Table, error) {
	opt, err := f.options()
	if err != nil {
		return nil, err
	}
	t, err := dataset.Load(path, opt)
	if err != nil {
		return nil, err
	}
	c := settings()
	return dataset.Preprocess(t, dataset.PreprocessOptions{
		ParseDuration: c.ParseDuration,
		DurationFill:  c.DurationFill,
		RatingFill:    c.RatingFill,
	}), nil
}

// loadViewingLog loads a Title/Date viewing-history export.
func loadViewingLog(path string, f *sourceFlags) (*dataset.ViewingLog, error) {
	opt, err := f.options()
	if err != nil {
		return nil, err
	}
	t, err := dataset.Load(path, opt)
	if err != nil {
		return nil, err
	}
	return dataset.NewViewingLog(t)
}

func modelOptions() ml.Options {
	c := settings()
	return ml.Options{StopWords: c.StopWords != "none", Seed: c.Seed}
}

func chartSize() chart.Size {
	c := settings()
	return chart.SizeCM(c.ChartWidthCM, c.ChartHeightCM)
}

// outputFlags select the rendering and destination of a command result.
type outputFlags struct {
	format string
	output string
	save   bool
}

func (o *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.format, "format", "f", "markdown", "output format: markdown | json | yaml")
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "optional path to write the result")
	cmd.Flags().BoolVar(&o.save, "save", false, "record the result and charts as a saved run")
}

func (o *outputFlags) ext() string {
	switch strings.ToLower(o.format) {
	case "json":
		return ".json"
	case "yaml", "yml":
		return ".yaml"
	}
	return ".md"
}

// render encodes v in the selected format; md renders the Markdown form.
func render(format string, v any, md func() string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "json":
		b, err := utils.PrettyJSON(v)
		if err != nil {
			return nil, err
		}
		return append(b, '\n'), nil
	case "yaml", "yml":
		b, err := yaml.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("marshal yaml: %w", err)
		}
		return b, nil
	case "markdown", "md", "":
		return []byte(md()), nil
	}
	return nil, fmt.Errorf("unsupported --format: %s (use markdown, json or yaml)", format)
}

// emit writes the rendered result to --output or stdout and into the run when saving.
func (o *outputFlags) emit(cmd *cobra.Command, r *run.Run, name string, v any, md func() string) error {
	b, err := render(o.format, v, md)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if o.output != "" {
		if err := utils.EnsureDir(filepath.Dir(o.output)); err != nil {
			return err
		}
		if err := utils.SafeWriteFile(o.output, b); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Fprintf(out, "✓ Wrote %s to %s\n", name, o.output)
	} else {
		fmt.Fprint(out, string(b))
		if len(b) > 0 && b[len(b)-1] != '\n' {
			fmt.Fprintln(out)
		}
	}
	if r != nil {
		if _, err := r.WriteArtifact(name+o.ext(), name, b); err != nil {
			return err
		}
	}
	return nil
}

func runsDir() (string, error) {
	if d := settings().RunsDir; d != "" {
		return d, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".flixlens", "runs"), nil
}

// startRun returns a new run when --save is set, otherwise nil.
func (o *outputFlags) startRun(command, source string) (*run.Run, error) {
	if !o.save {
		return nil, nil
	}
	dir, err := runsDir()
	if err != nil {
		return nil, err
	}
	return run.New(dir, command, source), nil
}

// finishRun persists the manifest and reports where it went.
func finishRun(cmd *cobra.Command, r *run.Run) error {
	if r == nil {
		return nil
	}
	if err := r.Save(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Saved run %s (%s)\n", r.ID, r.RootDir())
	return nil
}

// chartPath picks where a chart goes: the run directory when saving,
// otherwise dir, then charts_dir from config, then ./charts.
func chartPath(r *run.Run, dir, name string) string {
	if r != nil {
		return r.Path(name)
	}
	if dir == "" {
		dir = settings().ChartsDir
	}
	if dir == "" {
		dir = "charts"
	}
	return filepath.Join(dir, name)
}

func stamp(t time.Time) string { return t.Format("2006-01-02 15:04") }

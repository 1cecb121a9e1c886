package cmd

import (
	"fmt"
	"os"

	cfgpkg "github.com/KaramelBytes/flixlens-cli/internal/config"
	"github.com/KaramelBytes/flixlens-cli/internal/logging"
	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	debug     bool
	logFormat string

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "flixlens",
	Short: "flixlens: explore a streaming catalog and your viewing history",
	Long: `flixlens loads a Netflix-style catalog (CSV, TSV or XLSX) or a viewing-history export,
summarises it, draws charts, and runs TF-IDF similarity, k-means clustering, PCA and
simple viewing-time heuristics over it.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.flixlens/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "diagnostic log format: console | json (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: read paths fall back to defaults, config set reloads and fails
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = nil
	}
	cfg = c

	s := settings()
	lc := logging.DefaultConfig()
	lc.Level = s.LogLevel
	lc.Format = s.LogFormat
	if debug {
		lc.Level = "debug"
	}
	if logFormat != "" {
		lc.Format = logFormat
	}
	logging.Init(lc)
	logging.Debug().Str("config", cfgFile).Msg("configuration loaded")
}

// defaultConfig mirrors the built-in defaults when no config can be read.
func defaultConfig() *cfgpkg.Global {
	return &cfgpkg.Global{
		TopN: 10, Clusters: 5, PatternClusters: 4, Components: 2, SimilarN: 5, Seed: 42,
		StopWords: "english", BingeGapHours: 24, RatingFill: "Not Rated", ParseDuration: true,
		LogLevel: "warn", LogFormat: "console", ChartWidthCM: 16, ChartHeightCM: 9,
	}
}

// settings returns the loaded configuration, or the defaults when loading failed.
// The defaults are never stored in cfg.
func settings() *cfgpkg.Global {
	if cfg == nil {
		return defaultConfig()
	}
	return cfg
}

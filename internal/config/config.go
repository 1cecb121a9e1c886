package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	TopN            int    `mapstructure:"top_n" yaml:"top_n" validate:"gte=1"`
	Clusters        int    `mapstructure:"clusters" yaml:"clusters" validate:"gte=1"`
	PatternClusters int    `mapstructure:"pattern_clusters" yaml:"pattern_clusters" validate:"gte=1"`
	Components      int    `mapstructure:"components" yaml:"components" validate:"gte=1"`
	SimilarN        int    `mapstructure:"similar_n" yaml:"similar_n" validate:"gte=1"`
	Seed            int64  `mapstructure:"seed" yaml:"seed"`
	StopWords       string `mapstructure:"stop_words" yaml:"stop_words" validate:"oneof=english none"`

	// Viewing-log heuristics
	BingeGapHours float64 `mapstructure:"binge_gap_hours" yaml:"binge_gap_hours" validate:"gt=0"`

	// Loading and cleaning
	DurationFill  float64 `mapstructure:"duration_fill" yaml:"duration_fill"`
	RatingFill    string  `mapstructure:"rating_fill" yaml:"rating_fill" validate:"required"`
	ParseDuration bool    `mapstructure:"parse_duration" yaml:"parse_duration"`
	MaxRows       int     `mapstructure:"max_rows" yaml:"max_rows" validate:"gte=0"`

	LogLevel  string `mapstructure:"log_level" yaml:"log_level" validate:"oneof=trace debug info warn warning error fatal panic disabled off"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format" validate:"oneof=console json"`

	// Output locations
	ChartsDir     string  `mapstructure:"charts_dir" yaml:"charts_dir"`
	RunsDir       string  `mapstructure:"runs_dir" yaml:"runs_dir"`
	ChartWidthCM  float64 `mapstructure:"chart_width_cm" yaml:"chart_width_cm" validate:"gt=0"`
	ChartHeightCM float64 `mapstructure:"chart_height_cm" yaml:"chart_height_cm" validate:"gt=0"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// report yaml key names instead of Go field names
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Validate checks value ranges and enumerations.
func (c *Global) Validate() error {
	err := getValidator().Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		if fe.Param() != "" {
			msgs[i] = fmt.Sprintf("%s must satisfy %s=%s (got %v)", fe.Field(), fe.Tag(), fe.Param(), fe.Value())
		} else {
			msgs[i] = fmt.Sprintf("%s is %s", fe.Field(), fe.Tag())
		}
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func defaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".flixlens"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.flixlens/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := defaultDir()
		if err != nil {
			return err
		}
		path = filepath.Join(dir, "config.yaml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("top_n", 10)
	v.SetDefault("clusters", 5)
	v.SetDefault("pattern_clusters", 4)
	v.SetDefault("components", 2)
	v.SetDefault("similar_n", 5)
	v.SetDefault("seed", 42)
	v.SetDefault("stop_words", "english")
	v.SetDefault("binge_gap_hours", 24.0)
	v.SetDefault("duration_fill", 0.0)
	v.SetDefault("rating_fill", "Not Rated")
	v.SetDefault("parse_duration", true)
	v.SetDefault("max_rows", 0)
	v.SetDefault("log_level", "warn")
	v.SetDefault("log_format", "console")
	v.SetDefault("charts_dir", "")
	v.SetDefault("runs_dir", "")
	v.SetDefault("chart_width_cm", 16.0)
	v.SetDefault("chart_height_cm", 9.0)
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("FLIXLENS")
	v.AutomaticEnv()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := defaultDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.RunsDir == "" {
		dir, err := defaultDir()
		if err != nil {
			return nil, err
		}
		c.RunsDir = filepath.Join(dir, "runs")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Set parses val into the field named key and validates the result. The
// config is unchanged when an error is returned.
func (c *Global) Set(key, val string) error {
	next := *c
	var err error
	switch key {
	case "top_n":
		next.TopN, err = strconv.Atoi(val)
	case "clusters":
		next.Clusters, err = strconv.Atoi(val)
	case "pattern_clusters":
		next.PatternClusters, err = strconv.Atoi(val)
	case "components":
		next.Components, err = strconv.Atoi(val)
	case "similar_n":
		next.SimilarN, err = strconv.Atoi(val)
	case "max_rows":
		next.MaxRows, err = strconv.Atoi(val)
	case "seed":
		next.Seed, err = strconv.ParseInt(val, 10, 64)
	case "binge_gap_hours":
		next.BingeGapHours, err = strconv.ParseFloat(val, 64)
	case "duration_fill":
		next.DurationFill, err = strconv.ParseFloat(val, 64)
	case "chart_width_cm":
		next.ChartWidthCM, err = strconv.ParseFloat(val, 64)
	case "chart_height_cm":
		next.ChartHeightCM, err = strconv.ParseFloat(val, 64)
	case "parse_duration":
		next.ParseDuration, err = strconv.ParseBool(val)
	case "rating_fill":
		next.RatingFill = val
	case "stop_words":
		next.StopWords = strings.ToLower(val)
	case "log_level":
		next.LogLevel = strings.ToLower(val)
	case "log_format":
		next.LogFormat = strings.ToLower(val)
	case "charts_dir":
		next.ChartsDir = val
	case "runs_dir":
		next.RunsDir = val
	default:
		return fmt.Errorf("unknown key: %s (known: %s)", key, strings.Join(Keys(), ", "))
	}
	if err != nil {
		return fmt.Errorf("invalid value for %s: %q", key, val)
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

// Keys lists every settable key in alphabetical order.
func Keys() []string {
	keys := []string{
		"top_n", "clusters", "pattern_clusters", "components", "similar_n", "seed", "stop_words",
		"binge_gap_hours", "duration_fill", "rating_fill", "parse_duration", "max_rows",
		"log_level", "log_format", "charts_dir", "runs_dir", "chart_width_cm", "chart_height_cm",
	}
	sort.Strings(keys)
	return keys
}

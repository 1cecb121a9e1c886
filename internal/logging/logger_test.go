package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"INFO":    zerolog.InfoLevel,
		"warning": zerolog.WarnLevel,
		" error ": zerolog.ErrorLevel,
		"off":     zerolog.Disabled,
		"bogus":   zerolog.WarnLevel,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestInitJSONRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "warn", Format: "json", Output: &buf})
	defer Init(DefaultConfig())

	Info().Msg("hidden")
	Warn().Str("column", "listed_in").Msg("No genre information available")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info message should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, `"column":"listed_in"`) {
		t.Fatalf("expected structured field in json output, got: %s", out)
	}
}

func TestWithCarriesFieldsOfReplacedLogger(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf).Level(zerolog.InfoLevel))
	defer Init(DefaultConfig())

	l := With().Str("component", "ml").Logger()
	l.Info().Int("k", 3).Msg("content clustered")
	Debug().Msg("hidden")

	out := buf.String()
	if !strings.Contains(out, `"component":"ml"`) || !strings.Contains(out, `"k":3`) {
		t.Fatalf("expected component field, got: %s", out)
	}
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug should be filtered by the replaced logger: %s", out)
	}
}

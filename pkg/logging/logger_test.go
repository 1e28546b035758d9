package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Level != LevelInfo {
		t.Errorf("Expected default level to be Info, got %s", cfg.Level)
	}
	if cfg.Pretty {
		t.Error("Expected default pretty to be false")
	}
	if cfg.Output == nil {
		t.Error("Expected default output to be set")
	}
}

func TestSetup_WritesAtLevel(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	buf := &bytes.Buffer{}
	logger := Setup(Config{Level: LevelWarn, Output: buf})

	logger.Info().Msg("hidden info")
	logger.Warn().Msg("visible warn")

	out := buf.String()
	if strings.Contains(out, "hidden info") {
		t.Errorf("info message should be filtered at warn level, got %s", out)
	}
	if !strings.Contains(out, "visible warn") {
		t.Errorf("expected warn message in output, got %s", out)
	}
}

func TestSetup_Disabled(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	buf := &bytes.Buffer{}
	logger := Setup(Config{Level: LevelDisabled, Output: buf})
	logger.Error().Msg("nothing")

	if buf.Len() != 0 {
		t.Errorf("expected no output when disabled, got %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input LogLevel
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
		{"bogus", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestLevelFor(t *testing.T) {
	if got := LevelFor(true, "error"); got != LevelDebug {
		t.Errorf("verbose should force debug, got %s", got)
	}
	if got := LevelFor(false, ""); got != LevelInfo {
		t.Errorf("empty level should default to info, got %s", got)
	}
	if got := LevelFor(false, "warn"); got != LevelWarn {
		t.Errorf("explicit level should be kept, got %s", got)
	}
}

func TestNewLogger_Component(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	buf := &bytes.Buffer{}
	Setup(Config{Level: LevelInfo, Output: buf})

	logger := NewLogger("renderer")
	logger.Info().Msg("hello")

	if !strings.Contains(buf.String(), `"component":"renderer"`) {
		t.Errorf("expected component field, got %s", buf.String())
	}
}

package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"":        zerolog.InfoLevel,
		"debug":   zerolog.DebugLevel,
		"warn":    zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"unknown": zerolog.InfoLevel,
	}

	for raw, expected := range tests {
		if level := ParseLevel(raw); level != expected {
			t.Errorf("ParseLevel(%q) = %v, expected %v", raw, level, expected)
		}
	}
}

func TestConfigureWritesFile(t *testing.T) {
	previous := log.Logger
	t.Cleanup(func() {
		log.Logger = previous
	})

	filename := filepath.Join(t.TempDir(), "polls.log")
	Configure(zerolog.InfoLevel, filename)

	log.Debug().Msg("hidden message")
	log.Info().Msg("visible message")

	raw, err := os.ReadFile(filename)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.Contains(string(raw), "visible message") {
		t.Errorf("Expected info message in log file, got %q", raw)
	}
	if strings.Contains(string(raw), "hidden message") {
		t.Errorf("Expected debug message to be filtered, got %q", raw)
	}
}

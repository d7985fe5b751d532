package cmd

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/crewgate/crewgate/internal/config"
)

func TestConfigInitWritesLoadableSample(t *testing.T) {
	dir := t.TempDir()
	configInitOutput = filepath.Join(dir, "crewgate.yaml")
	t.Cleanup(func() { configInitOutput = "crewgate.yaml" })

	if err := runConfigInit(configInitCmd, nil); err != nil {
		t.Fatalf("runConfigInit() error = %v", err)
	}

	raw, err := os.ReadFile(configInitOutput)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	var cfg config.Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		t.Fatalf("sample is not valid YAML: %v", err)
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		t.Errorf("sample config does not validate: %v", err)
	}

	// Refuses to clobber an existing file.
	if err := runConfigInit(configInitCmd, nil); err == nil {
		t.Error("runConfigInit() overwrote an existing file")
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLogLevel(tt.in); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

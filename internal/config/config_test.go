package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "crewgate.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestLoadConfigFromFile(t *testing.T) {
	resetViper(t)
	path := writeConfigFile(t, `
api:
  base_url: https://hr.crewdesk.example
  timeout: 10s
provider:
  issuer_url: https://id.crewdesk.example
  realm: crewdesk
  client_id: crewgate
session:
  path: /tmp/crewgate-test/session.json
log_level: warn
`)
	InitViper(path)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.API.BaseURL != "https://hr.crewdesk.example" {
		t.Errorf("base_url = %s", cfg.API.BaseURL)
	}
	if cfg.APITimeout() != 10*time.Second {
		t.Errorf("timeout = %v, want 10s", cfg.APITimeout())
	}
	if !cfg.Provider.Configured() {
		t.Error("provider should be configured")
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("log_level = %s, want warn", cfg.LogLevel)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	resetViper(t)
	path := writeConfigFile(t, `
api:
  base_url: https://hr.crewdesk.example
`)
	InitViper(path)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.APITimeout() != 30*time.Second {
		t.Errorf("timeout = %v, want default 30s", cfg.APITimeout())
	}
	if cfg.InitTimeout() != 8*time.Second {
		t.Errorf("init_timeout = %v, want default 8s", cfg.InitTimeout())
	}
	if cfg.MinTokenValidity() != 30*time.Second {
		t.Errorf("min_token_validity = %v, want default 30s", cfg.MinTokenValidity())
	}
	if cfg.LogLevel != "info" {
		t.Errorf("log_level = %s, want default info", cfg.LogLevel)
	}
	if cfg.Session.Path == "" {
		t.Error("session path default not applied")
	}
	if cfg.Provider.Configured() {
		t.Error("provider configured without settings")
	}
}

func TestEnvironmentOverridesFile(t *testing.T) {
	resetViper(t)
	path := writeConfigFile(t, `
api:
  base_url: https://hr.crewdesk.example
  timeout: 10s
`)
	t.Setenv("CREWGATE_API_TIMEOUT", "5s")
	t.Setenv("CREWGATE_LOG_LEVEL", "error")
	InitViper(path)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.APITimeout() != 5*time.Second {
		t.Errorf("timeout = %v, want env override 5s", cfg.APITimeout())
	}
	if cfg.LogLevel != "error" {
		t.Errorf("log_level = %s, want env override error", cfg.LogLevel)
	}
}

func TestEnvOnlyConfiguration(t *testing.T) {
	resetViper(t)
	t.Setenv("CREWGATE_API_BASE_URL", "https://hr.crewdesk.example")
	InitViper(filepath.Join(t.TempDir(), "does-not-exist.yaml"))

	// Missing file with an explicit path is an error; without one the
	// loader continues on env vars alone.
	if _, err := LoadConfig(); err == nil {
		t.Fatal("LoadConfig() with missing explicit file should fail")
	}

	resetViper(t)
	t.Setenv("CREWGATE_API_BASE_URL", "https://hr.crewdesk.example")
	InitViper("")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() env-only error = %v", err)
	}
	if cfg.API.BaseURL != "https://hr.crewdesk.example" {
		t.Errorf("base_url = %s, want env value", cfg.API.BaseURL)
	}
}

func TestDevModeRaisesLogLevel(t *testing.T) {
	cfg := &Config{API: APIConfig{BaseURL: "https://hr.crewdesk.example"}, DevMode: true}
	cfg.SetDefaults()
	cfg.SetDevDefaults()
	if cfg.LogLevel != "debug" {
		t.Errorf("log_level = %s, want debug in dev mode", cfg.LogLevel)
	}
}

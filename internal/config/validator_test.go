package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	cfg := &Config{
		API: APIConfig{BaseURL: "https://hr.crewdesk.example"},
	}
	cfg.SetDefaults()
	return cfg
}

func TestValidateAcceptsMinimalConfig(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantSub string
	}{
		{
			name:    "missing base URL",
			mutate:  func(c *Config) { c.API.BaseURL = "" },
			wantSub: "required",
		},
		{
			name:    "malformed base URL",
			mutate:  func(c *Config) { c.API.BaseURL = "not a url" },
			wantSub: "valid URL",
		},
		{
			name:    "bad timeout",
			mutate:  func(c *Config) { c.API.Timeout = "soon" },
			wantSub: "duration",
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.LogLevel = "loud" },
			wantSub: "one of",
		},
		{
			name:    "issuer without client id",
			mutate:  func(c *Config) { c.Provider.IssuerURL = "https://id.crewdesk.example" },
			wantSub: "set together",
		},
		{
			name:    "client id without issuer",
			mutate:  func(c *Config) { c.Provider.ClientID = "crewgate" },
			wantSub: "set together",
		},
		{
			name:    "realm without provider",
			mutate:  func(c *Config) { c.Provider.Realm = "crewdesk" },
			wantSub: "realm requires",
		},
		{
			name:    "bad init timeout",
			mutate:  func(c *Config) { c.Provider.InitTimeout = "never" },
			wantSub: "duration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() error = nil, want rejection")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("Validate() error = %q, want substring %q", err, tt.wantSub)
			}
		})
	}
}

func TestValidateAcceptsCompleteProvider(t *testing.T) {
	cfg := validConfig()
	cfg.Provider.IssuerURL = "https://id.crewdesk.example"
	cfg.Provider.Realm = "crewdesk"
	cfg.Provider.ClientID = "crewgate"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

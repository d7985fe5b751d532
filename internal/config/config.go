// Package config provides configuration types for Crewgate.
//
// Configuration comes from crewgate.yaml, CREWGATE_* environment
// variables, or both; environment variables win. Identity provider
// settings are optional: when absent, Crewgate runs in password mode
// against the backend's own login endpoint.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config is the top-level Crewgate configuration.
type Config struct {
	// API configures the Crewdesk backend connection.
	API APIConfig `yaml:"api" mapstructure:"api"`

	// Provider configures the optional OIDC identity provider.
	// When IssuerURL and ClientID are empty, SSO login is unavailable
	// and password login is used instead.
	Provider ProviderConfig `yaml:"provider" mapstructure:"provider"`

	// Session configures where the durable session is stored.
	Session SessionConfig `yaml:"session" mapstructure:"session"`

	// LogLevel controls log verbosity: debug, info, warn, or error.
	LogLevel string `yaml:"log_level" mapstructure:"log_level" validate:"omitempty,oneof=debug info warn error"`

	// DevMode enables development features (verbose logging, pretty
	// trace export to stdout).
	DevMode bool `yaml:"dev_mode" mapstructure:"dev_mode"`
}

// APIConfig configures the Crewdesk backend connection.
type APIConfig struct {
	// BaseURL is the backend root, e.g. "https://hr.crewdesk.example".
	BaseURL string `yaml:"base_url" mapstructure:"base_url" validate:"required,url"`

	// CookieAuth switches the client to cookie deployments: the bearer
	// header is not attached and the CSRF cookie is mirrored into the
	// CSRF header on unsafe requests.
	CookieAuth bool `yaml:"cookie_auth" mapstructure:"cookie_auth"`

	// Timeout is the per-request timeout (e.g. "30s").
	Timeout string `yaml:"timeout" mapstructure:"timeout" validate:"omitempty,duration"`
}

// ProviderConfig configures the OIDC identity provider.
type ProviderConfig struct {
	// IssuerURL is the identity provider base URL.
	IssuerURL string `yaml:"issuer_url" mapstructure:"issuer_url" validate:"omitempty,url"`

	// Realm is the Keycloak realm. Leave empty for providers whose
	// issuer is the bare URL.
	Realm string `yaml:"realm" mapstructure:"realm"`

	// ClientID is the public OAuth2 client.
	ClientID string `yaml:"client_id" mapstructure:"client_id"`

	// Scopes to request. Default: openid, profile, email.
	Scopes []string `yaml:"scopes" mapstructure:"scopes"`

	// InitTimeout bounds identity provider discovery (e.g. "8s").
	InitTimeout string `yaml:"init_timeout" mapstructure:"init_timeout" validate:"omitempty,duration"`

	// MinTokenValidity is the remaining-lifetime margin below which the
	// access token is renewed before use (e.g. "30s").
	MinTokenValidity string `yaml:"min_token_validity" mapstructure:"min_token_validity" validate:"omitempty,duration"`
}

// SessionConfig configures durable session storage.
type SessionConfig struct {
	// Path is the session file location.
	// Default: ~/.crewgate/session.json.
	Path string `yaml:"path" mapstructure:"path"`
}

// Configured reports whether identity provider settings are present.
func (p ProviderConfig) Configured() bool {
	return p.IssuerURL != "" && p.ClientID != ""
}

// SetDefaults applies default values for optional fields.
func (c *Config) SetDefaults() {
	if c.API.Timeout == "" {
		c.API.Timeout = "30s"
	}
	if c.Provider.InitTimeout == "" {
		c.Provider.InitTimeout = "8s"
	}
	if c.Provider.MinTokenValidity == "" {
		c.Provider.MinTokenValidity = "30s"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Session.Path == "" {
		c.Session.Path = DefaultSessionPath()
	}
}

// SetDevDefaults applies development overrides. Called after CLI flags
// may have flipped DevMode.
func (c *Config) SetDevDefaults() {
	if !c.DevMode {
		// Also accept the env toggle directly so `CREWGATE_DEV_MODE=true`
		// works without a config file.
		c.DevMode = viper.GetBool("dev_mode") || os.Getenv("CREWGATE_DEV") == "true"
	}
	if c.DevMode && c.LogLevel == "info" {
		c.LogLevel = "debug"
	}
}

// DefaultSessionPath returns ~/.crewgate/session.json, falling back to
// a relative path when the home directory cannot be resolved.
func DefaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".crewgate", "session.json")
	}
	return filepath.Join(home, ".crewgate", "session.json")
}

// APITimeout returns the parsed request timeout.
func (c *Config) APITimeout() time.Duration {
	return parseDuration(c.API.Timeout, 30*time.Second)
}

// InitTimeout returns the parsed discovery timeout.
func (c *Config) InitTimeout() time.Duration {
	return parseDuration(c.Provider.InitTimeout, 8*time.Second)
}

// MinTokenValidity returns the parsed renewal margin.
func (c *Config) MinTokenValidity() time.Duration {
	return parseDuration(c.Provider.MinTokenValidity, 30*time.Second)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

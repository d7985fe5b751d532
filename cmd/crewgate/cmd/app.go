package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/crewgate/crewgate/internal/adapter/outbound/hrapi"
	"github.com/crewgate/crewgate/internal/adapter/outbound/oidc"
	"github.com/crewgate/crewgate/internal/adapter/outbound/state"
	"github.com/crewgate/crewgate/internal/config"
	"github.com/crewgate/crewgate/internal/domain/guard"
	"github.com/crewgate/crewgate/internal/metrics"
	"github.com/crewgate/crewgate/internal/notify"
	"github.com/crewgate/crewgate/internal/provider"
	"github.com/crewgate/crewgate/internal/telemetry"
)

// app holds the wired components a command needs. One app is built per
// invocation; Close flushes telemetry.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *state.FileSessionStore
	provider *provider.Provider
	client   *hrapi.Client
	guard    *guard.Guard
	metrics  *metrics.Metrics
	shutdown func(context.Context) error
}

// newApp loads configuration and wires the client stack. The provider
// supplies credentials to the client, and the client performs the
// provider's network calls; BindAPI closes that loop after both exist.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.LoadConfigRaw()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if devMode {
		cfg.DevMode = true
	}
	cfg.SetDevDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// Logger goes to stderr so command output stays clean on stdout.
	logLevel := parseLogLevel(cfg.LogLevel)
	if cfg.DevMode {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	if configFile := config.ConfigFileUsed(); configFile != "" {
		logger.Debug("loaded config", "file", configFile)
	}

	shutdown, err := telemetry.Setup(ctx, cfg.DevMode)
	if err != nil {
		return nil, fmt.Errorf("failed to set up telemetry: %w", err)
	}

	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)

	store := state.NewFileSessionStore(cfg.Session.Path, logger)
	prov := provider.New(store, oidc.Config{
		IssuerURL: cfg.Provider.IssuerURL,
		Realm:     cfg.Provider.Realm,
		ClientID:  cfg.Provider.ClientID,
		Scopes:    cfg.Provider.Scopes,
	},
		provider.WithLogger(logger),
		provider.WithInitTimeout(cfg.InitTimeout()),
		provider.WithMinTokenValidity(cfg.MinTokenValidity()),
	)

	client := hrapi.NewClient(
		hrapi.WithBaseURL(cfg.API.BaseURL),
		hrapi.WithCookieAuth(cfg.API.CookieAuth),
		hrapi.WithTimeout(cfg.APITimeout()),
		hrapi.WithCredentials(prov),
		hrapi.WithNotifier(notify.NewWriterNotifier(os.Stderr)),
		hrapi.WithMetrics(m),
		hrapi.WithLogger(logger),
	)
	prov.BindAPI(client)

	g := guard.New(prov, client,
		guard.WithMetrics(m),
		guard.WithLogger(logger),
	)

	return &app{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		provider: prov,
		client:   client,
		guard:    g,
		metrics:  m,
		shutdown: shutdown,
	}, nil
}

// Close flushes telemetry. Safe to call on a partially used app.
func (a *app) Close(ctx context.Context) {
	if a.shutdown != nil {
		if err := a.shutdown(ctx); err != nil {
			a.logger.Debug("telemetry shutdown failed", "error", err)
		}
	}
}

// requireIdentity gates a protected command: it returns the confirmed
// profile or an error telling the user to sign in.
func (a *app) requireIdentity(ctx context.Context) (*hrapi.Employee, error) {
	emp, err := a.guard.Check(ctx)
	if err != nil {
		if errors.Is(err, guard.ErrLoginRequired) {
			return nil, fmt.Errorf("you are signed out; run `crewgate login` first")
		}
		return nil, err
	}
	return emp, nil
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

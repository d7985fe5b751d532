package hrapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/crewgate/crewgate/internal/domain/refresh"
	"github.com/crewgate/crewgate/internal/metrics"
	"github.com/crewgate/crewgate/internal/notify"
)

// Option is a functional option for configuring a Client.
type Option func(*Client)

// WithBaseURL sets the backend base URL.
// If not set, defaults to the CREWGATE_API_BASE_URL environment variable.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithHTTPClient sets a custom http.Client for making requests.
// This is useful for testing, proxying, or custom transport configurations.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the HTTP request timeout.
// If not set, defaults to 30 seconds.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithCookieAuth switches the client to cookie-credential mode: no bearer
// header is attached, a cookie jar carries the session, and unsafe methods
// get the CSRF header mirrored from the XSRF cookie.
func WithCookieAuth(enabled bool) Option {
	return func(c *Client) {
		c.cookieAuth = enabled
	}
}

// WithCredentials sets the credential source consulted on every request.
func WithCredentials(creds Credentials) Option {
	return func(c *Client) {
		c.creds = creds
	}
}

// WithCoordinator injects a refresh coordinator. If not set, the client
// builds its own around the refresh endpoint.
func WithCoordinator(coord *refresh.Coordinator) Option {
	return func(c *Client) {
		c.coordinator = coord
	}
}

// WithNotifier sets the destination for user-facing error notifications.
// Defaults to a slog-backed notifier.
func WithNotifier(n notify.Notifier) Option {
	return func(c *Client) {
		c.notifier = n
	}
}

// WithMetrics attaches Prometheus instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithLogger sets the client logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

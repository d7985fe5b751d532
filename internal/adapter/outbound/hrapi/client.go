package hrapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/crewgate/crewgate/internal/ctxkey"
	"github.com/crewgate/crewgate/internal/domain/refresh"
	"github.com/crewgate/crewgate/internal/metrics"
	"github.com/crewgate/crewgate/internal/notify"
)

// CSRF header/cookie names mirrored from the server's cookie deployment.
const (
	csrfCookieName = "XSRF-TOKEN"
	csrfHeaderName = "X-XSRF-TOKEN"
)

// Credentials supplies the outgoing bearer token and receives session
// lifecycle callbacks. The auth provider is the production implementation.
type Credentials interface {
	// Token returns the current bearer credential, renewing proactively
	// when it is close to expiry. Empty string means "attach nothing"
	// (anonymous or cookie mode).
	Token(ctx context.Context) (string, error)

	// RefreshToken returns the renewal credential for the escape-hatch
	// refresh call, or empty in cookie deployments.
	RefreshToken() string

	// SessionRefreshed records the renewed credentials after a
	// successful refresh call.
	SessionRefreshed(r RefreshResponse)

	// SessionLost clears local session state and the durable store.
	// Called when a 401 could not be recovered.
	SessionLost()
}

// Client is the Crewdesk API client. All requests flow through a single
// interception pipeline: credential attachment on the way out, error
// classification and coordinated 401 recovery on the way back.
type Client struct {
	baseURL    string
	timeout    time.Duration
	cookieAuth bool

	httpClient  *http.Client
	creds       Credentials
	coordinator *refresh.Coordinator
	notifier    notify.Notifier
	metrics     *metrics.Metrics
	logger      *slog.Logger
	tracer      trace.Tracer
}

// unauthorizedError is the internal classification of a 401 before
// recovery runs. Callers never observe it; do() converts it to an
// *AuthError or, for anonymous endpoints, an *APIError.
type unauthorizedError struct {
	message string
}

func (e *unauthorizedError) Error() string {
	return fmt.Sprintf("unauthorized: %s", e.message)
}

// NewClient creates a new Crewdesk API client.
// It reads configuration from CREWGATE_* environment variables by default.
// Options can be used to override the defaults.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:    os.Getenv("CREWGATE_API_BASE_URL"),
		cookieAuth: strings.EqualFold(os.Getenv("CREWGATE_COOKIE_AUTH"), "true"),
		timeout:    parseDurationEnv("CREWGATE_API_TIMEOUT", 30*time.Second),
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.notifier == nil {
		c.notifier = notify.NewLogNotifier(c.logger)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}
	if c.cookieAuth && c.httpClient.Jar == nil {
		// cookiejar.New never fails with nil options.
		jar, _ := cookiejar.New(nil)
		c.httpClient.Jar = jar
	}
	if c.coordinator == nil {
		c.coordinator = refresh.NewCoordinator(c.refreshSession, c.sessionLost, c.logger)
	}
	if c.metrics != nil {
		c.coordinator.SetObserver(refresh.Observer{
			RefreshDone: func(success bool) {
				result := "success"
				if !success {
					result = "failure"
				}
				c.metrics.RefreshesTotal.WithLabelValues(result).Inc()
			},
			Replayed: func() { c.metrics.ReplaysTotal.Inc() },
			QueueDepth: func(n int) {
				c.metrics.RefreshQueueSize.Set(float64(n))
			},
		})
	}
	c.tracer = otel.Tracer("crewgate/hrapi")

	return c
}

// withAnonymous marks a request as anonymous: no credential attachment
// and no 401 recovery.
func withAnonymous(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxkey.AnonymousKey{}, true)
}

func isAnonymous(ctx context.Context) bool {
	v, _ := ctx.Value(ctxkey.AnonymousKey{}).(bool)
	return v
}

// do runs the full interception pipeline for one logical request:
// a single attempt, at most one coordinated refresh with a single replay,
// classification, metrics, and exactly one user notification on failure.
func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	start := time.Now()
	reqID := uuid.NewString()
	ctx = context.WithValue(ctx, ctxkey.RequestIDKey{}, reqID)

	ctx, span := c.tracer.Start(ctx, method+" "+path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", path),
			attribute.String("crewgate.request_id", reqID),
		),
	)
	defer span.End()

	err := c.doOnce(ctx, method, path, body, result, reqID)

	var unauthorized *unauthorizedError
	if errors.As(err, &unauthorized) {
		if isAnonymous(ctx) {
			// Anonymous 401 (bad login, expired reset code) is a plain
			// client error: no session to recover, no redirect.
			err = &APIError{StatusCode: http.StatusUnauthorized, Message: unauthorized.message, RequestID: reqID}
		} else {
			span.AddEvent("session refresh")
			err = c.recover(ctx, method, path, body, result, reqID)
		}
	}

	c.observe(method, start, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.notifyFailure(err)
		return err
	}
	span.SetStatus(codes.Ok, "")
	return nil
}

// recover runs the coordinated refresh and single replay for a request
// that came back 401. A 401 on the replay itself is terminal: the session
// is cleared and the caller is told to sign in again.
func (c *Client) recover(ctx context.Context, method, path string, body, result any, reqID string) error {
	err := c.coordinator.Recover(ctx, func(rctx context.Context) error {
		return c.doOnce(rctx, method, path, body, result, reqID)
	})
	if err == nil {
		return nil
	}
	if errors.Is(err, refresh.ErrAuthLost) {
		return &AuthError{Cause: err}
	}
	var unauthorized *unauthorizedError
	if errors.As(err, &unauthorized) {
		c.sessionLost()
		return &AuthError{}
	}
	// The replay failed for a non-auth reason (403, 5xx, network);
	// surface that classification unchanged.
	return err
}

// doOnce performs a single HTTP attempt and classifies the response.
// It never notifies; notification happens once per logical request in do().
func (c *Client) doOnce(ctx context.Context, method, path string, body, result any, reqID string) error {
	u := strings.TrimRight(c.baseURL, "/") + path

	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", reqID)

	if err := c.attachCredential(ctx, req); err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &ConnectivityError{Cause: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if result != nil && len(respBody) > 0 {
			if err := json.Unmarshal(respBody, result); err != nil {
				return fmt.Errorf("unmarshal response: %w", err)
			}
		}
		return nil
	case resp.StatusCode == http.StatusUnauthorized:
		return &unauthorizedError{message: serverMessage(respBody)}
	case resp.StatusCode == http.StatusForbidden:
		return &ForbiddenError{Message: serverMessage(respBody)}
	case resp.StatusCode >= 500:
		return &ServerError{StatusCode: resp.StatusCode}
	default:
		// 400, 404, and any other client error carry the server message.
		return &APIError{StatusCode: resp.StatusCode, Message: serverMessage(respBody), RequestID: reqID}
	}
}

// attachCredential adds the bearer header (bearer mode) or the CSRF
// header (cookie mode, unsafe methods). Anonymous requests get neither.
func (c *Client) attachCredential(ctx context.Context, req *http.Request) error {
	if isAnonymous(ctx) {
		return nil
	}
	if c.cookieAuth {
		c.attachCSRF(req)
		return nil
	}
	if c.creds == nil {
		return nil
	}
	tok, err := c.creds.Token(ctx)
	if err != nil {
		// Proactive renewal failed; the provider has already cleared
		// the session. Classify as unauthorized so recovery (or the
		// terminal-auth path) runs.
		return &unauthorizedError{message: err.Error()}
	}
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	return nil
}

// attachCSRF mirrors the XSRF cookie into the CSRF header for unsafe methods.
func (c *Client) attachCSRF(req *http.Request) {
	switch req.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return
	}
	if c.httpClient.Jar == nil {
		return
	}
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return
	}
	for _, cookie := range c.httpClient.Jar.Cookies(base) {
		if cookie.Name == csrfCookieName && cookie.Value != "" {
			if req.Header.Get(csrfHeaderName) == "" {
				req.Header.Set(csrfHeaderName, cookie.Value)
			}
			return
		}
	}
}

// refreshSession is the escape hatch: it posts to the refresh endpoint
// directly, bypassing interception, so a failed refresh can never recurse
// into another refresh.
func (c *Client) refreshSession(ctx context.Context) error {
	payload := map[string]string{}
	if c.creds != nil {
		if rt := c.creds.RefreshToken(); rt != "" {
			payload["refreshToken"] = rt
		}
	}
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal refresh body: %w", err)
	}

	u := strings.TrimRight(c.baseURL, "/") + "/auth/refresh-token"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("create refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &ConnectivityError{Cause: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read refresh response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("refresh endpoint returned %d", resp.StatusCode)
	}

	var rr RefreshResponse
	if len(respBody) > 0 {
		if err := json.Unmarshal(respBody, &rr); err != nil {
			return fmt.Errorf("unmarshal refresh response: %w", err)
		}
	}
	if c.creds != nil {
		c.creds.SessionRefreshed(rr)
	}
	return nil
}

func (c *Client) sessionLost() {
	if c.creds != nil {
		c.creds.SessionLost()
	}
}

// notifyFailure emits the single user-visible notification for a failed
// logical request.
func (c *Client) notifyFailure(err error) {
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		c.notifier.Error(apiErr.Message)
	case errors.Is(err, ErrRedirectToLogin):
		c.notifier.Error("Session expired. Please login again.")
	case errors.Is(err, ErrForbidden):
		c.notifier.Error("You do not have permission to perform this action.")
	case errors.Is(err, ErrConnectivity):
		c.notifier.Error("Network error. Please check your connection.")
	default:
		var serverErr *ServerError
		if errors.As(err, &serverErr) {
			c.notifier.Error("Server error. Please try again later.")
			return
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return
		}
		c.notifier.Error("An error occurred.")
	}
}

func (c *Client) observe(method string, start time.Time, err error) {
	if c.metrics == nil {
		return
	}
	c.metrics.RequestsTotal.WithLabelValues(method, outcomeLabel(err)).Inc()
	c.metrics.RequestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrRedirectToLogin):
		return "auth"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrConnectivity):
		return "network"
	default:
		var serverErr *ServerError
		if errors.As(err, &serverErr) {
			return "server_error"
		}
		return "client_error"
	}
}

// serverMessage extracts the server's error message from a response
// payload, falling back to a generic message.
func serverMessage(body []byte) string {
	var er errorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Error.Message != "" {
		return er.Error.Message
	}
	return "An error occurred."
}

func parseDurationEnv(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	return defaultVal
}

// Package guard decides whether a protected operation may run. It sits
// between commands and the backend: commands ask once per invocation,
// and the guard answers from the cached profile when it can, or by
// confirming identity against the backend exactly once no matter how
// many callers ask concurrently.
package guard

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/crewgate/crewgate/internal/adapter/outbound/hrapi"
	"github.com/crewgate/crewgate/internal/metrics"
)

// ErrLoginRequired is returned when the check denies access: there is
// no trusted session and the user must sign in.
var ErrLoginRequired = errors.New("login required")

// DefaultDenialTTL is how long a failed identity confirmation keeps
// denying without re-asking the backend.
const DefaultDenialTTL = 5 * time.Second

// SessionProvider is the slice of the auth provider the guard consults.
type SessionProvider interface {
	Init(ctx context.Context) error
	Configured() bool
	Authenticated() bool
	Profile() *hrapi.Employee
	SetProfile(emp *hrapi.Employee)
}

// ProfileFetcher confirms identity against the backend.
type ProfileFetcher interface {
	WhoAmI(ctx context.Context) (*hrapi.Employee, error)
}

// Guard gates protected operations on a confirmed identity.
type Guard struct {
	provider  SessionProvider
	fetcher   ProfileFetcher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	denialTTL time.Duration

	mu         sync.Mutex
	inflight   *check
	deniedAt   time.Time
	lastDenial error
}

// check is one shared identity confirmation. Followers wait on done;
// the leader fills emp/err before closing it.
type check struct {
	done chan struct{}
	emp  *hrapi.Employee
	err  error
}

// Option configures a Guard.
type Option func(*Guard)

// WithMetrics attaches metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Guard) { g.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Guard) { g.logger = logger }
}

// WithDenialTTL overrides how long a denial is cached.
func WithDenialTTL(d time.Duration) Option {
	return func(g *Guard) {
		if d > 0 {
			g.denialTTL = d
		}
	}
}

// New creates a Guard.
func New(provider SessionProvider, fetcher ProfileFetcher, opts ...Option) *Guard {
	g := &Guard{
		provider:  provider,
		fetcher:   fetcher,
		logger:    slog.Default(),
		denialTTL: DefaultDenialTTL,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Check returns the confirmed profile or denies access. The decision
// order is fixed: cached profile first, then provider initialization,
// then the provider's own verdict, then a backend identity check shared
// among all concurrent callers. A canceled caller gets its context
// error; the shared check keeps running for the others.
func (g *Guard) Check(ctx context.Context) (*hrapi.Employee, error) {
	if emp := g.provider.Profile(); emp != nil {
		g.observe("allowed_cached")
		return emp, nil
	}

	if err := g.provider.Init(ctx); err != nil {
		return nil, err
	}

	if g.provider.Configured() && !g.provider.Authenticated() {
		g.observe("denied")
		return nil, ErrLoginRequired
	}

	emp, err := g.confirm(ctx)
	switch {
	case err == nil:
		g.observe("allowed")
		return emp, nil
	case errors.Is(err, ErrLoginRequired):
		g.observe("denied")
		return nil, err
	default:
		// Connectivity and server faults are not identity verdicts.
		g.observe("error")
		return nil, err
	}
}

// confirm runs the deduplicated who-am-I. The first caller becomes the
// leader and performs the backend call; everyone else waits for its
// result. A recent denial answers immediately from the negative cache.
func (g *Guard) confirm(ctx context.Context) (*hrapi.Employee, error) {
	g.mu.Lock()
	if g.lastDenial != nil && time.Since(g.deniedAt) < g.denialTTL {
		err := g.lastDenial
		g.mu.Unlock()
		return nil, err
	}
	if g.inflight != nil {
		c := g.inflight
		g.mu.Unlock()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-c.done:
			return c.emp, c.err
		}
	}
	c := &check{done: make(chan struct{})}
	g.inflight = c
	g.mu.Unlock()

	// The shared check outlives any single caller's context.
	go g.fetch(context.WithoutCancel(ctx), c)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.done:
		return c.emp, c.err
	}
}

func (g *Guard) fetch(ctx context.Context, c *check) {
	if g.metrics != nil {
		g.metrics.WhoAmICallsTotal.Inc()
	}
	emp, err := g.fetcher.WhoAmI(ctx)

	g.mu.Lock()
	g.inflight = nil
	switch {
	case err == nil && (emp == nil || emp.UUID == ""):
		// A 2xx without an identifier confirms nothing.
		c.err = ErrLoginRequired
		g.lastDenial = c.err
		g.deniedAt = time.Now()
	case err == nil:
		g.lastDenial = nil
		c.emp = emp
	case errors.Is(err, hrapi.ErrRedirectToLogin):
		c.err = ErrLoginRequired
		g.lastDenial = c.err
		g.deniedAt = time.Now()
	default:
		c.err = err
	}
	g.mu.Unlock()

	if c.emp != nil {
		g.provider.SetProfile(c.emp)
	}
	close(c.done)
}

func (g *Guard) observe(decision string) {
	if g.metrics != nil {
		g.metrics.GuardChecksTotal.WithLabelValues(decision).Inc()
	}
}

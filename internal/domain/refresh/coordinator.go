// Package refresh serializes session-refresh attempts. When several
// in-flight requests discover an expired session at the same time, exactly
// one refresh network call is issued; the rest queue behind it and observe
// its outcome in arrival order.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ErrAuthLost is returned to every caller when the refresh itself fails.
// Callers must treat it as a terminal authentication failure: the session
// has been cleared and the user must sign in again.
var ErrAuthLost = errors.New("authentication lost")

// RefreshFunc issues the refresh network call. Implementations must go
// straight to the transport, bypassing 401 interception, or a failed
// refresh would recurse into another refresh.
type RefreshFunc func(ctx context.Context) error

// ReplayFunc re-issues one original request after a successful refresh.
type ReplayFunc func(ctx context.Context) error

// Observer receives coordinator lifecycle events. All methods may be nil-safe
// no-ops; the zero Observer is valid.
type Observer struct {
	// RefreshDone is called after each refresh attempt settles.
	RefreshDone func(success bool)
	// Replayed is called for each request replayed after a refresh.
	Replayed func()
	// QueueDepth is called whenever the pending queue length changes.
	QueueDepth func(n int)
}

// pending is one request that hit a 401 while a refresh was already in
// flight. Its replay runs in the leader's goroutine so replays happen in
// arrival order; the buffered channel lets the leader deliver the result
// without blocking on an abandoned waiter.
type pending struct {
	ctx    context.Context
	replay ReplayFunc
	done   chan error
}

// Coordinator owns the refreshing flag and the pending queue. Both are
// mutated only under mu; the single-flight guarantee follows from checking
// the flag before issuing a refresh call.
type Coordinator struct {
	mu         sync.Mutex
	refreshing bool
	queue      []*pending

	refresh    RefreshFunc
	onAuthLost func()
	observer   Observer
	logger     *slog.Logger
}

// NewCoordinator creates a Coordinator. refresh issues the actual network
// call; onAuthLost is invoked once per failed refresh, after the queue has
// been rejected, and should clear the session and signal redirect-to-login.
func NewCoordinator(refresh RefreshFunc, onAuthLost func(), logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		refresh:    refresh,
		onAuthLost: onAuthLost,
		logger:     logger,
	}
}

// SetObserver attaches lifecycle callbacks. Must be called before the
// coordinator is shared between goroutines.
func (c *Coordinator) SetObserver(obs Observer) {
	c.observer = obs
}

// Recover coordinates recovery from an unauthorized response.
//
// The first caller becomes the leader: it issues the single refresh call,
// then replays its own request followed by every queued request in FIFO
// order. Callers arriving while the refresh is in flight enqueue and block
// until the leader delivers their replay result, or until their context is
// canceled. On refresh failure every caller receives an error wrapping
// ErrAuthLost.
func (c *Coordinator) Recover(ctx context.Context, replay ReplayFunc) error {
	c.mu.Lock()
	if c.refreshing {
		p := &pending{ctx: ctx, replay: replay, done: make(chan error, 1)}
		c.queue = append(c.queue, p)
		c.notifyQueueDepth(len(c.queue))
		c.mu.Unlock()

		select {
		case err := <-p.done:
			return err
		case <-ctx.Done():
			// Abandoned: the leader skips replay for canceled contexts.
			return ctx.Err()
		}
	}
	c.refreshing = true
	c.mu.Unlock()

	// The leader's own cancellation must not poison the queued followers,
	// so the refresh call runs detached from the leader's context.
	err := c.refresh(context.WithoutCancel(ctx))

	c.mu.Lock()
	queued := c.queue
	c.queue = nil
	c.refreshing = false
	c.notifyQueueDepth(0)
	c.mu.Unlock()

	if err != nil {
		c.logger.Warn("session refresh failed", "queued", len(queued), "error", err)
		if c.observer.RefreshDone != nil {
			c.observer.RefreshDone(false)
		}
		authErr := fmt.Errorf("%w: %v", ErrAuthLost, err)
		for _, p := range queued {
			p.done <- authErr
		}
		if c.onAuthLost != nil {
			c.onAuthLost()
		}
		return authErr
	}

	c.logger.Debug("session refreshed", "queued", len(queued))
	if c.observer.RefreshDone != nil {
		c.observer.RefreshDone(true)
	}

	// Replay the leader first (it observed the 401 first), then the
	// followers in arrival order.
	leaderErr := c.runReplay(ctx, replay)
	for _, p := range queued {
		if p.ctx.Err() != nil {
			p.done <- p.ctx.Err()
			continue
		}
		p.done <- c.runReplay(p.ctx, p.replay)
	}
	return leaderErr
}

func (c *Coordinator) runReplay(ctx context.Context, replay ReplayFunc) error {
	if c.observer.Replayed != nil {
		c.observer.Replayed()
	}
	return replay(ctx)
}

// Refreshing reports whether a refresh call is currently in flight.
func (c *Coordinator) Refreshing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshing
}

func (c *Coordinator) notifyQueueDepth(n int) {
	if c.observer.QueueDepth != nil {
		c.observer.QueueDepth(n)
	}
}

// Package provider owns the authentication lifecycle: initialization
// against the identity provider, login, proactive token renewal, and
// the transition to the signed-out state when a session is lost.
package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/crewgate/crewgate/internal/adapter/outbound/hrapi"
	"github.com/crewgate/crewgate/internal/adapter/outbound/oidc"
	"github.com/crewgate/crewgate/internal/domain/session"
)

const (
	// DefaultInitTimeout bounds identity provider discovery. When it
	// elapses the provider reports initialized-but-unauthenticated
	// instead of blocking the command.
	DefaultInitTimeout = 8 * time.Second

	// DefaultMinTokenValidity is the remaining-lifetime margin below
	// which the access token is renewed before use.
	DefaultMinTokenValidity = 30 * time.Second
)

// ErrNotAuthenticated is returned by operations that need a session
// when none is present.
var ErrNotAuthenticated = errors.New("not authenticated")

// API is the slice of the backend client the provider drives directly.
type API interface {
	Login(ctx context.Context, req hrapi.LoginRequest) (*hrapi.LoginResponse, error)
	Logout(ctx context.Context) error
}

// identityProvider abstracts the OIDC client for tests.
type identityProvider interface {
	Login(ctx context.Context, openURL func(url string) error) (*oidc.Token, error)
	Refresh(ctx context.Context, refreshToken string) (*oidc.Token, error)
	Identify(ctx context.Context, rawIDToken string) (*oidc.Identity, error)
}

// Provider implements hrapi.Credentials on top of a durable session
// store and, when configured, an OIDC identity provider.
type Provider struct {
	store  session.Store
	idpCfg oidc.Config
	api    API
	logger *slog.Logger

	initTimeout      time.Duration
	minTokenValidity time.Duration
	newIDP           func(ctx context.Context, cfg oidc.Config) (identityProvider, error)

	mu            sync.Mutex
	sess          *session.Session
	profile       *hrapi.Employee
	idp           identityProvider
	initialized   bool
	authenticated bool

	initOnce sync.Once
	initErr  error
}

// Option configures a Provider.
type Option func(*Provider)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) { p.logger = logger }
}

// WithInitTimeout overrides the discovery timeout.
func WithInitTimeout(d time.Duration) Option {
	return func(p *Provider) {
		if d > 0 {
			p.initTimeout = d
		}
	}
}

// WithMinTokenValidity overrides the proactive renewal margin.
func WithMinTokenValidity(d time.Duration) Option {
	return func(p *Provider) {
		if d > 0 {
			p.minTokenValidity = d
		}
	}
}

// New creates a Provider backed by the given session store. Identity
// provider settings may be zero; the provider then runs in password
// mode and reports Configured() == false.
func New(store session.Store, idpCfg oidc.Config, opts ...Option) *Provider {
	p := &Provider{
		store:            store,
		idpCfg:           idpCfg,
		logger:           slog.Default(),
		initTimeout:      DefaultInitTimeout,
		minTokenValidity: DefaultMinTokenValidity,
		newIDP: func(ctx context.Context, cfg oidc.Config) (identityProvider, error) {
			return oidc.New(ctx, cfg)
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// BindAPI attaches the backend client. Called once during wiring; the
// client itself takes the provider as its Credentials, so the two are
// connected after both exist.
func (p *Provider) BindAPI(api API) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.api = api
}

// Configured reports whether identity provider settings are present.
func (p *Provider) Configured() bool {
	return p.idpCfg.Configured()
}

// Init loads the durable session and, when configured, discovers the
// identity provider. It is memoized: concurrent and repeated calls see
// the outcome of the first. Discovery failure or timeout is not an
// error; the provider comes up initialized and unauthenticated.
func (p *Provider) Init(ctx context.Context) error {
	p.initOnce.Do(func() {
		p.initErr = p.init(ctx)
	})
	return p.initErr
}

func (p *Provider) init(ctx context.Context) error {
	sess, err := p.store.Load()
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}

	var idp identityProvider
	if p.idpCfg.Configured() {
		ictx, cancel := context.WithTimeout(ctx, p.initTimeout)
		defer cancel()
		idp, err = p.newIDP(ictx, p.idpCfg)
		if err != nil {
			// Keep the durable session on disk but do not trust it until
			// the identity provider is reachable again.
			p.logger.Warn("identity provider unavailable, continuing unauthenticated", "error", err)
			p.mu.Lock()
			p.sess = sess
			p.initialized = true
			p.authenticated = false
			p.mu.Unlock()
			return nil
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.idp = idp
	p.sess = sess
	p.initialized = true
	p.authenticated = sess != nil && sess.Authenticated && sess.Valid() && !p.expired(sess)
	return nil
}

// Initialized reports whether Init has completed.
func (p *Provider) Initialized() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.initialized
}

// Authenticated reports whether a trusted session is present.
func (p *Provider) Authenticated() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.authenticated
}

// Session returns a copy of the current session, or nil.
func (p *Provider) Session() *session.Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sess == nil {
		return nil
	}
	out := *p.sess
	return &out
}

// Profile returns the cached signed-in profile, or nil when the current
// process has not confirmed identity yet.
func (p *Provider) Profile() *hrapi.Employee {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.profile == nil {
		return nil
	}
	out := *p.profile
	return &out
}

// SetProfile caches the confirmed profile for the fast path.
func (p *Provider) SetProfile(emp *hrapi.Employee) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if emp == nil {
		p.profile = nil
		return
	}
	out := *emp
	p.profile = &out
}

// LoginPassword signs in with email and password against the backend
// and persists the resulting session.
func (p *Provider) LoginPassword(ctx context.Context, email, password string) (*hrapi.Employee, error) {
	p.mu.Lock()
	api := p.api
	p.mu.Unlock()
	if api == nil {
		return nil, errors.New("no backend client bound")
	}

	resp, err := api.Login(ctx, hrapi.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	sess := &session.Session{
		Authenticated: true,
		Token:         resp.Token,
		RefreshToken:  resp.RefreshToken,
		ExpiresAt:     resp.ExpiresAt,
	}
	if resp.Employee != nil {
		sess.UserID = resp.Employee.UUID
		if resp.Employee.Role != "" {
			sess.Roles = []string{resp.Employee.Role}
		}
	}

	p.mu.Lock()
	p.sess = sess
	p.profile = resp.Employee
	p.authenticated = true
	p.initialized = true
	p.mu.Unlock()

	if err := p.store.Save(sess); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	return resp.Employee, nil
}

// LoginSSO runs the identity provider flow and persists the resulting
// session. Requires identity provider configuration.
func (p *Provider) LoginSSO(ctx context.Context, openURL func(url string) error) (*oidc.Identity, error) {
	if !p.idpCfg.Configured() {
		return nil, oidc.ErrNotConfigured
	}
	if err := p.Init(ctx); err != nil {
		return nil, err
	}

	p.mu.Lock()
	idp := p.idp
	p.mu.Unlock()
	if idp == nil {
		// Discovery failed during Init; retry it now so login can report
		// a concrete error instead of silently doing nothing.
		fresh, err := p.newIDP(ctx, p.idpCfg)
		if err != nil {
			return nil, fmt.Errorf("identity provider unavailable: %w", err)
		}
		idp = fresh
		p.mu.Lock()
		p.idp = fresh
		p.mu.Unlock()
	}

	tok, err := idp.Login(ctx, openURL)
	if err != nil {
		return nil, err
	}

	identity, err := idp.Identify(ctx, tok.IDToken)
	if err != nil {
		return nil, err
	}

	sess := &session.Session{
		Authenticated: true,
		UserID:        identity.Subject,
		Token:         tok.AccessToken,
		RefreshToken:  tok.RefreshToken,
		Roles:         identity.Roles,
		ExpiresAt:     tok.Expiry,
	}

	p.mu.Lock()
	p.sess = sess
	p.authenticated = true
	p.mu.Unlock()

	if err := p.store.Save(sess); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	return identity, nil
}

// Logout clears the local session first, then tells the backend. A
// network failure on the backend call never blocks signing out locally.
func (p *Provider) Logout(ctx context.Context) error {
	p.mu.Lock()
	api := p.api
	hadSession := p.sess != nil
	p.sess = nil
	p.profile = nil
	p.authenticated = false
	p.mu.Unlock()

	if err := p.store.Clear(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	if !hadSession || api == nil {
		return nil
	}
	if err := api.Logout(ctx); err != nil {
		p.logger.Warn("server-side logout failed, local session already cleared", "error", err)
	}
	return nil
}

// Token implements hrapi.Credentials. When the access token is within
// the renewal margin of expiry and the identity provider is available,
// it is renewed before being handed out.
func (p *Provider) Token(ctx context.Context) (string, error) {
	p.mu.Lock()
	sess := p.sess
	idp := p.idp
	authenticated := p.authenticated
	p.mu.Unlock()

	if !authenticated || sess == nil || sess.Token == "" {
		return "", nil
	}
	if !p.nearExpiry(sess) {
		return sess.Token, nil
	}
	if idp == nil || sess.RefreshToken == "" {
		// Password mode has no proactive path; the reactive refresh
		// handles a stale token on the first 401.
		return sess.Token, nil
	}

	tok, err := idp.Refresh(ctx, sess.RefreshToken)
	if err != nil {
		p.SessionLost()
		return "", fmt.Errorf("renew access token: %w", err)
	}

	p.SessionRefreshed(hrapi.RefreshResponse{
		Token:        tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    tok.Expiry,
	})
	return tok.AccessToken, nil
}

// RefreshToken implements hrapi.Credentials.
func (p *Provider) RefreshToken() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sess == nil {
		return ""
	}
	return p.sess.RefreshToken
}

// SessionRefreshed implements hrapi.Credentials: it records renewed
// credentials in memory and in the durable store.
func (p *Provider) SessionRefreshed(r hrapi.RefreshResponse) {
	p.mu.Lock()
	if p.sess == nil {
		p.sess = &session.Session{}
	}
	p.sess.Authenticated = true
	if r.Token != "" {
		p.sess.Token = r.Token
	}
	if r.RefreshToken != "" {
		p.sess.RefreshToken = r.RefreshToken
	}
	if !r.ExpiresAt.IsZero() {
		p.sess.ExpiresAt = r.ExpiresAt
	}
	p.authenticated = true
	sess := *p.sess
	p.mu.Unlock()

	if err := p.store.Save(&sess); err != nil {
		p.logger.Warn("persist refreshed session failed", "error", err)
	}
}

// SessionLost implements hrapi.Credentials: the session is gone and the
// user must sign in again.
func (p *Provider) SessionLost() {
	p.mu.Lock()
	p.sess = nil
	p.profile = nil
	p.authenticated = false
	p.mu.Unlock()

	if err := p.store.Clear(); err != nil {
		p.logger.Warn("clear session failed", "error", err)
	}
}

// nearExpiry reports whether the access token runs out within the
// renewal margin. The expiry claim inside the JWT wins over the stored
// timestamp; an opaque token falls back to the stored timestamp.
func (p *Provider) nearExpiry(sess *session.Session) bool {
	if exp, ok := tokenExpiry(sess.Token); ok {
		return time.Until(exp) < p.minTokenValidity
	}
	if sess.ExpiresAt.IsZero() {
		return false
	}
	return sess.ExpiresWithin(p.minTokenValidity)
}

func (p *Provider) expired(sess *session.Session) bool {
	if sess.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().After(sess.ExpiresAt)
}

// tokenExpiry reads the exp claim without verifying the signature.
// Verification is the server's job; the claim is only a renewal hint.
func tokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

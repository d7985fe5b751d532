// Package oidc implements the OpenID Connect client used for SSO login.
//
// It runs the authorization code flow with PKCE against the configured
// identity provider, using a loopback redirect so the flow works from a
// terminal. Discovery, token exchange, and ID token verification come
// from coreos/go-oidc; the wire flow itself from golang.org/x/oauth2.
package oidc

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// ErrNotConfigured is returned when the identity provider settings are
// absent. Callers fall back to password login.
var ErrNotConfigured = errors.New("identity provider not configured")

// Config holds the identity provider settings. IssuerURL plus Realm
// form a Keycloak-style issuer; leave Realm empty for providers whose
// issuer is the bare URL.
type Config struct {
	IssuerURL string
	Realm     string
	ClientID  string
	Scopes    []string
}

// Configured reports whether the settings are complete enough to run
// the SSO flow.
func (c Config) Configured() bool {
	return c.IssuerURL != "" && c.ClientID != ""
}

func (c Config) issuer() string {
	if c.Realm == "" {
		return c.IssuerURL
	}
	return strings.TrimRight(c.IssuerURL, "/") + "/realms/" + c.Realm
}

// Token is the credential set obtained from the identity provider.
type Token struct {
	AccessToken  string
	RefreshToken string
	IDToken      string
	Expiry       time.Time
}

// Identity is the verified subject extracted from an ID token.
type Identity struct {
	Subject  string
	Email    string
	Username string
	Roles    []string
}

// Client talks to one identity provider. Safe for concurrent use.
type Client struct {
	cfg       Config
	provider  *oidc.Provider
	verifier  *oidc.IDTokenVerifier
	oauth2Cfg oauth2.Config
}

// New discovers the provider configuration from the issuer's
// .well-known endpoint and prepares the OAuth2 flow. The client is a
// public client: no secret, PKCE mandatory.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if !cfg.Configured() {
		return nil, ErrNotConfigured
	}
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = []string{oidc.ScopeOpenID, "profile", "email"}
	}

	provider, err := oidc.NewProvider(ctx, cfg.issuer())
	if err != nil {
		return nil, fmt.Errorf("discover identity provider %s: %w", cfg.issuer(), err)
	}

	return &Client{
		cfg:      cfg,
		provider: provider,
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
		oauth2Cfg: oauth2.Config{
			ClientID: cfg.ClientID,
			Endpoint: provider.Endpoint(),
			Scopes:   cfg.Scopes,
		},
	}, nil
}

// Login runs the authorization code flow. It listens on an ephemeral
// loopback port for the redirect, hands the authorization URL to
// openURL (typically a browser launcher or a "visit this URL" printer),
// and blocks until the provider redirects back or ctx is done.
func (c *Client) Login(ctx context.Context, openURL func(url string) error) (*Token, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("listen for redirect: %w", err)
	}
	defer listener.Close()

	state, err := randomState()
	if err != nil {
		return nil, err
	}
	verifier := oauth2.GenerateVerifier()

	cfg := c.oauth2Cfg
	cfg.RedirectURL = fmt.Sprintf("http://%s/callback", listener.Addr().String())

	type result struct {
		code string
		err  error
	}
	results := make(chan result, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			results <- result{err: errors.New("authorization state mismatch")}
			return
		}
		if errCode := q.Get("error"); errCode != "" {
			http.Error(w, "login failed", http.StatusBadRequest)
			results <- result{err: fmt.Errorf("authorization failed: %s", errCode)}
			return
		}
		fmt.Fprintln(w, "Login complete. You can close this window and return to the terminal.")
		results <- result{code: q.Get("code")}
	})

	server := &http.Server{Handler: mux}
	go server.Serve(listener)
	defer server.Close()

	authURL := cfg.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.S256ChallengeOption(verifier),
	)
	if err := openURL(authURL); err != nil {
		return nil, fmt.Errorf("open authorization URL: %w", err)
	}

	var code string
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-results:
		if r.err != nil {
			return nil, r.err
		}
		code = r.code
	}

	tok, err := cfg.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}
	return c.fromOAuth2(ctx, tok)
}

// Refresh obtains a new token set using the refresh token.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*Token, error) {
	if refreshToken == "" {
		return nil, errors.New("no refresh token")
	}
	src := c.oauth2Cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}
	return c.fromOAuth2(ctx, tok)
}

// Identify verifies a raw ID token and extracts the subject, including
// Keycloak realm roles when present.
func (c *Client) Identify(ctx context.Context, rawIDToken string) (*Identity, error) {
	idToken, err := c.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("verify ID token: %w", err)
	}

	var claims struct {
		Email       string `json:"email"`
		Username    string `json:"preferred_username"`
		RealmAccess struct {
			Roles []string `json:"roles"`
		} `json:"realm_access"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("parse ID token claims: %w", err)
	}

	return &Identity{
		Subject:  idToken.Subject,
		Email:    claims.Email,
		Username: claims.Username,
		Roles:    claims.RealmAccess.Roles,
	}, nil
}

func (c *Client) fromOAuth2(ctx context.Context, tok *oauth2.Token) (*Token, error) {
	out := &Token{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
	}
	if raw, ok := tok.Extra("id_token").(string); ok {
		if _, err := c.verifier.Verify(ctx, raw); err != nil {
			return nil, fmt.Errorf("verify ID token: %w", err)
		}
		out.IDToken = raw
	}
	return out, nil
}

func randomState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

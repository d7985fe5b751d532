// Package ctxkey defines shared context key types used across multiple packages.
// This package should have no dependencies on other internal packages to avoid import cycles.
package ctxkey

// RequestIDKey is the context key type for the per-request correlation ID.
// The API client stores the generated X-Request-ID here so logs and
// notifications can reference the same request.
type RequestIDKey struct{}

// AnonymousKey is the context key type marking a request as anonymous.
// The API client skips credential attachment when this key is present,
// which keeps login, refresh, and password-reset calls out of the
// 401-recovery path.
type AnonymousKey struct{}

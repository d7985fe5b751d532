package hrapi

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrRedirectToLogin is returned when the session could not be
	// recovered and the user must sign in again.
	ErrRedirectToLogin = errors.New("redirect to login")

	// ErrForbidden is returned when the user is authenticated but lacks
	// the privilege for the operation. The session is preserved.
	ErrForbidden = errors.New("forbidden")

	// ErrConnectivity is returned when no response was received at all.
	ErrConnectivity = errors.New("connectivity failure")
)

// APIError is returned for client-input failures (HTTP 400/404). The
// server-supplied message, when present, is surfaced to the user verbatim.
type APIError struct {
	// StatusCode is the HTTP status the server returned.
	StatusCode int
	// Message is the server-supplied error message, or a generic fallback.
	Message string
	// RequestID correlates the failure with client logs.
	RequestID string
}

// Error returns a human-readable description of the client-input failure.
func (e *APIError) Error() string {
	return fmt.Sprintf("api error [%d]: %s", e.StatusCode, e.Message)
}

// AuthError is returned for terminal authentication failures: a 401 whose
// coordinated refresh failed or was unavailable. The session has been
// cleared by the time callers observe it.
type AuthError struct {
	// Cause is the underlying failure, typically a refresh error.
	Cause error
}

// Error returns a human-readable description of the authentication failure.
func (e *AuthError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("session expired: %v", e.Cause)
	}
	return "session expired"
}

// Unwrap returns the underlying cause.
func (e *AuthError) Unwrap() error {
	return e.Cause
}

// Is reports whether this error matches the target error.
// It supports errors.Is(err, ErrRedirectToLogin).
func (e *AuthError) Is(target error) bool {
	return target == ErrRedirectToLogin
}

// ForbiddenError is returned for HTTP 403. The user is authenticated but
// not authorized; the session is not cleared and no redirect is signaled.
type ForbiddenError struct {
	// Message is the server-supplied denial message, or a generic fallback.
	Message string
}

// Error returns a human-readable description of the authorization denial.
func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("forbidden: %s", e.Message)
}

// Is reports whether this error matches the target error.
// It supports errors.Is(err, ErrForbidden).
func (e *ForbiddenError) Is(target error) bool {
	return target == ErrForbidden
}

// ServerError is returned for HTTP 5xx responses. Not retried by this
// layer; callers may retry manually.
type ServerError struct {
	// StatusCode is the HTTP status the server returned.
	StatusCode int
}

// Error returns a human-readable description of the server failure.
func (e *ServerError) Error() string {
	return fmt.Sprintf("server error [%d]", e.StatusCode)
}

// ConnectivityError is returned when the request produced no HTTP
// response (DNS failure, connection refused, timeout).
type ConnectivityError struct {
	// Cause is the underlying transport error.
	Cause error
}

// Error returns a human-readable description of the connectivity failure.
func (e *ConnectivityError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("connectivity failure: %v", e.Cause)
	}
	return "connectivity failure"
}

// Unwrap returns the underlying transport error.
func (e *ConnectivityError) Unwrap() error {
	return e.Cause
}

// Is reports whether this error matches the target error.
// It supports errors.Is(err, ErrConnectivity).
func (e *ConnectivityError) Is(target error) bool {
	return target == ErrConnectivity
}

// Package session models the client's belief about the signed-in user:
// whether it is authenticated and the credential needed to prove it to
// the Crewdesk backend.
package session

import "time"

// Session is the current credential descriptor. It is owned by the auth
// provider; the durable store is only a mirror used to restore the token
// across process restarts, never the source of truth for Authenticated.
type Session struct {
	// Authenticated reports whether the client currently believes the
	// user is signed in. True implies Token and UserID are non-empty.
	Authenticated bool `json:"authenticated"`

	// UserID is the server-assigned identifier of the signed-in employee.
	UserID string `json:"user_id,omitempty"`

	// Token is the bearer credential presented to the backend.
	// Empty in cookie deployments where the credential travels in the jar.
	Token string `json:"token,omitempty"`

	// RefreshToken is the long-lived credential used for silent renewal.
	RefreshToken string `json:"refresh_token,omitempty"`

	// Roles are the roles granted to the user, used for role-based
	// branching only (never for gating the session itself).
	Roles []string `json:"roles,omitempty"`

	// ExpiresAt is when Token stops being accepted (UTC). Zero when the
	// server did not communicate an expiry.
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// Valid reports whether the session satisfies its own invariant:
// an authenticated session must carry both a user ID and a credential.
func (s *Session) Valid() bool {
	if s == nil || !s.Authenticated {
		return false
	}
	return s.UserID != "" && s.Token != ""
}

// ExpiresWithin reports whether the token expiry falls inside the given
// margin. Sessions without a known expiry never report as expiring.
func (s *Session) ExpiresWithin(margin time.Duration) bool {
	if s == nil || s.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().UTC().Add(margin).After(s.ExpiresAt)
}

// HasRole reports whether the session carries the given role.
func (s *Session) HasRole(role string) bool {
	if s == nil {
		return false
	}
	for _, r := range s.Roles {
		if r == role {
			return true
		}
	}
	return false
}

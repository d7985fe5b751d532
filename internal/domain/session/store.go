package session

import "errors"

// Store provides durable session persistence across process restarts.
// This interface is defined in the domain to avoid circular imports.
// Implementations: file-backed (default), in-memory (tests, ephemeral mode).
type Store interface {
	// Load reads the persisted session descriptor.
	// A missing or malformed descriptor is treated as absent: Load
	// returns (nil, nil), never an error for corrupt data.
	Load() (*Session, error)

	// Save persists the descriptor. Called whenever the auth provider
	// transitions into an authenticated state.
	Save(s *Session) error

	// Clear removes the descriptor. Called on logout or when the
	// session is determined invalid. Clearing an absent descriptor
	// is not an error.
	Clear() error
}

// ErrNoSession is returned by components that require a session when
// none is present.
var ErrNoSession = errors.New("no session")

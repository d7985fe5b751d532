// Package memory provides in-memory adapter implementations used by tests
// and by ephemeral deployments that must not persist credentials to disk.
package memory

import (
	"sync"

	"github.com/crewgate/crewgate/internal/domain/session"
)

// SessionStore is an in-memory implementation of session.Store.
// Safe for concurrent use.
type SessionStore struct {
	mu   sync.RWMutex
	sess *session.Session
}

// NewSessionStore creates an empty in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{}
}

// Load returns a copy of the stored session, or (nil, nil) when absent.
func (s *SessionStore) Load() (*session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.sess == nil {
		return nil, nil
	}
	// Return a copy to avoid mutation through the pointer.
	cp := *s.sess
	cp.Roles = append([]string(nil), s.sess.Roles...)
	return &cp, nil
}

// Save stores a copy of the session descriptor.
func (s *SessionStore) Save(sess *session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess == nil {
		s.sess = nil
		return nil
	}
	cp := *sess
	cp.Roles = append([]string(nil), sess.Roles...)
	s.sess = &cp
	return nil
}

// Clear removes the stored session. Clearing an empty store is not an error.
func (s *SessionStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess = nil
	return nil
}

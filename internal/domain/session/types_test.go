package session

import (
	"testing"
	"time"
)

func TestSessionValid(t *testing.T) {
	tests := []struct {
		name    string
		session *Session
		want    bool
	}{
		{
			name:    "nil session",
			session: nil,
			want:    false,
		},
		{
			name:    "unauthenticated",
			session: &Session{Authenticated: false, UserID: "u1", Token: "t1"},
			want:    false,
		},
		{
			name:    "authenticated with token and user",
			session: &Session{Authenticated: true, UserID: "u1", Token: "t1"},
			want:    true,
		},
		{
			name:    "authenticated without token",
			session: &Session{Authenticated: true, UserID: "u1"},
			want:    false,
		},
		{
			name:    "authenticated without user",
			session: &Session{Authenticated: true, Token: "t1"},
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.session.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSessionExpiresWithin(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name    string
		session *Session
		margin  time.Duration
		want    bool
	}{
		{
			name:    "no expiry known",
			session: &Session{Authenticated: true},
			margin:  30 * time.Second,
			want:    false,
		},
		{
			name:    "expires inside margin",
			session: &Session{ExpiresAt: now.Add(10 * time.Second)},
			margin:  30 * time.Second,
			want:    true,
		},
		{
			name:    "expires outside margin",
			session: &Session{ExpiresAt: now.Add(5 * time.Minute)},
			margin:  30 * time.Second,
			want:    false,
		},
		{
			name:    "already expired",
			session: &Session{ExpiresAt: now.Add(-time.Minute)},
			margin:  30 * time.Second,
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.session.ExpiresWithin(tt.margin); got != tt.want {
				t.Errorf("ExpiresWithin(%v) = %v, want %v", tt.margin, got, tt.want)
			}
		})
	}
}

func TestSessionHasRole(t *testing.T) {
	s := &Session{Roles: []string{"employee", "manager"}}

	if !s.HasRole("manager") {
		t.Error("HasRole(manager) = false, want true")
	}
	if s.HasRole("admin") {
		t.Error("HasRole(admin) = true, want false")
	}
	if (*Session)(nil).HasRole("employee") {
		t.Error("HasRole on nil session = true, want false")
	}
}

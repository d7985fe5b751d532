package memory

import (
	"sync"
	"testing"

	"github.com/crewgate/crewgate/internal/domain/session"
)

func TestSessionStoreRoundTrip(t *testing.T) {
	store := NewSessionStore()

	sess, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if sess != nil {
		t.Errorf("Load() on empty store = %+v, want nil", sess)
	}

	want := &session.Session{Authenticated: true, UserID: "u1", Token: "t1", Roles: []string{"employee"}}
	if err := store.Save(want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got == nil || got.UserID != "u1" || got.Token != "t1" {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}

	// Mutating the returned copy must not affect the store.
	got.Token = "mutated"
	again, _ := store.Load()
	if again.Token != "t1" {
		t.Error("Load() returned a shared pointer, want a copy")
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if sess, _ := store.Load(); sess != nil {
		t.Errorf("Load() after Clear = %+v, want nil", sess)
	}
}

func TestSessionStoreConcurrentAccess(t *testing.T) {
	store := NewSessionStore()
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = store.Save(&session.Session{Authenticated: true, UserID: "u1", Token: "t1"})
		}()
		go func() {
			defer wg.Done()
			_, _ = store.Load()
		}()
	}
	wg.Wait()
}

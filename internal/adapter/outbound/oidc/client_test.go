package oidc

import (
	"context"
	"errors"
	"testing"
)

func TestIssuerComposition(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "keycloak realm",
			cfg:  Config{IssuerURL: "https://id.crewdesk.example", Realm: "crewdesk"},
			want: "https://id.crewdesk.example/realms/crewdesk",
		},
		{
			name: "trailing slash trimmed",
			cfg:  Config{IssuerURL: "https://id.crewdesk.example/", Realm: "crewdesk"},
			want: "https://id.crewdesk.example/realms/crewdesk",
		},
		{
			name: "bare issuer without realm",
			cfg:  Config{IssuerURL: "https://accounts.example.com"},
			want: "https://accounts.example.com",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.issuer(); got != tt.want {
				t.Errorf("issuer() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestConfigured(t *testing.T) {
	if (Config{}).Configured() {
		t.Error("empty config reports configured")
	}
	if (Config{IssuerURL: "https://id.example"}).Configured() {
		t.Error("issuer alone reports configured")
	}
	if !(Config{IssuerURL: "https://id.example", ClientID: "crewgate"}).Configured() {
		t.Error("complete config reports unconfigured")
	}
}

func TestNewRejectsIncompleteConfig(t *testing.T) {
	_, err := New(context.Background(), Config{ClientID: "crewgate"})
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("New() error = %v, want ErrNotConfigured", err)
	}
}

func TestRandomStateIsUnique(t *testing.T) {
	a, err := randomState()
	if err != nil {
		t.Fatalf("randomState() error = %v", err)
	}
	b, err := randomState()
	if err != nil {
		t.Fatalf("randomState() error = %v", err)
	}
	if a == b {
		t.Error("two states are identical")
	}
	if len(a) < 32 {
		t.Errorf("state too short: %d chars", len(a))
	}
}

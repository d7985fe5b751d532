package hrapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/crewgate/crewgate/internal/domain/refresh"
	"github.com/crewgate/crewgate/internal/notify"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeCreds is a minimal Credentials implementation driven by tests.
type fakeCreds struct {
	mu           sync.Mutex
	token        string
	refreshToken string
	refreshed    int
	lost         int
}

func (f *fakeCreds) Token(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token, nil
}

func (f *fakeCreds) RefreshToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshToken
}

func (f *fakeCreds) SessionRefreshed(r RefreshResponse) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = r.Token
	f.refreshToken = r.RefreshToken
	f.refreshed++
}

func (f *fakeCreds) SessionLost() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = ""
	f.refreshToken = ""
	f.lost++
}

func (f *fakeCreds) lostCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lost
}

// authServer serves /employee/me gated on a bearer token and a refresh
// endpoint that rotates "stale" to "fresh".
type authServer struct {
	*httptest.Server
	meCalls      atomic.Int64
	refreshCalls atomic.Int64
	failRefresh  atomic.Bool
}

func newAuthServer(t *testing.T) *authServer {
	t.Helper()
	s := &authServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/refresh-token":
			s.refreshCalls.Add(1)
			if s.failRefresh.Load() {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(RefreshResponse{Token: "fresh", RefreshToken: "r2"})
		case "/employee/me":
			s.meCalls.Add(1)
			if r.Header.Get("Authorization") != "Bearer fresh" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(Employee{UUID: "u1", Email: "ada@crewdesk.test", Role: "employee"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(s.Server.Close)
	return s
}

func TestWhoAmIAttachesBearer(t *testing.T) {
	server := newAuthServer(t)
	creds := &fakeCreds{token: "fresh", refreshToken: "r1"}
	client := NewClient(
		WithBaseURL(server.URL),
		WithCredentials(creds),
		WithNotifier(notify.Discard),
		WithLogger(testLogger()),
	)

	emp, err := client.WhoAmI(context.Background())
	if err != nil {
		t.Fatalf("WhoAmI() error = %v", err)
	}
	if emp.UUID != "u1" {
		t.Errorf("WhoAmI() uuid = %s, want u1", emp.UUID)
	}
	if got := server.refreshCalls.Load(); got != 0 {
		t.Errorf("refresh calls = %d, want 0 for a valid token", got)
	}
}

func TestStaleTokenRefreshedAndReplayedOnce(t *testing.T) {
	server := newAuthServer(t)
	creds := &fakeCreds{token: "stale", refreshToken: "r1"}
	recorder := notify.NewRecorder()
	client := NewClient(
		WithBaseURL(server.URL),
		WithCredentials(creds),
		WithNotifier(recorder),
		WithLogger(testLogger()),
	)

	emp, err := client.WhoAmI(context.Background())
	if err != nil {
		t.Fatalf("WhoAmI() error = %v, want transparent recovery", err)
	}
	if emp.UUID != "u1" {
		t.Errorf("WhoAmI() uuid = %s, want u1", emp.UUID)
	}
	if got := server.refreshCalls.Load(); got != 1 {
		t.Errorf("refresh calls = %d, want 1", got)
	}
	if got := server.meCalls.Load(); got != 2 {
		t.Errorf("me calls = %d, want 2 (original + one replay)", got)
	}
	if msgs := recorder.Errors(); len(msgs) != 0 {
		t.Errorf("notifications = %v, want none after transparent recovery", msgs)
	}
}

func TestRefreshStormIssuesOneRefreshCall(t *testing.T) {
	server := newAuthServer(t)
	creds := &fakeCreds{token: "stale", refreshToken: "r1"}

	// The coordinator is injected so the test can hold the refresh open
	// until every concurrent request has queued behind it.
	release := make(chan struct{})
	started := make(chan struct{})
	var startedOnce sync.Once
	var refreshCalls atomic.Int64
	coord := refresh.NewCoordinator(func(ctx context.Context) error {
		refreshCalls.Add(1)
		startedOnce.Do(func() { close(started) })
		<-release
		creds.SessionRefreshed(RefreshResponse{Token: "fresh", RefreshToken: "r2"})
		return nil
	}, creds.SessionLost, testLogger())

	var depth atomic.Int64
	coord.SetObserver(refresh.Observer{QueueDepth: func(n int) { depth.Store(int64(n)) }})

	client := NewClient(
		WithBaseURL(server.URL),
		WithCredentials(creds),
		WithCoordinator(coord),
		WithNotifier(notify.Discard),
		WithLogger(testLogger()),
	)

	const n = 5
	errs := make(chan error, n)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := client.WhoAmI(context.Background())
		errs <- err
	}()
	<-started

	for i := 1; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := client.WhoAmI(context.Background())
			errs <- err
		}()
	}

	deadline := time.Now().Add(2 * time.Second)
	for depth.Load() < n-1 {
		if time.Now().After(deadline) {
			t.Fatalf("queue depth = %d, want %d", depth.Load(), n-1)
		}
		time.Sleep(time.Millisecond)
	}
	close(release)
	wg.Wait()

	for i := 0; i < n; i++ {
		if err := <-errs; err != nil {
			t.Errorf("WhoAmI() error = %v, want nil", err)
		}
	}
	if got := refreshCalls.Load(); got != 1 {
		t.Errorf("refresh calls = %d, want exactly 1", got)
	}
	// One initial 401 per request plus one replay per request.
	if got := server.meCalls.Load(); got != 2*n {
		t.Errorf("me calls = %d, want %d", got, 2*n)
	}
}

func TestFailedRefreshClearsSessionAndRedirects(t *testing.T) {
	server := newAuthServer(t)
	server.failRefresh.Store(true)
	creds := &fakeCreds{token: "stale", refreshToken: "r1"}
	recorder := notify.NewRecorder()
	client := NewClient(
		WithBaseURL(server.URL),
		WithCredentials(creds),
		WithNotifier(recorder),
		WithLogger(testLogger()),
	)

	_, err := client.WhoAmI(context.Background())
	if !errors.Is(err, ErrRedirectToLogin) {
		t.Fatalf("WhoAmI() error = %v, want ErrRedirectToLogin", err)
	}
	if got := creds.lostCount(); got != 1 {
		t.Errorf("SessionLost calls = %d, want 1", got)
	}
	if msgs := recorder.Errors(); len(msgs) != 1 {
		t.Errorf("notifications = %v, want exactly one", msgs)
	}
}

func TestForbiddenPreservesSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]any{"error": map[string]string{"message": "managers only"}})
	}))
	defer server.Close()

	creds := &fakeCreds{token: "fresh"}
	recorder := notify.NewRecorder()
	client := NewClient(
		WithBaseURL(server.URL),
		WithCredentials(creds),
		WithNotifier(recorder),
		WithLogger(testLogger()),
	)

	_, err := client.FullTeam(context.Background(), "u2")
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("FullTeam() error = %v, want ErrForbidden", err)
	}
	if got := creds.lostCount(); got != 0 {
		t.Errorf("SessionLost calls = %d, want 0 on 403", got)
	}
	if msgs := recorder.Errors(); len(msgs) != 1 {
		t.Errorf("notifications = %v, want exactly one", msgs)
	}
}

func TestClientErrorSurfacesServerMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{"error": map[string]string{"message": "email already registered"}})
	}))
	defer server.Close()

	recorder := notify.NewRecorder()
	client := NewClient(
		WithBaseURL(server.URL),
		WithCredentials(&fakeCreds{token: "fresh"}),
		WithNotifier(recorder),
		WithLogger(testLogger()),
	)

	err := client.AddEmployee(context.Background(), EmployeeRequest{Email: "dup@crewdesk.test"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("AddEmployee() error = %v, want *APIError", err)
	}
	if apiErr.Message != "email already registered" {
		t.Errorf("message = %q, want server-supplied message", apiErr.Message)
	}
	if msgs := recorder.Errors(); len(msgs) != 1 || msgs[0] != "email already registered" {
		t.Errorf("notifications = %v, want the server message once", msgs)
	}
}

func TestServerErrorNotRetried(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	recorder := notify.NewRecorder()
	client := NewClient(
		WithBaseURL(server.URL),
		WithCredentials(&fakeCreds{token: "fresh"}),
		WithNotifier(recorder),
		WithLogger(testLogger()),
	)

	_, err := client.WhoAmI(context.Background())
	var serverErr *ServerError
	if !errors.As(err, &serverErr) {
		t.Fatalf("WhoAmI() error = %v, want *ServerError", err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("server calls = %d, want 1 (no retry)", got)
	}
	if msgs := recorder.Errors(); len(msgs) != 1 {
		t.Errorf("notifications = %v, want exactly one", msgs)
	}
}

func TestConnectivityFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // deliberately unreachable

	recorder := notify.NewRecorder()
	client := NewClient(
		WithBaseURL(server.URL),
		WithCredentials(&fakeCreds{token: "fresh"}),
		WithNotifier(recorder),
		WithLogger(testLogger()),
	)

	_, err := client.WhoAmI(context.Background())
	if !errors.Is(err, ErrConnectivity) {
		t.Fatalf("WhoAmI() error = %v, want ErrConnectivity", err)
	}
	if msgs := recorder.Errors(); len(msgs) != 1 {
		t.Errorf("notifications = %v, want exactly one", msgs)
	}
}

func TestAnonymousLoginFailureSkipsRecovery(t *testing.T) {
	var refreshCalls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			if r.Header.Get("Authorization") != "" {
				t.Errorf("login carried Authorization header %q", r.Header.Get("Authorization"))
			}
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]any{"error": map[string]string{"message": "invalid credentials"}})
		case "/auth/refresh-token":
			refreshCalls.Add(1)
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer server.Close()

	creds := &fakeCreds{token: "stale", refreshToken: "r1"}
	client := NewClient(
		WithBaseURL(server.URL),
		WithCredentials(creds),
		WithNotifier(notify.Discard),
		WithLogger(testLogger()),
	)

	_, err := client.Login(context.Background(), LoginRequest{Email: "a@b.c", Password: "nope"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Login() error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", apiErr.StatusCode)
	}
	if got := refreshCalls.Load(); got != 0 {
		t.Errorf("refresh calls = %d, want 0 for anonymous endpoint", got)
	}
	if got := creds.lostCount(); got != 0 {
		t.Errorf("SessionLost calls = %d, want 0 for anonymous endpoint", got)
	}
}

func TestCookieModeMirrorsCSRFHeader(t *testing.T) {
	var sawCSRF atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/employee/me":
			http.SetCookie(w, &http.Cookie{Name: csrfCookieName, Value: "csrf-1", Path: "/"})
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(Employee{UUID: "u1"})
		case "/employee/add":
			if r.Header.Get(csrfHeaderName) == "csrf-1" {
				sawCSRF.Store(true)
			}
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer server.Close()

	client := NewClient(
		WithBaseURL(server.URL),
		WithCookieAuth(true),
		WithNotifier(notify.Discard),
		WithLogger(testLogger()),
	)

	if _, err := client.WhoAmI(context.Background()); err != nil {
		t.Fatalf("WhoAmI() error = %v", err)
	}
	if err := client.AddEmployee(context.Background(), EmployeeRequest{Email: "new@crewdesk.test"}); err != nil {
		t.Fatalf("AddEmployee() error = %v", err)
	}
	if !sawCSRF.Load() {
		t.Error("POST did not carry the CSRF header mirrored from the cookie")
	}
}

func TestEducationLifecycle(t *testing.T) {
	var deleted atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/education/getAll/u1":
			json.NewEncoder(w).Encode([]Education{{UUID: "e1", Degree: "BSc", SchoolName: "Crewdesk U"}})
		case r.Method == http.MethodPost && r.URL.Path == "/education/add":
			var edu Education
			if err := json.NewDecoder(r.Body).Decode(&edu); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			edu.UUID = "e2"
			json.NewEncoder(w).Encode(edu)
		case r.Method == http.MethodPut && r.URL.Path == "/education/update/e2":
			var edu Education
			if err := json.NewDecoder(r.Body).Decode(&edu); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			edu.UUID = "e2"
			json.NewEncoder(w).Encode(edu)
		case r.Method == http.MethodDelete && r.URL.Path == "/education/delete/e2":
			deleted.Store(true)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	creds := &fakeCreds{token: "fresh", refreshToken: "r1"}
	client := NewClient(
		WithBaseURL(server.URL),
		WithCredentials(creds),
		WithNotifier(notify.Discard),
		WithLogger(testLogger()),
	)
	ctx := context.Background()

	records, err := client.Educations(ctx, "u1")
	if err != nil {
		t.Fatalf("Educations() error = %v", err)
	}
	if len(records) != 1 || records[0].UUID != "e1" {
		t.Errorf("Educations() = %+v, want one record e1", records)
	}

	created, err := client.AddEducation(ctx, Education{EmployeeUUID: "u1", Degree: "MSc", SchoolName: "Crewdesk U", StartDate: "2024-09-01"})
	if err != nil {
		t.Fatalf("AddEducation() error = %v", err)
	}
	if created.UUID != "e2" || created.Degree != "MSc" {
		t.Errorf("AddEducation() = %+v, want e2/MSc", created)
	}

	updated, err := client.UpdateEducation(ctx, "e2", Education{EmployeeUUID: "u1", Degree: "MSc", SchoolName: "Crewdesk U", Grade: "A"})
	if err != nil {
		t.Fatalf("UpdateEducation() error = %v", err)
	}
	if updated.Grade != "A" {
		t.Errorf("UpdateEducation() grade = %s, want A", updated.Grade)
	}

	if err := client.DeleteEducation(ctx, "e2"); err != nil {
		t.Fatalf("DeleteEducation() error = %v", err)
	}
	if !deleted.Load() {
		t.Error("DeleteEducation() did not reach the server")
	}
}

package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/spectrum358/adminauth"
)

type recordedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

// testServer records every request and replies from a per-path script.
type testServer struct {
	mu        sync.Mutex
	requests  []recordedRequest
	responses map[string]func(w http.ResponseWriter)
	server    *httptest.Server
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	ts := &testServer{responses: map[string]func(w http.ResponseWriter){}}
	ts.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		ts.mu.Lock()
		ts.requests = append(ts.requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Header: r.Header.Clone(),
			Body:   body,
		})
		respond := ts.responses[r.Method+" "+r.URL.Path]
		ts.mu.Unlock()

		if respond == nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		respond(w)
	}))
	t.Cleanup(ts.server.Close)
	return ts
}

func (ts *testServer) on(method, path string, status int, body string) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.responses[method+" "+path] = func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func (ts *testServer) last(t *testing.T) recordedRequest {
	t.Helper()
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if len(ts.requests) == 0 {
		t.Fatal("no requests recorded")
	}
	return ts.requests[len(ts.requests)-1]
}

func newTestClient(t *testing.T, ts *testServer) *Client {
	t.Helper()

	client, err := NewClient(adminauth.BackendConfig{
		BaseURL: ts.server.URL,
		Timeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client
}

func TestLoginParsesUserAndRetainsToken(t *testing.T) {
	ts := newTestServer(t)
	ts.on(http.MethodPost, "/auth/login", http.StatusOK,
		`{"token":"opaque-token","user":{"uid":"u1","email":"a@b.com","role":"admin","isActive":true}}`)
	ts.on(http.MethodGet, "/users/u1", http.StatusOK, `{"user":{"uid":"u1","email":"a@b.com"}}`)
	client := newTestClient(t, ts)

	resp, err := client.Login(context.Background(), "a@b.com", "pw")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if resp.User == nil || resp.User.UID != "u1" {
		t.Fatalf("unexpected login response: %+v", resp)
	}

	login := ts.last(t)
	var body map[string]string
	if err := json.Unmarshal(login.Body, &body); err != nil {
		t.Fatalf("login body not JSON: %v", err)
	}
	if body["email"] != "a@b.com" || body["password"] != "pw" {
		t.Fatalf("unexpected login body: %v", body)
	}
	if login.Header.Get("X-Request-ID") == "" {
		t.Fatal("expected a request id header")
	}

	// The retained token rides on subsequent calls.
	if _, err := client.GetProfile(context.Background(), "u1"); err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if got := ts.last(t).Header.Get("Authorization"); got != "Bearer opaque-token" {
		t.Fatalf("expected bearer token on profile fetch, got %q", got)
	}
}

func TestErrorResponseCarriesServerMessage(t *testing.T) {
	ts := newTestServer(t)
	ts.on(http.MethodPost, "/auth/login", http.StatusUnauthorized, `{"message":"invalid credentials"}`)
	client := newTestClient(t, ts)

	_, err := client.Login(context.Background(), "a@b.com", "wrong")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusUnauthorized || apiErr.Message != "invalid credentials" {
		t.Fatalf("unexpected APIError: %+v", apiErr)
	}
}

func TestErrorResponseFallsBackToStatusText(t *testing.T) {
	ts := newTestServer(t)
	ts.on(http.MethodPost, "/auth/login", http.StatusBadGateway, `not json at all`)
	client := newTestClient(t, ts)

	_, err := client.Login(context.Background(), "a@b.com", "pw")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Message != http.StatusText(http.StatusBadGateway) {
		t.Fatalf("expected status-text fallback, got %q", apiErr.Message)
	}
}

func TestUpdateProfileSendsOnlySetFields(t *testing.T) {
	ts := newTestServer(t)
	ts.on(http.MethodPut, "/users/u1", http.StatusOK, `{"message":"profile updated"}`)
	client := newTestClient(t, ts)

	first := "Jo"
	resp, err := client.UpdateProfile(context.Background(), "u1", adminauth.ProfileUpdate{FirstName: &first})
	if err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}
	if resp.Message != "profile updated" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	var body map[string]any
	if err := json.Unmarshal(ts.last(t).Body, &body); err != nil {
		t.Fatalf("update body not JSON: %v", err)
	}
	if body["firstName"] != "Jo" {
		t.Fatalf("expected firstName in body, got %v", body)
	}
	if _, present := body["lastName"]; present {
		t.Fatal("unset fields must be omitted from the update body")
	}
}

func TestLogoutClearsTokenEvenOnFailure(t *testing.T) {
	ts := newTestServer(t)
	ts.on(http.MethodPost, "/auth/login", http.StatusOK,
		`{"token":"tok","user":{"uid":"u1","email":"a@b.com"}}`)
	ts.on(http.MethodPost, "/auth/logout", http.StatusInternalServerError, `{"message":"session backend down"}`)
	client := newTestClient(t, ts)

	if _, err := client.Login(context.Background(), "a@b.com", "pw"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if client.Token() == "" {
		t.Fatal("expected token after login")
	}

	if err := client.Logout(context.Background()); err == nil {
		t.Fatal("expected logout error")
	}
	if client.Token() != "" {
		t.Fatal("token must be dropped even when logout fails")
	}
}

func TestAdminRegisterReturnsRawPayload(t *testing.T) {
	ts := newTestServer(t)
	ts.on(http.MethodPost, "/auth/admin/users", http.StatusCreated, `{"uid":"u9","invited":true}`)
	client := newTestClient(t, ts)

	payload, err := client.AdminRegisterUser(context.Background(), adminauth.AdminRegisterRequest{
		Email: "invitee@b.com",
	})
	if err != nil {
		t.Fatalf("AdminRegisterUser failed: %v", err)
	}
	if string(payload) != `{"uid":"u9","invited":true}` {
		t.Fatalf("expected raw payload, got %s", payload)
	}
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	if _, err := NewClient(adminauth.BackendConfig{}); err == nil {
		t.Fatal("expected error for missing base URL")
	}
}

func TestTokenExpiry(t *testing.T) {
	client := &Client{}

	// Opaque tokens never report expired.
	client.setToken("opaque")
	if client.TokenExpired() {
		t.Fatal("opaque token must not report expired")
	}

	expired := mintToken(t, time.Now().Add(-time.Hour))
	client.setToken(expired)
	if !client.TokenExpired() {
		t.Fatal("expected past exp claim to report expired")
	}

	valid := mintToken(t, time.Now().Add(time.Hour))
	client.setToken(valid)
	if client.TokenExpired() {
		t.Fatal("future exp claim must not report expired")
	}

	client.clearToken()
	if client.Token() != "" || client.TokenExpired() {
		t.Fatal("cleared token must be empty and unexpired")
	}
}

func mintToken(t *testing.T, exp time.Time) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"exp": exp.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("signing test token failed: %v", err)
	}
	return signed
}

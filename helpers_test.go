package adminauth

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/spectrum358/adminauth/identity"
	"github.com/spectrum358/adminauth/tier"
)

// mockBackend is a scriptable AuthBackend. Gates, when set, block the
// corresponding call until closed so tests can interleave operations.
type mockBackend struct {
	mu sync.Mutex

	loginResp    *LoginResponse
	loginErr     error
	registerResp *LoginResponse
	registerErr  error
	adminPayload json.RawMessage
	adminErr     error
	logoutErr    error
	profileResp  *ProfileResponse
	profileErr   error
	updateResp   *UpdateResponse
	updateErr    error

	profileGate chan struct{}
	updateGate  chan struct{}

	loginCalls    int
	registerCalls int
	adminCalls    int
	logoutCalls   int
	profileCalls  int
	updateCalls   int
}

func (m *mockBackend) Login(_ context.Context, _, _ string) (*LoginResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loginCalls++
	return m.loginResp, m.loginErr
}

func (m *mockBackend) Register(_ context.Context, _ RegisterRequest) (*LoginResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registerCalls++
	return m.registerResp, m.registerErr
}

func (m *mockBackend) AdminRegisterUser(_ context.Context, _ AdminRegisterRequest) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.adminCalls++
	return m.adminPayload, m.adminErr
}

func (m *mockBackend) Logout(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logoutCalls++
	return m.logoutErr
}

func (m *mockBackend) GetProfile(_ context.Context, _ string) (*ProfileResponse, error) {
	m.mu.Lock()
	gate := m.profileGate
	m.profileCalls++
	m.mu.Unlock()
	if gate != nil {
		<-gate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.profileResp, m.profileErr
}

func (m *mockBackend) UpdateProfile(_ context.Context, _ string, _ ProfileUpdate) (*UpdateResponse, error) {
	m.mu.Lock()
	gate := m.updateGate
	m.updateCalls++
	m.mu.Unlock()
	if gate != nil {
		<-gate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateResp, m.updateErr
}

func (m *mockBackend) calls() (login, register, admin, logout, profile, update int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loginCalls, m.registerCalls, m.adminCalls, m.logoutCalls, m.profileCalls, m.updateCalls
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, client
}

// newTestStore builds a store over miniredis with an in-memory ephemeral
// tier the test can inspect.
func newTestStore(t *testing.T, be AuthBackend) (*SessionStore, *miniredis.Miniredis, *tier.MemoryTier) {
	t.Helper()

	mr, rdb := newTestRedis(t)
	ephemeral := tier.NewMemory()

	store, err := New().
		WithBackend(be).
		WithRedis(rdb).
		WithEphemeralTier(ephemeral).
		Build()
	if err != nil {
		mr.Close()
		t.Fatalf("Build failed: %v", err)
	}

	t.Cleanup(func() {
		store.Close()
		_ = rdb.Close()
		mr.Close()
	})
	return store, mr, ephemeral
}

func adminRaw(uid, email, first, last string) *identity.RawUser {
	active := true
	return &identity.RawUser{
		UID:       uid,
		Email:     email,
		FirstName: first,
		LastName:  last,
		Role:      "admin",
		Active:    &active,
	}
}

// seedDurable writes an encoded identity straight into the miniredis tier,
// simulating a record left behind by a previous process.
func seedDurable(t *testing.T, mr *miniredis.Miniredis, id identity.Identity) {
	t.Helper()

	data, err := identity.Encode(id)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if err := mr.Set(identity.StorageKey, string(data)); err != nil {
		t.Fatalf("seeding miniredis failed: %v", err)
	}
}

func durableRecord(t *testing.T, mr *miniredis.Miniredis) (identity.Identity, bool) {
	t.Helper()

	if !mr.Exists(identity.StorageKey) {
		return identity.Identity{}, false
	}
	data, err := mr.Get(identity.StorageKey)
	if err != nil {
		t.Fatalf("reading miniredis failed: %v", err)
	}
	id, err := identity.Decode([]byte(data))
	if err != nil {
		t.Fatalf("Decode of durable record failed: %v", err)
	}
	return id, true
}

func waitNotLoading(t *testing.T, s *SessionStore) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for s.IsLoading() {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for loading to clear")
		}
		time.Sleep(time.Millisecond)
	}
}

func waitForCalls(t *testing.T, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for condition")
		}
		time.Sleep(time.Millisecond)
	}
}

func adminIdentity(uid, email string) identity.Identity {
	return identity.Identity{
		UID:    uid,
		Email:  email,
		Role:   identity.RoleAdmin,
		Active: true,
	}
}

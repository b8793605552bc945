package adminauth

import (
	"context"
	"errors"
	"testing"

	"github.com/spectrum358/adminauth/identity"
	"github.com/spectrum358/adminauth/tier"
)

func TestLogoutIsUnconditional(t *testing.T) {
	be := &mockBackend{
		loginResp: &LoginResponse{User: adminRaw("u1", "a@b.com", "A", "B")},
		logoutErr: errors.New("backend unreachable"),
	}
	store, mr, ephemeral := newTestStore(t, be)

	if _, err := store.Login(context.Background(), "a@b.com", "pw"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if err := store.Logout(context.Background()); err != nil {
		t.Fatalf("Logout returned %v despite local teardown succeeding", err)
	}

	if store.IsAuthenticated() {
		t.Fatal("expected session cleared even when the backend call fails")
	}
	if store.Current() != nil {
		t.Fatal("expected nil identity after logout")
	}
	if mr.Exists(identity.StorageKey) {
		t.Fatal("expected durable tier purged")
	}
	if _, err := ephemeral.Read(context.Background()); !errors.Is(err, tier.ErrNotFound) {
		t.Fatalf("expected ephemeral tier purged, got %v", err)
	}
}

func TestLogoutWithoutSession(t *testing.T) {
	be := &mockBackend{}
	store, _, _ := newTestStore(t, be)

	if err := store.Logout(context.Background()); err != nil {
		t.Fatalf("Logout on empty session failed: %v", err)
	}
	if store.IsAuthenticated() {
		t.Fatal("expected unauthenticated session")
	}
}

func TestLogoutWinsOverInFlightProfileUpdate(t *testing.T) {
	gate := make(chan struct{})
	be := &mockBackend{
		loginResp:  &LoginResponse{User: adminRaw("u1", "a@b.com", "A", "B")},
		updateGate: gate,
		updateResp: &UpdateResponse{User: adminRaw("u1", "a@b.com", "Updated", "B")},
	}
	store, mr, _ := newTestStore(t, be)

	if _, err := store.Login(context.Background(), "a@b.com", "pw"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	first := "Updated"
	result := make(chan error, 1)
	go func() {
		_, err := store.UpdateProfile(context.Background(), ProfileUpdate{FirstName: &first})
		result <- err
	}()

	// Let the update reach the blocked backend call, then log out.
	waitForCalls(t, func() bool {
		_, _, _, _, _, update := be.calls()
		return update == 1
	})
	if err := store.Logout(context.Background()); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	close(gate)

	if err := <-result; !errors.Is(err, ErrSessionSuperseded) {
		t.Fatalf("expected ErrSessionSuperseded, got %v", err)
	}
	if store.IsAuthenticated() {
		t.Fatal("stale profile update resurrected a cleared session")
	}
	if mr.Exists(identity.StorageKey) {
		t.Fatal("stale profile update re-populated the durable tier")
	}
	if v := store.MetricsSnapshot().Counters[MetricProfileUpdateStale]; v != 1 {
		t.Fatalf("expected profile-update-stale counter 1, got %d", v)
	}
}

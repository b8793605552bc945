// adminauth-smoke runs one full session lifecycle against a live backend:
// hydrate, login, profile update, logout. It is a deployment check, not a
// benchmark; it exits non-zero on the first broken contract.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/spectrum358/adminauth"
	"github.com/spectrum358/adminauth/backend"
	"github.com/spectrum358/adminauth/tier"
)

func main() {
	var (
		apiURL   = flag.String("api-url", "", "backend base URL; overrides SPECTRUM_API_URL")
		email    = flag.String("email", "", "admin account email")
		password = flag.String("password", "", "admin account password")
		newName  = flag.String("new-first-name", "Smoke", "first name written by the profile-update step")
	)
	flag.Parse()

	// Missing .env is fine; the environment may be set directly.
	_ = godotenv.Load()

	cfg, err := adminauth.ConfigFromEnv()
	if err != nil {
		fail("loading config: %v", err)
	}
	if *apiURL != "" {
		cfg.Backend.BaseURL = *apiURL
	}
	if *email == "" || *password == "" {
		fail("email and password are required")
	}

	client, err := backend.NewClient(cfg.Backend)
	if err != nil {
		fail("building backend client: %v", err)
	}

	durable, cleanup, err := buildDurableTier(cfg.Storage)
	if err != nil {
		fail("building durable tier: %v", err)
	}
	defer cleanup()

	store, err := adminauth.New().
		WithConfig(cfg).
		WithBackend(client).
		WithDurableTier(durable).
		WithAuditSink(adminauth.NewJSONWriterSink(os.Stderr)).
		Build()
	if err != nil {
		fail("building session store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	store.Hydrate(ctx)
	waitSettled(store)
	fmt.Printf("hydrate: authenticated=%v\n", store.IsAuthenticated())

	id, err := store.Login(ctx, *email, *password)
	if err != nil {
		fail("login: %v", err)
	}
	fmt.Printf("login: %s (%s), admin=%v active=%v\n", id.DisplayName(), id.Email, store.IsAdmin(), store.IsAccountActive())

	updated, err := store.UpdateProfile(ctx, adminauth.ProfileUpdate{FirstName: newName})
	if err != nil {
		fail("profile update: %v", err)
	}
	if updated.FirstName != *newName {
		fail("profile update: first name is %q, wanted %q", updated.FirstName, *newName)
	}
	fmt.Printf("profile update: displayName=%q\n", updated.DisplayName())

	if err := store.Logout(ctx); err != nil {
		fail("logout: %v", err)
	}
	if store.IsAuthenticated() {
		fail("logout left the session authenticated")
	}
	fmt.Println("logout: session cleared")

	fmt.Println("---- counters ----")
	snap := store.MetricsSnapshot()
	for id, v := range snap.Counters {
		if v > 0 {
			fmt.Printf("metric %d = %d\n", id, v)
		}
	}
}

// buildDurableTier picks Redis when configured, then a bolt file, then an
// in-process miniredis so the smoke test can run against nothing at all.
func buildDurableTier(cfg adminauth.StorageConfig) (tier.Tier, func(), error) {
	switch {
	case cfg.RedisAddr != "":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		fmt.Printf("using redis at %s\n", cfg.RedisAddr)
		return tier.NewRedis(client, cfg.Key, cfg.SessionTTL), func() { _ = client.Close() }, nil
	case cfg.BoltPath != "":
		bt, err := tier.OpenBolt(cfg.BoltPath, cfg.Key)
		if err != nil {
			return nil, nil, err
		}
		fmt.Printf("using bolt db at %s\n", cfg.BoltPath)
		return bt, func() { _ = bt.Close() }, nil
	default:
		mr, err := miniredis.Run()
		if err != nil {
			return nil, nil, err
		}
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		fmt.Printf("using miniredis at %s\n", mr.Addr())
		cleanup := func() {
			_ = client.Close()
			mr.Close()
		}
		return tier.NewRedis(client, cfg.Key, cfg.SessionTTL), cleanup, nil
	}
}

func waitSettled(store *adminauth.SessionStore) {
	deadline := time.Now().Add(10 * time.Second)
	for store.IsLoading() && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

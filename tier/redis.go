package tier

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisTier is a durable tier backed by a single Redis key. A zero TTL
// keeps the record until an explicit purge.
type RedisTier struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

var _ Tier = (*RedisTier)(nil)

// NewRedis builds a Redis-backed durable tier storing the session record
// under key with the given TTL.
func NewRedis(client *redis.Client, key string, ttl time.Duration) *RedisTier {
	return &RedisTier{client: client, key: key, ttl: ttl}
}

func (t *RedisTier) Name() string { return "redis" }

func (t *RedisTier) Read(ctx context.Context) ([]byte, error) {
	data, err := t.client.Get(ctx, t.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (t *RedisTier) Write(ctx context.Context, data []byte) error {
	return t.client.Set(ctx, t.key, data, t.ttl).Err()
}

func (t *RedisTier) Purge(ctx context.Context) error {
	return t.client.Del(ctx, t.key).Err()
}

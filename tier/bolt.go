package tier

import (
	"context"
	"fmt"

	"go.etcd.io/bbolt"
)

const boltBucket = "session"

// BoltTier is a file-backed durable tier for deployments without Redis.
type BoltTier struct {
	db  *bbolt.DB
	key []byte
}

var _ Tier = (*BoltTier)(nil)

// NewBolt wraps an already-open bbolt database.
func NewBolt(db *bbolt.DB, key string) *BoltTier {
	return &BoltTier{db: db, key: []byte(key)}
}

// OpenBolt opens (creating if needed) a bbolt database at path and returns
// a durable tier over it. Close releases the file lock.
func OpenBolt(path, key string) (*BoltTier, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("opening bolt db: %w", err)
	}
	return NewBolt(db, key), nil
}

// Close closes the underlying database.
func (t *BoltTier) Close() error {
	return t.db.Close()
}

func (t *BoltTier) Name() string { return "bolt" }

func (t *BoltTier) Read(_ context.Context) ([]byte, error) {
	var data []byte
	err := t.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(boltBucket))
		if b == nil {
			return ErrNotFound
		}
		v := b.Get(t.key)
		if v == nil {
			return ErrNotFound
		}
		data = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (t *BoltTier) Write(_ context.Context, data []byte) error {
	return t.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(boltBucket))
		if err != nil {
			return err
		}
		return b.Put(t.key, data)
	})
}

func (t *BoltTier) Purge(_ context.Context) error {
	return t.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(boltBucket))
		if b == nil {
			return nil
		}
		return b.Delete(t.key)
	})
}

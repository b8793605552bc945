package tier

import (
	"context"
	"sync"
)

// MemoryTier is the ephemeral tier: the record lives only as long as the
// process, mirroring browser sessionStorage semantics.
type MemoryTier struct {
	mu      sync.RWMutex
	data    []byte
	present bool
}

var _ Tier = (*MemoryTier)(nil)

// NewMemory builds an empty ephemeral tier.
func NewMemory() *MemoryTier {
	return &MemoryTier{}
}

func (t *MemoryTier) Name() string { return "memory" }

func (t *MemoryTier) Read(_ context.Context) ([]byte, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if !t.present {
		return nil, ErrNotFound
	}
	return append([]byte(nil), t.data...), nil
}

func (t *MemoryTier) Write(_ context.Context, data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data = append([]byte(nil), data...)
	t.present = true
	return nil
}

func (t *MemoryTier) Purge(_ context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data = nil
	t.present = false
	return nil
}

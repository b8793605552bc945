// Package tier provides the two-level persisted storage for session
// records: a durable tier that survives process restarts and an ephemeral
// tier that does not. The Dual combinator owns the read-fallback and
// purge-both rules so call sites never duplicate them.
package tier

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Read when a tier holds no session record.
var ErrNotFound = errors.New("no session record")

// Tier is a single storage level holding at most one serialized session
// record under a fixed key.
type Tier interface {
	Name() string
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
	Purge(ctx context.Context) error
}

// Dual combines a durable and an ephemeral tier. Reads prefer durable
// data; purges always clear both so the tiers can never disagree about
// whether a session exists.
type Dual struct {
	durable   Tier
	ephemeral Tier
}

// NewDual builds a Dual. Both tiers must be non-nil.
func NewDual(durable, ephemeral Tier) *Dual {
	return &Dual{durable: durable, ephemeral: ephemeral}
}

// Read returns the durable record when present, otherwise the ephemeral
// one, otherwise ErrNotFound. A durable read error other than ErrNotFound
// is reported rather than masked by ephemeral data.
func (d *Dual) Read(ctx context.Context) ([]byte, error) {
	data, err := d.durable.Read(ctx)
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("read %s tier: %w", d.durable.Name(), err)
	}
	data, err = d.ephemeral.Read(ctx)
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("read %s tier: %w", d.ephemeral.Name(), err)
	}
	return nil, ErrNotFound
}

// WriteDurable stores a record in the durable tier.
func (d *Dual) WriteDurable(ctx context.Context, data []byte) error {
	if err := d.durable.Write(ctx, data); err != nil {
		return fmt.Errorf("write %s tier: %w", d.durable.Name(), err)
	}
	return nil
}

// WriteEphemeral stores a record in the ephemeral tier only, for
// session-only retention when remember-me is off.
func (d *Dual) WriteEphemeral(ctx context.Context, data []byte) error {
	if err := d.ephemeral.Write(ctx, data); err != nil {
		return fmt.Errorf("write %s tier: %w", d.ephemeral.Name(), err)
	}
	return nil
}

// PurgeAll clears both tiers. Both purges are attempted regardless of
// individual failures; the first error is reported.
func (d *Dual) PurgeAll(ctx context.Context) error {
	errDurable := d.durable.Purge(ctx)
	errEphemeral := d.ephemeral.Purge(ctx)
	if errDurable != nil {
		return fmt.Errorf("purge %s tier: %w", d.durable.Name(), errDurable)
	}
	if errEphemeral != nil {
		return fmt.Errorf("purge %s tier: %w", d.ephemeral.Name(), errEphemeral)
	}
	return nil
}

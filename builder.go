package adminauth

import (
	"errors"

	"github.com/redis/go-redis/v9"
	"github.com/spectrum358/adminauth/tier"
)

// Builder assembles a SessionStore. Construction is allocation-only; no
// I/O happens before the first operation on the built store.
type Builder struct {
	config Config

	backend   AuthBackend
	durable   tier.Tier
	ephemeral tier.Tier
	redis     *redis.Client
	auditSink AuditSink

	built bool
}

// New returns a Builder initialized with the default configuration.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithBackend sets the remote authentication backend.
func (b *Builder) WithBackend(be AuthBackend) *Builder {
	b.backend = be
	return b
}

// WithDurableTier sets an explicit durable tier, overriding WithRedis.
func (b *Builder) WithDurableTier(t tier.Tier) *Builder {
	b.durable = t
	return b
}

// WithEphemeralTier sets an explicit ephemeral tier. When unset, Build
// uses an in-process memory tier.
func (b *Builder) WithEphemeralTier(t tier.Tier) *Builder {
	b.ephemeral = t
	return b
}

// WithRedis supplies a Redis client for the durable tier. The tier itself
// is constructed at Build time from the storage configuration.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithAuditSink sets the destination for audit events.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled toggles the in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration and wiring and returns the store.
// A Builder can build at most once.
func (b *Builder) Build() (*SessionStore, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := normalizeConfig(b.config)
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	if b.backend == nil {
		return nil, errors.New("auth backend is required")
	}

	durable := b.durable
	if durable == nil && b.redis != nil {
		durable = tier.NewRedis(b.redis, cfg.Storage.Key, cfg.Storage.SessionTTL)
	}
	if durable == nil {
		return nil, errors.New("a durable tier is required (WithDurableTier or WithRedis)")
	}
	ephemeral := b.ephemeral
	if ephemeral == nil {
		ephemeral = tier.NewMemory()
	}

	var metrics *Metrics
	if cfg.Metrics.Enabled {
		metrics = newMetrics()
	}

	b.built = true
	return &SessionStore{
		config:  cfg,
		backend: b.backend,
		tiers:   tier.NewDual(durable, ephemeral),
		audit:   newAuditDispatcher(cfg.Audit, b.auditSink),
		metrics: metrics,
	}, nil
}

package adminauth

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/spectrum358/adminauth/identity"
)

// Config defines the session core's tunables. Zero values are filled from
// defaultConfig at Build time; a Config is treated as immutable once the
// store is built.
type Config struct {
	Backend BackendConfig
	Storage StorageConfig
	Audit   AuditConfig
	Metrics MetricsConfig
}

/*
====================================
BACKEND CONFIG
====================================
*/

// BackendConfig configures the REST client in package backend. The library
// itself only ever sees the AuthBackend interface; these values are read by
// backend.NewClient.
type BackendConfig struct {
	BaseURL string        `env:"SPECTRUM_API_URL"`
	Timeout time.Duration `env:"SPECTRUM_API_TIMEOUT" envDefault:"15s"`
}

/*
====================================
STORAGE CONFIG
====================================
*/

// StorageConfig controls the persisted session record.
//
// RememberMe selects the tier session commits go to: durable when true,
// ephemeral when false. Purges always clear both tiers either way.
type StorageConfig struct {
	Key        string        `env:"SPECTRUM_STORAGE_KEY"`
	RememberMe bool          `env:"SPECTRUM_REMEMBER_ME" envDefault:"true"`
	SessionTTL time.Duration `env:"SPECTRUM_SESSION_TTL"`
	RedisAddr  string        `env:"SPECTRUM_REDIS_ADDR"`
	BoltPath   string        `env:"SPECTRUM_BOLT_PATH"`
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig controls the async audit pipeline.
type AuditConfig struct {
	Enabled    bool `env:"SPECTRUM_AUDIT_ENABLED" envDefault:"true"`
	BufferSize int  `env:"SPECTRUM_AUDIT_BUFFER" envDefault:"256"`
	DropIfFull bool `env:"SPECTRUM_AUDIT_DROP_IF_FULL" envDefault:"true"`
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig controls the in-process counters.
type MetricsConfig struct {
	Enabled bool `env:"SPECTRUM_METRICS_ENABLED" envDefault:"true"`
}

func defaultConfig() Config {
	return Config{
		Backend: BackendConfig{
			Timeout: 15 * time.Second,
		},
		Storage: StorageConfig{
			Key:        identity.StorageKey,
			RememberMe: true,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// ConfigFromEnv loads the configuration from SPECTRUM_* environment
// variables on top of the defaults.
func ConfigFromEnv() (Config, error) {
	cfg := defaultConfig()
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return normalizeConfig(cfg), nil
}

func normalizeConfig(cfg Config) Config {
	if cfg.Storage.Key == "" {
		cfg.Storage.Key = identity.StorageKey
	}
	if cfg.Backend.Timeout <= 0 {
		cfg.Backend.Timeout = 15 * time.Second
	}
	if cfg.Audit.BufferSize <= 0 {
		cfg.Audit.BufferSize = 1
	}
	return cfg
}

func validateConfig(cfg Config) error {
	if cfg.Storage.Key == "" {
		return errors.New("storage key must not be empty")
	}
	if cfg.Storage.SessionTTL < 0 {
		return errors.New("session TTL must not be negative")
	}
	return nil
}

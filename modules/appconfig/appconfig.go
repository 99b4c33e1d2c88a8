package appconfig

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"books/modules/cache"
	"books/modules/db/postgres"
	"books/modules/db/redis"
	"books/modules/hmac"
	"books/modules/logging"
	"books/modules/middleware/ratelimit"
	"books/modules/server"
	"books/modules/telemetry"

	"github.com/caarlos0/env/v11"
)

const (
	EnvDev = "dev"

	// only ever used when ENV=dev and HMAC_SECRET is unset
	devHMACSecret = "dev-only-insecure-cursor-secret"
)

type (
	Config struct {
		Env string `env:"ENV" envDefault:"dev"`

		Log  logging.Config `envPrefix:"LOG_"`
		HTTP server.Config  `envPrefix:"HTTP_"`

		// --- core infra ----
		HMAC     hmac.HMACConfig         `envPrefix:"HMAC_"`
		Redis    redis.RedisConfig       `envPrefix:"REDIS_"`
		Postgres postgres.PostgresConfig `envPrefix:"POSTGRES_"`

		// --- books ----
		Pagination PaginationConfig `envPrefix:"PAGINATION_"`
		Cache      cache.Config     `envPrefix:"CACHE_"`
		Warmup     WarmupConfig     `envPrefix:"CACHE_WARMUP_"`

		// --- middlewares ----
		RateLimit ratelimit.RestHTTPConfig `envPrefix:"RATE_LIMIT_"`

		// --- otel ----
		Otel telemetry.Config `envPrefix:"OTEL_"`
	}

	PaginationConfig struct {
		// CursorTTL bounds how long a nextCursor stays valid.
		CursorTTL time.Duration `env:"CURSOR_TTL" envDefault:"15m"`
	}

	// WarmupConfig drives the startup job that preloads booksByCategory.
	WarmupConfig struct {
		Enabled bool   `env:"ENABLED" envDefault:"true"`
		Lock    string `env:"LOCK" envDefault:"books:cache-warmup"`
		// LockAtMost is the lock lease; a crashed holder releases it after this long.
		LockAtMost time.Duration `env:"LOCK_AT_MOST" envDefault:"2m"`
		// LockAtLeast keeps the lock held after a fast run so replicas that
		// start moments later skip the job.
		LockAtLeast   time.Duration `env:"LOCK_AT_LEAST" envDefault:"30s"`
		Workers       int           `env:"WORKERS" envDefault:"4"`
		RatePerSecond float64       `env:"RATE_PER_SECOND" envDefault:"20"`
		Timeout       time.Duration `env:"TIMEOUT" envDefault:"1m"`
	}
)

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, err
	}
	return finalize(&cfg)
}

// LoadFrom parses cfg from the given variables instead of the process environment.
func LoadFrom(environ map[string]string) (*Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](env.Options{Environment: environ})
	if err != nil {
		return nil, err
	}
	return finalize(&cfg)
}

func finalize(cfg *Config) (*Config, error) {
	if cfg.HMAC.Secret == "" && cfg.Env == EnvDev {
		slog.Warn("HMAC_SECRET not set, using the development secret")
		cfg.HMAC.Secret = devHMACSecret
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(c *Config) error {
	var errs []error
	if c.HMAC.Secret == "" {
		errs = append(errs, fmt.Errorf("HMAC_SECRET is required when ENV=%s", c.Env))
	}
	if c.Env != EnvDev && c.HMAC.Secret == devHMACSecret {
		errs = append(errs, errors.New("HMAC_SECRET must not be the development secret"))
	}
	if c.Pagination.CursorTTL <= 0 {
		errs = append(errs, errors.New("PAGINATION_CURSOR_TTL must be positive"))
	}
	if s := c.RateLimit.Store; s != "redis" && s != "memory" {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_STORE must be redis or memory, got %q", s))
	}
	if err := c.Cache.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Warmup.Enabled {
		if c.Warmup.Workers <= 0 {
			errs = append(errs, errors.New("CACHE_WARMUP_WORKERS must be positive"))
		}
		if c.Warmup.RatePerSecond <= 0 {
			errs = append(errs, errors.New("CACHE_WARMUP_RATE_PER_SECOND must be positive"))
		}
		if c.Warmup.LockAtMost <= 0 || c.Warmup.LockAtLeast < 0 || c.Warmup.LockAtLeast > c.Warmup.LockAtMost {
			errs = append(errs, errors.New("CACHE_WARMUP_LOCK_AT_LEAST must be within [0, CACHE_WARMUP_LOCK_AT_MOST]"))
		}
	}
	return errors.Join(errs...)
}

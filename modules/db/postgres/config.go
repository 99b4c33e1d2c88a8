package postgres

import "time"

type (
	// PostgresConfig is parsed under POSTGRES_. Replicas are optional,
	// e.g. POSTGRES_REPLICA_0_HOST=replica-a.
	PostgresConfig struct {
		WriteConfig PoolConfig   `envPrefix:"PRIMARY_"`
		ReadConfigs []PoolConfig `envPrefix:"REPLICA_"`

		// ApplicationName shows up in pg_stat_activity.
		ApplicationName string `env:"APPLICATION_NAME" envDefault:"books-api"`

		MigrateOnStart bool `env:"MIGRATE_ON_START" envDefault:"true"`
		// MigrateTimeout bounds how long migrations wait for the primary to accept connections.
		MigrateTimeout time.Duration `env:"MIGRATE_TIMEOUT" envDefault:"60s"`
	}

	PoolConfig struct {
		Host              string        `env:"HOST"     envDefault:"localhost"`
		Port              uint16        `env:"PORT"     envDefault:"5432"`
		User              string        `env:"USER"     envDefault:"postgres"`
		Password          string        `env:"PASSWORD" envDefault:"postgres"`
		Database          string        `env:"DATABASE" envDefault:"books"`
		SSLMode           string        `env:"SSL_MODE" envDefault:"disable"`
		PoolMaxConns      int           `env:"POOL_MAX_CONNS" envDefault:"5"`
		HealthCheckPeriod time.Duration `env:"HEALTH_CHECK_PERIOD" envDefault:"30s"`
	}
)

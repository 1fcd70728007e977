package db

import (
	"strings"
	"time"
)

// Config holds PostgreSQL settings. The database is optional for the
// dispatch service: without DATABASE_CONN_URL durable jobs and the
// Postgres history are disabled.
type Config struct {
	ConnectionString string `env:"DATABASE_CONN_URL"`
	MigrationsTable  string `env:"DATABASE_MIGRATIONS_TABLE" envDefault:"dispatch_migrations"`

	HealthCheckPeriod time.Duration `env:"DATABASE_HEALTHCHECK_PERIOD" envDefault:"1m"`
	MaxConnIdleTime   time.Duration `env:"DATABASE_MAX_CONN_IDLE_TIME" envDefault:"10m"`
	// Bounded so connections are recycled across failovers and PgBouncer restarts.
	MaxConnLifetime time.Duration `env:"DATABASE_MAX_CONN_LIFETIME" envDefault:"30m"`

	RetryAttempts int           `env:"DATABASE_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval time.Duration `env:"DATABASE_RETRY_INTERVAL" envDefault:"5s"`

	MaxOpenConns int32 `env:"DATABASE_MAX_OPEN_CONNS" envDefault:"10"`
	MinConns     int32 `env:"DATABASE_MIN_CONNS" envDefault:"2"`
}

// Enabled reports whether a connection string is configured.
func (c Config) Enabled() bool { return strings.TrimSpace(c.ConnectionString) != "" }

package db

import "errors"

var (
	ErrNotConfigured            = errors.New("db: DATABASE_CONN_URL is not set")
	ErrFailedToParseDBConfig    = errors.New("db: invalid connection string")
	ErrFailedToOpenDBConnection = errors.New("db: could not connect")
	ErrHealthcheckFailed        = errors.New("db: healthcheck failed")

	// ErrNotMigrated means the history schema is missing; run the migrate command.
	ErrNotMigrated = errors.New("db: schema is not migrated")

	ErrSetDialect      = errors.New("db: failed to prepare migrations")
	ErrApplyMigrations = errors.New("db: failed to apply migrations")
)

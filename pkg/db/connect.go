package db

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/dispatch/pkg/logger"
)

// Connect opens a pool and pings it, retrying with a linearly growing wait.
// log may be nil.
func Connect(ctx context.Context, cfg Config, log *slog.Logger) (*pgxpool.Pool, error) {
	if !cfg.Enabled() {
		return nil, ErrNotConfigured
	}
	if log == nil {
		log = logger.NewNope()
	}

	pc, err := pgxpool.ParseConfig(cfg.ConnectionString)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseDBConfig, err)
	}
	if cfg.MaxOpenConns > 0 {
		pc.MaxConns = cfg.MaxOpenConns
	}
	pc.MinConns = cfg.MinConns
	pc.HealthCheckPeriod = cfg.HealthCheckPeriod
	pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	pc.MaxConnLifetime = cfg.MaxConnLifetime

	attempts := max(cfg.RetryAttempts, 1)
	var lastErr error
	for i := range attempts {
		pool, err := open(ctx, pc)
		if err == nil {
			return pool, nil
		}
		lastErr = err
		log.WarnContext(ctx, "database connection attempt failed", logger.Attempt(i+1), logger.Error(err))

		if i == attempts-1 {
			break
		}
		t := time.NewTimer(time.Duration(i+1) * cfg.RetryInterval)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, errors.Join(ErrFailedToOpenDBConnection, ctx.Err())
		case <-t.C:
		}
	}

	return nil, errors.Join(ErrFailedToOpenDBConnection, lastErr)
}

func open(ctx context.Context, pc *pgxpool.Config) (*pgxpool.Pool, error) {
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, err
	}
	// Ping surfaces auth and permission problems that pool creation does not.
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// Healthcheck pings the pool and confirms the delivery history table
// exists, so a database that was never migrated is reported as not ready.
func Healthcheck(pool *pgxpool.Pool) func(context.Context) error {
	return func(ctx context.Context) error {
		if pool == nil {
			return ErrHealthcheckFailed
		}
		var migrated bool
		err := pool.QueryRow(ctx, "SELECT to_regclass('notification_deliveries') IS NOT NULL").Scan(&migrated)
		if err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		if !migrated {
			return errors.Join(ErrHealthcheckFailed, ErrNotMigrated)
		}
		return nil
	}
}

// Shutdown returns a closer for the app's connection teardown.
func Shutdown(pool *pgxpool.Pool) func(context.Context) error {
	return func(context.Context) error {
		if pool != nil {
			pool.Close()
		}
		return nil
	}
}

package db

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/database"

	"github.com/dmitrymomot/dispatch/pkg/logger"
)

const defaultMigrationsTable = "dispatch_migrations"

//go:embed migrations/*.sql
var migrations embed.FS

// Migrations returns the embedded goose migrations.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrations, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

// Migrate applies pending history migrations, tracking versions in table
// (dispatch_migrations when empty). Each applied version is logged.
func Migrate(ctx context.Context, pool *pgxpool.Pool, table string, log *slog.Logger) error {
	if log == nil {
		log = logger.NewNope()
	}
	if table == "" {
		table = defaultMigrationsTable
	}

	store, err := database.NewStore(database.DialectPostgres, table)
	if err != nil {
		return errors.Join(ErrSetDialect, err)
	}

	// Shares the pool's connections, so it is not closed here.
	sqlDB := stdlib.OpenDBFromPool(pool)
	provider, err := goose.NewProvider("", sqlDB, Migrations(), goose.WithStore(store))
	if err != nil {
		return errors.Join(ErrSetDialect, err)
	}

	results, err := provider.Up(ctx)
	for _, r := range results {
		log.InfoContext(ctx, "migration applied",
			slog.Int64("version", r.Source.Version),
			slog.String("file", r.Source.Path),
			logger.Duration(r.Duration),
		)
	}
	if err != nil {
		return errors.Join(ErrApplyMigrations, err)
	}
	if len(results) == 0 {
		log.InfoContext(ctx, "history schema up to date", slog.String("table", table))
	}
	return nil
}

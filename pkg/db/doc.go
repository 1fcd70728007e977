// Package db connects to PostgreSQL and applies the service's schema.
//
// The database is optional. When DATABASE_CONN_URL is set the service opens
// a pgx pool with [Connect], applies the embedded goose migrations with
// [Migrate] and enables durable River jobs and the Postgres delivery history.
//
//	pool, err := db.Connect(ctx, cfg.Database, log)
//	if err != nil {
//		return err
//	}
//	if err := db.Migrate(ctx, pool, cfg.Database.MigrationsTable, log); err != nil {
//		return err
//	}
//
// Environment:
//
//	DATABASE_CONN_URL           connection URL; empty disables the database
//	DATABASE_MIGRATIONS_TABLE   goose version table (default dispatch_migrations)
//	DATABASE_MAX_OPEN_CONNS     pool size (default 10)
//	DATABASE_MIN_CONNS          idle connections kept open (default 2)
//	DATABASE_RETRY_ATTEMPTS     startup connection attempts (default 3)
//	DATABASE_RETRY_INTERVAL     base wait between attempts (default 5s)
package db

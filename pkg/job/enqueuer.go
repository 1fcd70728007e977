package job

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"

	"github.com/dmitrymomot/dispatch/pkg/logger"
)

// Enqueuer inserts jobs without running workers. The CLI uses it to hand a
// request to a running service through the database.
type Enqueuer struct {
	pool   *pgxpool.Pool
	client *river.Client[pgx.Tx]
	logger *slog.Logger
}

// NewEnqueuer builds an insert-only client. Only WithLogger and
// WithMaxAttempts apply.
func NewEnqueuer(pool *pgxpool.Pool, opts ...Option) (*Enqueuer, error) {
	if pool == nil {
		return nil, ErrPoolRequired
	}
	cfg := newConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = logger.NewNope()
	}

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Logger:      cfg.logger,
		MaxAttempts: cfg.maxAttempts,
	})
	if err != nil {
		return nil, fmt.Errorf("job: create enqueuer client: %w", err)
	}

	return &Enqueuer{pool: pool, client: client, logger: cfg.logger}, nil
}

// Enqueue inserts a job for task name and returns its River job ID.
// Task names are checked by the worker, not here.
func (e *Enqueuer) Enqueue(ctx context.Context, name string, payload any, opts ...EnqueueOption) (int64, error) {
	args, io, err := buildJobArgs(name, payload, opts...)
	if err != nil {
		return 0, err
	}
	res, err := e.client.Insert(ctx, args, io)
	if err != nil {
		return 0, fmt.Errorf("job: enqueue %s: %w", name, err)
	}
	return res.Job.ID, nil
}

// EnqueueTx inserts the job inside tx; it becomes visible on commit.
func (e *Enqueuer) EnqueueTx(ctx context.Context, tx pgx.Tx, name string, payload any, opts ...EnqueueOption) (int64, error) {
	args, io, err := buildJobArgs(name, payload, opts...)
	if err != nil {
		return 0, err
	}
	res, err := e.client.InsertTx(ctx, tx, args, io)
	if err != nil {
		return 0, fmt.Errorf("job: enqueue %s: %w", name, err)
	}
	return res.Job.ID, nil
}

package job

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/robfig/cron/v3"

	"github.com/dmitrymomot/dispatch/pkg/logger"
)

const defaultMaxWorkers = 10

// Manager runs registered tasks on River workers and inserts jobs for them.
// Jobs may be inserted before Start; they run once the manager starts.
type Manager struct {
	*Enqueuer
	registry *registry
	logger   *slog.Logger

	mu      sync.Mutex
	started bool
}

// NewManager builds the River client, queues and periodic jobs.
func NewManager(pool *pgxpool.Pool, opts ...Option) (*Manager, error) {
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

	queues := map[string]river.QueueConfig{
		river.QueueDefault: {MaxWorkers: cfg.maxWorkers},
	}
	for name, n := range cfg.queues {
		queues[name] = river.QueueConfig{MaxWorkers: n}
	}

	var periodic []*river.PeriodicJob
	for _, s := range cfg.schedules {
		sched, err := parseCronSchedule(s.cron)
		if err != nil {
			return nil, fmt.Errorf("job: invalid cron schedule %q for %s: %w", s.cron, s.name, err)
		}
		name := s.name
		periodic = append(periodic, river.NewPeriodicJob(
			sched,
			func() (river.JobArgs, *river.InsertOpts) { return &taskArgs{TaskName: name}, nil },
			&river.PeriodicJobOpts{RunOnStart: false},
		))
		cfg.registry.register(name, s.run)
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, &taskWorker{registry: cfg.registry, logger: cfg.logger})

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues:       queues,
		Workers:      workers,
		PeriodicJobs: periodic,
		Logger:       cfg.logger,
		MaxAttempts:  cfg.maxAttempts,
	})
	if err != nil {
		return nil, fmt.Errorf("job: create client: %w", err)
	}

	return &Manager{
		Enqueuer: &Enqueuer{pool: pool, client: client, logger: cfg.logger},
		registry: cfg.registry,
		logger:   cfg.logger,
	}, nil
}

// Start begins processing jobs.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return ErrAlreadyStarted
	}
	if err := m.client.Start(ctx); err != nil {
		return fmt.Errorf("job: start client: %w", err)
	}
	m.started = true
	m.logger.InfoContext(ctx, "job manager started", slog.Any("tasks", m.registry.names()))
	return nil
}

// Stop waits for running jobs to finish or ctx to expire.
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.started {
		return ErrNotStarted
	}
	if err := m.client.Stop(ctx); err != nil {
		return fmt.Errorf("job: stop client: %w", err)
	}
	m.started = false
	m.logger.InfoContext(ctx, "job manager stopped")
	return nil
}

// Enqueue inserts a job for a registered task.
func (m *Manager) Enqueue(ctx context.Context, name string, payload any, opts ...EnqueueOption) (int64, error) {
	if _, ok := m.registry.get(name); !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownTask, name)
	}
	return m.Enqueuer.Enqueue(ctx, name, payload, opts...)
}

// EnqueueTx inserts a job for a registered task inside tx.
func (m *Manager) EnqueueTx(ctx context.Context, tx pgx.Tx, name string, payload any, opts ...EnqueueOption) (int64, error) {
	if _, ok := m.registry.get(name); !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownTask, name)
	}
	return m.Enqueuer.EnqueueTx(ctx, tx, name, payload, opts...)
}

// StartFunc adapts Start to a startup hook.
func (m *Manager) StartFunc() func(context.Context) error { return m.Start }

// Shutdown adapts Stop to a shutdown hook.
func (m *Manager) Shutdown() func(context.Context) error { return m.Stop }

type taskWorker struct {
	river.WorkerDefaults[taskArgs]
	registry *registry
	logger   *slog.Logger
}

func (w *taskWorker) Work(ctx context.Context, j *river.Job[taskArgs]) error {
	log := w.logger.With(
		slog.String("task", j.Args.TaskName),
		slog.Int64("job_id", j.ID),
		logger.Attempt(j.Attempt),
	)

	exec, ok := w.registry.get(j.Args.TaskName)
	if !ok {
		err := fmt.Errorf("%w: %s", ErrUnknownTask, j.Args.TaskName)
		log.ErrorContext(ctx, "task not registered")
		return river.JobCancel(err)
	}

	start := time.Now()
	err := exec.Execute(withAttempt(ctx, j.Attempt, j.MaxAttempts), j.Args.Payload)
	switch {
	case err == nil:
		log.DebugContext(ctx, "task completed", logger.Duration(time.Since(start)))
		return nil
	case IsPermanent(err):
		log.ErrorContext(ctx, "task failed permanently", logger.Error(err))
		return river.JobCancel(err)
	default:
		log.WarnContext(ctx, "task failed, will retry",
			logger.Error(err),
			slog.Int("max_attempts", j.MaxAttempts),
		)
		return err
	}
}

type cronSchedule struct {
	schedule cron.Schedule
}

func (s cronSchedule) Next(t time.Time) time.Time { return s.schedule.Next(t) }

func parseCronSchedule(expr string) (river.PeriodicSchedule, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(expr)
	if err != nil {
		return nil, err
	}
	return cronSchedule{schedule: sched}, nil
}

package job

import (
	"context"
	"log/slog"
	"time"
)

// Config holds job settings read from the environment.
type Config struct {
	MaxWorkers  int `env:"JOB_MAX_WORKERS" envDefault:"10"`
	MaxAttempts int `env:"JOB_MAX_ATTEMPTS" envDefault:"8"`

	// MaxLag fails readiness when a runnable job waits longer; 0 disables it.
	MaxLag time.Duration `env:"JOB_MAX_LAG" envDefault:"5m"`
}

// Options converts c to manager options.
func (c Config) Options() []Option {
	return []Option{WithMaxWorkers(c.MaxWorkers), WithMaxAttempts(c.MaxAttempts)}
}

type schedule struct {
	name string
	cron string
	run  scheduledTask
}

type config struct {
	registry    *registry
	queues      map[string]int
	schedules   []schedule
	logger      *slog.Logger
	maxWorkers  int
	maxAttempts int
}

func newConfig() *config {
	return &config{
		registry:   newRegistry(),
		queues:     make(map[string]int),
		maxWorkers: defaultMaxWorkers,
	}
}

// Option configures the job manager.
type Option func(*config)

// WithTask registers a task. P must match the payload type of Handle.
//
//	type DeliverTask struct{ ... }
//
//	func (t *DeliverTask) Name() string { return "notify_deliver" }
//	func (t *DeliverTask) Handle(ctx context.Context, req notify.Request) error { ... }
//
//	job.WithTask[notify.Request](task)
func WithTask[P any, T interface {
	Name() string
	Handle(context.Context, P) error
}](task T) Option {
	return func(c *config) {
		c.registry.register(task.Name(), typedTask[P, T]{task: task})
	}
}

// WithScheduledTask registers a periodic task. Schedule returns a five-field
// cron expression (minute hour day month weekday).
func WithScheduledTask[T interface {
	Name() string
	Schedule() string
	Handle(context.Context) error
}](task T) Option {
	return func(c *config) {
		c.schedules = append(c.schedules, schedule{
			name: task.Name(),
			cron: task.Schedule(),
			run:  task.Handle,
		})
	}
}

// WithQueue adds a named queue with its own worker count.
func WithQueue(name string, workers int) Option {
	return func(c *config) {
		if name != "" && workers > 0 {
			c.queues[name] = workers
		}
	}
}

// WithLogger sets the logger handed to River and the task worker.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMaxWorkers sets the worker count of the default queue.
func WithMaxWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxWorkers = n
		}
	}
}

// WithMaxAttempts sets the default attempt limit for inserted jobs.
func WithMaxAttempts(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

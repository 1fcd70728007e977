package health

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/dispatch/pkg/logger"
)

const (
	defaultTimeout = 5 * time.Second

	// StatusHealthy indicates all checks passed.
	StatusHealthy = "healthy"
	// StatusDegraded means only optional checks failed.
	StatusDegraded = "degraded"
	// StatusUnhealthy means at least one required check failed.
	StatusUnhealthy = "unhealthy"
)

// CheckFunc reports nil when the dependency is usable.
type CheckFunc func(ctx context.Context) error

// Checks is a map of named health check functions.
type Checks map[string]CheckFunc

// Response represents a health check response.
type Response struct {
	Checks map[string]Check `json:"checks,omitempty"`
	Status string           `json:"status"`
}

// Check is the outcome of one named check.
type Check struct {
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
	Optional bool   `json:"optional,omitempty"`
	Took     string `json:"took"`
}

type config struct {
	logger   *slog.Logger
	timeout  time.Duration
	optional map[string]bool
}

// Option configures health check behavior.
type Option func(*config)

// WithTimeout sets the timeout for all checks.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger for error logging.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithOptional marks checks whose failure degrades readiness without
// failing it, such as the event publisher.
func WithOptional(names ...string) Option {
	return func(c *config) {
		for _, n := range names {
			c.optional[n] = true
		}
	}
}

func newConfig(opts ...Option) *config {
	cfg := &config{
		timeout:  defaultTimeout,
		logger:   logger.NewNope(),
		optional: map[string]bool{},
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// runChecks runs every check in parallel under one shared timeout.
func runChecks(ctx context.Context, checks Checks, cfg *config) *Response {
	if len(checks) == 0 {
		return &Response{Status: StatusHealthy}
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[string]Check, len(checks))
		status  = StatusHealthy
	)

	for name, check := range checks {
		wg.Go(func() {
			start := time.Now()
			err := check(ctx)
			result := Check{
				Status:   StatusHealthy,
				Optional: cfg.optional[name],
				Took:     time.Since(start).Round(time.Microsecond).String(),
			}
			if err != nil {
				result.Status = StatusUnhealthy
				result.Error = err.Error()
				cfg.logger.WarnContext(ctx, "health check failed",
					slog.String("check", name),
					slog.Bool("optional", result.Optional),
					logger.Error(err),
				)
			}

			mu.Lock()
			defer mu.Unlock()
			results[name] = result
			switch {
			case err == nil:
			case result.Optional:
				if status == StatusHealthy {
					status = StatusDegraded
				}
			default:
				status = StatusUnhealthy
			}
		})
	}

	wg.Wait()

	return &Response{
		Status: status,
		Checks: results,
	}
}

// Backlog fails when depth reports more than limit pending items. A limit of
// zero or less never fails.
func Backlog(depth func() int, limit int) CheckFunc {
	return func(context.Context) error {
		if n := depth(); limit > 0 && n > limit {
			return fmt.Errorf("%w: %d pending, limit %d", ErrBacklog, n, limit)
		}
		return nil
	}
}

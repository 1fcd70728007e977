package dispatch

import (
	"context"
	"io/fs"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/dispatch/pkg/mailer"
)

// Option configures the application.
type Option func(*App)

// WithConfig sets the configuration. Without it New loads one from the
// environment.
func WithConfig(cfg Config) Option {
	return func(a *App) {
		a.cfg = cfg
		a.hasCfg = true
	}
}

// WithContext sets the base context used for setup and signal handling.
// Defaults to context.Background().
func WithContext(ctx context.Context) Option {
	return func(a *App) {
		if ctx != nil {
			a.baseCtx = ctx
		}
	}
}

// WithLogger sets the application logger. Without it one is built from
// the LOG_* settings.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithSender replaces the mail provider chosen by MAILER_DRIVER.
func WithSender(s mailer.Sender) Option {
	return func(a *App) {
		if s != nil {
			a.sender = s
		}
	}
}

// WithRegistry sets the Prometheus registry metrics are registered with.
// Defaults to a fresh registry carrying Go and process collectors.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(a *App) {
		if reg != nil {
			a.registry = reg
		}
	}
}

// WithAddress overrides HTTP_ADDR.
func WithAddress(addr string) Option {
	return func(a *App) {
		if addr != "" {
			a.addr = addr
		}
	}
}

// WithTemplates replaces the embedded notification templates.
func WithTemplates(fsys fs.FS) Option {
	return func(a *App) { a.templates = fsys }
}

// WithClock replaces time.Now in every component that stamps times.
func WithClock(now func() time.Time) Option {
	return func(a *App) {
		if now != nil {
			a.now = now
		}
	}
}

// WithShutdownHook registers a hook run after the built-in components stop.
func WithShutdownHook(fn func(context.Context) error) Option {
	return func(a *App) {
		if fn != nil {
			a.shutdownHooks = append(a.shutdownHooks, fn)
		}
	}
}

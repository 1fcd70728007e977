package durable

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/dispatch/pkg/logger"
	"github.com/dmitrymomot/dispatch/pkg/notify"
)

type options struct {
	logger       *slog.Logger
	now          func() time.Time
	observers    []notify.Observer
	schedule     string
	recipients   []string
	dashboardURL string
}

// Option configures the constructors in this package.
type Option func(*options)

func buildOptions(opts []Option) *options {
	o := &options{
		logger:   logger.NewNope(),
		now:      time.Now,
		schedule: DefaultDigestSchedule,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets the logger for delivery and digest tasks.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithClock overrides time.Now for delivery timestamps and digest titles.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithObserver adds an observer for deliveries made by DeliverTask.
func WithObserver(obs notify.Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observers = append(o.observers, obs)
		}
	}
}

// WithDigestSchedule sets the digest cron expression.
func WithDigestSchedule(expr string) Option {
	return func(o *options) {
		if expr != "" {
			o.schedule = expr
		}
	}
}

// WithDigestRecipients sets who receives the digest. Without recipients
// the digest is skipped.
func WithDigestRecipients(recipients ...string) Option {
	return func(o *options) { o.recipients = append(o.recipients, recipients...) }
}

// WithDashboardURL adds a dashboard button to the digest.
func WithDashboardURL(url string) Option {
	return func(o *options) { o.dashboardURL = url }
}

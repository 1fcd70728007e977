package notify

import (
	"io/fs"
	"log/slog"
	"time"

	"github.com/dmitrymomot/dispatch/pkg/i18n"
	"github.com/dmitrymomot/dispatch/pkg/logger"
)

const (
	DefaultDelay       = time.Second
	DefaultSendTimeout = 30 * time.Second
)

// options is shared by every constructor in this package; each one reads
// only the fields it cares about.
type options struct {
	logger *slog.Logger
	now    func() time.Time

	// resolver
	templates       fs.FS
	locale          *i18n.LocaleFormat
	brand           string
	fallbackSubject string

	// transport
	sendTimeout time.Duration

	// queue and bulk
	delay            time.Duration
	retry            *RetryPolicy
	priorityOrdering bool
	observers        []Observer
	concurrency      int

	// alerts
	defaultRecipients []string
	cooldown          CooldownStore
	cooldownTTL       time.Duration
}

// Option configures the constructors in this package.
type Option func(*options)

func buildOptions(opts []Option) *options {
	o := &options{
		logger:          logger.NewNope(),
		now:             time.Now,
		locale:          i18n.FormatStore(),
		brand:           "Print Shop",
		fallbackSubject: "Notification",
		sendTimeout:     DefaultSendTimeout,
		delay:           DefaultDelay,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets the logger. Nil is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithClock replaces time.Now. Used for the "now" stamp in admin digests,
// alert timestamps and delivery records.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithTemplates replaces the embedded templates. The FS must contain
// <kind>.md files at its root and layouts/base.html.
func WithTemplates(fsys fs.FS) Option {
	return func(o *options) { o.templates = fsys }
}

// WithLocale sets number and date formatting for templates.
func WithLocale(lf *i18n.LocaleFormat) Option {
	return func(o *options) {
		if lf != nil {
			o.locale = lf
		}
	}
}

// WithBrand sets the shop name shown in the layout.
func WithBrand(name string) Option {
	return func(o *options) {
		if name != "" {
			o.brand = name
		}
	}
}

// WithFallbackSubject sets the subject used when neither request nor template has one.
func WithFallbackSubject(s string) Option {
	return func(o *options) {
		if s != "" {
			o.fallbackSubject = s
		}
	}
}

// WithSendTimeout bounds a single provider call. Zero disables the bound.
func WithSendTimeout(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.sendTimeout = d
		}
	}
}

// WithDelay sets the minimum gap between two queued sends.
func WithDelay(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.delay = d
		}
	}
}

// WithRetry enables retries of connectivity and timeout failures in the queue.
// Without it the queue delivers at most once.
func WithRetry(p RetryPolicy) Option {
	return func(o *options) {
		p = p.withDefaults()
		o.retry = &p
	}
}

// WithPriorityOrdering makes the queue drain high before normal before low,
// FIFO within each priority. The default is strict FIFO.
func WithPriorityOrdering() Option {
	return func(o *options) { o.priorityOrdering = true }
}

// WithObserver registers an observer for delivery outcomes. Nil is ignored.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observers = append(o.observers, obs)
		}
	}
}

// WithBulkConcurrency caps in-flight bulk sends. Zero means unlimited.
func WithBulkConcurrency(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.concurrency = n
		}
	}
}

// WithDefaultRecipients is used by Alerts when a caller passes no recipients.
func WithDefaultRecipients(recipients ...string) Option {
	return func(o *options) { o.defaultRecipients = cleanRecipients(recipients) }
}

// WithCooldown suppresses identical alerts raised within ttl.
func WithCooldown(store CooldownStore, ttl time.Duration) Option {
	return func(o *options) {
		if store != nil && ttl > 0 {
			o.cooldown = store
			o.cooldownTTL = ttl
		}
	}
}

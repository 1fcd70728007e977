package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/dmitrymomot/dispatch/pkg/logger"
	"github.com/dmitrymomot/dispatch/pkg/notify"
)

const DefaultPrefix = "dispatch"

// Publisher sends one message. *nats.Conn satisfies it.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Observer publishes every delivery it sees. Publish failures are logged
// and never affect delivery.
type Observer struct {
	pub    Publisher
	prefix string
	logger *slog.Logger
}

// Option configures an Observer.
type Option func(*Observer)

// WithPrefix sets the first subject token (default "dispatch").
func WithPrefix(prefix string) Option {
	return func(o *Observer) {
		if p := strings.Trim(prefix, ". "); p != "" {
			o.prefix = p
		}
	}
}

// WithLogger logs publish failures.
func WithLogger(l *slog.Logger) Option {
	return func(o *Observer) {
		if l != nil {
			o.logger = l
		}
	}
}

// NewObserver publishes every delivery through pub.
func NewObserver(pub Publisher, opts ...Option) *Observer {
	o := &Observer{pub: pub, prefix: DefaultPrefix, logger: logger.NewNope()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Subject returns the subject a delivery is published on.
func (o *Observer) Subject(d notify.Delivery) string {
	return o.prefix + "." + token(string(d.Kind)) + "." + token(string(d.Status))
}

// Observe publishes d as JSON on <prefix>.<kind>.<status>. Publish errors are
// logged and never affect delivery.
func (o *Observer) Observe(ctx context.Context, d notify.Delivery) {
	data, err := json.Marshal(d)
	if err != nil {
		o.logger.ErrorContext(ctx, "failed to encode delivery event",
			logger.NotificationID(d.RequestID), logger.Error(err))
		return
	}
	subject := o.Subject(d)
	if err := o.pub.Publish(subject, data); err != nil {
		o.logger.WarnContext(ctx, "failed to publish delivery event",
			logger.NotificationID(d.RequestID),
			slog.String("subject", subject),
			logger.Error(err),
		)
	}
}

// token keeps a subject segment free of separators and wildcards.
func token(s string) string {
	if s == "" {
		return "unknown"
	}
	return strings.NewReplacer(".", "_", "*", "_", ">", "_", " ", "_").Replace(s)
}

var _ notify.Observer = (*Observer)(nil)

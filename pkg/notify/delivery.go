package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/dispatch/pkg/logger"
	"github.com/dmitrymomot/dispatch/pkg/mailer"
)

// Status is the outcome recorded for a delivery attempt.
type Status string

const (
	StatusSent     Status = "sent"
	StatusFailed   Status = "failed"
	StatusRetrying Status = "retrying" // attempt failed, another one is scheduled
	StatusDropped  Status = "dropped"  // discarded unsent at shutdown
)

// Path names the dispatch path a delivery went through.
type Path string

const (
	PathQueue   Path = "queue"
	PathBulk    Path = "bulk"
	PathDurable Path = "durable"
	PathDirect  Path = "direct"
)

// Delivery is the audit record of one attempt, handed to observers.
type Delivery struct {
	RequestID  string           `json:"request_id"`
	Kind       Kind             `json:"kind"`
	Recipients []string         `json:"recipients"`
	Subject    string           `json:"subject,omitempty"`
	Priority   Priority         `json:"priority"`
	Status     Status           `json:"status"`
	MessageID  string           `json:"message_id,omitempty"`
	ErrorKind  mailer.ErrorKind `json:"error_kind,omitempty"`
	Error      string           `json:"error,omitempty"`
	Attempt    int              `json:"attempt"`
	Path       Path             `json:"path"`
	Duration   time.Duration    `json:"duration"`
	At         time.Time        `json:"at"`
}

// Observer receives delivery records. Implementations must be safe for
// concurrent use; bulk sends report from many goroutines.
type Observer interface {
	Observe(ctx context.Context, d Delivery)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, d Delivery)

func (f ObserverFunc) Observe(ctx context.Context, d Delivery) { f(ctx, d) }

// observers fans a record out to every observer, isolating panics.
type observers struct {
	list   []Observer
	logger *slog.Logger
}

// FanOut returns an Observer that forwards to every observer in list.
// A panicking observer is logged and skipped.
func FanOut(log *slog.Logger, list ...Observer) Observer {
	if log == nil {
		log = logger.NewNope()
	}
	return observers{list: list, logger: log}
}

func (o observers) Observe(ctx context.Context, d Delivery) { o.notify(ctx, d) }

func (o observers) notify(ctx context.Context, d Delivery) {
	for _, obs := range o.list {
		func() {
			defer func() {
				if r := recover(); r != nil {
					o.logger.ErrorContext(ctx, "delivery observer panicked",
						logger.NotificationID(d.RequestID),
						slog.Any("panic", r),
					)
				}
			}()
			obs.Observe(ctx, d)
		}()
	}
}

// NewDelivery builds a record for req from a transport result.
func NewDelivery(req Request, subject string, res Result, attempt int, path Path, at time.Time) Delivery {
	d := Delivery{
		RequestID:  req.ID,
		Kind:       req.Kind,
		Recipients: req.Recipients,
		Subject:    subject,
		Priority:   req.Priority,
		Status:     StatusSent,
		MessageID:  res.MessageID,
		ErrorKind:  res.ErrorKind,
		Attempt:    attempt,
		Path:       path,
		Duration:   res.Duration,
		At:         at,
	}
	if res.Err != nil {
		d.Status = StatusFailed
		d.Error = res.Err.Error()
	}
	return d
}

// FailedDelivery records a request that never reached the transport.
func FailedDelivery(req Request, err error, kind mailer.ErrorKind, path Path, at time.Time) Delivery {
	return Delivery{
		RequestID:  req.ID,
		Kind:       req.Kind,
		Recipients: req.Recipients,
		Subject:    req.Subject,
		Priority:   req.Priority,
		Status:     StatusFailed,
		ErrorKind:  kind,
		Error:      err.Error(),
		Path:       path,
		At:         at,
	}
}

package durable

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/dispatch/pkg/job"
	"github.com/dmitrymomot/dispatch/pkg/logger"
	"github.com/dmitrymomot/dispatch/pkg/mailer"
	"github.com/dmitrymomot/dispatch/pkg/notify"
)

// DeliverTask renders and sends one request per job. Retryable transport
// failures are returned so River retries them; anything else cancels the job.
type DeliverTask struct {
	resolver  notify.Resolver
	transport notify.Deliverer
	observer  notify.Observer
	logger    *slog.Logger
	now       func() time.Time
}

// NewDeliverTask returns the task that renders and sends one request per job.
// Connectivity and timeout failures are retried by the job manager; invalid
// requests, render errors and rejected sends cancel the job.
func NewDeliverTask(resolver notify.Resolver, transport notify.Deliverer, opts ...Option) *DeliverTask {
	o := buildOptions(opts)
	log := o.logger.With(logger.Component("durable"))
	return &DeliverTask{
		resolver:  resolver,
		transport: transport,
		observer:  notify.FanOut(log, o.observers...),
		logger:    log,
		now:       o.now,
	}
}

func (t *DeliverTask) Name() string { return TaskDeliver }

// Handle resolves and delivers req once and reports the outcome to observers.
func (t *DeliverTask) Handle(ctx context.Context, req notify.Request) error {
	attempt, limit := job.Attempt(ctx)
	attempt = max(attempt, 1)

	if err := req.Validate(); err != nil {
		t.observer.Observe(ctx, notify.FailedDelivery(req, err, mailer.ErrorKindRejected, notify.PathDurable, t.now()))
		return job.Permanent(err)
	}
	req = req.Normalize()
	ctx = logger.WithNotificationID(ctx, req.ID)

	email, err := t.resolver.Resolve(req)
	if err != nil {
		t.logger.ErrorContext(ctx, "notification render failed",
			logger.NotificationID(req.ID),
			logger.Kind(string(req.Kind)),
			logger.Error(err),
		)
		t.observer.Observe(ctx, notify.FailedDelivery(req, err, mailer.ErrorKindRender, notify.PathDurable, t.now()))
		return job.Permanent(err)
	}

	res := t.transport.Deliver(ctx, req, email)
	d := notify.NewDelivery(req, email.Subject, res, attempt, notify.PathDurable, t.now())

	switch {
	case res.OK():
		t.observer.Observe(ctx, d)
		return nil
	case res.Retryable():
		if attempt < limit {
			d.Status = notify.StatusRetrying
		}
		t.observer.Observe(ctx, d)
		return res.Err
	default:
		t.observer.Observe(ctx, d)
		return job.Permanent(res.Err)
	}
}

package durable

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/dispatch/pkg/job"
	"github.com/dmitrymomot/dispatch/pkg/logger"
	"github.com/dmitrymomot/dispatch/pkg/notify"
)

const (
	TaskDeliver = "notify_deliver"
	TaskDigest  = "notify_digest"

	// Queue is the River queue durable deliveries run on.
	Queue = "notifications"

	DefaultDigestSchedule = "0 8 * * *"
)

// Scheduler inserts jobs. Both job.Manager and job.Enqueuer satisfy it.
type Scheduler interface {
	Enqueue(ctx context.Context, name string, payload any, opts ...job.EnqueueOption) (int64, error)
}

// Durable hands requests to the job system instead of the in-memory queue.
type Durable struct {
	jobs   Scheduler
	logger *slog.Logger
}

var _ notify.Enqueuer = (*Durable)(nil)

// New returns an Enqueuer that stores requests as durable jobs on jobs.
func New(jobs Scheduler, opts ...Option) *Durable {
	o := buildOptions(opts)
	return &Durable{jobs: jobs, logger: o.logger.With(logger.Component("durable"))}
}

// Enqueue validates req and inserts a delivery job. The returned ID is the
// notification ID, not the job ID.
func (d *Durable) Enqueue(ctx context.Context, req notify.Request) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	req = req.Normalize()

	jobID, err := d.jobs.Enqueue(ctx, TaskDeliver, req,
		job.InQueue(Queue),
		job.Priority(jobPriority(req.Priority)),
		job.Tags(string(req.Kind)),
	)
	if err != nil {
		return "", fmt.Errorf("durable: enqueue %s: %w", req.Kind, err)
	}

	d.logger.InfoContext(ctx, "notification scheduled",
		logger.NotificationID(req.ID),
		logger.Kind(string(req.Kind)),
		logger.Priority(string(req.Priority)),
		slog.Int64("job_id", jobID),
	)
	return req.ID, nil
}

// jobPriority maps notification priority onto River's 1 (first) to 4 scale.
func jobPriority(p notify.Priority) int {
	switch p {
	case notify.PriorityHigh:
		return 1
	case notify.PriorityLow:
		return 3
	default:
		return 2
	}
}

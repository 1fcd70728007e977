// Package job runs background tasks on River, a Postgres-backed queue.
//
// Every task shares one River job kind; a registry maps the task name carried
// in the job arguments to its handler. Tasks use structural typing, so callers
// never import a job interface:
//
//	type DeliverTask struct{ ... }
//
//	func (t *DeliverTask) Name() string { return "notify_deliver" }
//
//	func (t *DeliverTask) Handle(ctx context.Context, req notify.Request) error { ... }
//
// Periodic tasks add Schedule, a five-field cron expression:
//
//	func (t *DigestTask) Schedule() string { return "0 8 * * *" }
//	func (t *DigestTask) Handle(ctx context.Context) error { ... }
//
// Wiring:
//
//	if err := job.Migrate(ctx, pool, log); err != nil { ... }
//
//	m, err := job.NewManager(pool,
//	    job.WithLogger(log),
//	    job.WithQueue("notifications", 4),
//	    job.WithTask[notify.Request](deliver),
//	    job.WithScheduledTask(digest),
//	)
//
//	_, err = m.Enqueue(ctx, "notify_deliver", req, job.InQueue("notifications"), job.Priority(1))
//
// A handler error is retried with River's backoff until MaxAttempts. Wrap it
// with Permanent to cancel the job instead. Payloads that do not decode are
// cancelled the same way.
//
// Enqueuer inserts jobs without running workers; the CLI uses it to hand work
// to a running service.
package job

package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/dispatch/pkg/logger"
	"github.com/dmitrymomot/dispatch/pkg/mailer"
)

// BulkResult counts settled bulk sends. Success+Failed equals the input length.
type BulkResult struct {
	Success int `json:"success"`
	Failed  int `json:"failed"`
}

// Bulk sends many requests concurrently, bypassing the queue. There is no
// pacing and no ordering between items.
type Bulk struct {
	resolver    Resolver
	transport   Deliverer
	logger      *slog.Logger
	now         func() time.Time
	concurrency int
	obs         observers
}

// NewBulk reads WithBulkConcurrency, WithObserver, WithLogger and WithClock.
func NewBulk(resolver Resolver, transport Deliverer, opts ...Option) *Bulk {
	o := buildOptions(opts)
	return &Bulk{
		resolver:    resolver,
		transport:   transport,
		logger:      o.logger.With(logger.Component("bulk")),
		now:         o.now,
		concurrency: o.concurrency,
		obs:         observers{list: o.observers, logger: o.logger},
	}
}

// Send attempts every request once and waits for all of them to settle.
// A failing item never stops the others.
func (b *Bulk) Send(ctx context.Context, reqs []Request) BulkResult {
	var success, failed atomic.Int64

	var g errgroup.Group
	if b.concurrency > 0 {
		g.SetLimit(b.concurrency)
	}

	for _, req := range reqs {
		g.Go(func() error {
			if b.sendOne(ctx, req) {
				success.Add(1)
			} else {
				failed.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	res := BulkResult{Success: int(success.Load()), Failed: int(failed.Load())}
	b.logger.InfoContext(ctx, "bulk send finished",
		slog.Int("total", len(reqs)),
		slog.Int("success", res.Success),
		slog.Int("failed", res.Failed),
	)
	return res
}

func (b *Bulk) sendOne(ctx context.Context, req Request) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("%w: %v", ErrSenderPanic, r)
			b.logger.ErrorContext(ctx, "bulk item panicked", logger.NotificationID(req.ID), logger.Error(err))
			b.obs.notify(ctx, FailedDelivery(req, err, mailer.ErrorKindUnknown, PathBulk, b.now()))
			ok = false
		}
	}()

	if err := req.Validate(); err != nil {
		b.logger.WarnContext(ctx, "bulk item rejected", logger.Kind(string(req.Kind)), logger.Error(err))
		b.obs.notify(ctx, FailedDelivery(req, err, mailer.ErrorKindRejected, PathBulk, b.now()))
		return false
	}
	req = req.Normalize()
	ctx = logger.WithNotificationID(ctx, req.ID)

	email, err := b.resolver.Resolve(req)
	if err != nil {
		b.logger.ErrorContext(ctx, "bulk item render failed", logger.NotificationID(req.ID), logger.Error(err))
		b.obs.notify(ctx, FailedDelivery(req, err, mailer.ErrorKindRender, PathBulk, b.now()))
		return false
	}

	res := b.transport.Deliver(ctx, req, email)
	b.obs.notify(ctx, NewDelivery(req, email.Subject, res, 1, PathBulk, b.now()))
	return res.OK()
}

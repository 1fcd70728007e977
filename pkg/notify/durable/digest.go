package durable

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/dmitrymomot/dispatch/pkg/logger"
	"github.com/dmitrymomot/dispatch/pkg/notify"
)

// StatsSource reports queue counters. *notify.Queue satisfies it.
type StatsSource interface {
	Stats() notify.Stats
}

// DigestTask periodically mails an admin_alert summarising queue activity
// since the previous digest.
type DigestTask struct {
	stats        StatsSource
	out          notify.Enqueuer
	recipients   []string
	schedule     string
	dashboardURL string
	logger       *slog.Logger
	now          func() time.Time

	mu   sync.Mutex
	prev notify.Stats
}

// NewDigestTask reports stats through out, usually the in-memory queue.
func NewDigestTask(stats StatsSource, out notify.Enqueuer, opts ...Option) *DigestTask {
	o := buildOptions(opts)
	return &DigestTask{
		stats:        stats,
		out:          out,
		recipients:   o.recipients,
		schedule:     o.schedule,
		dashboardURL: o.dashboardURL,
		logger:       o.logger.With(logger.Component("digest")),
		now:          o.now,
	}
}

func (t *DigestTask) Name() string     { return TaskDigest }
func (t *DigestTask) Schedule() string { return t.schedule }

// Handle sends one admin digest built from the current queue stats.
func (t *DigestTask) Handle(ctx context.Context) error {
	if len(t.recipients) == 0 {
		t.logger.DebugContext(ctx, "digest skipped, no recipients")
		return nil
	}

	cur := t.stats.Stats()
	t.mu.Lock()
	prev := t.prev
	t.prev = cur
	t.mu.Unlock()

	payload := Summary(prev, cur, t.now())
	payload.DashboardURL = t.dashboardURL

	id, err := t.out.Enqueue(ctx, notify.NewRequest(payload, t.recipients...))
	if err != nil {
		return fmt.Errorf("durable: enqueue digest: %w", err)
	}
	t.logger.InfoContext(ctx, "digest enqueued", logger.NotificationID(id))
	return nil
}

// Summary builds the digest payload from two stats snapshots.
func Summary(prev, cur notify.Stats, at time.Time) notify.AdminAlert {
	count := func(v int64) string { return strconv.FormatInt(v, 10) }
	return notify.AdminAlert{
		Title: "Notification digest " + at.Format("2006-01-02"),
		Summary: fmt.Sprintf("The queue is %s with %d pending. Counts cover the period since the last digest.",
			cur.State, cur.Pending),
		Metrics: []notify.Metric{
			{Label: "Enqueued", Value: count(cur.Enqueued - prev.Enqueued)},
			{Label: "Sent", Value: count(cur.Sent - prev.Sent)},
			{Label: "Failed", Value: count(cur.Failed - prev.Failed)},
			{Label: "Retried", Value: count(cur.Retried - prev.Retried)},
			{Label: "Dropped", Value: count(cur.Dropped - prev.Dropped)},
		},
	}
}

package durable

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dispatch/pkg/notify"
)

type staticStats struct{ s notify.Stats }

func (s *staticStats) Stats() notify.Stats { return s.s }

type captureEnqueuer struct{ reqs []notify.Request }

func (c *captureEnqueuer) Enqueue(_ context.Context, req notify.Request) (string, error) {
	req = req.Normalize()
	c.reqs = append(c.reqs, req)
	return req.ID, nil
}

func TestDigestTask_Defaults(t *testing.T) {
	t.Parallel()

	task := NewDigestTask(&staticStats{}, &captureEnqueuer{})
	assert.Equal(t, TaskDigest, task.Name())
	assert.Equal(t, DefaultDigestSchedule, task.Schedule())

	custom := NewDigestTask(&staticStats{}, &captureEnqueuer{}, WithDigestSchedule("*/5 * * * *"))
	assert.Equal(t, "*/5 * * * *", custom.Schedule())
}

func TestDigestTask_SkipsWithoutRecipients(t *testing.T) {
	t.Parallel()

	out := &captureEnqueuer{}
	require.NoError(t, NewDigestTask(&staticStats{}, out).Handle(context.Background()))
	assert.Empty(t, out.reqs)
}

func TestDigestTask_ReportsDeltas(t *testing.T) {
	t.Parallel()

	stats := &staticStats{s: notify.Stats{State: notify.StateIdle, Enqueued: 10, Sent: 8, Failed: 2}}
	out := &captureEnqueuer{}
	task := NewDigestTask(stats, out,
		WithDigestRecipients("ops@example.com"),
		WithDashboardURL("https://shop.example.com/admin"),
		WithClock(func() time.Time { return fixedNow }),
	)

	require.NoError(t, task.Handle(context.Background()))

	stats.s = notify.Stats{State: notify.StateDraining, Pending: 1, Enqueued: 15, Sent: 12, Failed: 2, Retried: 1}
	require.NoError(t, task.Handle(context.Background()))

	require.Len(t, out.reqs, 2)
	for _, req := range out.reqs {
		assert.Equal(t, notify.KindAdminAlert, req.Kind)
		assert.Equal(t, []string{"ops@example.com"}, req.Recipients)
	}

	first := out.reqs[0].Payload.(notify.AdminAlert)
	assert.Equal(t, "Notification digest 2025-03-07", first.Title)
	assert.Equal(t, "https://shop.example.com/admin", first.DashboardURL)
	assert.Equal(t, "10", first.Metrics[0].Value)

	second := out.reqs[1].Payload.(notify.AdminAlert)
	assert.Contains(t, second.Summary, "draining with 1 pending")
	assert.Equal(t, []notify.Metric{
		{Label: "Enqueued", Value: "5"},
		{Label: "Sent", Value: "4"},
		{Label: "Failed", Value: "0"},
		{Label: "Retried", Value: "1"},
		{Label: "Dropped", Value: "0"},
	}, second.Metrics)
}

func TestSummary_RendersThroughResolver(t *testing.T) {
	t.Parallel()

	payload := Summary(notify.Stats{}, notify.Stats{State: notify.StateIdle, Sent: 3}, fixedNow)
	email, err := notify.NewTemplateResolver().Resolve(notify.NewRequest(payload, "ops@example.com"))
	require.NoError(t, err)
	assert.Equal(t, "[Admin] Notification digest 2025-03-07", email.Subject)
	assert.Contains(t, email.Text, "Sent")
}

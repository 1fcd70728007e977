package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureEnqueuer struct {
	mu   sync.Mutex
	reqs []Request
}

func (c *captureEnqueuer) Enqueue(_ context.Context, req Request) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	req = req.Normalize()
	c.reqs = append(c.reqs, req)
	return req.ID, nil
}

type mapCooldown struct {
	mu   sync.Mutex
	keys map[string]bool
	err  error
}

func (m *mapCooldown) SetNX(_ context.Context, key string, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	if m.keys == nil {
		m.keys = make(map[string]bool)
	}
	if m.keys[key] {
		return false, nil
	}
	m.keys[key] = true
	return true, nil
}

func (m *mapCooldown) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, key)
	return nil
}

// flakyEnqueuer fails the first failures calls, then captures.
type flakyEnqueuer struct {
	captureEnqueuer
	failures int
	calls    int
}

func (f *flakyEnqueuer) Enqueue(ctx context.Context, req Request) (string, error) {
	f.calls++
	if f.calls <= f.failures {
		return "", ErrQueueClosed
	}
	return f.captureEnqueuer.Enqueue(ctx, req)
}

func TestAlerts_StockAlert(t *testing.T) {
	t.Parallel()

	q := &captureEnqueuer{}
	a := NewAlerts(q)

	items := []StockItem{{SKU: "PAP-A4", Name: "A4 paper", CurrentStock: 2, MinimumStock: 10}}
	id, err := a.StockAlert(context.Background(), items, "ops@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	require.Len(t, q.reqs, 1)
	req := q.reqs[0]
	assert.Equal(t, KindStockAlert, req.Kind)
	assert.Equal(t, PriorityHigh, req.Priority)
	assert.Equal(t, []string{"ops@example.com"}, req.Recipients)
	assert.Equal(t, items, req.Payload.(StockAlert).Items)

	_, err = a.StockAlert(context.Background(), nil, "ops@example.com")
	require.ErrorIs(t, err, ErrNoItems)
	assert.Len(t, q.reqs, 1)
}

func TestAlerts_ProductionAlertPriority(t *testing.T) {
	t.Parallel()

	tests := []struct {
		alertType ProductionAlertType
		want      Priority
	}{
		{ProductionError, PriorityHigh},
		{ProductionDelay, PriorityNormal},
		{ProductionInfo, PriorityNormal},
	}

	for _, tt := range tests {
		q := &captureEnqueuer{}
		a := NewAlerts(q, WithClock(fixedClock))

		_, err := a.ProductionAlert(context.Background(), "PS-1", tt.alertType, "Printer jammed", "floor@example.com")
		require.NoError(t, err)
		require.Len(t, q.reqs, 1)

		req := q.reqs[0]
		assert.Equal(t, tt.want, req.Priority, tt.alertType)
		payload := req.Payload.(ProductionAlert)
		assert.Equal(t, tt.alertType, payload.AlertType)
		assert.Equal(t, fixedNow, payload.ReportedAt)
	}

	_, err := NewAlerts(&captureEnqueuer{}).ProductionAlert(context.Background(), "PS-1", "fire", "x", "a@example.com")
	require.ErrorIs(t, err, ErrInvalidAlertType)
}

func TestAlerts_SystemAlertPriority(t *testing.T) {
	t.Parallel()

	tests := []struct {
		severity Severity
		want     Priority
	}{
		{SeverityCritical, PriorityHigh},
		{SeverityWarning, PriorityNormal},
		{SeverityInfo, PriorityNormal},
	}

	for _, tt := range tests {
		q := &captureEnqueuer{}
		_, err := NewAlerts(q).SystemAlert(context.Background(), "disk_space", "Disk full", tt.severity, "ops@example.com")
		require.NoError(t, err)
		require.Len(t, q.reqs, 1)
		assert.Equal(t, tt.want, q.reqs[0].Priority, tt.severity)
		assert.Equal(t, KindSystemNotification, q.reqs[0].Kind)
	}

	_, err := NewAlerts(&captureEnqueuer{}).SystemAlert(context.Background(), "x", "y", "fatal", "a@example.com")
	require.ErrorIs(t, err, ErrInvalidSeverity)
}

func TestAlerts_DefaultRecipients(t *testing.T) {
	t.Parallel()

	q := &captureEnqueuer{}
	a := NewAlerts(q, WithDefaultRecipients("ops@example.com", " "))

	_, err := a.SystemAlert(context.Background(), "queue_backlog", "Backlog", SeverityWarning)
	require.NoError(t, err)
	assert.Equal(t, []string{"ops@example.com"}, q.reqs[0].Recipients)

	_, err = NewAlerts(q).SystemAlert(context.Background(), "queue_backlog", "Backlog", SeverityWarning)
	require.ErrorIs(t, err, ErrNoRecipients)
}

func TestAlerts_Cooldown(t *testing.T) {
	t.Parallel()

	q := &captureEnqueuer{}
	a := NewAlerts(q, WithCooldown(&mapCooldown{}, time.Minute))
	items := []StockItem{{SKU: "B"}, {SKU: "A"}}

	_, err := a.StockAlert(context.Background(), items, "ops@example.com")
	require.NoError(t, err)

	// Same SKUs in another order share the cooldown key.
	_, err = a.StockAlert(context.Background(), []StockItem{{SKU: "A"}, {SKU: "B"}}, "ops@example.com")
	require.ErrorIs(t, err, ErrSuppressed)

	_, err = a.StockAlert(context.Background(), []StockItem{{SKU: "C"}}, "ops@example.com")
	require.NoError(t, err)
	assert.Len(t, q.reqs, 2)
}

func TestAlerts_CooldownReleasedWhenEnqueueFails(t *testing.T) {
	t.Parallel()

	q := &flakyEnqueuer{failures: 1}
	cooldown := &mapCooldown{}
	a := NewAlerts(q, WithCooldown(cooldown, time.Minute))

	_, err := a.SystemAlert(context.Background(), "db", "down", SeverityCritical, "ops@example.com")
	require.ErrorIs(t, err, ErrQueueClosed)
	assert.Empty(t, cooldown.keys)

	id, err := a.SystemAlert(context.Background(), "db", "down", SeverityCritical, "ops@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Len(t, q.reqs, 1)
	assert.Equal(t, 2, q.calls)

	_, err = a.SystemAlert(context.Background(), "db", "down", SeverityCritical, "ops@example.com")
	require.ErrorIs(t, err, ErrSuppressed)
	assert.Equal(t, 2, q.calls)
}

func TestAlerts_CooldownFailsOpen(t *testing.T) {
	t.Parallel()

	q := &captureEnqueuer{}
	a := NewAlerts(q, WithCooldown(&mapCooldown{err: errors.New("redis down")}, time.Minute))

	for range 2 {
		_, err := a.SystemAlert(context.Background(), "db", "down", SeverityCritical, "ops@example.com")
		require.NoError(t, err)
	}
	assert.Len(t, q.reqs, 2)
}

func TestAlerts_EndToEndThroughQueue(t *testing.T) {
	t.Parallel()

	d := &fakeDeliverer{}
	q := startQueue(t, NewTemplateResolver(), d, WithDelay(0))
	a := NewAlerts(q)

	for _, sku := range []string{"A", "B", "C"} {
		_, err := a.StockAlert(context.Background(), []StockItem{{SKU: sku, Name: sku, MinimumStock: 5}}, "ops@example.com")
		require.NoError(t, err)
	}
	waitIdle(t, q)

	calls := d.Calls()
	require.Len(t, calls, 3)
	for i, sku := range []string{"A", "B", "C"} {
		assert.Equal(t, sku, firstSKU(calls[i].req))
		assert.Equal(t, "Low stock: 1 item(s) below minimum", calls[i].subject)
	}
	assert.Equal(t, StateIdle, q.State())
}

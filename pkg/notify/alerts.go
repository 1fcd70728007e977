package notify

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/dmitrymomot/dispatch/pkg/logger"
)

// CooldownStore remembers recently raised alerts. SetNX reports true when
// key was absent and is now held for ttl. Delete releases a claim whose
// alert never reached the queue.
type CooldownStore interface {
	SetNX(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
}

// Alerts builds operational alert requests and enqueues them. Each method
// enqueues exactly one request and returns its ID; delivery is not awaited.
type Alerts struct {
	queue       Enqueuer
	logger      *slog.Logger
	now         func() time.Time
	recipients  []string
	cooldown    CooldownStore
	cooldownTTL time.Duration
}

// NewAlerts wires alerts to q. Reads WithDefaultRecipients, WithCooldown,
// WithLogger and WithClock.
func NewAlerts(q Enqueuer, opts ...Option) *Alerts {
	o := buildOptions(opts)
	return &Alerts{
		queue:       q,
		logger:      o.logger.With(logger.Component("alerts")),
		now:         o.now,
		recipients:  o.defaultRecipients,
		cooldown:    o.cooldown,
		cooldownTTL: o.cooldownTTL,
	}
}

// StockAlert reports SKUs below their minimum stock. Always high priority.
func (a *Alerts) StockAlert(ctx context.Context, items []StockItem, recipients ...string) (string, error) {
	if len(items) == 0 {
		return "", ErrNoItems
	}
	skus := make([]string, 0, len(items))
	for _, it := range items {
		skus = append(skus, it.SKU)
	}
	slices.Sort(skus)

	payload := StockAlert{Items: slices.Clone(items)}
	return a.raise(ctx, "stock:"+strings.Join(skus, ","), payload, PriorityHigh, recipients)
}

// ProductionAlert reports a delay, error or info event on an order.
// Errors are high priority, everything else normal.
func (a *Alerts) ProductionAlert(ctx context.Context, orderRef string, alertType ProductionAlertType, message string, recipients ...string) (string, error) {
	if !alertType.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidAlertType, alertType)
	}
	priority := PriorityNormal
	if alertType == ProductionError {
		priority = PriorityHigh
	}
	payload := ProductionAlert{
		OrderRef:   orderRef,
		AlertType:  alertType,
		Message:    message,
		ReportedAt: a.now(),
	}
	return a.raise(ctx, "production:"+orderRef+":"+string(alertType), payload, priority, recipients)
}

// SystemAlert reports a system health event. Critical severity is high
// priority, everything else normal.
func (a *Alerts) SystemAlert(ctx context.Context, alertType, description string, severity Severity, recipients ...string) (string, error) {
	if !severity.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidSeverity, severity)
	}
	priority := PriorityNormal
	if severity == SeverityCritical {
		priority = PriorityHigh
	}
	payload := SystemNotification{
		AlertType:   alertType,
		Description: description,
		Severity:    severity,
	}
	return a.raise(ctx, "system:"+alertType+":"+string(severity), payload, priority, recipients)
}

func (a *Alerts) raise(ctx context.Context, key string, payload Payload, priority Priority, recipients []string) (string, error) {
	if len(cleanRecipients(recipients)) == 0 {
		recipients = a.recipients
	}
	req := NewRequest(payload, recipients...).WithPriority(priority)
	if err := req.Validate(); err != nil {
		return "", err
	}

	key = "alert:" + key
	if a.suppressed(ctx, key) {
		a.logger.InfoContext(ctx, "alert suppressed by cooldown",
			logger.Kind(string(req.Kind)),
			slog.String("key", key),
		)
		return "", ErrSuppressed
	}

	id, err := a.queue.Enqueue(ctx, req)
	if err != nil {
		a.release(ctx, key)
		return "", err
	}
	return id, nil
}

// release frees the cooldown key of an alert that was not enqueued, so a
// retry is not suppressed.
func (a *Alerts) release(ctx context.Context, key string) {
	if a.cooldown == nil {
		return
	}
	if err := a.cooldown.Delete(context.WithoutCancel(ctx), key); err != nil {
		a.logger.WarnContext(ctx, "alert cooldown release failed",
			slog.String("key", key),
			logger.Error(err),
		)
	}
}

// suppressed fails open: a cooldown store error never blocks an alert.
func (a *Alerts) suppressed(ctx context.Context, key string) bool {
	if a.cooldown == nil {
		return false
	}
	ok, err := a.cooldown.SetNX(ctx, key, a.cooldownTTL)
	if err != nil {
		a.logger.WarnContext(ctx, "alert cooldown check failed", logger.Error(err))
		return false
	}
	return !ok
}

package notify

import (
	"fmt"
	"strings"

	"github.com/dmitrymomot/dispatch/pkg/mailer"
)

// Kind identifies a notification type. The set is closed.
type Kind string

const (
	KindOrderConfirmation    Kind = "order_confirmation"
	KindOrderStatus          Kind = "order_status"
	KindProductionAlert      Kind = "production_alert"
	KindStockAlert           Kind = "stock_alert"
	KindPaymentConfirmation  Kind = "payment_confirmation"
	KindShippingNotification Kind = "shipping_notification"
	KindQualityIssue         Kind = "quality_issue"
	KindCustomerNotification Kind = "customer_notification"
	KindAdminAlert           Kind = "admin_alert"
	KindSystemNotification   Kind = "system_notification"
	KindWelcome              Kind = "welcome"
	KindPasswordReset        Kind = "password_reset"
)

var allKinds = []Kind{
	KindOrderConfirmation,
	KindOrderStatus,
	KindProductionAlert,
	KindStockAlert,
	KindPaymentConfirmation,
	KindShippingNotification,
	KindQualityIssue,
	KindCustomerNotification,
	KindAdminAlert,
	KindSystemNotification,
	KindWelcome,
	KindPasswordReset,
}

// Kinds returns every notification kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, len(allKinds))
	copy(out, allKinds)
	return out
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	_, ok := payloadDecoders[k]
	return ok
}

func (k Kind) String() string { return string(k) }

// ParseKind converts s to a Kind, accepting any letter case.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
	return k, nil
}

// Priority is advisory. It becomes provider headers and, when the queue is
// built with WithPriorityOrdering, decides drain order.
type Priority = mailer.Priority

const (
	PriorityLow    = mailer.PriorityLow
	PriorityNormal = mailer.PriorityNormal
	PriorityHigh   = mailer.PriorityHigh
)

// ParsePriority converts s to a Priority. Empty input yields PriorityNormal.
func ParsePriority(s string) (Priority, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return PriorityNormal, nil
	}
	p := Priority(s)
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPriority, s)
	}
	return p, nil
}

// priorityRank orders priorities for the priority-aware queue (lower drains first).
func priorityRank(p Priority) int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityLow:
		return 2
	default:
		return 1
	}
}

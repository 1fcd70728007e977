package notify

import "errors"

var (
	ErrUnknownKind      = errors.New("notify: unknown notification kind")
	ErrInvalidPriority  = errors.New("notify: invalid priority")
	ErrNoRecipients     = errors.New("notify: at least one recipient is required")
	ErrPayloadMismatch  = errors.New("notify: payload does not match kind")
	ErrTemplateNotFound = errors.New("notify: template not found")
	ErrRenderFailed     = errors.New("notify: render failed")
	ErrSenderPanic      = errors.New("notify: sender panicked")
	ErrQueueClosed      = errors.New("notify: queue is closed")
	ErrQueueRunning     = errors.New("notify: queue already started")

	ErrNoItems          = errors.New("notify: stock alert requires at least one item")
	ErrInvalidAlertType = errors.New("notify: invalid production alert type")
	ErrInvalidSeverity  = errors.New("notify: invalid severity")
	ErrSuppressed       = errors.New("notify: alert suppressed by cooldown")
)

package mailer

import (
	"context"
	"errors"
	"net"
	"net/textproto"
)

var (
	// ErrNoRecipient indicates no recipient was specified.
	ErrNoRecipient = errors.New("email must have at least one recipient")

	// ErrNoSubject indicates no subject was provided.
	ErrNoSubject = errors.New("email must have a subject")

	// ErrNoContent indicates no HTML content was provided.
	ErrNoContent = errors.New("email must have HTML content")

	// ErrTemplateNotFound indicates the template file was not found.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrLayoutNotFound indicates the layout file was not found.
	ErrLayoutNotFound = errors.New("layout not found")

	// ErrRenderFailed indicates template rendering failed.
	ErrRenderFailed = errors.New("failed to render template")

	// ErrSendFailed indicates email sending failed.
	ErrSendFailed = errors.New("failed to send email")

	// ErrInvalidFrontmatter indicates invalid YAML frontmatter.
	ErrInvalidFrontmatter = errors.New("invalid frontmatter")

	// ErrInvalidConfig indicates a provider was constructed with unusable settings.
	ErrInvalidConfig = errors.New("invalid mailer configuration")
)

// ErrorKind is a coarse classification of a delivery failure.
type ErrorKind string

const (
	ErrorKindNone         ErrorKind = ""
	ErrorKindAuth         ErrorKind = "auth"
	ErrorKindConnectivity ErrorKind = "connectivity"
	ErrorKindRejected     ErrorKind = "rejected"
	ErrorKindTimeout      ErrorKind = "timeout"
	ErrorKindRender       ErrorKind = "render"
	ErrorKindUnknown      ErrorKind = "unknown"
)

// Retryable reports whether another attempt may succeed without changes to the message.
func (k ErrorKind) Retryable() bool {
	return k == ErrorKindConnectivity || k == ErrorKindTimeout
}

// DeliveryError carries a provider-determined ErrorKind alongside the cause.
type DeliveryError struct {
	Err  error
	Kind ErrorKind
}

// NewDeliveryError wraps err with a known failure kind.
func NewDeliveryError(kind ErrorKind, err error) error {
	if err == nil {
		return nil
	}
	return &DeliveryError{Kind: kind, Err: err}
}

func (e *DeliveryError) Error() string {
	return string(e.Kind) + ": " + e.Err.Error()
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// Classify maps a send error to an ErrorKind.
// Provider-tagged DeliveryErrors win; otherwise SMTP reply codes, timeouts
// and network errors are recognized. Anything else is ErrorKindUnknown.
func Classify(err error) ErrorKind {
	if err == nil {
		return ErrorKindNone
	}

	var de *DeliveryError
	if errors.As(err, &de) && de.Kind != ErrorKindNone {
		return de.Kind
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorKindTimeout
	}

	var tpErr *textproto.Error
	if errors.As(err, &tpErr) {
		return ClassifySMTPCode(tpErr.Code)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return ErrorKindTimeout
		}
		return ErrorKindConnectivity
	}

	return ErrorKindUnknown
}

// ClassifySMTPCode maps an SMTP reply code to an ErrorKind.
func ClassifySMTPCode(code int) ErrorKind {
	switch {
	case code == 530 || code == 534 || code == 535 || code == 538:
		return ErrorKindAuth
	case code >= 400 && code < 500:
		return ErrorKindConnectivity
	case code >= 500 && code < 600:
		return ErrorKindRejected
	default:
		return ErrorKindUnknown
	}
}

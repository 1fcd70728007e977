package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/dispatch/pkg/logger"
	"github.com/dmitrymomot/dispatch/pkg/mailer"
)

// Result is the outcome of one send. Err is nil on success.
type Result struct {
	MessageID string
	Err       error
	ErrorKind mailer.ErrorKind
	Duration  time.Duration
}

// OK reports whether the send succeeded.
func (r Result) OK() bool { return r.Err == nil }

// Retryable reports whether a failed send may succeed on another attempt.
func (r Result) Retryable() bool { return r.Err != nil && r.ErrorKind.Retryable() }

// Deliverer performs exactly one send of a rendered email.
type Deliverer interface {
	Deliver(ctx context.Context, req Request, email *mailer.Email) Result
}

// Transport adapts a mailer.Sender into a Deliverer. Failures never escape
// as errors or panics; they come back classified in Result.
type Transport struct {
	sender  mailer.Sender
	timeout time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

// NewTransport wraps sender. Reads WithSendTimeout, WithLogger and WithClock.
func NewTransport(sender mailer.Sender, opts ...Option) *Transport {
	o := buildOptions(opts)
	return &Transport{
		sender:  sender,
		timeout: o.sendTimeout,
		logger:  o.logger,
		now:     o.now,
	}
}

// Deliver sends email once and logs the outcome.
func (t *Transport) Deliver(ctx context.Context, req Request, email *mailer.Email) (res Result) {
	start := t.now()
	defer func() {
		if r := recover(); r != nil {
			res = Result{
				Err:       fmt.Errorf("%w: %v", ErrSenderPanic, r),
				ErrorKind: mailer.ErrorKindUnknown,
			}
		}
		res.Duration = t.now().Sub(start)
		t.log(ctx, req, email, res)
	}()

	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	id, err := t.sender.Send(ctx, email)
	if err != nil {
		return Result{Err: err, ErrorKind: mailer.Classify(err)}
	}
	return Result{MessageID: id}
}

func (t *Transport) log(ctx context.Context, req Request, email *mailer.Email, res Result) {
	attrs := []slog.Attr{
		logger.NotificationID(req.ID),
		logger.Kind(string(req.Kind)),
		logger.Recipients(len(email.To)),
		slog.String("subject", email.Subject),
		logger.Priority(string(email.Priority)),
		logger.Duration(res.Duration),
	}
	if res.OK() {
		attrs = append(attrs, logger.MessageID(res.MessageID))
		t.logger.LogAttrs(ctx, slog.LevelInfo, "notification sent", attrs...)
		return
	}
	attrs = append(attrs,
		slog.Any("to", email.To),
		logger.ErrorKind(string(res.ErrorKind)),
		logger.Error(res.Err),
	)
	t.logger.LogAttrs(ctx, slog.LevelError, "notification send failed", attrs...)
}

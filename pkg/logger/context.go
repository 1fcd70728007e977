package logger

import (
	"context"
	"log/slog"
)

type requestIDKey struct{}

// WithRequestID stores a request ID for RequestIDExtractor.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the stored request ID, if any.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// RequestIDExtractor adds request_id to records logged with a context
// carrying one.
func RequestIDExtractor(ctx context.Context) (slog.Attr, bool) {
	if id := RequestIDFromContext(ctx); id != "" {
		return RequestID(id), true
	}
	return slog.Attr{}, false
}

type notificationIDKey struct{}

// WithNotificationID stores the notification being processed so that every
// record logged with ctx, including those from mail providers, carries it.
func WithNotificationID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, notificationIDKey{}, id)
}

// NotificationIDExtractor adds notification_id from WithNotificationID.
func NotificationIDExtractor(ctx context.Context) (slog.Attr, bool) {
	if id, _ := ctx.Value(notificationIDKey{}).(string); id != "" {
		return NotificationID(id), true
	}
	return slog.Attr{}, false
}

package logger

import (
	"log/slog"
	"strconv"
	"time"
)

// Group creates a slog group attribute from the provided attributes.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Errors groups multiple non-nil errors under the key "errors".
// If all errors are nil, it returns an empty Attr.
func Errors(errs ...error) slog.Attr {
	as := make([]slog.Attr, 0, len(errs))
	for i, err := range errs {
		if err != nil {
			as = append(as, slog.String(strconv.Itoa(i), err.Error()))
		}
	}
	if len(as) == 0 {
		return slog.Attr{}
	}
	return slog.Attr{Key: "errors", Value: slog.GroupValue(as...)}
}

// Error records err under "error". Nil yields an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String("error", err.Error())
}

func RequestID(id string) slog.Attr {
	return slog.String("request_id", id)
}

func NotificationID(id string) slog.Attr {
	return slog.String("notification_id", id)
}

func MessageID(id string) slog.Attr {
	return slog.String("message_id", id)
}

// Kind records the notification kind.
func Kind(kind string) slog.Attr {
	return slog.String("kind", kind)
}

func Priority(p string) slog.Attr {
	return slog.String("priority", p)
}

// Recipients records how many recipients a message has; addresses stay out of logs.
func Recipients(n int) slog.Attr {
	return slog.Int("recipients", n)
}

func Attempt(n int) slog.Attr {
	return slog.Int("attempt", n)
}

func ErrorKind(kind string) slog.Attr {
	if kind == "" {
		return slog.Attr{}
	}
	return slog.String("error_kind", kind)
}

func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

func Component(name string) slog.Attr {
	return slog.String("component", name)
}

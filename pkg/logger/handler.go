package logger

import (
	"context"
	"errors"
	"log/slog"
)

// ContextExtractor pulls one attribute out of a context, such as the
// request or notification ID.
type ContextExtractor func(ctx context.Context) (slog.Attr, bool)

// contextHandler adds extracted attributes to each record. An extracted
// attribute is skipped when the record or the logger already carries the
// same key, so a component that logs notification_id explicitly does not
// get it twice.
type contextHandler struct {
	next       slog.Handler
	extractors []ContextExtractor
	keys       map[string]struct{} // top-level keys from WithAttrs
	grouped    bool
}

// NewContextHandler wraps next with extractors. Nil extractors are dropped.
func NewContextHandler(next slog.Handler, extractors ...ContextExtractor) slog.Handler {
	clean := make([]ContextExtractor, 0, len(extractors))
	for _, ex := range extractors {
		if ex != nil {
			clean = append(clean, ex)
		}
	}
	return &contextHandler{next: next, extractors: clean}
}

func (h *contextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *contextHandler) Handle(ctx context.Context, rec slog.Record) error {
	if len(h.extractors) == 0 {
		return h.next.Handle(ctx, rec)
	}

	var present map[string]struct{}
	rec.Attrs(func(a slog.Attr) bool {
		if present == nil {
			present = make(map[string]struct{}, rec.NumAttrs())
		}
		present[a.Key] = struct{}{}
		return true
	})

	for _, ex := range h.extractors {
		attr, ok := ex(ctx)
		if !ok {
			continue
		}
		if _, dup := present[attr.Key]; dup {
			continue
		}
		if _, dup := h.keys[attr.Key]; dup && !h.grouped {
			continue
		}
		rec.AddAttrs(attr)
	}
	return h.next.Handle(ctx, rec)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	keys := h.keys
	if !h.grouped {
		keys = make(map[string]struct{}, len(h.keys)+len(attrs))
		for k := range h.keys {
			keys[k] = struct{}{}
		}
		for _, a := range attrs {
			keys[a.Key] = struct{}{}
		}
	}
	return &contextHandler{
		next:       h.next.WithAttrs(attrs),
		extractors: h.extractors,
		keys:       keys,
		grouped:    h.grouped,
	}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &contextHandler{
		next:       h.next.WithGroup(name),
		extractors: h.extractors,
		keys:       h.keys,
		grouped:    true,
	}
}

// fanoutHandler writes each record to every handler that accepts its level.
// A failing handler does not stop the others; Sentry being unreachable must
// not cost the stdout line.
type fanoutHandler []slog.Handler

func (h fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, next := range h {
		if next.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h fanoutHandler) Handle(ctx context.Context, rec slog.Record) error {
	var errs []error
	for _, next := range h {
		if next.Enabled(ctx, rec.Level) {
			if err := next.Handle(ctx, rec.Clone()); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (h fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanoutHandler, len(h))
	for i, next := range h {
		out[i] = next.WithAttrs(attrs)
	}
	return out
}

func (h fanoutHandler) WithGroup(name string) slog.Handler {
	out := make(fanoutHandler, len(h))
	for i, next := range h {
		out[i] = next.WithGroup(name)
	}
	return out
}

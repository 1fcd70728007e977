package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Format selects the stdout encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// Config is the env-driven logger configuration.
type Config struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format Format `env:"LOG_FORMAT" envDefault:"json"`
	Sentry SentryConfig
}

type options struct {
	level      slog.Level
	format     Format
	output     io.Writer
	attrs      []slog.Attr
	extractors []ContextExtractor
	sentry     *SentryConfig
}

// Option configures New.
type Option func(*options)

// WithLevel sets the minimum level written to stdout.
func WithLevel(l slog.Level) Option {
	return func(o *options) { o.level = l }
}

// WithFormat sets output format; unknown formats fall back to JSON.
func WithFormat(f Format) Option {
	return func(o *options) {
		if f == FormatText {
			o.format = FormatText
			return
		}
		o.format = FormatJSON
	}
}

// WithOutput redirects output. Nil writers are ignored.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		if w != nil {
			o.output = w
		}
	}
}

// WithAttrs adds static attributes to every record.
func WithAttrs(attrs ...slog.Attr) Option {
	return func(o *options) { o.attrs = append(o.attrs, attrs...) }
}

// WithExtractors registers context extractors.
func WithExtractors(extractors ...ContextExtractor) Option {
	return func(o *options) { o.extractors = append(o.extractors, extractors...) }
}

// WithSentry forwards warnings and errors to Sentry when cfg.DSN is set.
func WithSentry(cfg SentryConfig) Option {
	return func(o *options) { o.sentry = &cfg }
}

// FromConfig translates a Config into options.
func FromConfig(cfg Config) []Option {
	return []Option{
		WithLevel(ParseLevel(cfg.Level)),
		WithFormat(cfg.Format),
		WithSentry(cfg.Sentry),
	}
}

// New builds a logger. Defaults: JSON to stdout at info level.
func New(opts ...Option) *slog.Logger {
	o := &options{level: slog.LevelInfo, format: FormatJSON, output: os.Stdout}
	for _, opt := range opts {
		opt(o)
	}

	handlerOpts := &slog.HandlerOptions{Level: o.level}
	var handler slog.Handler
	if o.format == FormatText {
		handler = slog.NewTextHandler(o.output, handlerOpts)
	} else {
		handler = slog.NewJSONHandler(o.output, handlerOpts)
	}

	if o.sentry != nil && o.sentry.DSN != "" {
		if sentryHandler, err := newSentryHandler(*o.sentry); err != nil {
			slog.New(handler).Error("failed to initialize Sentry", Error(err))
		} else {
			handler = fanoutHandler{handler, sentryHandler}
		}
	}

	if len(o.attrs) > 0 {
		handler = handler.WithAttrs(o.attrs)
	}

	return slog.New(NewContextHandler(handler, o.extractors...))
}

// ParseLevel maps debug/info/warn/error to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// MustParseFormat validates a format string.
func MustParseFormat(s string) Format {
	switch f := Format(strings.ToLower(s)); f {
	case FormatJSON, FormatText:
		return f
	default:
		panic(fmt.Errorf("invalid log format %q: must be %q or %q", s, FormatJSON, FormatText))
	}
}

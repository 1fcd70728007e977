package logger

import "log/slog"

// NewNope returns a logger that drops every record. Components fall back to
// it when no logger is configured.
func NewNope() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// Package logger builds slog loggers with context extraction and optional
// Sentry forwarding.
//
// Records written with a context pass through registered ContextExtractors,
// so request-scoped values such as request and notification IDs are added
// automatically. An extracted key the record already carries is not
// repeated:
//
//	log := logger.New(
//		logger.WithExtractors(logger.RequestIDExtractor, logger.NotificationIDExtractor),
//		logger.WithSentry(cfg.Sentry),
//	)
//	log.InfoContext(logger.WithRequestID(ctx, id), "notification sent",
//		logger.Kind("stock_alert"), logger.Attempt(1))
//
// When SentryConfig.DSN is set, errors become Sentry issues and warnings
// are kept as Sentry logs. Call Flush before exit.
//
// The attribute helpers in attr.go keep key names consistent across packages.
package logger

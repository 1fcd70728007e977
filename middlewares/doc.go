// Package middlewares provides the net/http middleware used by the dispatch
// API. Every constructor returns func(http.Handler) http.Handler and plugs
// into chi's Use.
//
//	r := chi.NewRouter()
//	r.Use(
//	    middlewares.RequestID(),
//	    middlewares.Logger(log),
//	    middlewares.Recover(log),
//	    metrics.Handler,
//	)
//	r.With(middlewares.BearerToken(cfg.APIToken)).Post("/v1/notifications", ...)
//
// RequestID stores the ID with logger.WithRequestID, so loggers built with
// logger.RequestIDExtractor tag every record. Recover and BearerToken reply
// with the same JSON error body the API handlers use:
//
//	{"error": {"code": "unauthorized", "message": "missing or invalid bearer token"}}
package middlewares

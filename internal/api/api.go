package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/dispatch/middlewares"
	"github.com/dmitrymomot/dispatch/pkg/health"
	"github.com/dmitrymomot/dispatch/pkg/logger"
	"github.com/dmitrymomot/dispatch/pkg/notify"
)

// Config holds API settings read from the environment.
type Config struct {
	Token          string        `env:"API_TOKEN"`
	MaxBulk        int           `env:"API_MAX_BULK" envDefault:"500"`
	RequestTimeout time.Duration `env:"API_REQUEST_TIMEOUT" envDefault:"30s"`
}

// Alerter raises operational alerts. *notify.Alerts satisfies it.
type Alerter interface {
	StockAlert(ctx context.Context, items []notify.StockItem, recipients ...string) (string, error)
	ProductionAlert(ctx context.Context, orderRef string, alertType notify.ProductionAlertType, message string, recipients ...string) (string, error)
	SystemAlert(ctx context.Context, alertType, description string, severity notify.Severity, recipients ...string) (string, error)
}

// BulkSender sends a batch immediately. *notify.Bulk satisfies it.
type BulkSender interface {
	Send(ctx context.Context, reqs []notify.Request) notify.BulkResult
}

// StatsSource reports queue counters. *notify.Queue satisfies it.
type StatsSource interface {
	Stats() notify.Stats
}

type server struct {
	queue    notify.Enqueuer
	alerts   Alerter
	bulk     BulkSender
	stats    StatsSource
	history  notify.HistoryStore
	checks   health.Checks
	optional []string
	gatherer prometheus.Gatherer
	reg      prometheus.Registerer
	logger   *slog.Logger
	cfg      Config
}

// Option configures the router.
type Option func(*server)

func WithConfig(cfg Config) Option             { return func(s *server) { s.cfg = cfg } }
func WithQueue(q notify.Enqueuer) Option       { return func(s *server) { s.queue = q } }
func WithAlerts(a Alerter) Option              { return func(s *server) { s.alerts = a } }
func WithBulk(b BulkSender) Option             { return func(s *server) { s.bulk = b } }
func WithStats(st StatsSource) Option          { return func(s *server) { s.stats = st } }
func WithHistory(h notify.HistoryStore) Option { return func(s *server) { s.history = h } }

// WithChecks sets the readiness checks. Checks named in optional degrade
// readiness instead of failing it.
func WithChecks(c health.Checks, optional ...string) Option {
	return func(s *server) {
		s.checks = c
		s.optional = optional
	}
}

// WithMetrics serves /metrics from g and records HTTP metrics into r.
func WithMetrics(r prometheus.Registerer, g prometheus.Gatherer) Option {
	return func(s *server) {
		s.reg = r
		s.gatherer = g
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *server) {
		if l != nil {
			s.logger = l
		}
	}
}

// New builds the router. Routes whose dependency is missing answer 503.
func New(opts ...Option) http.Handler {
	s := &server{
		logger: logger.NewNope(),
		cfg:    Config{MaxBulk: 500, RequestTimeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logger.Component("api"))

	r := chi.NewRouter()
	r.Use(
		middlewares.RequestID(),
		middlewares.Logger(s.logger),
		middlewares.Recover(s.logger),
	)
	if s.reg != nil {
		r.Use(middlewares.NewHTTPMetrics(s.reg).Handler)
	}

	r.Get("/health/live", health.LivenessHandler())
	r.Get("/health/ready", health.ReadinessHandler(s.checks,
		health.WithLogger(s.logger),
		health.WithOptional(s.optional...),
	))
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(
			middlewares.BearerToken(s.cfg.Token),
			middlewares.Timeout(s.cfg.RequestTimeout),
		)
		r.Post("/alerts/stock", s.handle(s.stockAlert))
		r.Post("/alerts/production", s.handle(s.productionAlert))
		r.Post("/alerts/system", s.handle(s.systemAlert))
		r.Post("/notifications", s.handle(s.enqueue))
		r.Post("/notifications/bulk", s.handle(s.sendBulk))
		r.Get("/notifications/recent", s.handle(s.recent))
		r.Get("/queue", s.handle(s.queueStats))
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		middlewares.WriteError(w, r, http.StatusNotFound, "not_found", "route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		middlewares.WriteError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed", nil)
	})

	return r
}

type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// handle renders a handler's error as the JSON error envelope.
func (s *server) handle(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := h(w, r)
		if err == nil {
			return
		}

		he := s.classify(err)
		if he.Status >= http.StatusInternalServerError {
			s.logger.ErrorContext(r.Context(), "request failed", slog.String("path", r.URL.Path), logger.Error(err))
		}
		middlewares.WriteError(w, r, he.Status, he.Code, he.Message, he.Details)
	}
}

func (s *server) classify(err error) *HTTPError {
	var he *HTTPError
	switch {
	case errors.As(err, &he):
		return he
	case isNotifyValidation(err):
		return unprocessable(err.Error(), err, nil)
	case errors.Is(err, notify.ErrSuppressed):
		return newHTTPError(http.StatusConflict, "suppressed", "an identical alert was raised recently", err)
	case errors.Is(err, notify.ErrQueueClosed):
		return newHTTPError(http.StatusServiceUnavailable, "queue_closed", "the dispatch queue is shutting down", err)
	case errors.Is(err, context.DeadlineExceeded):
		return newHTTPError(http.StatusGatewayTimeout, "timeout", "request timed out", err)
	default:
		return newHTTPError(http.StatusInternalServerError, "internal", "internal server error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

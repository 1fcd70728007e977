package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/dispatch/internal/api"
	"github.com/dmitrymomot/dispatch/pkg/cache"
	"github.com/dmitrymomot/dispatch/pkg/config"
	"github.com/dmitrymomot/dispatch/pkg/db"
	"github.com/dmitrymomot/dispatch/pkg/events"
	"github.com/dmitrymomot/dispatch/pkg/health"
	"github.com/dmitrymomot/dispatch/pkg/job"
	"github.com/dmitrymomot/dispatch/pkg/logger"
	"github.com/dmitrymomot/dispatch/pkg/mailer"
	"github.com/dmitrymomot/dispatch/pkg/notify"
	"github.com/dmitrymomot/dispatch/pkg/notify/durable"
	"github.com/dmitrymomot/dispatch/pkg/notify/history"
	"github.com/dmitrymomot/dispatch/pkg/redis"
)

// Default server timeouts.
const (
	defaultAddress           = ":8080"
	defaultShutdownTimeout   = 30 * time.Second
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 60 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20 // 1MB
)

const cooldownPrefix = "dispatch:cooldown"

// App wires the notification pipeline to its HTTP API and backing services.
// It is immutable after New.
type App struct {
	cfg       Config
	hasCfg    bool
	baseCtx   context.Context
	logger    *slog.Logger
	sender    mailer.Sender
	registry  *prometheus.Registry
	templates fs.FS
	now       func() time.Time
	addr      string

	pool *pgxpool.Pool
	rdb  goredis.UniversalClient
	nc   *nats.Conn

	resolver *notify.TemplateResolver
	queue    *notify.Queue
	bulk     *notify.Bulk
	alerts   *notify.Alerts
	history  notify.HistoryStore
	jobs     *job.Manager
	durable  *durable.Durable

	handler http.Handler
	checks  health.Checks

	// shutdownHooks run after the queue and job manager stop; closers
	// release connections last, in reverse order of opening.
	shutdownHooks []func(context.Context) error
	closers       []func(context.Context) error
}

// New loads configuration when none is given, connects the configured
// backing services and assembles the pipeline. Connections opened before
// a failure are closed again.
func New(opts ...Option) (*App, error) {
	a := &App{
		baseCtx: context.Background(),
		now:     time.Now,
		checks:  health.Checks{},
	}
	for _, opt := range opts {
		opt(a)
	}

	if !a.hasCfg {
		if err := config.Load(&a.cfg); err != nil {
			return nil, err
		}
	}
	if a.logger == nil {
		logOpts := append(logger.FromConfig(a.cfg.Log), logger.WithExtractors(logger.RequestIDExtractor, logger.NotificationIDExtractor))
		a.logger = logger.New(logOpts...)
	}
	if a.registry == nil {
		a.registry = prometheus.NewRegistry()
		a.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	if a.addr == "" {
		a.addr = a.cfg.Addr
	}
	if a.addr == "" {
		a.addr = defaultAddress
	}

	if err := a.setup(a.baseCtx); err != nil {
		if cerr := a.close(context.Background()); cerr != nil {
			err = errors.Join(err, cerr)
		}
		return nil, errors.Join(ErrSetup, err)
	}
	return a, nil
}

// Handler returns the HTTP API.
func (a *App) Handler() http.Handler { return a.handler }

// Queue returns the in-memory dispatch queue.
func (a *App) Queue() *notify.Queue { return a.queue }

// Alerts returns the alert facade bound to the queue.
func (a *App) Alerts() *notify.Alerts { return a.alerts }

// Bulk returns the bulk dispatcher.
func (a *App) Bulk() *notify.Bulk { return a.bulk }

// Resolver returns the template resolver.
func (a *App) Resolver() notify.Resolver { return a.resolver }

// History returns the delivery history store.
func (a *App) History() notify.HistoryStore { return a.history }

// Enqueuer returns where /v1/notifications sends requests: the job system
// when NOTIFY_DURABLE is set, the in-memory queue otherwise.
func (a *App) Enqueuer() notify.Enqueuer {
	if a.durable != nil {
		return a.durable
	}
	return a.queue
}

func (a *App) setup(ctx context.Context) error {
	if err := a.connect(ctx); err != nil {
		return err
	}

	if a.sender == nil {
		sender, err := NewSender(a.cfg)
		if err != nil {
			return err
		}
		a.sender = sender
	}

	store, err := a.newHistory()
	if err != nil {
		return err
	}
	a.history = store

	observers, err := a.observers()
	if err != nil {
		return err
	}

	common := []notify.Option{notify.WithLogger(a.logger), notify.WithClock(a.now)}
	for _, obs := range observers {
		common = append(common, notify.WithObserver(obs))
	}

	locale, err := LocaleFormat(a.cfg)
	if err != nil {
		return err
	}
	resolverOpts := []notify.Option{
		notify.WithLogger(a.logger),
		notify.WithClock(a.now),
		notify.WithLocale(locale),
		notify.WithBrand(a.cfg.Brand),
		notify.WithFallbackSubject(a.cfg.Mailer.FallbackSubject),
	}
	if a.templates != nil {
		resolverOpts = append(resolverOpts, notify.WithTemplates(a.templates))
	}
	a.resolver = notify.NewTemplateResolver(resolverOpts...)

	transport := notify.NewTransport(a.sender,
		notify.WithLogger(a.logger),
		notify.WithSendTimeout(a.cfg.SendTimeout),
	)

	queueOpts := append([]notify.Option{notify.WithDelay(a.cfg.Delay)}, common...)
	if a.cfg.PriorityOrder {
		queueOpts = append(queueOpts, notify.WithPriorityOrdering())
	}
	if a.cfg.RetryEnabled {
		queueOpts = append(queueOpts, notify.WithRetry(a.cfg.Retry))
	}
	a.queue = notify.NewQueue(a.resolver, transport, queueOpts...)

	a.bulk = notify.NewBulk(a.resolver, transport,
		append([]notify.Option{notify.WithBulkConcurrency(a.cfg.BulkWorkers)}, common...)...)

	alertOpts := []notify.Option{
		notify.WithLogger(a.logger),
		notify.WithClock(a.now),
		notify.WithDefaultRecipients(a.cfg.AdminEmails...),
	}
	if a.cfg.AlertCooldown > 0 {
		alertOpts = append(alertOpts, notify.WithCooldown(a.cooldownStore(), a.cfg.AlertCooldown))
	}
	a.alerts = notify.NewAlerts(a.queue, alertOpts...)

	if err := a.setupJobs(transport, observers); err != nil {
		return err
	}

	a.checks["queue"] = health.Backlog(a.queue.Len, a.cfg.BacklogLimit)

	apiOpts := []api.Option{
		api.WithConfig(a.cfg.API),
		api.WithLogger(a.logger),
		api.WithQueue(a.Enqueuer()),
		api.WithAlerts(a.alerts),
		api.WithBulk(a.bulk),
		api.WithStats(a.queue),
		api.WithHistory(a.history),
		api.WithChecks(a.checks, "nats"),
		api.WithMetrics(a.registry, a.registry),
	}
	a.handler = api.New(apiOpts...)
	return nil
}

// connect opens every backing service whose connection setting is present.
func (a *App) connect(ctx context.Context) error {
	if a.cfg.DB.Enabled() {
		pool, err := db.Connect(ctx, a.cfg.DB, a.logger)
		if err != nil {
			return err
		}
		a.pool = pool
		a.closers = append(a.closers, db.Shutdown(pool))
		a.checks["postgres"] = db.Healthcheck(pool)

		if err := db.Migrate(ctx, pool, a.cfg.DB.MigrationsTable, a.logger); err != nil {
			return err
		}
		if err := job.Migrate(ctx, pool, a.logger); err != nil {
			return err
		}
	}

	if a.cfg.Redis.Enabled() {
		client, err := redis.OpenConfig(ctx, a.cfg.Redis, redis.WithLogger(a.logger))
		if err != nil {
			return err
		}
		a.rdb = client
		a.closers = append(a.closers, redis.Shutdown(client))
		a.checks["redis"] = redis.Healthcheck(client)
	}

	if a.cfg.Events.Enabled() {
		nc, err := events.Connect(a.cfg.Events, a.logger)
		if err != nil {
			return err
		}
		a.nc = nc
		a.closers = append(a.closers, events.Shutdown(nc))
		a.checks["nats"] = events.Healthcheck(nc)
	}
	return nil
}

func (a *App) newHistory() (notify.HistoryStore, error) {
	switch strings.ToLower(strings.TrimSpace(a.cfg.HistoryBackend)) {
	case HistoryMemory, "":
		return notify.NewMemoryHistory(a.cfg.HistoryCapacity), nil
	case HistoryRedis:
		if a.rdb == nil {
			return nil, ErrRedisRequired
		}
		return history.NewRedis(a.rdb, history.WithCapacity(a.cfg.HistoryCapacity)), nil
	case HistoryPostgres:
		if a.pool == nil {
			return nil, fmt.Errorf("%w: postgres history", ErrDBRequired)
		}
		return history.NewPostgres(a.pool), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownHistory, a.cfg.HistoryBackend)
	}
}

// observers returns the sinks every delivery path reports to.
func (a *App) observers() ([]notify.Observer, error) {
	metrics, err := notify.NewMetrics(a.registry, func() int {
		if a.queue == nil {
			return 0
		}
		return a.queue.Len()
	})
	if err != nil {
		return nil, err
	}

	list := []notify.Observer{
		notify.HistoryObserver(a.history, a.logger),
		metrics,
	}
	if a.nc != nil {
		list = append(list, events.NewObserver(a.nc,
			events.WithPrefix(a.cfg.Events.SubjectPrefix),
			events.WithLogger(a.logger),
		))
	}
	return list, nil
}

// cooldownStore shares cooldowns across instances when Redis is available.
func (a *App) cooldownStore() notify.CooldownStore {
	if a.rdb != nil {
		return cache.NewRedis(a.rdb, cache.WithPrefix(cooldownPrefix))
	}
	mem := cache.NewMemory(cache.WithPrefix(cooldownPrefix), cache.WithClock(a.now))
	a.closers = append(a.closers, func(context.Context) error { return mem.Close() })
	return mem
}

// setupJobs registers the durable delivery and digest tasks. Both need
// Postgres; without it durable mode is refused and the digest is skipped.
func (a *App) setupJobs(transport notify.Deliverer, observers []notify.Observer) error {
	if a.pool == nil {
		if a.cfg.Durable {
			return fmt.Errorf("%w: durable delivery", ErrDBRequired)
		}
		if a.cfg.DigestSchedule != "" {
			a.logger.Warn("digest schedule ignored, no database configured")
		}
		return nil
	}

	deliverOpts := []durable.Option{durable.WithLogger(a.logger), durable.WithClock(a.now)}
	for _, obs := range observers {
		deliverOpts = append(deliverOpts, durable.WithObserver(obs))
	}
	deliver := durable.NewDeliverTask(a.resolver, transport, deliverOpts...)

	jobOpts := append(a.cfg.Jobs.Options(),
		job.WithLogger(a.logger),
		job.WithQueue(durable.Queue, a.cfg.Jobs.MaxWorkers),
		job.WithTask[notify.Request](deliver),
	)
	if a.cfg.DigestSchedule != "" {
		digest := durable.NewDigestTask(a.queue, a.queue,
			durable.WithLogger(a.logger),
			durable.WithClock(a.now),
			durable.WithDigestSchedule(a.cfg.DigestSchedule),
			durable.WithDigestRecipients(a.cfg.AdminEmails...),
			durable.WithDashboardURL(a.cfg.DashboardURL),
		)
		jobOpts = append(jobOpts, job.WithScheduledTask(digest))
	}

	mgr, err := job.NewManager(a.pool, jobOpts...)
	if err != nil {
		return err
	}
	a.jobs = mgr
	a.checks["jobs"] = job.Healthcheck(mgr, a.cfg.Jobs.MaxLag)

	if a.cfg.Durable {
		a.durable = durable.New(mgr, durable.WithLogger(a.logger))
	}
	return nil
}

// close releases connections in reverse order of opening.
func (a *App) close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrymomot/dispatch/pkg/logger"
	"github.com/dmitrymomot/dispatch/pkg/mailer"
)

// State reports whether the queue consumer has work.
type State string

const (
	StateIdle     State = "idle"
	StateDraining State = "draining"
)

// Stats is a snapshot of queue counters.
type Stats struct {
	State    State `json:"state"`
	Pending  int   `json:"pending"`
	Enqueued int64 `json:"enqueued"`
	Sent     int64 `json:"sent"`
	Failed   int64 `json:"failed"`
	Dropped  int64 `json:"dropped"`
	Retried  int64 `json:"retried"`
}

// Enqueuer accepts requests for asynchronous delivery.
type Enqueuer interface {
	Enqueue(ctx context.Context, req Request) (string, error)
}

type queueItem struct {
	req        Request
	enqueuedAt time.Time
}

// Queue delivers requests one at a time from a single consumer goroutine,
// keeping at least the configured delay between two sends.
//
// Requests drain in FIFO order unless WithPriorityOrdering is set. Each
// request is attempted once unless WithRetry is set. Nothing is persisted:
// items still pending at Stop are dropped.
type Queue struct {
	resolver  Resolver
	transport Deliverer
	logger    *slog.Logger
	now       func() time.Time
	delay     time.Duration
	retry     *RetryPolicy
	byPrio    bool
	obs       observers

	mu       sync.Mutex
	lanes    [3][]queueItem // indexed by priorityRank
	pending  int
	draining bool
	idle     chan struct{} // closed while idle
	started  bool
	closed   bool

	wake chan struct{}
	stop chan struct{}
	done chan struct{}

	lastSend time.Time // consumer goroutine only

	enqueued, sent, failed, dropped, retried atomic.Int64
}

// NewQueue builds a stopped queue. Reads WithDelay, WithRetry,
// WithPriorityOrdering, WithObserver, WithLogger and WithClock.
func NewQueue(resolver Resolver, transport Deliverer, opts ...Option) *Queue {
	o := buildOptions(opts)

	idle := make(chan struct{})
	close(idle)

	return &Queue{
		resolver:  resolver,
		transport: transport,
		logger:    o.logger.With(logger.Component("queue")),
		now:       o.now,
		delay:     o.delay,
		retry:     o.retry,
		byPrio:    o.priorityOrdering,
		obs:       observers{list: o.observers, logger: o.logger},
		idle:      idle,
		wake:      make(chan struct{}, 1),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// AddObserver registers an observer. It must be called before Start.
func (q *Queue) AddObserver(obs Observer) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started {
		return ErrQueueRunning
	}
	if obs != nil {
		q.obs.list = append(q.obs.list, obs)
	}
	return nil
}

// Start launches the consumer. Requests enqueued earlier begin draining now.
// Cancelling ctx stops the consumer like Stop does.
func (q *Queue) Start(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrQueueClosed
	}
	if q.started {
		q.mu.Unlock()
		return ErrQueueRunning
	}
	q.started = true
	if q.pending > 0 {
		q.markDrainingLocked()
	}
	q.mu.Unlock()

	go q.run(ctx)

	q.logger.InfoContext(ctx, "notification queue started",
		slog.Duration("delay", q.delay),
		slog.Bool("priority_ordering", q.byPrio),
		slog.Bool("retry", q.retry != nil),
	)
	return nil
}

// Stop refuses new requests, lets the in-flight send finish and drops
// whatever is still pending. It returns ctx.Err() if the consumer does not
// exit in time. Use WaitIdle first for a graceful drain.
func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	started := q.started
	q.mu.Unlock()

	close(q.stop)

	if !started {
		q.dropPending(ctx)
		return nil
	}

	select {
	case <-q.done:
		q.logger.InfoContext(ctx, "notification queue stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("notify: stop queue: %w", ctx.Err())
	}
}

// Enqueue validates req, appends it and returns its ID without waiting for delivery.
func (q *Queue) Enqueue(ctx context.Context, req Request) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	req = req.Normalize()

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return "", ErrQueueClosed
	}
	lane := priorityRank(PriorityNormal)
	if q.byPrio {
		lane = priorityRank(req.Priority)
	}
	q.lanes[lane] = append(q.lanes[lane], queueItem{req: req, enqueuedAt: q.now()})
	q.pending++
	if q.started {
		q.markDrainingLocked()
	}
	q.mu.Unlock()

	q.enqueued.Add(1)
	select {
	case q.wake <- struct{}{}:
	default:
	}

	q.logger.DebugContext(ctx, "notification enqueued",
		logger.NotificationID(req.ID),
		logger.Kind(string(req.Kind)),
		logger.Priority(string(req.Priority)),
	)
	return req.ID, nil
}

// WaitIdle blocks until the queue has nothing pending or in flight.
// Before Start it returns immediately.
func (q *Queue) WaitIdle(ctx context.Context) error {
	q.mu.Lock()
	idle := q.idle
	q.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// State reports Idle or Draining.
func (q *Queue) State() State {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.draining {
		return StateDraining
	}
	return StateIdle
}

// Len returns the number of requests waiting to be popped.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pending
}

// Stats returns a snapshot of the queue counters.
func (q *Queue) Stats() Stats {
	q.mu.Lock()
	state, pending := StateIdle, q.pending
	if q.draining {
		state = StateDraining
	}
	q.mu.Unlock()

	return Stats{
		State:    state,
		Pending:  pending,
		Enqueued: q.enqueued.Load(),
		Sent:     q.sent.Load(),
		Failed:   q.failed.Load(),
		Dropped:  q.dropped.Load(),
		Retried:  q.retried.Load(),
	}
}

func (q *Queue) markDrainingLocked() {
	if !q.draining {
		q.draining = true
		q.idle = make(chan struct{})
	}
}

func (q *Queue) markIdleLocked() {
	if q.draining {
		q.draining = false
		close(q.idle)
	}
}

func (q *Queue) run(ctx context.Context) {
	defer close(q.done)

	for {
		select {
		case <-q.stop:
			q.dropPending(ctx)
			return
		case <-ctx.Done():
			q.shutdownFromContext(ctx)
			return
		default:
		}

		it, ok := q.next()
		if !ok {
			select {
			case <-q.wake:
				continue
			case <-q.stop:
				q.dropPending(ctx)
				return
			case <-ctx.Done():
				q.shutdownFromContext(ctx)
				return
			}
		}

		if !q.sleep(ctx, q.delay-time.Since(q.lastSend)) {
			q.pushFront(it)
			q.dropPending(ctx)
			return
		}
		q.process(ctx, it)
	}
}

func (q *Queue) shutdownFromContext(ctx context.Context) {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.dropPending(ctx)
}

// next pops the front item, switching to Idle when there is none.
func (q *Queue) next() (queueItem, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i := range q.lanes {
		if len(q.lanes[i]) == 0 {
			continue
		}
		it := q.lanes[i][0]
		q.lanes[i][0] = queueItem{}
		q.lanes[i] = q.lanes[i][1:]
		q.pending--
		return it, true
	}
	q.markIdleLocked()
	return queueItem{}, false
}

func (q *Queue) pushFront(it queueItem) {
	q.mu.Lock()
	defer q.mu.Unlock()

	lane := priorityRank(PriorityNormal)
	if q.byPrio {
		lane = priorityRank(it.req.Priority)
	}
	q.lanes[lane] = append([]queueItem{it}, q.lanes[lane]...)
	q.pending++
}

// sleep waits d, returning false if the queue is stopped meanwhile.
func (q *Queue) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return true
	case <-q.stop:
		return false
	case <-ctx.Done():
		return false
	}
}

// process resolves and sends one item. Failures and panics stay inside.
func (q *Queue) process(ctx context.Context, it queueItem) {
	req := it.req
	ctx = logger.WithNotificationID(ctx, req.ID)
	log := q.logger.With(logger.NotificationID(req.ID), logger.Kind(string(req.Kind)))

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("%w: %v", ErrSenderPanic, r)
			q.failed.Add(1)
			log.ErrorContext(ctx, "queue item panicked", logger.Error(err))
			q.obs.notify(ctx, FailedDelivery(req, err, mailer.ErrorKindUnknown, PathQueue, q.now()))
		}
	}()

	email, err := q.resolver.Resolve(req)
	if err != nil {
		q.failed.Add(1)
		log.ErrorContext(ctx, "notification render failed", logger.Error(err))
		q.obs.notify(ctx, FailedDelivery(req, err, mailer.ErrorKindRender, PathQueue, q.now()))
		return
	}

	// In-flight sends finish even when the queue is stopping.
	sendCtx := context.WithoutCancel(ctx)

	for attempt := 1; ; attempt++ {
		q.lastSend = time.Now()
		res := q.transport.Deliver(sendCtx, req, email)
		d := NewDelivery(req, email.Subject, res, attempt, PathQueue, q.now())

		switch {
		case res.OK():
			q.sent.Add(1)
			q.obs.notify(ctx, d)
			return

		case q.retry.shouldRetry(res, attempt):
			d.Status = StatusRetrying
			q.retried.Add(1)
			q.obs.notify(ctx, d)

			backoff := max(q.retry.Backoff(attempt), q.delay)
			log.WarnContext(ctx, "notification send will be retried",
				logger.Attempt(attempt),
				logger.ErrorKind(string(res.ErrorKind)),
				slog.Duration("backoff", backoff),
			)
			if !q.sleep(ctx, backoff) {
				q.dropped.Add(1)
				d.Status = StatusDropped
				q.obs.notify(ctx, d)
				return
			}

		default:
			q.failed.Add(1)
			q.obs.notify(ctx, d)
			return
		}
	}
}

// dropPending discards every pending item and switches to Idle.
func (q *Queue) dropPending(ctx context.Context) {
	q.mu.Lock()
	var items []queueItem
	for i := range q.lanes {
		items = append(items, q.lanes[i]...)
		q.lanes[i] = nil
	}
	q.pending = 0
	q.markIdleLocked()
	q.mu.Unlock()

	for _, it := range items {
		q.dropped.Add(1)
		q.logger.WarnContext(ctx, "pending notification dropped at shutdown",
			logger.NotificationID(it.req.ID),
			logger.Kind(string(it.req.Kind)),
		)
		q.obs.notify(ctx, Delivery{
			RequestID:  it.req.ID,
			Kind:       it.req.Kind,
			Recipients: it.req.Recipients,
			Subject:    it.req.Subject,
			Priority:   it.req.Priority,
			Status:     StatusDropped,
			Path:       PathQueue,
			At:         q.now(),
		})
	}
}

package notify

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exports delivery counters and latencies. Register it once per
// registry and pass it to the queue and bulk dispatcher with WithObserver.
type Metrics struct {
	deliveries *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewMetrics registers the delivery collectors with reg. When depth is
// non-nil a dispatch_queue_depth gauge reports its value on scrape.
func NewMetrics(reg prometheus.Registerer, depth func() int) (*Metrics, error) {
	m := &Metrics{
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dispatch_deliveries_total",
			Help: "Notification delivery attempts by kind, status and error kind.",
		}, []string{"kind", "status", "error_kind"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dispatch_delivery_duration_seconds",
			Help:    "Duration of provider send calls.",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind"}),
	}

	collectors := []prometheus.Collector{m.deliveries, m.duration}
	if depth != nil {
		collectors = append(collectors, prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "dispatch_queue_depth",
			Help: "Requests waiting in the dispatch queue.",
		}, func() float64 { return float64(depth()) }))
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Observe implements Observer.
func (m *Metrics) Observe(_ context.Context, d Delivery) {
	m.deliveries.WithLabelValues(string(d.Kind), string(d.Status), string(d.ErrorKind)).Inc()
	if d.Duration > 0 {
		m.duration.WithLabelValues(string(d.Kind)).Observe(d.Duration.Seconds())
	}
}

package notify

import (
	"context"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/dispatch/pkg/logger"
)

// DefaultHistoryCapacity bounds MemoryHistory when no capacity is given.
const DefaultHistoryCapacity = 100

// HistoryStore persists delivery records. Recent returns at most n records,
// newest first.
type HistoryStore interface {
	Record(ctx context.Context, d Delivery) error
	Recent(ctx context.Context, n int) ([]Delivery, error)
}

// MemoryHistory keeps a bounded in-process list of recent deliveries.
type MemoryHistory struct {
	mu       sync.RWMutex
	capacity int
	entries  []Delivery
}

// NewMemoryHistory builds a history holding up to capacity records.
func NewMemoryHistory(capacity int) *MemoryHistory {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &MemoryHistory{capacity: capacity}
}

func (h *MemoryHistory) Record(_ context.Context, d Delivery) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, d)
	if len(h.entries) > h.capacity {
		h.entries = append(h.entries[:0:0], h.entries[len(h.entries)-h.capacity:]...)
	}
	return nil
}

func (h *MemoryHistory) Recent(_ context.Context, n int) ([]Delivery, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if n <= 0 || n > len(h.entries) {
		n = len(h.entries)
	}
	out := make([]Delivery, 0, n)
	for i := len(h.entries) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, h.entries[i])
	}
	return out, nil
}

// HistoryObserver records every delivery into a store. Store errors are
// logged and never reach the dispatch path.
func HistoryObserver(store HistoryStore, log *slog.Logger) Observer {
	if log == nil {
		log = logger.NewNope()
	}
	return ObserverFunc(func(ctx context.Context, d Delivery) {
		if err := store.Record(context.WithoutCancel(ctx), d); err != nil {
			log.WarnContext(ctx, "failed to record delivery",
				logger.NotificationID(d.RequestID),
				logger.Error(err),
			)
		}
	})
}

package job

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"sync"
)

// executor runs a task from its raw JSON payload.
type executor interface {
	Execute(ctx context.Context, payload json.RawMessage) error
}

type registry struct {
	mu    sync.RWMutex
	tasks map[string]executor
}

func newRegistry() *registry {
	return &registry{tasks: make(map[string]executor)}
}

func (r *registry) register(name string, e executor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[name] = e
}

func (r *registry) get(name string) (executor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.tasks[name]
	return e, ok
}

// names returns registered task names in sorted order.
func (r *registry) names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.tasks))
	for name := range r.tasks {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// typedTask decodes the payload into P before calling the handler.
type typedTask[P any, T interface {
	Name() string
	Handle(context.Context, P) error
}] struct {
	task T
}

func (w typedTask[P, T]) Execute(ctx context.Context, raw json.RawMessage) error {
	var payload P
	if len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, &payload); err != nil {
			// A payload that cannot decode will never decode.
			return Permanent(errors.Join(ErrInvalidPayload, err))
		}
	}
	return w.task.Handle(ctx, payload)
}

// scheduledTask ignores the payload; periodic jobs carry none.
type scheduledTask func(ctx context.Context) error

func (f scheduledTask) Execute(ctx context.Context, _ json.RawMessage) error {
	return f(ctx)
}

package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Memory is an in-process Store. Keys do not survive a restart and are not
// shared between replicas; use Redis for that.
type Memory struct {
	mu     sync.Mutex
	keys   map[string]time.Time // key -> expiry
	opts   *options
	done   chan struct{}
	closed bool
}

// NewMemory creates a memory store and starts its janitor.
//
//	s := cache.NewMemory(cache.WithDefaultTTL(10 * time.Minute))
//	defer s.Close()
func NewMemory(opts ...Option) *Memory {
	m := &Memory{
		keys: make(map[string]time.Time),
		opts: buildOptions(opts),
		done: make(chan struct{}),
	}
	if m.opts.cleanupInterval > 0 {
		go m.janitor()
	}
	return m
}

func (m *Memory) SetNX(_ context.Context, key string, ttl time.Duration) (bool, error) {
	if strings.TrimSpace(key) == "" {
		return false, ErrEmptyKey
	}
	if ttl <= 0 {
		ttl = m.opts.defaultTTL
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return false, ErrClosed
	}

	now := m.opts.now()
	if exp, ok := m.keys[key]; ok && now.Before(exp) {
		return false, nil
	}
	m.keys[key] = now.Add(ttl)
	return true, nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	delete(m.keys, key)
	return nil
}

// Len returns the number of keys, expired ones included until swept.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.keys)
}

// Close stops the janitor. It is idempotent.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true
	close(m.done)
	return nil
}

func (m *Memory) janitor() {
	ticker := time.NewTicker(m.opts.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

func (m *Memory) sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.opts.now()
	for key, exp := range m.keys {
		if !now.Before(exp) {
			delete(m.keys, key)
		}
	}
}

var _ Store = (*Memory)(nil)

package cache

import "time"

// DefaultTTL applies when SetNX is called with a non-positive ttl.
const DefaultTTL = 15 * time.Minute

// Option configures a store.
type Option func(*options)

type options struct {
	defaultTTL      time.Duration
	cleanupInterval time.Duration
	prefix          string
	now             func() time.Time
}

func buildOptions(opts []Option) *options {
	o := &options{
		defaultTTL:      DefaultTTL,
		cleanupInterval: time.Minute,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithDefaultTTL sets the expiry used when SetNX gets a non-positive ttl.
func WithDefaultTTL(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.defaultTTL = d
		}
	}
}

// WithCleanupInterval sets how often the memory store sweeps expired keys.
// Zero disables the janitor; expired keys are then dropped lazily.
func WithCleanupInterval(d time.Duration) Option {
	return func(o *options) { o.cleanupInterval = d }
}

// WithPrefix namespaces Redis keys as "{prefix}:{key}".
func WithPrefix(prefix string) Option {
	return func(o *options) { o.prefix = prefix }
}

// WithClock replaces time.Now in the memory store.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

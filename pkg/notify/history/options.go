package history

import "github.com/dmitrymomot/dispatch/pkg/notify"

const DefaultRedisKey = "dispatch:history"

type options struct {
	capacity int
	key      string
}

// Option configures a history store.
type Option func(*options)

func buildOptions(opts []Option) *options {
	o := &options{capacity: notify.DefaultHistoryCapacity, key: DefaultRedisKey}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithCapacity bounds the Redis list and sets the default Recent size.
func WithCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.capacity = n
		}
	}
}

// WithKey sets the Redis list key.
func WithKey(key string) Option {
	return func(o *options) {
		if key != "" {
			o.key = key
		}
	}
}

package cache

import (
	"context"
	"time"
)

// Store holds short-lived marker keys. It backs alert cooldowns: the first
// caller to claim a key wins until the key expires.
type Store interface {
	// SetNX claims key for ttl. It reports false when key is already held.
	// A non-positive ttl uses the store's default.
	SetNX(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Delete releases key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources such as background goroutines.
	Close() error
}

package cache

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a Store shared across replicas. Claims use SET NX PX, so exactly
// one caller wins per key and expiry is enforced by the server.
type Redis struct {
	client redis.UniversalClient
	opts   *options
}

// NewRedis wraps a client obtained from pkg/redis.Open.
//
//	s := cache.NewRedis(client, cache.WithPrefix("dispatch:cooldown"))
func NewRedis(client redis.UniversalClient, opts ...Option) *Redis {
	return &Redis{client: client, opts: buildOptions(opts)}
}

func (r *Redis) SetNX(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if strings.TrimSpace(key) == "" {
		return false, ErrEmptyKey
	}
	if ttl <= 0 {
		ttl = r.opts.defaultTTL
	}
	return r.client.SetNX(ctx, r.key(key), 1, ttl).Result()
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}

// Close is a no-op; the client is closed through pkg/redis.Shutdown.
func (r *Redis) Close() error { return nil }

func (r *Redis) key(key string) string {
	if r.opts.prefix == "" {
		return key
	}
	return r.opts.prefix + ":" + key
}

var _ Store = (*Redis)(nil)

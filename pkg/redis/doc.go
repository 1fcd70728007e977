// Package redis opens go-redis clients for the dispatch service.
//
// It parses redis:// and rediss:// URLs, applies pool and timeout settings,
// and pings the server at startup with a bounded number of retries.
//
//	client, err := redis.OpenConfig(ctx, cfg.Redis, redis.WithLogger(log))
//	if err != nil {
//		return err
//	}
//
// The client backs alert cooldowns (pkg/cache) and the Redis delivery
// history. Register [Healthcheck] as a readiness check and [Shutdown] with the
// app closers.
package redis

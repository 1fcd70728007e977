// Package cache provides short-lived marker keys with in-memory and Redis
// backends.
//
// The dispatch service uses it for alert cooldowns: an alert claims a key
// derived from its content with SetNX, and repeats are suppressed until the
// key expires.
//
//	store := cache.NewMemory(cache.WithDefaultTTL(10 * time.Minute))
//	defer store.Close()
//
//	ok, err := store.SetNX(ctx, "alert:stock:PAP-A4", 0)
//	if err == nil && !ok {
//	    // raised recently, skip
//	}
//
// Use [NewRedis] when several replicas must share cooldowns:
//
//	client, err := redis.OpenConfig(ctx, cfg.Redis)
//	if err != nil {
//	    return err
//	}
//	store := cache.NewRedis(client, cache.WithPrefix("dispatch:cooldown"))
package cache

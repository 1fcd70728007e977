package redis

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Healthcheck pings the server and fails when it is a replica: cooldown
// keys and history entries are writes, so a read-only node is not ready.
func Healthcheck(client redis.UniversalClient) func(context.Context) error {
	return func(ctx context.Context) error {
		if client == nil {
			return ErrHealthcheckFailed
		}
		if err := client.Ping(ctx).Err(); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		info, err := client.Info(ctx, "replication").Result()
		if err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		if role(info) == "slave" {
			return errors.Join(ErrHealthcheckFailed, ErrReadOnly)
		}
		return nil
	}
}

// role extracts the role field from an INFO replication reply.
func role(info string) string {
	for line := range strings.Lines(info) {
		if v, ok := strings.CutPrefix(strings.TrimSpace(line), "role:"); ok {
			return v
		}
	}
	return ""
}

// Shutdown returns a closer for the app's connection teardown.
func Shutdown(client io.Closer) func(context.Context) error {
	return func(context.Context) error {
		if client == nil {
			return nil
		}
		return client.Close()
	}
}

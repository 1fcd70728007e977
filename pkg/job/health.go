package job

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	errManagerNil        = errors.New("manager is nil")
	errManagerNotStarted = errors.New("manager not started")
)

// oldestAvailableSQL returns how long the oldest runnable job has waited, in seconds.
const oldestAvailableSQL = `SELECT COALESCE(EXTRACT(EPOCH FROM now() - min(scheduled_at)), 0)::float8
FROM river_job WHERE state = 'available' AND scheduled_at <= now()`

// Healthcheck reports ready once the manager is started and workers keep up.
// With maxLag > 0 it fails when a runnable job has waited longer than maxLag,
// which usually means every worker is stuck on a slow mail provider.
func Healthcheck(m *Manager, maxLag time.Duration) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if m == nil {
			return errors.Join(ErrHealthcheckFailed, errManagerNil)
		}

		m.mu.Lock()
		started := m.started
		m.mu.Unlock()
		if !started {
			return errors.Join(ErrHealthcheckFailed, errManagerNotStarted)
		}

		var waited float64
		if err := m.pool.QueryRow(ctx, oldestAvailableSQL).Scan(&waited); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		if lag := time.Duration(waited * float64(time.Second)); maxLag > 0 && lag > maxLag {
			return errors.Join(ErrHealthcheckFailed, fmt.Errorf("%w: oldest job waiting %s", ErrLagging, lag.Round(time.Second)))
		}
		return nil
	}
}

package notify

import (
	"math"
	"time"
)

// RetryPolicy bounds queue-level retries of retryable failures.
type RetryPolicy struct {
	MaxAttempts    int           `env:"NOTIFY_RETRY_MAX_ATTEMPTS" envDefault:"3"` // total attempts, including the first
	InitialBackoff time.Duration `env:"NOTIFY_RETRY_INITIAL_BACKOFF" envDefault:"2s"`
	MaxBackoff     time.Duration `env:"NOTIFY_RETRY_MAX_BACKOFF" envDefault:"1m"`
	Multiplier     float64       `env:"NOTIFY_RETRY_MULTIPLIER" envDefault:"2"`
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.InitialBackoff <= 0 {
		p.InitialBackoff = 2 * time.Second
	}
	if p.MaxBackoff < p.InitialBackoff {
		p.MaxBackoff = p.InitialBackoff
	}
	if p.Multiplier < 1 {
		p.Multiplier = 2
	}
	return p
}

// Backoff returns the wait before attempt n+1, after n failed attempts (n >= 1).
func (p RetryPolicy) Backoff(n int) time.Duration {
	p = p.withDefaults()
	if n < 1 {
		n = 1
	}
	d := float64(p.InitialBackoff) * math.Pow(p.Multiplier, float64(n-1))
	if d > float64(p.MaxBackoff) {
		return p.MaxBackoff
	}
	return time.Duration(d)
}

// shouldRetry reports whether another attempt is allowed after attempt n failed with res.
func (p *RetryPolicy) shouldRetry(res Result, n int) bool {
	return p != nil && res.Retryable() && n < p.MaxAttempts
}

package notify

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/dispatch/pkg/mailer"
)

func TestRetryPolicy_Backoff(t *testing.T) {
	t.Parallel()

	p := RetryPolicy{MaxAttempts: 5, InitialBackoff: time.Second, MaxBackoff: 5 * time.Second, Multiplier: 2}

	assert.Equal(t, time.Second, p.Backoff(1))
	assert.Equal(t, 2*time.Second, p.Backoff(2))
	assert.Equal(t, 4*time.Second, p.Backoff(3))
	assert.Equal(t, 5*time.Second, p.Backoff(4))
	assert.Equal(t, time.Second, p.Backoff(0))
}

func TestRetryPolicy_ShouldRetry(t *testing.T) {
	t.Parallel()

	retryable := Result{Err: errors.New("x"), ErrorKind: mailer.ErrorKindConnectivity}
	permanent := Result{Err: errors.New("x"), ErrorKind: mailer.ErrorKindRejected}

	var none *RetryPolicy
	assert.False(t, none.shouldRetry(retryable, 1))

	p := RetryPolicy{MaxAttempts: 2}.withDefaults()
	assert.True(t, p.shouldRetry(retryable, 1))
	assert.False(t, p.shouldRetry(retryable, 2))
	assert.False(t, p.shouldRetry(permanent, 1))
	assert.False(t, p.shouldRetry(Result{}, 1))
}

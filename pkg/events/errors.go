package events

import "errors"

var (
	ErrNotConfigured     = errors.New("events: NATS_URL is not set")
	ErrConnect           = errors.New("events: failed to connect to nats")
	ErrHealthcheckFailed = errors.New("events: healthcheck failed")
)

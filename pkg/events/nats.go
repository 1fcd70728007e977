package events

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/dmitrymomot/dispatch/pkg/logger"
)

// Config holds NATS settings read from the environment.
type Config struct {
	URL           string `env:"NATS_URL"`
	SubjectPrefix string `env:"NATS_SUBJECT_PREFIX" envDefault:"dispatch"`
	ClientName    string `env:"NATS_CLIENT_NAME" envDefault:"dispatch"`
}

// Enabled reports whether a NATS URL is configured.
func (c Config) Enabled() bool { return strings.TrimSpace(c.URL) != "" }

// Connect dials NATS and keeps reconnecting in the background after the
// first successful connection.
func Connect(cfg Config, log *slog.Logger) (*nats.Conn, error) {
	if !cfg.Enabled() {
		return nil, ErrNotConfigured
	}
	if log == nil {
		log = logger.NewNope()
	}

	nc, err := nats.Connect(cfg.URL,
		nats.Name(cfg.ClientName),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("nats disconnected", logger.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info("nats reconnected", slog.String("url", c.ConnectedUrlRedacted()))
		}),
	)
	if err != nil {
		return nil, errors.Join(ErrConnect, err)
	}
	log.Info("nats connected", slog.String("url", nc.ConnectedUrlRedacted()))
	return nc, nil
}

// Healthcheck fails unless the connection is established.
func Healthcheck(nc *nats.Conn) func(context.Context) error {
	return func(context.Context) error {
		if nc == nil || !nc.IsConnected() {
			return ErrHealthcheckFailed
		}
		return nil
	}
}

// Shutdown flushes pending publishes and closes the connection.
func Shutdown(nc *nats.Conn) func(context.Context) error {
	return func(context.Context) error {
		if nc == nil {
			return nil
		}
		return nc.Drain()
	}
}

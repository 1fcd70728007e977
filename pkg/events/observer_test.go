package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dispatch/pkg/notify"
)

type message struct {
	subject string
	data    []byte
}

type fakePublisher struct {
	mu   sync.Mutex
	msgs []message
	err  error
}

func (p *fakePublisher) Publish(subject string, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, message{subject: subject, data: data})
	return nil
}

func TestObserver_Subject(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts []Option
		d    notify.Delivery
		want string
	}{
		{
			name: "default prefix",
			d:    notify.Delivery{Kind: notify.KindStockAlert, Status: notify.StatusFailed},
			want: "dispatch.stock_alert.failed",
		},
		{
			name: "custom prefix is trimmed",
			opts: []Option{WithPrefix(" shop.notify. ")},
			d:    notify.Delivery{Kind: notify.KindWelcome, Status: notify.StatusSent},
			want: "shop.notify.welcome.sent",
		},
		{
			name: "empty and unsafe tokens",
			d:    notify.Delivery{Kind: "a.b*", Status: ""},
			want: "dispatch.a_b_.unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, NewObserver(&fakePublisher{}, tt.opts...).Subject(tt.d))
		})
	}
}

func TestObserver_PublishesJSON(t *testing.T) {
	t.Parallel()

	pub := &fakePublisher{}
	obs := NewObserver(pub)

	d := notify.Delivery{
		RequestID:  "n-1",
		Kind:       notify.KindProductionAlert,
		Recipients: []string{"floor@example.com"},
		Priority:   notify.PriorityHigh,
		Status:     notify.StatusSent,
		Attempt:    1,
		Path:       notify.PathQueue,
	}
	obs.Observe(context.Background(), d)

	require.Len(t, pub.msgs, 1)
	assert.Equal(t, "dispatch.production_alert.sent", pub.msgs[0].subject)

	var got notify.Delivery
	require.NoError(t, json.Unmarshal(pub.msgs[0].data, &got))
	assert.Equal(t, d.RequestID, got.RequestID)
	assert.Equal(t, d.Recipients, got.Recipients)
}

func TestObserver_PublishErrorIsSwallowed(t *testing.T) {
	t.Parallel()

	obs := NewObserver(&fakePublisher{err: errors.New("nats: connection closed")})
	assert.NotPanics(t, func() {
		obs.Observe(context.Background(), notify.Delivery{Kind: notify.KindWelcome, Status: notify.StatusSent})
	})
}

func TestConfig(t *testing.T) {
	t.Parallel()

	assert.False(t, Config{}.Enabled())
	assert.True(t, Config{URL: "nats://localhost:4222"}.Enabled())

	_, err := Connect(Config{}, nil)
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.ErrorIs(t, Healthcheck(nil)(context.Background()), ErrHealthcheckFailed)
	assert.NoError(t, Shutdown(nil)(context.Background()))
}

package notify

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dispatch/pkg/mailer"
)

func welcomeRequests(n int) []Request {
	reqs := make([]Request, n)
	for i := range n {
		reqs[i] = NewRequest(Welcome{Name: fmt.Sprintf("User %d", i+1)}, fmt.Sprintf("user%d@example.com", i+1))
	}
	return reqs
}

func TestBulk_AggregatesFailures(t *testing.T) {
	t.Parallel()

	sender := mailer.SenderFunc(func(_ context.Context, email *mailer.Email) (string, error) {
		if email.To[0] == "user3@example.com" {
			return "", errors.New("mailbox not found")
		}
		return "id-" + email.To[0], nil
	})
	rec := &recorder{}
	b := NewBulk(NewTemplateResolver(), NewTransport(sender), WithObserver(rec))

	res := b.Send(context.Background(), welcomeRequests(5))
	assert.Equal(t, BulkResult{Success: 4, Failed: 1}, res)
	assert.Len(t, rec.ByStatus(StatusSent), 4)
	assert.Len(t, rec.ByStatus(StatusFailed), 1)
}

func TestBulk_SenderPanic(t *testing.T) {
	t.Parallel()

	sender := mailer.SenderFunc(func(_ context.Context, email *mailer.Email) (string, error) {
		if email.To[0] == "user3@example.com" {
			panic("smtp client exploded")
		}
		return "ok", nil
	})
	b := NewBulk(NewTemplateResolver(), NewTransport(sender))

	res := b.Send(context.Background(), welcomeRequests(5))
	assert.Equal(t, BulkResult{Success: 4, Failed: 1}, res)
}

func TestBulk_InvalidAndUnrenderable(t *testing.T) {
	t.Parallel()

	d := &fakeDeliverer{}
	b := NewBulk(NewTemplateResolver(WithTemplates(Templates())), d)

	reqs := append(welcomeRequests(2),
		NewRequest(Welcome{Name: "nobody"}),
		Request{Kind: "fax", Recipients: []string{"a@example.com"}},
	)
	res := b.Send(context.Background(), reqs)

	assert.Equal(t, BulkResult{Success: 2, Failed: 2}, res)
	assert.Equal(t, 2, d.Len())
}

func TestBulk_Empty(t *testing.T) {
	t.Parallel()

	res := NewBulk(NewTemplateResolver(), &fakeDeliverer{}).Send(context.Background(), nil)
	assert.Equal(t, BulkResult{}, res)
}

func TestBulk_RunsConcurrently(t *testing.T) {
	t.Parallel()

	var inFlight, peak atomic.Int32
	d := &fakeDeliverer{respond: func(Request, int) Result {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		inFlight.Add(-1)
		return Result{MessageID: "ok"}
	}}

	res := NewBulk(NewTemplateResolver(), d).Send(context.Background(), welcomeRequests(5))
	require.Equal(t, 5, res.Success)
	assert.Greater(t, peak.Load(), int32(1))

	peak.Store(0)
	res = NewBulk(NewTemplateResolver(), d, WithBulkConcurrency(1)).Send(context.Background(), welcomeRequests(3))
	require.Equal(t, 3, res.Success)
	assert.Equal(t, int32(1), peak.Load())
}

package notify

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrymomot/dispatch/pkg/mailer"
)

type deliverCall struct {
	req     Request
	subject string
	at      time.Time
}

// fakeDeliverer records calls; respond decides each result (nil means success).
type fakeDeliverer struct {
	mu      sync.Mutex
	calls   []deliverCall
	respond func(req Request, attempt int) Result
	tries   map[string]int
}

func (f *fakeDeliverer) Deliver(_ context.Context, req Request, email *mailer.Email) Result {
	at := time.Now()
	f.mu.Lock()
	if f.tries == nil {
		f.tries = make(map[string]int)
	}
	f.tries[req.ID]++
	attempt := f.tries[req.ID]
	f.calls = append(f.calls, deliverCall{req: req, subject: email.Subject, at: at})
	respond := f.respond
	f.mu.Unlock()

	if respond != nil {
		return respond(req, attempt)
	}
	return Result{MessageID: "msg-" + req.ID}
}

func (f *fakeDeliverer) Calls() []deliverCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]deliverCall, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *fakeDeliverer) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// recorder is an Observer collecting every delivery record.
type recorder struct {
	mu   sync.Mutex
	list []Delivery
}

func (r *recorder) Observe(_ context.Context, d Delivery) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.list = append(r.list, d)
}

func (r *recorder) ByStatus(s Status) []Delivery {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Delivery
	for _, d := range r.list {
		if d.Status == s {
			out = append(out, d)
		}
	}
	return out
}

// resolverFunc adapts a function to Resolver.
type resolverFunc func(req Request) (*mailer.Email, error)

func (f resolverFunc) Resolve(req Request) (*mailer.Email, error) { return f(req) }

var fixedNow = time.Date(2025, time.March, 7, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func stockRequest(sku string) Request {
	return NewRequest(StockAlert{Items: []StockItem{{SKU: sku, Name: "Paper " + sku, CurrentStock: 1, MinimumStock: 10}}}, "ops@example.com")
}

func firstSKU(req Request) string {
	if p, ok := req.Payload.(StockAlert); ok && len(p.Items) > 0 {
		return p.Items[0].SKU
	}
	return ""
}

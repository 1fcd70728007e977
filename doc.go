// Package dispatch assembles the print shop notification service.
//
// The service renders transactional email from embedded markdown templates
// and delivers it through one mail provider. Requests arrive over an HTTP
// API and flow into one of three paths:
//
//   - the dispatch queue, an in-memory FIFO that sends one message per
//     second and delivers at most once unless retries are enabled
//   - the bulk dispatcher, which sends a batch immediately and reports how
//     many succeeded and failed
//   - the job system (NOTIFY_DURABLE), which stores requests in Postgres and
//     retries transient provider failures with River
//
// Operational alerts (stock, production, system) go through the queue with a
// priority derived from the alert type and severity.
//
// # Quick start
//
//	app, err := dispatch.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := app.Run(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//
// New reads its configuration from the environment (see [Config]). Postgres,
// Redis and NATS are optional; each is connected only when its URL is set.
//
// # Delivery outcomes
//
// Every send, whichever path it took, is reported to the same observers:
// the history store behind GET /v1/notifications/recent, the Prometheus
// collectors behind /metrics, and a NATS publisher when NATS_URL is set.
//
// # Shutdown
//
// Run stops the HTTP server first, then gives the queue half the shutdown
// budget to drain before stopping it. Anything still pending is dropped.
package dispatch

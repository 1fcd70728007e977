// Package notify renders and dispatches print-shop notifications.
//
// A Request names one of a closed set of kinds and carries the matching
// typed Payload. TemplateResolver renders it into a mailer.Email from the
// embedded markdown templates, and Transport performs one send through a
// mailer.Sender, returning a classified Result instead of an error.
//
// There are two dispatch paths:
//
//   - Queue serializes sends from a single consumer goroutine, in FIFO order,
//     with a minimum delay between sends (one second by default). Each item
//     is attempted once unless WithRetry is given.
//   - Bulk sends a batch concurrently, without pacing, and reports how many
//     succeeded and failed.
//
// Alerts builds stock, production and system alerts with their priority
// rules and enqueues them. Delivery outcomes reach Observers: HistoryObserver
// records them in a HistoryStore and Metrics exports them to Prometheus.
//
// Basic wiring:
//
//	resolver := notify.NewTemplateResolver(notify.WithLogger(log))
//	transport := notify.NewTransport(sender, notify.WithLogger(log))
//	queue := notify.NewQueue(resolver, transport, notify.WithLogger(log))
//	if err := queue.Start(ctx); err != nil {
//		return err
//	}
//	defer queue.Stop(context.Background())
//
//	alerts := notify.NewAlerts(queue, notify.WithDefaultRecipients("ops@example.com"))
//	id, err := alerts.StockAlert(ctx, items)
package notify

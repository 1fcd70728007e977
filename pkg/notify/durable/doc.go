// Package durable delivers notifications through River jobs so a send
// survives restarts and is retried with backoff.
//
// Durable implements notify.Enqueuer, so the alert facade can sit on top of
// it as easily as on the in-memory queue. DeliverTask is the worker side;
// DigestTask is a periodic task that mails a queue summary to operators.
package durable

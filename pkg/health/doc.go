// Package health serves liveness and readiness probes for the dispatch
// service.
//
// Readiness runs every named check in parallel under one timeout. Checks use
// the func(context.Context) error shape returned by db.Healthcheck,
// redis.Healthcheck, job.Healthcheck and events.Healthcheck, plus Backlog for
// the in-memory queue:
//
//	r.Get("/health/live", health.LivenessHandler())
//	r.Get("/health/ready", health.ReadinessHandler(health.Checks{
//	    "postgres": db.Healthcheck(pool),
//	    "queue":    health.Backlog(queue.Len, 1000),
//	}, health.WithLogger(log)))
//
// Responses are JSON. A failing required check turns readiness "unhealthy"
// (503); a failing check named in WithOptional only makes it "degraded" (200).
package health

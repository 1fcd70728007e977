// Package api is the HTTP intake for the dispatch service.
//
// Routes:
//
//	POST /v1/alerts/stock          stock alert, always high priority
//	POST /v1/alerts/production     production alert (delay, error, info)
//	POST /v1/alerts/system         system alert (info, warning, critical)
//	POST /v1/notifications         enqueue any notification request
//	POST /v1/notifications/bulk    send a batch now and report counts
//	GET  /v1/notifications/recent  delivery history, newest first
//	GET  /v1/queue                 queue counters
//	GET  /health/live, /health/ready, /metrics
//
// Enqueue routes answer 202 with the notification ID; delivery happens later
// and is never reported back on the request. /v1 routes require the bearer
// token when one is configured.
package api

// Package events publishes delivery records to NATS so other services can
// react to sends and failures without polling history.
//
// Each notify.Delivery goes out as JSON on "<prefix>.<kind>.<status>", for
// example "dispatch.stock_alert.failed". Subscribers filter with wildcards
// such as "dispatch.*.failed".
//
//	nc, err := events.Connect(cfg, log)
//	obs := events.NewObserver(nc, events.WithPrefix(cfg.SubjectPrefix), events.WithLogger(log))
//	queue := notify.NewQueue(resolver, transport, notify.WithObserver(obs))
package events

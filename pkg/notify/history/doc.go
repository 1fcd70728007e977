// Package history provides shared delivery history stores for deployments
// that run more than one replica or need records to outlive a restart.
//
// Redis keeps a capped list and suits a rolling "recent" view. Postgres
// writes every record to the notification_deliveries table created by the
// pkg/db migrations.
//
//	store := history.NewRedis(client, history.WithCapacity(500))
//	queue := notify.NewQueue(resolver, transport,
//	    notify.WithObserver(notify.HistoryObserver(store, log)))
package history

package history

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/dispatch/pkg/mailer"
	"github.com/dmitrymomot/dispatch/pkg/notify"
)

// DB is the subset of *pgxpool.Pool the Postgres store uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Postgres appends deliveries to the notification_deliveries table.
type Postgres struct {
	db DB
}

// NewPostgres stores deliveries in the notification_deliveries table.
// The table comes from the db package migrations.
func NewPostgres(db DB) *Postgres {
	return &Postgres{db: db}
}

const insertDelivery = `
INSERT INTO notification_deliveries
    (request_id, kind, recipients, subject, priority, status, message_id,
     error_kind, error, attempt, path, duration_ms, delivered_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

const selectRecent = `
SELECT request_id, kind, recipients, subject, priority, status, message_id,
       error_kind, error, attempt, path, duration_ms, delivered_at
FROM notification_deliveries
ORDER BY delivered_at DESC, id DESC
LIMIT $1`

// Record inserts one delivery row.
func (p *Postgres) Record(ctx context.Context, d notify.Delivery) error {
	recipients := d.Recipients
	if recipients == nil {
		recipients = []string{}
	}
	at := d.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := p.db.Exec(ctx, insertDelivery,
		d.RequestID, string(d.Kind), recipients, d.Subject, string(d.Priority),
		string(d.Status), d.MessageID, string(d.ErrorKind), d.Error, d.Attempt,
		string(d.Path), d.Duration.Milliseconds(), at,
	)
	if err != nil {
		return fmt.Errorf("history: insert delivery: %w", err)
	}
	return nil
}

type deliveryRow struct {
	RequestID   string    `db:"request_id"`
	Kind        string    `db:"kind"`
	Recipients  []string  `db:"recipients"`
	Subject     string    `db:"subject"`
	Priority    string    `db:"priority"`
	Status      string    `db:"status"`
	MessageID   string    `db:"message_id"`
	ErrorKind   string    `db:"error_kind"`
	Error       string    `db:"error"`
	Attempt     int       `db:"attempt"`
	Path        string    `db:"path"`
	DurationMS  int64     `db:"duration_ms"`
	DeliveredAt time.Time `db:"delivered_at"`
}

func (r deliveryRow) delivery() notify.Delivery {
	return notify.Delivery{
		RequestID:  r.RequestID,
		Kind:       notify.Kind(r.Kind),
		Recipients: r.Recipients,
		Subject:    r.Subject,
		Priority:   notify.Priority(r.Priority),
		Status:     notify.Status(r.Status),
		MessageID:  r.MessageID,
		ErrorKind:  mailer.ErrorKind(r.ErrorKind),
		Error:      r.Error,
		Attempt:    r.Attempt,
		Path:       notify.Path(r.Path),
		Duration:   time.Duration(r.DurationMS) * time.Millisecond,
		At:         r.DeliveredAt,
	}
}

// Recent returns up to n records, newest first. n <= 0 means the default
// history capacity.
func (p *Postgres) Recent(ctx context.Context, n int) ([]notify.Delivery, error) {
	if n <= 0 {
		n = notify.DefaultHistoryCapacity
	}
	rows, err := p.db.Query(ctx, selectRecent, n)
	if err != nil {
		return nil, fmt.Errorf("history: query deliveries: %w", err)
	}
	recs, err := pgx.CollectRows(rows, pgx.RowToStructByName[deliveryRow])
	if err != nil {
		return nil, fmt.Errorf("history: scan deliveries: %w", err)
	}
	out := make([]notify.Delivery, len(recs))
	for i, r := range recs {
		out[i] = r.delivery()
	}
	return out, nil
}

var _ notify.HistoryStore = (*Postgres)(nil)

// Package outbox implements the transactional outbox store on PostgreSQL.
package outbox

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/oakmart/orders-backend/internal/adapter/postgres"
	"github.com/oakmart/orders-backend/internal/domain"
)

// Repo stores and mutates outbox entries. Append resolves its querier from
// the context, so entries written inside TxManager.RunInTx commit or roll
// back together with the aggregate write.
type Repo struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const appendSQL = `
INSERT INTO outbox (order_id, topic, payload, status, attempts, created_at)
VALUES ($1, $2, $3, 'PENDING', 0, now())`

const fetchPendingSQL = `
SELECT id, order_id, topic, payload, status, attempts, last_error, created_at, delivered_at
FROM outbox
WHERE status <> 'DELIVERED'
ORDER BY id
LIMIT $1`

const markDeliveredSQL = `
UPDATE outbox
SET status = 'DELIVERED', delivered_at = now()
WHERE id = $1`

const markFailedSQL = `
UPDATE outbox
SET status = 'FAILED', attempts = attempts + 1, last_error = $2
WHERE id = $1`

// Append serializes the events to JSON and inserts one PENDING entry per
// event, in order. Insertion order fixes the delivery order for entries of
// the same aggregate: the serial id is the ordering key FetchPending reads
// back.
func (r *Repo) Append(ctx context.Context, events ...domain.Event) error {
	if len(events) == 0 {
		return nil
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)

	batch := &pgx.Batch{}
	for _, e := range events {
		payload, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("marshal %s payload: %w", e.Topic(), err)
		}
		batch.Queue(appendSQL, e.AggregateID().UUID(), e.Topic(), payload)
	}
	br := q.SendBatch(ctx, batch)
	defer br.Close()
	for range events {
		if _, err := br.Exec(); err != nil {
			return postgres.MapError(err, "outbox entry", "")
		}
	}

	return nil
}

// FetchPending returns undelivered entries (PENDING and FAILED alike) in id
// order, up to limit. FAILED entries come back on every cycle until they
// deliver.
func (r *Repo) FetchPending(ctx context.Context, limit int) ([]domain.OutboxEntry, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := q.Query(ctx, fetchPendingSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch pending outbox entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.OutboxEntry
	for rows.Next() {
		var e domain.OutboxEntry
		if err := rows.Scan(
			&e.ID, &e.OrderID, &e.Topic, &e.Payload,
			&e.Status, &e.Attempts, &e.LastError, &e.CreatedAt, &e.DeliveredAt,
		); err != nil {
			return nil, fmt.Errorf("scan outbox entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch pending outbox entries: %w", err)
	}

	return entries, nil
}

// MarkDelivered moves one entry to its terminal DELIVERED status and stamps
// the delivery time.
func (r *Repo) MarkDelivered(ctx context.Context, id int64) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	if _, err := q.Exec(ctx, markDeliveredSQL, id); err != nil {
		return postgres.MapError(err, "outbox entry", fmt.Sprintf("%d", id))
	}
	return nil
}

// MarkFailed records a delivery failure: increments attempts and keeps the
// last handler error. The entry stays retry-eligible.
func (r *Repo) MarkFailed(ctx context.Context, id int64, cause error) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	msg := cause.Error()
	if _, err := q.Exec(ctx, markFailedSQL, id, msg); err != nil {
		return postgres.MapError(err, "outbox entry", fmt.Sprintf("%d", id))
	}
	return nil
}

// Package summary implements the read-model repository. Its rows are
// written exclusively by projection handlers; every write is an idempotent
// upsert so redelivered events converge on the same state.
package summary

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/oakmart/orders-backend/internal/adapter/postgres"
	"github.com/oakmart/orders-backend/internal/domain"
)

// Repo provides read-model persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const summaryColumns = `order_id, number, customer_id, status, currency, total, items_count,
       placed_at, paid_at, cancelled_at, updated_at`

const upsertSummarySQL = `
INSERT INTO order_summaries (` + summaryColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now())
ON CONFLICT (order_id) DO UPDATE SET
  number      = EXCLUDED.number,
  customer_id = EXCLUDED.customer_id,
  status      = EXCLUDED.status,
  currency    = EXCLUDED.currency,
  total       = EXCLUDED.total,
  items_count = EXCLUDED.items_count,
  placed_at   = EXCLUDED.placed_at,
  paid_at     = EXCLUDED.paid_at,
  cancelled_at = EXCLUDED.cancelled_at,
  updated_at  = now()`

const upsertSummaryItemSQL = `
INSERT INTO order_summary_items (item_id, order_id, order_number, order_status, kind, sku, name, quantity, line_total)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (item_id) DO UPDATE SET
  order_number = EXCLUDED.order_number,
  order_status = EXCLUDED.order_status,
  kind         = EXCLUDED.kind,
  sku          = EXCLUDED.sku,
  name         = EXCLUDED.name,
  quantity     = EXCLUDED.quantity,
  line_total   = EXCLUDED.line_total`

const setStatusSummarySQL = `
UPDATE order_summaries
SET status = $2, paid_at = COALESCE($3, paid_at), cancelled_at = COALESCE($4, cancelled_at), updated_at = now()
WHERE order_id = $1`

const setStatusItemsSQL = `
UPDATE order_summary_items
SET order_status = $2
WHERE order_id = $1`

const getSummarySQL = `SELECT ` + summaryColumns + ` FROM order_summaries WHERE order_id = $1`

const getSummaryItemsSQL = `
SELECT item_id, order_id, order_number, order_status, kind, sku, name, quantity, line_total
FROM order_summary_items
WHERE order_id = $1
ORDER BY item_id`

// UpsertSummary writes or overwrites one summary row. Calling it twice with
// the same input leaves exactly one row.
func (r *Repo) UpsertSummary(ctx context.Context, s domain.OrderSummary) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	if _, err := q.Exec(ctx, upsertSummarySQL,
		s.OrderID.UUID(), s.Number, s.CustomerID, string(s.Status), s.Currency,
		s.Total, s.ItemsCount, s.PlacedAt, s.PaidAt, s.CancelledAt,
	); err != nil {
		return postgres.MapError(err, "order summary", s.OrderID.String())
	}
	return nil
}

// UpsertItems writes or overwrites the denormalized item rows of one order.
func (r *Repo) UpsertItems(ctx context.Context, items []domain.SummaryItem) error {
	if len(items) == 0 {
		return nil
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)

	batch := &pgx.Batch{}
	for _, it := range items {
		batch.Queue(upsertSummaryItemSQL,
			it.ItemID.UUID(), it.OrderID.UUID(), it.OrderNumber, string(it.OrderStatus),
			string(it.Kind), it.SKU, it.Name, it.Quantity, it.LineTotal,
		)
	}
	br := q.SendBatch(ctx, batch)
	defer br.Close()
	for range items {
		if _, err := br.Exec(); err != nil {
			return postgres.MapError(err, "order summary item", "")
		}
	}
	return nil
}

// SetStatus updates the status of one summary and its denormalized item
// rows. Timestamps already set are kept, so a redelivered status event is a
// no-op. A missing summary row is not an error: the creating event may not
// have been projected yet and will carry the final status when it is.
func (r *Repo) SetStatus(ctx context.Context, id domain.OrderID, status domain.OrderStatus, paidAt, cancelledAt *time.Time) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	if _, err := q.Exec(ctx, setStatusSummarySQL, id.UUID(), string(status), paidAt, cancelledAt); err != nil {
		return postgres.MapError(err, "order summary", id.String())
	}
	if _, err := q.Exec(ctx, setStatusItemsSQL, id.UUID(), string(status)); err != nil {
		return postgres.MapError(err, "order summary item", id.String())
	}
	return nil
}

// GetByOrderID returns one summary row. Returns domain.ErrNotFound if the
// order has not been projected yet.
func (r *Repo) GetByOrderID(ctx context.Context, id domain.OrderID) (domain.OrderSummary, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var s domain.OrderSummary
	err := q.QueryRow(ctx, getSummarySQL, id.UUID()).Scan(
		&s.OrderID, &s.Number, &s.CustomerID, &s.Status, &s.Currency,
		&s.Total, &s.ItemsCount, &s.PlacedAt, &s.PaidAt, &s.CancelledAt, &s.UpdatedAt,
	)
	if err != nil {
		return domain.OrderSummary{}, postgres.MapError(err, "order summary", id.String())
	}
	return s, nil
}

// ItemsByOrderID returns the denormalized item rows of one order.
func (r *Repo) ItemsByOrderID(ctx context.Context, id domain.OrderID) ([]domain.SummaryItem, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := q.Query(ctx, getSummaryItemsSQL, id.UUID())
	if err != nil {
		return nil, fmt.Errorf("list summary items: %w", err)
	}
	defer rows.Close()

	var items []domain.SummaryItem
	for rows.Next() {
		var it domain.SummaryItem
		if err := rows.Scan(
			&it.ItemID, &it.OrderID, &it.OrderNumber, &it.OrderStatus,
			&it.Kind, &it.SKU, &it.Name, &it.Quantity, &it.LineTotal,
		); err != nil {
			return nil, fmt.Errorf("scan summary item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// Package order implements the order write-model repository using
// PostgreSQL. The mapper engine is the sole conversion mechanism between
// *domain.Order and the flat orders/order_items rows.
package order

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/oakmart/orders-backend/internal/adapter/postgres"
	"github.com/oakmart/orders-backend/internal/domain"
	"github.com/oakmart/orders-backend/internal/mapper"
)

// Repo provides order persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
	m    *mapper.Mapper[domain.Order, Record]
}

// New creates a new order repository. The mapping plan is assembled once
// and shared by all calls.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool, m: newOrderMapper()}
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const orderColumns = `id, number, customer_id, status, currency,
       payment_method, card_brand, card_last4, card_auth_code, paypal_email, paypal_capture_id,
       shipment_kind, shipment_address, shipment_tracking, pickup_point_code,
       paid_at, cancelled_at, cancel_reason, created_at, updated_at`

const itemColumns = `id, order_id, kind, sku, name, quantity, unit_price, bundle_units, note, position`

const upsertOrderSQL = `
INSERT INTO orders (` + orderColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
ON CONFLICT (id) DO UPDATE SET
  status            = EXCLUDED.status,
  payment_method    = EXCLUDED.payment_method,
  card_brand        = EXCLUDED.card_brand,
  card_last4        = EXCLUDED.card_last4,
  card_auth_code    = EXCLUDED.card_auth_code,
  paypal_email      = EXCLUDED.paypal_email,
  paypal_capture_id = EXCLUDED.paypal_capture_id,
  shipment_kind     = EXCLUDED.shipment_kind,
  shipment_address  = EXCLUDED.shipment_address,
  shipment_tracking = EXCLUDED.shipment_tracking,
  pickup_point_code = EXCLUDED.pickup_point_code,
  paid_at           = EXCLUDED.paid_at,
  cancelled_at      = EXCLUDED.cancelled_at,
  cancel_reason     = EXCLUDED.cancel_reason,
  updated_at        = EXCLUDED.updated_at`

const deleteItemsSQL = `DELETE FROM order_items WHERE order_id = $1`

const insertItemSQL = `
INSERT INTO order_items (` + itemColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

const getOrderSQL = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

const getItemsSQL = `SELECT ` + itemColumns + ` FROM order_items WHERE order_id = $1 ORDER BY position`

const getItemsByOrderIDsSQL = `SELECT ` + itemColumns + ` FROM order_items WHERE order_id = ANY($1::uuid[]) ORDER BY order_id, position`

// Save persists the whole aggregate: the orders row is upserted and the
// owned order_items rows are replaced. It writes through QuerierFromCtx, so
// when called inside TxManager.RunInTx the write shares the caller's
// transaction with the outbox append.
func (r *Repo) Save(ctx context.Context, o *domain.Order) error {
	rec, err := r.m.ToStorage(o)
	if err != nil {
		return err
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)

	row := rec.Order
	if _, err := q.Exec(ctx, upsertOrderSQL,
		row.ID, row.Number, row.CustomerID, row.Status, row.Currency,
		row.PaymentMethod, row.CardBrand, row.CardLast4, row.CardAuthCode, row.PaypalEmail, row.PaypalCaptureID,
		row.ShipmentKind, row.ShipmentAddress, row.ShipmentTracking, row.PickupPointCode,
		row.PaidAt, row.CancelledAt, row.CancelReason, row.CreatedAt, row.UpdatedAt,
	); err != nil {
		return postgres.MapError(err, "order", row.ID.String())
	}

	batch := &pgx.Batch{}
	batch.Queue(deleteItemsSQL, row.ID)
	for _, it := range rec.Items {
		batch.Queue(insertItemSQL,
			it.ID, it.OrderID, it.Kind, it.SKU, it.Name,
			it.Quantity, it.UnitPrice, it.BundleUnits, it.Note, it.Position,
		)
	}
	br := q.SendBatch(ctx, batch)
	defer br.Close()
	for i := 0; i < len(rec.Items)+1; i++ {
		if _, err := br.Exec(); err != nil {
			return postgres.MapError(err, "order_items", row.ID.String())
		}
	}

	return nil
}

// FindByID loads one aggregate: the orders row plus its order_items rows,
// converted back through the mapper. Returns domain.ErrNotFound if the
// order does not exist.
func (r *Repo) FindByID(ctx context.Context, id domain.OrderID) (*domain.Order, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	rec := Record{}
	if err := scanRow(q.QueryRow(ctx, getOrderSQL, id.UUID()), &rec.Order); err != nil {
		return nil, postgres.MapError(err, "order", id.String())
	}

	rows, err := q.Query(ctx, getItemsSQL, id.UUID())
	if err != nil {
		return nil, postgres.MapError(err, "order_items", id.String())
	}
	defer rows.Close()

	rec.Items, err = collectItemRows(rows)
	if err != nil {
		return nil, postgres.MapError(err, "order_items", id.String())
	}

	o, err := r.m.ToDomain(&rec)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// List returns aggregates matching the filter, newest first. Items for all
// matched orders are fetched in one query and regrouped by parent key.
func (r *Repo) List(ctx context.Context, f domain.OrderFilter) ([]*domain.Order, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	qb := psql.Select(
		"id", "number", "customer_id", "status", "currency",
		"payment_method", "card_brand", "card_last4", "card_auth_code", "paypal_email", "paypal_capture_id",
		"shipment_kind", "shipment_address", "shipment_tracking", "pickup_point_code",
		"paid_at", "cancelled_at", "cancel_reason", "created_at", "updated_at",
	).From("orders").OrderBy("created_at DESC, id")

	if f.CustomerID != nil {
		qb = qb.Where(sq.Eq{"customer_id": *f.CustomerID})
	}
	if f.Status != nil {
		qb = qb.Where(sq.Eq{"status": string(*f.Status)})
	}
	if f.Limit > 0 {
		qb = qb.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		qb = qb.Offset(uint64(f.Offset))
	}

	sql, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list orders query: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orderRows []Row
	for rows.Next() {
		var row Row
		if err := scanRows(rows, &row); err != nil {
			return nil, fmt.Errorf("list orders: %w", err)
		}
		orderRows = append(orderRows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if len(orderRows) == 0 {
		return []*domain.Order{}, nil
	}

	ids := make([]uuid.UUID, len(orderRows))
	for i, row := range orderRows {
		ids[i] = row.ID
	}

	itemRows, err := q.Query(ctx, getItemsByOrderIDsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer itemRows.Close()

	items, err := collectItemRows(itemRows)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	byOrder := mapper.GroupBy(items, func(it ItemRow) uuid.UUID { return it.OrderID })

	orders := make([]*domain.Order, 0, len(orderRows))
	for i := range orderRows {
		rec := Record{Order: orderRows[i], Items: byOrder[orderRows[i].ID]}
		o, err := r.m.ToDomain(&rec)
		if err != nil {
			return nil, err
		}
		orders = append(orders, &o)
	}

	return orders, nil
}

// ---------------------------------------------------------------------------
// Scan helpers
// ---------------------------------------------------------------------------

func scanRow(row pgx.Row, dst *Row) error {
	return row.Scan(
		&dst.ID, &dst.Number, &dst.CustomerID, &dst.Status, &dst.Currency,
		&dst.PaymentMethod, &dst.CardBrand, &dst.CardLast4, &dst.CardAuthCode, &dst.PaypalEmail, &dst.PaypalCaptureID,
		&dst.ShipmentKind, &dst.ShipmentAddress, &dst.ShipmentTracking, &dst.PickupPointCode,
		&dst.PaidAt, &dst.CancelledAt, &dst.CancelReason, &dst.CreatedAt, &dst.UpdatedAt,
	)
}

func scanRows(rows pgx.Rows, dst *Row) error {
	return scanRow(rows, dst)
}

func collectItemRows(rows pgx.Rows) ([]ItemRow, error) {
	var items []ItemRow
	for rows.Next() {
		var it ItemRow
		if err := rows.Scan(
			&it.ID, &it.OrderID, &it.Kind, &it.SKU, &it.Name,
			&it.Quantity, &it.UnitPrice, &it.BundleUnits, &it.Note, &it.Position,
		); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

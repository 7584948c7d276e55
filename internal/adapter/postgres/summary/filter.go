package summary

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	postgres "github.com/oakmart/orders-backend/internal/adapter/postgres"
	"github.com/oakmart/orders-backend/internal/domain"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// List returns summary rows matching the filter, newest first.
func (r *Repo) List(ctx context.Context, f domain.SummaryFilter) ([]domain.OrderSummary, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	qb := psql.Select(
		"order_id", "number", "customer_id", "status", "currency", "total", "items_count",
		"placed_at", "paid_at", "cancelled_at", "updated_at",
	).From("order_summaries").OrderBy("placed_at DESC, order_id")

	if f.CustomerID != nil {
		qb = qb.Where(sq.Eq{"customer_id": *f.CustomerID})
	}
	if f.Status != nil {
		qb = qb.Where(sq.Eq{"status": string(*f.Status)})
	}
	if f.MinTotal != nil {
		qb = qb.Where(sq.GtOrEq{"total": *f.MinTotal})
	}
	if f.MaxTotal != nil {
		qb = qb.Where(sq.LtOrEq{"total": *f.MaxTotal})
	}
	if f.PlacedAfter != nil {
		qb = qb.Where(sq.GtOrEq{"placed_at": *f.PlacedAfter})
	}
	if f.PlacedBefore != nil {
		qb = qb.Where(sq.Lt{"placed_at": *f.PlacedBefore})
	}
	if f.Limit > 0 {
		qb = qb.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		qb = qb.Offset(uint64(f.Offset))
	}

	sql, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list summaries query: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list summaries: %w", err)
	}
	defer rows.Close()

	var out []domain.OrderSummary
	for rows.Next() {
		var s domain.OrderSummary
		if err := rows.Scan(
			&s.OrderID, &s.Number, &s.CustomerID, &s.Status, &s.Currency,
			&s.Total, &s.ItemsCount, &s.PlacedAt, &s.PaidAt, &s.CancelledAt, &s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Stats returns per-status order counts and revenue over the read model.
// Revenue only counts PAID orders' totals; other statuses report zero.
func (r *Repo) Stats(ctx context.Context) ([]domain.StatusStat, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := psql.Select(
		"status",
		"COUNT(*) AS orders",
		"COALESCE(SUM(total) FILTER (WHERE status = 'PAID'), 0) AS revenue",
	).From("order_summaries").
		GroupBy("status").
		OrderBy("status").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build stats query: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}
	defer rows.Close()

	var stats []domain.StatusStat
	for rows.Next() {
		var st domain.StatusStat
		if err := rows.Scan(&st.Status, &st.Orders, &st.Revenue); err != nil {
			return nil, fmt.Errorf("scan stat: %w", err)
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

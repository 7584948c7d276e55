package summary_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/oakmart/orders-backend/internal/adapter/postgres/summary"
	"github.com/oakmart/orders-backend/internal/adapter/postgres/testhelper"
	"github.com/oakmart/orders-backend/internal/domain"
)

func buildSummary(customerID uuid.UUID, status domain.OrderStatus, total string) domain.OrderSummary {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return domain.OrderSummary{
		OrderID:    domain.NewOrderID(),
		Number:     "ORD-" + uuid.New().String()[:8],
		CustomerID: customerID,
		Status:     status,
		Currency:   "USD",
		Total:      decimal.RequireFromString(total),
		ItemsCount: 2,
		PlacedAt:   now,
	}
}

func buildItems(s domain.OrderSummary) []domain.SummaryItem {
	return []domain.SummaryItem{
		{
			ItemID:      domain.NewLineItemID(),
			OrderID:     s.OrderID,
			OrderNumber: s.Number,
			OrderStatus: s.Status,
			Kind:        domain.LineItemKindSimple,
			SKU:         "LAPTOP",
			Name:        "Laptop",
			Quantity:    1,
			LineTotal:   decimal.RequireFromString("2999.99"),
		},
		{
			ItemID:      domain.NewLineItemID(),
			OrderID:     s.OrderID,
			OrderNumber: s.Number,
			OrderStatus: s.Status,
			Kind:        domain.LineItemKindSimple,
			SKU:         "MOUSE",
			Name:        "Mouse",
			Quantity:    2,
			LineTotal:   decimal.RequireFromString("159.98"),
		},
	}
}

func TestRepo_UpsertSummaryIsIdempotent(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	repo := summary.New(pool)
	ctx := context.Background()

	s := buildSummary(uuid.New(), domain.OrderStatusPending, "3159.97")

	// Redelivered events replay the same upsert; exactly one row must
	// survive with the latest values.
	if err := repo.UpsertSummary(ctx, s); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	s.Status = domain.OrderStatusPaid
	if err := repo.UpsertSummary(ctx, s); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	var count int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM order_summaries WHERE order_id = $1`, s.OrderID.UUID()).Scan(&count); err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if count != 1 {
		t.Fatalf("want exactly 1 summary row, got %d", count)
	}

	got, err := repo.GetByOrderID(ctx, s.OrderID)
	if err != nil {
		t.Fatalf("GetByOrderID: %v", err)
	}
	if got.Status != domain.OrderStatusPaid || !got.Total.Equal(s.Total) {
		t.Fatalf("latest values not applied: %+v", got)
	}
}

func TestRepo_UpsertItemsAndRead(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	repo := summary.New(pool)
	ctx := context.Background()

	s := buildSummary(uuid.New(), domain.OrderStatusPending, "3159.97")
	items := buildItems(s)

	if err := repo.UpsertSummary(ctx, s); err != nil {
		t.Fatalf("UpsertSummary: %v", err)
	}
	if err := repo.UpsertItems(ctx, items); err != nil {
		t.Fatalf("UpsertItems: %v", err)
	}
	// Idempotent redelivery.
	if err := repo.UpsertItems(ctx, items); err != nil {
		t.Fatalf("second UpsertItems: %v", err)
	}

	got, err := repo.ItemsByOrderID(ctx, s.OrderID)
	if err != nil {
		t.Fatalf("ItemsByOrderID: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("want 2 item rows, got %d", len(got))
	}
	for _, it := range got {
		if it.OrderNumber != s.Number {
			t.Fatalf("denormalized number missing: %+v", it)
		}
	}
}

func TestRepo_SetStatus(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	repo := summary.New(pool)
	ctx := context.Background()

	s := buildSummary(uuid.New(), domain.OrderStatusPending, "100.00")
	if err := repo.UpsertSummary(ctx, s); err != nil {
		t.Fatalf("UpsertSummary: %v", err)
	}
	if err := repo.UpsertItems(ctx, buildItems(s)); err != nil {
		t.Fatalf("UpsertItems: %v", err)
	}

	paidAt := time.Now().UTC().Truncate(time.Microsecond)
	if err := repo.SetStatus(ctx, s.OrderID, domain.OrderStatusPaid, &paidAt, nil); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}

	got, err := repo.GetByOrderID(ctx, s.OrderID)
	if err != nil {
		t.Fatalf("GetByOrderID: %v", err)
	}
	if got.Status != domain.OrderStatusPaid {
		t.Fatalf("status = %s, want PAID", got.Status)
	}
	if got.PaidAt == nil || !got.PaidAt.Equal(paidAt) {
		t.Fatalf("paid_at not set: %v", got.PaidAt)
	}

	items, err := repo.ItemsByOrderID(ctx, s.OrderID)
	if err != nil {
		t.Fatalf("ItemsByOrderID: %v", err)
	}
	for _, it := range items {
		if it.OrderStatus != domain.OrderStatusPaid {
			t.Fatalf("denormalized status not updated: %+v", it)
		}
	}
}

func TestRepo_SetStatusOnMissingRowIsNoop(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	repo := summary.New(pool)

	// The created event may not have projected yet; a status update must
	// not fail in that window.
	err := repo.SetStatus(context.Background(), domain.NewOrderID(), domain.OrderStatusPaid, nil, nil)
	if err != nil {
		t.Fatalf("SetStatus on missing row: %v", err)
	}
}

func TestRepo_GetByOrderID_NotFound(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	repo := summary.New(pool)

	_, err := repo.GetByOrderID(context.Background(), domain.NewOrderID())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestRepo_ListFilters(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	repo := summary.New(pool)
	ctx := context.Background()

	customerID := uuid.New()
	cheap := buildSummary(customerID, domain.OrderStatusPending, "10.00")
	expensive := buildSummary(customerID, domain.OrderStatusPaid, "500.00")
	for _, s := range []domain.OrderSummary{cheap, expensive} {
		if err := repo.UpsertSummary(ctx, s); err != nil {
			t.Fatalf("UpsertSummary: %v", err)
		}
	}

	all, err := repo.List(ctx, domain.SummaryFilter{CustomerID: &customerID})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("want 2 summaries, got %d", len(all))
	}

	min := decimal.RequireFromString("100")
	big, err := repo.List(ctx, domain.SummaryFilter{CustomerID: &customerID, MinTotal: &min})
	if err != nil {
		t.Fatalf("List with MinTotal: %v", err)
	}
	if len(big) != 1 || big[0].OrderID != expensive.OrderID {
		t.Fatalf("MinTotal filter wrong: %+v", big)
	}

	status := domain.OrderStatusPaid
	paid, err := repo.List(ctx, domain.SummaryFilter{CustomerID: &customerID, Status: &status})
	if err != nil {
		t.Fatalf("List with Status: %v", err)
	}
	if len(paid) != 1 || paid[0].OrderID != expensive.OrderID {
		t.Fatalf("Status filter wrong: %+v", paid)
	}
}

func TestRepo_Stats(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	repo := summary.New(pool)
	ctx := context.Background()

	paid := buildSummary(uuid.New(), domain.OrderStatusPaid, "250.00")
	if err := repo.UpsertSummary(ctx, paid); err != nil {
		t.Fatalf("UpsertSummary: %v", err)
	}

	stats, err := repo.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}

	// The table is shared across the test run, so assert lower bounds only.
	var paidStat *domain.StatusStat
	for i := range stats {
		if stats[i].Status == domain.OrderStatusPaid {
			paidStat = &stats[i]
		}
	}
	if paidStat == nil {
		t.Fatal("no PAID stat row")
	}
	if paidStat.Orders < 1 {
		t.Fatalf("PAID orders = %d, want >= 1", paidStat.Orders)
	}
	if paidStat.Revenue.LessThan(decimal.RequireFromString("250.00")) {
		t.Fatalf("PAID revenue = %s, want >= 250.00", paidStat.Revenue)
	}
}

package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderSummary is the denormalized read-model row for one order. It is
// written only by projection handlers and may lag the write side, but never
// contradicts the settled aggregate state once projection is caught up.
type OrderSummary struct {
	OrderID     OrderID
	Number      string
	CustomerID  uuid.UUID
	Status      OrderStatus
	Currency    string
	Total       decimal.Decimal
	ItemsCount  int
	PlacedAt    time.Time
	PaidAt      *time.Time
	CancelledAt *time.Time
	UpdatedAt   time.Time
}

// SummaryItem is the denormalized read-model row for one line item,
// carrying parent summary fields to avoid joins on the query path.
type SummaryItem struct {
	ItemID      LineItemID
	OrderID     OrderID
	OrderNumber string
	OrderStatus OrderStatus
	Kind        LineItemKind
	SKU         string
	Name        string
	Quantity    int
	LineTotal   decimal.Decimal
}

// SummaryFilter narrows read-model queries.
type SummaryFilter struct {
	CustomerID   *uuid.UUID
	Status       *OrderStatus
	MinTotal     *decimal.Decimal
	MaxTotal     *decimal.Decimal
	PlacedAfter  *time.Time
	PlacedBefore *time.Time
	Limit        int
	Offset       int
}

// StatusStat is one row of the pre-aggregated statistics query.
type StatusStat struct {
	Status  OrderStatus
	Orders  int
	Revenue decimal.Decimal
}

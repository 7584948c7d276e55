package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Outbox topics, one per domain event type.
const (
	TopicOrderCreated   = "order.created"
	TopicOrderPaid      = "order.paid"
	TopicOrderCancelled = "order.cancelled"
)

// Event is an immutable fact recorded by the Order aggregate. Events are
// buffered in memory and persisted as outbox entries in the same
// transaction as the aggregate write.
type Event interface {
	Topic() string
	AggregateID() OrderID
	OccurredAt() time.Time
}

// OrderCreated is recorded when a new order is placed.
type OrderCreated struct {
	OrderID    OrderID         `json:"order_id"`
	Number     string          `json:"number"`
	CustomerID uuid.UUID       `json:"customer_id"`
	Total      decimal.Decimal `json:"total"`
	ItemsCount int             `json:"items_count"`
	At         time.Time       `json:"at"`
}

func (OrderCreated) Topic() string { return TopicOrderCreated }

func (e OrderCreated) AggregateID() OrderID { return e.OrderID }

func (e OrderCreated) OccurredAt() time.Time { return e.At }

// OrderPaid is recorded when an order transitions to PAID.
type OrderPaid struct {
	OrderID OrderID       `json:"order_id"`
	Method  PaymentMethod `json:"method"`
	At      time.Time     `json:"at"`
}

func (OrderPaid) Topic() string { return TopicOrderPaid }

func (e OrderPaid) AggregateID() OrderID { return e.OrderID }

func (e OrderPaid) OccurredAt() time.Time { return e.At }

// OrderCancelled is recorded when an order transitions to CANCELLED.
type OrderCancelled struct {
	OrderID OrderID   `json:"order_id"`
	Reason  string    `json:"reason"`
	At      time.Time `json:"at"`
}

func (OrderCancelled) Topic() string { return TopicOrderCancelled }

func (e OrderCancelled) AggregateID() OrderID { return e.OrderID }

func (e OrderCancelled) OccurredAt() time.Time { return e.At }

// MarshalText lets OrderID serialize as a plain UUID string in event payloads.
func (id OrderID) MarshalText() ([]byte, error) {
	return []byte(uuid.UUID(id).String()), nil
}

// UnmarshalText parses an OrderID from its UUID string form.
func (id *OrderID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	if err != nil {
		return err
	}
	*id = OrderID(u)
	return nil
}

package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderID identifies an order aggregate.
type OrderID uuid.UUID

// NewOrderID generates a random order identifier.
func NewOrderID() OrderID { return OrderID(uuid.New()) }

func (id OrderID) UUID() uuid.UUID { return uuid.UUID(id) }
func (id OrderID) String() string  { return uuid.UUID(id).String() }
func (id OrderID) IsZero() bool    { return uuid.UUID(id) == uuid.Nil }

// LineItemID identifies a line item within its order.
type LineItemID uuid.UUID

// NewLineItemID generates a random line item identifier.
func NewLineItemID() LineItemID { return LineItemID(uuid.New()) }

func (id LineItemID) UUID() uuid.UUID { return uuid.UUID(id) }
func (id LineItemID) String() string  { return uuid.UUID(id).String() }

// LineItem is a child entity owned by exactly one order. Kind discriminates
// the subtype: BUNDLE items carry BundleUnits, CUSTOM items carry Note.
type LineItem struct {
	ID          LineItemID
	Kind        LineItemKind
	SKU         string
	Name        string
	Quantity    int
	UnitPrice   decimal.Decimal
	BundleUnits *int
	Note        *string
	Position    int
}

// LineTotal returns Quantity × UnitPrice.
func (li LineItem) LineTotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// OrderFilter narrows write-model list queries.
type OrderFilter struct {
	CustomerID *uuid.UUID
	Status     *OrderStatus
	Limit      int
	Offset     int
}

// Order is the aggregate root. It owns its line items and the polymorphic
// payment/shipment slots, and buffers domain events until the next
// successful persistence cycle.
type Order struct {
	ID           OrderID
	Number       string
	CustomerID   uuid.UUID
	Status       OrderStatus
	Currency     string
	Items        []LineItem
	Payment      Payment
	Shipment     Shipment
	PaidAt       *time.Time
	CancelledAt  *time.Time
	CancelReason *string
	CreatedAt    time.Time
	UpdatedAt    time.Time

	events []Event
}

// NewOrder creates a PENDING order and records an OrderCreated event.
func NewOrder(number string, customerID uuid.UUID, currency string, items []LineItem, now time.Time) *Order {
	o := &Order{
		ID:         NewOrderID(),
		Number:     number,
		CustomerID: customerID,
		Status:     OrderStatusPending,
		Currency:   currency,
		Items:      items,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	o.record(OrderCreated{
		OrderID:    o.ID,
		Number:     number,
		CustomerID: customerID,
		Total:      o.Total(),
		ItemsCount: o.ItemsCount(),
		At:         now,
	})
	return o
}

// Total returns the sum of all line totals.
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, li := range o.Items {
		total = total.Add(li.LineTotal())
	}
	return total
}

// ItemsCount returns the number of line items on the order.
func (o *Order) ItemsCount() int { return len(o.Items) }

// MarkPaid transitions the order to PAID, attaches the payment and records
// an OrderPaid event. Returns a TransitionError if the transition is illegal.
func (o *Order) MarkPaid(p Payment, now time.Time) error {
	if !o.Status.CanTransitionTo(OrderStatusPaid) {
		return &TransitionError{From: o.Status, To: OrderStatusPaid}
	}
	o.Status = OrderStatusPaid
	o.Payment = p
	o.PaidAt = &now
	o.UpdatedAt = now
	o.record(OrderPaid{
		OrderID: o.ID,
		Method:  p.Method(),
		At:      now,
	})
	return nil
}

// Cancel transitions the order to CANCELLED and records an OrderCancelled
// event. Returns a TransitionError if the transition is illegal.
func (o *Order) Cancel(reason string, now time.Time) error {
	if !o.Status.CanTransitionTo(OrderStatusCancelled) {
		return &TransitionError{From: o.Status, To: OrderStatusCancelled}
	}
	o.Status = OrderStatusCancelled
	o.CancelledAt = &now
	o.CancelReason = &reason
	o.UpdatedAt = now
	o.record(OrderCancelled{
		OrderID: o.ID,
		Reason:  reason,
		At:      now,
	})
	return nil
}

// SetShipment attaches a shipment variant to the order.
func (o *Order) SetShipment(s Shipment, now time.Time) {
	o.Shipment = s
	o.UpdatedAt = now
}

func (o *Order) record(e Event) {
	o.events = append(o.events, e)
}

// PendingEvents returns the buffered, not-yet-persisted domain events.
// The buffer is not cleared; callers clear it with ClearEvents after the
// persistence transaction commits, so a rollback never loses events and a
// commit never publishes them twice.
func (o *Order) PendingEvents() []Event { return o.events }

// ClearEvents empties the event buffer. Call exactly once per successful
// persistence cycle.
func (o *Order) ClearEvents() { o.events = nil }

package domain

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

func (s OrderStatus) String() string { return string(s) }

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusCancelled:
		return true
	}
	return false
}

// IsTerminal returns true for statuses an order cannot leave.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCancelled
}

// CanTransitionTo reports whether the transition s -> next is legal.
// Legal transitions: PENDING -> PAID, PENDING -> CANCELLED, PAID -> CANCELLED.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return next == OrderStatusPaid || next == OrderStatusCancelled
	case OrderStatusPaid:
		return next == OrderStatusCancelled
	}
	return false
}

// LineItemKind discriminates the subtype of a line item.
type LineItemKind string

const (
	LineItemKindSimple LineItemKind = "SIMPLE"
	LineItemKindBundle LineItemKind = "BUNDLE"
	LineItemKindCustom LineItemKind = "CUSTOM"
)

func (k LineItemKind) String() string { return string(k) }

func (k LineItemKind) IsValid() bool {
	switch k {
	case LineItemKindSimple, LineItemKindBundle, LineItemKindCustom:
		return true
	}
	return false
}

// PaymentMethod discriminates the payment variant stored on an order.
type PaymentMethod string

const (
	PaymentMethodCard   PaymentMethod = "CARD"
	PaymentMethodPayPal PaymentMethod = "PAYPAL"
)

func (m PaymentMethod) String() string { return string(m) }

func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCard, PaymentMethodPayPal:
		return true
	}
	return false
}

// ShipmentKind discriminates the shipment variant stored on an order.
type ShipmentKind string

const (
	ShipmentKindDelivery ShipmentKind = "DELIVERY"
	ShipmentKindPickup   ShipmentKind = "PICKUP"
)

func (k ShipmentKind) String() string { return string(k) }

func (k ShipmentKind) IsValid() bool {
	switch k {
	case ShipmentKindDelivery, ShipmentKindPickup:
		return true
	}
	return false
}

// OutboxStatus represents the delivery state of an outbox entry.
// DELIVERED is terminal; FAILED entries stay eligible for retry.
type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "PENDING"
	OutboxStatusDelivered OutboxStatus = "DELIVERED"
	OutboxStatusFailed    OutboxStatus = "FAILED"
)

func (s OutboxStatus) String() string { return string(s) }

func (s OutboxStatus) IsValid() bool {
	switch s {
	case OutboxStatusPending, OutboxStatusDelivered, OutboxStatusFailed:
		return true
	}
	return false
}

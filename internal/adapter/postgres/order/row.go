package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Row is the flat persistence shape of the orders table. The payment and
// shipment column groups are the flattened union of all variants' fields
// plus a discriminator; at most one group is non-null at a time.
type Row struct {
	ID         uuid.UUID
	Number     string
	CustomerID uuid.UUID
	Status     string
	Currency   string

	PaymentMethod   *string
	CardBrand       *string
	CardLast4       *string
	CardAuthCode    *string
	PaypalEmail     *string
	PaypalCaptureID *string

	ShipmentKind     *string
	ShipmentAddress  *string
	ShipmentTracking *string
	PickupPointCode  *string

	PaidAt       *time.Time
	CancelledAt  *time.Time
	CancelReason *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ItemRow is the flat persistence shape of the order_items table. Kind
// discriminates the line item subtype; BundleUnits and Note are the
// kind-specific columns.
type ItemRow struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	Kind        string
	SKU         string
	Name        string
	Quantity    int
	UnitPrice   decimal.Decimal
	BundleUnits *int
	Note        *string
	Position    int
}

// Record is the storage representation of one whole aggregate: the orders
// row plus its order_items rows. The mapper engine maps a *domain.Order to
// and from a Record; the repository moves Records to and from SQL.
type Record struct {
	Order Row
	Items []ItemRow
}

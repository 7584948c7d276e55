package order

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/oakmart/orders-backend/internal/domain"
	"github.com/oakmart/orders-backend/internal/mapper"
)

// newItemMapper builds the line item mapper. The identifier and the kind
// discriminator are one-way bindings: the reverse direction constructs both
// atomically in the domain factory, so an item never exists with an id but
// an invalid kind.
func newItemMapper() *mapper.Mapper[domain.LineItem, ItemRow] {
	m := mapper.New[domain.LineItem, ItemRow]("line_item")

	m.Field("id",
		func(li *domain.LineItem, r *ItemRow) error {
			r.ID = li.ID.UUID()
			return nil
		},
		nil,
	)
	m.Field("kind",
		func(li *domain.LineItem, r *ItemRow) error {
			r.Kind = string(li.Kind)
			return nil
		},
		nil,
	)

	mapper.Bind(m, "sku",
		func(li *domain.LineItem) string { return li.SKU },
		func(li *domain.LineItem, v string) { li.SKU = v },
		func(r *ItemRow) string { return r.SKU },
		func(r *ItemRow, v string) { r.SKU = v },
	)
	mapper.Bind(m, "name",
		func(li *domain.LineItem) string { return li.Name },
		func(li *domain.LineItem, v string) { li.Name = v },
		func(r *ItemRow) string { return r.Name },
		func(r *ItemRow, v string) { r.Name = v },
	)
	mapper.Bind(m, "quantity",
		func(li *domain.LineItem) int { return li.Quantity },
		func(li *domain.LineItem, v int) { li.Quantity = v },
		func(r *ItemRow) int { return r.Quantity },
		func(r *ItemRow, v int) { r.Quantity = v },
	)
	mapper.Bind(m, "unit_price",
		func(li *domain.LineItem) decimal.Decimal { return li.UnitPrice },
		func(li *domain.LineItem, v decimal.Decimal) { li.UnitPrice = v },
		func(r *ItemRow) decimal.Decimal { return r.UnitPrice },
		func(r *ItemRow, v decimal.Decimal) { r.UnitPrice = v },
	)
	mapper.Bind(m, "bundle_units",
		func(li *domain.LineItem) *int { return li.BundleUnits },
		func(li *domain.LineItem, v *int) { li.BundleUnits = v },
		func(r *ItemRow) *int { return r.BundleUnits },
		func(r *ItemRow, v *int) { r.BundleUnits = v },
	)
	mapper.Bind(m, "note",
		func(li *domain.LineItem) *string { return li.Note },
		func(li *domain.LineItem, v *string) { li.Note = v },
		func(r *ItemRow) *string { return r.Note },
		func(r *ItemRow, v *string) { r.Note = v },
	)
	mapper.Bind(m, "position",
		func(li *domain.LineItem) int { return li.Position },
		func(li *domain.LineItem, v int) { li.Position = v },
		func(r *ItemRow) int { return r.Position },
		func(r *ItemRow, v int) { r.Position = v },
	)

	m.DomainFactory(func(r *ItemRow) (domain.LineItem, error) {
		kind := domain.LineItemKind(r.Kind)
		if !kind.IsValid() {
			return domain.LineItem{}, &mapper.ConversionError{Field: "kind", Value: r.Kind, Reason: "no matching domain variant"}
		}
		return domain.LineItem{ID: domain.LineItemID(r.ID), Kind: kind}, nil
	})

	return m
}

// newOrderMapper builds the aggregate mapper: scalar bindings, the two
// polymorphic slots, and the line item cascade.
func newOrderMapper() *mapper.Mapper[domain.Order, Record] {
	m := mapper.New[domain.Order, Record]("order")

	mapper.Convert(m, "id",
		func(o *domain.Order) domain.OrderID { return o.ID },
		func(o *domain.Order, v domain.OrderID) { o.ID = v },
		func(r *Record) uuid.UUID { return r.Order.ID },
		func(r *Record, v uuid.UUID) { r.Order.ID = v },
		func(id domain.OrderID) (uuid.UUID, error) {
			if id.IsZero() {
				return uuid.Nil, errors.New("missing order id")
			}
			return id.UUID(), nil
		},
		func(raw uuid.UUID) (domain.OrderID, error) {
			if raw == uuid.Nil {
				return domain.OrderID{}, errors.New("missing order id")
			}
			return domain.OrderID(raw), nil
		},
	)

	mapper.Bind(m, "number",
		func(o *domain.Order) string { return o.Number },
		func(o *domain.Order, v string) { o.Number = v },
		func(r *Record) string { return r.Order.Number },
		func(r *Record, v string) { r.Order.Number = v },
	)
	mapper.Bind(m, "customer_id",
		func(o *domain.Order) uuid.UUID { return o.CustomerID },
		func(o *domain.Order, v uuid.UUID) { o.CustomerID = v },
		func(r *Record) uuid.UUID { return r.Order.CustomerID },
		func(r *Record, v uuid.UUID) { r.Order.CustomerID = v },
	)
	mapper.Enum(m, "status",
		func(o *domain.Order) domain.OrderStatus { return o.Status },
		func(o *domain.Order, v domain.OrderStatus) { o.Status = v },
		func(r *Record) string { return r.Order.Status },
		func(r *Record, v string) { r.Order.Status = v },
	)
	mapper.Bind(m, "currency",
		func(o *domain.Order) string { return o.Currency },
		func(o *domain.Order, v string) { o.Currency = v },
		func(r *Record) string { return r.Order.Currency },
		func(r *Record, v string) { r.Order.Currency = v },
	)
	mapper.Bind(m, "paid_at",
		func(o *domain.Order) *time.Time { return o.PaidAt },
		func(o *domain.Order, v *time.Time) { o.PaidAt = v },
		func(r *Record) *time.Time { return r.Order.PaidAt },
		func(r *Record, v *time.Time) { r.Order.PaidAt = v },
	)
	mapper.Bind(m, "cancelled_at",
		func(o *domain.Order) *time.Time { return o.CancelledAt },
		func(o *domain.Order, v *time.Time) { o.CancelledAt = v },
		func(r *Record) *time.Time { return r.Order.CancelledAt },
		func(r *Record, v *time.Time) { r.Order.CancelledAt = v },
	)
	mapper.Bind(m, "cancel_reason",
		func(o *domain.Order) *string { return o.CancelReason },
		func(o *domain.Order, v *string) { o.CancelReason = v },
		func(r *Record) *string { return r.Order.CancelReason },
		func(r *Record, v *string) { r.Order.CancelReason = v },
	)
	mapper.Bind(m, "created_at",
		func(o *domain.Order) time.Time { return o.CreatedAt },
		func(o *domain.Order, v time.Time) { o.CreatedAt = v },
		func(r *Record) time.Time { return r.Order.CreatedAt },
		func(r *Record, v time.Time) { r.Order.CreatedAt = v },
	)
	mapper.Bind(m, "updated_at",
		func(o *domain.Order) time.Time { return o.UpdatedAt },
		func(o *domain.Order, v time.Time) { o.UpdatedAt = v },
		func(r *Record) time.Time { return r.Order.UpdatedAt },
		func(r *Record, v time.Time) { r.Order.UpdatedAt = v },
	)

	mapper.Polymorphic(m, "payment",
		func(r *Record) *string { return r.Order.PaymentMethod },
		func(r *Record, v *string) { r.Order.PaymentMethod = v },
		func(o *domain.Order) bool { return o.Payment == nil },
		mapper.Variant[domain.Order, Record]{
			Tag: string(domain.PaymentMethodCard),
			Matches: func(o *domain.Order) bool {
				_, ok := o.Payment.(domain.CardPayment)
				return ok
			},
			Project: func(o *domain.Order, r *Record) error {
				p := o.Payment.(domain.CardPayment)
				r.Order.CardBrand = &p.Brand
				r.Order.CardLast4 = &p.Last4
				r.Order.CardAuthCode = &p.AuthCode
				return nil
			},
			Present: func(r *Record) bool { return r.Order.CardLast4 != nil },
			Restore: func(r *Record, o *domain.Order) error {
				if r.Order.CardBrand == nil || r.Order.CardLast4 == nil || r.Order.CardAuthCode == nil {
					return errors.New("card payment columns incomplete")
				}
				o.Payment = domain.CardPayment{
					Brand:    *r.Order.CardBrand,
					Last4:    *r.Order.CardLast4,
					AuthCode: *r.Order.CardAuthCode,
				}
				return nil
			},
		},
		mapper.Variant[domain.Order, Record]{
			Tag: string(domain.PaymentMethodPayPal),
			Matches: func(o *domain.Order) bool {
				_, ok := o.Payment.(domain.PayPalPayment)
				return ok
			},
			Project: func(o *domain.Order, r *Record) error {
				p := o.Payment.(domain.PayPalPayment)
				r.Order.PaypalEmail = &p.Email
				r.Order.PaypalCaptureID = &p.CaptureID
				return nil
			},
			Present: func(r *Record) bool { return r.Order.PaypalEmail != nil },
			Restore: func(r *Record, o *domain.Order) error {
				if r.Order.PaypalEmail == nil || r.Order.PaypalCaptureID == nil {
					return errors.New("paypal payment columns incomplete")
				}
				o.Payment = domain.PayPalPayment{
					Email:     *r.Order.PaypalEmail,
					CaptureID: *r.Order.PaypalCaptureID,
				}
				return nil
			},
		},
	)

	mapper.Polymorphic(m, "shipment",
		func(r *Record) *string { return r.Order.ShipmentKind },
		func(r *Record, v *string) { r.Order.ShipmentKind = v },
		func(o *domain.Order) bool { return o.Shipment == nil },
		mapper.Variant[domain.Order, Record]{
			Tag: string(domain.ShipmentKindDelivery),
			Matches: func(o *domain.Order) bool {
				_, ok := o.Shipment.(domain.DeliveryShipment)
				return ok
			},
			Project: func(o *domain.Order, r *Record) error {
				s := o.Shipment.(domain.DeliveryShipment)
				r.Order.ShipmentAddress = &s.Address
				r.Order.ShipmentTracking = &s.TrackingCode
				return nil
			},
			Present: func(r *Record) bool { return r.Order.ShipmentAddress != nil },
			Restore: func(r *Record, o *domain.Order) error {
				if r.Order.ShipmentAddress == nil || r.Order.ShipmentTracking == nil {
					return errors.New("delivery shipment columns incomplete")
				}
				o.Shipment = domain.DeliveryShipment{
					Address:      *r.Order.ShipmentAddress,
					TrackingCode: *r.Order.ShipmentTracking,
				}
				return nil
			},
		},
		mapper.Variant[domain.Order, Record]{
			Tag: string(domain.ShipmentKindPickup),
			Matches: func(o *domain.Order) bool {
				_, ok := o.Shipment.(domain.PickupShipment)
				return ok
			},
			Project: func(o *domain.Order, r *Record) error {
				s := o.Shipment.(domain.PickupShipment)
				r.Order.PickupPointCode = &s.PointCode
				return nil
			},
			Present: func(r *Record) bool { return r.Order.PickupPointCode != nil },
			Restore: func(r *Record, o *domain.Order) error {
				if r.Order.PickupPointCode == nil {
					return errors.New("pickup shipment columns incomplete")
				}
				o.Shipment = domain.PickupShipment{PointCode: *r.Order.PickupPointCode}
				return nil
			},
		},
	)

	mapper.Child(m, "items", newItemMapper(),
		func(o *domain.Order) []domain.LineItem { return o.Items },
		func(o *domain.Order, items []domain.LineItem) { o.Items = items },
		func(r *Record) []ItemRow { return r.Items },
		func(r *Record, rows []ItemRow) { r.Items = rows },
		func(r *Record, row *ItemRow) { row.OrderID = r.Order.ID },
	)

	return m
}

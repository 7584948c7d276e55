package order

import (
	"errors"
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/oakmart/orders-backend/internal/domain"
)

// ItemInput holds the parameters for one line item on a new order.
type ItemInput struct {
	Kind        domain.LineItemKind
	SKU         string
	Name        string
	Quantity    int
	UnitPrice   decimal.Decimal
	BundleUnits *int
	Note        *string
}

// ShipmentInput holds the parameters for the optional shipment slot.
type ShipmentInput struct {
	Kind      domain.ShipmentKind
	Address   string
	PointCode string
}

// PaymentInput holds the parameters for a payment authorization.
type PaymentInput struct {
	Method      domain.PaymentMethod
	CardBrand   string
	CardNumber  string
	PayPalEmail string
}

// CreateOrderInput holds the parameters for placing a new order.
type CreateOrderInput struct {
	CustomerID uuid.UUID
	Currency   string
	Items      []ItemInput
	Shipment   *ShipmentInput
}

// Validate checks all fields and collects all errors.
func (i *CreateOrderInput) Validate(maxItems int) error {
	var errs []domain.FieldError

	if i.CustomerID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "customer_id", Message: "required"})
	}
	if len(i.Items) == 0 {
		errs = append(errs, domain.FieldError{Field: "items", Message: "required (at least 1)"})
	} else if len(i.Items) > maxItems {
		errs = append(errs, domain.FieldError{Field: "items", Message: "too many (max " + strconv.Itoa(maxItems) + ")"})
	}

	for idx, item := range i.Items {
		if !item.Kind.IsValid() {
			errs = append(errs, domain.FieldError{Field: itemField(idx, "kind"), Message: "invalid value"})
		}
		if item.SKU == "" {
			errs = append(errs, domain.FieldError{Field: itemField(idx, "sku"), Message: "required"})
		}
		if item.Name == "" {
			errs = append(errs, domain.FieldError{Field: itemField(idx, "name"), Message: "required"})
		}
		if item.Quantity <= 0 {
			errs = append(errs, domain.FieldError{Field: itemField(idx, "quantity"), Message: "must be positive"})
		}
		if item.UnitPrice.IsNegative() {
			errs = append(errs, domain.FieldError{Field: itemField(idx, "unit_price"), Message: "must not be negative"})
		}
		if item.Kind == domain.LineItemKindBundle && (item.BundleUnits == nil || *item.BundleUnits <= 0) {
			errs = append(errs, domain.FieldError{Field: itemField(idx, "bundle_units"), Message: "required for BUNDLE items"})
		}
		if item.Kind != domain.LineItemKindBundle && item.BundleUnits != nil {
			errs = append(errs, domain.FieldError{Field: itemField(idx, "bundle_units"), Message: "only allowed for BUNDLE items"})
		}
	}

	if i.Shipment != nil {
		switch i.Shipment.Kind {
		case domain.ShipmentKindDelivery:
			if i.Shipment.Address == "" {
				errs = append(errs, domain.FieldError{Field: "shipment.address", Message: "required for DELIVERY"})
			}
		case domain.ShipmentKindPickup:
			if i.Shipment.PointCode == "" {
				errs = append(errs, domain.FieldError{Field: "shipment.point_code", Message: "required for PICKUP"})
			}
		default:
			errs = append(errs, domain.FieldError{Field: "shipment.kind", Message: "invalid value"})
		}
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// Validate checks the payment variant fields.
func (i *PaymentInput) Validate() error {
	var errs []domain.FieldError

	switch i.Method {
	case domain.PaymentMethodCard:
		if i.CardNumber == "" {
			errs = append(errs, domain.FieldError{Field: "payment.card_number", Message: "required for CARD"})
		}
	case domain.PaymentMethodPayPal:
		if i.PayPalEmail == "" {
			errs = append(errs, domain.FieldError{Field: "payment.paypal_email", Message: "required for PAYPAL"})
		}
	default:
		errs = append(errs, domain.FieldError{Field: "payment.method", Message: "invalid value"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// PayOrderInput holds the parameters for paying an existing order.
type PayOrderInput struct {
	OrderID domain.OrderID
	Payment PaymentInput
}

// Validate checks all fields and collects all errors.
func (i *PayOrderInput) Validate() error {
	var errs []domain.FieldError

	if i.OrderID.IsZero() {
		errs = append(errs, domain.FieldError{Field: "order_id", Message: "required"})
	}
	if err := i.Payment.Validate(); err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			errs = append(errs, ve.Errors...)
		}
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// CancelOrderInput holds the parameters for cancelling an order.
type CancelOrderInput struct {
	OrderID domain.OrderID
	Reason  string
}

// Validate checks all fields and collects all errors.
func (i *CancelOrderInput) Validate() error {
	var errs []domain.FieldError

	if i.OrderID.IsZero() {
		errs = append(errs, domain.FieldError{Field: "order_id", Message: "required"})
	}
	if i.Reason == "" {
		errs = append(errs, domain.FieldError{Field: "reason", Message: "required"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// CheckoutInput holds the parameters for the single-call checkout saga.
type CheckoutInput struct {
	Order   CreateOrderInput
	Payment PaymentInput
}

// Validate checks all fields and collects all errors.
func (i *CheckoutInput) Validate(maxItems int) error {
	var errs []domain.FieldError

	if err := i.Order.Validate(maxItems); err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			errs = append(errs, ve.Errors...)
		}
	}
	if err := i.Payment.Validate(); err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			errs = append(errs, ve.Errors...)
		}
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// itemField formats a nested field path like "items[0].sku".
func itemField(idx int, field string) string {
	return "items[" + strconv.Itoa(idx) + "]." + field
}

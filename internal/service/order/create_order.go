package order

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/oakmart/orders-backend/internal/domain"
)

// CreateOrder places a new PENDING order. The aggregate write and the
// OrderCreated outbox entry commit in one transaction.
func (s *Service) CreateOrder(ctx context.Context, input CreateOrderInput) (*domain.Order, error) {
	if err := input.Validate(s.cfg.MaxItemsPerOrder); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	currency := input.Currency
	if currency == "" {
		currency = s.cfg.DefaultCurrency
	}

	o := domain.NewOrder(newOrderNumber(), input.CustomerID, currency, buildItems(input.Items), now)
	if input.Shipment != nil {
		o.SetShipment(buildShipment(*input.Shipment), now)
	}

	if err := s.persistWithEvents(ctx, o); err != nil {
		return nil, err
	}

	s.log.Info("order created",
		"order_id", o.ID.String(),
		"number", o.Number,
		"total", o.Total().String(),
	)
	return o, nil
}

// buildItems assigns identities and positions to the submitted line items.
func buildItems(inputs []ItemInput) []domain.LineItem {
	items := make([]domain.LineItem, len(inputs))
	for i, in := range inputs {
		items[i] = domain.LineItem{
			ID:          domain.NewLineItemID(),
			Kind:        in.Kind,
			SKU:         in.SKU,
			Name:        in.Name,
			Quantity:    in.Quantity,
			UnitPrice:   in.UnitPrice,
			BundleUnits: in.BundleUnits,
			Note:        in.Note,
			Position:    i,
		}
	}
	return items
}

func buildShipment(in ShipmentInput) domain.Shipment {
	if in.Kind == domain.ShipmentKindPickup {
		return domain.PickupShipment{PointCode: in.PointCode}
	}
	return domain.DeliveryShipment{Address: in.Address}
}

// newOrderNumber generates a customer-facing order number.
func newOrderNumber() string {
	return "ORD-" + strings.ToUpper(uuid.New().String()[:8])
}

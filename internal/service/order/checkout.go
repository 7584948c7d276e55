package order

import (
	"context"
	"fmt"
	"time"

	"github.com/oakmart/orders-backend/internal/domain"
)

// Checkout runs the place-and-pay saga in one call: reserve inventory,
// authorize payment, persist the order as PAID. Compensation on a declined
// authorization releases the reservation and persists the order as
// CANCELLED, so the failed attempt is still visible in both models.
func (s *Service) Checkout(ctx context.Context, input CheckoutInput) (*domain.Order, error) {
	if err := input.Validate(s.cfg.MaxItemsPerOrder); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	currency := input.Order.Currency
	if currency == "" {
		currency = s.cfg.DefaultCurrency
	}

	o := domain.NewOrder(newOrderNumber(), input.Order.CustomerID, currency, buildItems(input.Order.Items), now)
	if input.Order.Shipment != nil {
		o.SetShipment(buildShipment(*input.Order.Shipment), now)
	}

	lines := reservationLines(o.Items)
	res, err := s.inventory.Reserve(ctx, lines)
	if err != nil {
		return nil, fmt.Errorf("reserve inventory: %w", err)
	}
	if !res.Reserved {
		return nil, fmt.Errorf("%w: %s", domain.ErrOutOfStock, res.Reason)
	}

	auth, err := s.payments.Authorize(ctx, domain.AuthorizationRequest{
		OrderID:     o.ID,
		Amount:      o.Total(),
		Currency:    o.Currency,
		Method:      input.Payment.Method,
		CardNumber:  input.Payment.CardNumber,
		PayPalEmail: input.Payment.PayPalEmail,
	})
	if err != nil {
		if relErr := s.inventory.Release(ctx, lines); relErr != nil {
			s.log.Error("release reservation", "order_id", o.ID.String(), "error", relErr)
		}
		return nil, fmt.Errorf("authorize payment: %w", err)
	}

	if !auth.Authorized {
		if relErr := s.inventory.Release(ctx, lines); relErr != nil {
			s.log.Error("release reservation", "order_id", o.ID.String(), "error", relErr)
		}
		if cancelErr := o.Cancel("payment declined: "+auth.Reason, now); cancelErr != nil {
			return nil, cancelErr
		}
		if err := s.persistWithEvents(ctx, o); err != nil {
			return nil, err
		}
		s.log.Warn("checkout declined", "order_id", o.ID.String(), "reason", auth.Reason)
		return nil, fmt.Errorf("%w: %s", domain.ErrPaymentDeclined, auth.Reason)
	}

	if err := o.MarkPaid(buildPayment(input.Payment, auth), now); err != nil {
		return nil, err
	}

	if err := s.persistWithEvents(ctx, o); err != nil {
		return nil, err
	}

	s.log.Info("checkout completed",
		"order_id", o.ID.String(),
		"number", o.Number,
		"total", o.Total().String(),
	)
	return o, nil
}

func reservationLines(items []domain.LineItem) []domain.ReservationLine {
	lines := make([]domain.ReservationLine, len(items))
	for i, it := range items {
		qty := it.Quantity
		if it.BundleUnits != nil {
			qty *= *it.BundleUnits
		}
		lines[i] = domain.ReservationLine{SKU: it.SKU, Quantity: qty}
	}
	return lines
}

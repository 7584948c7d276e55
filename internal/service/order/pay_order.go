package order

import (
	"context"
	"fmt"
	"time"

	"github.com/oakmart/orders-backend/internal/domain"
)

// PayOrder authorizes payment for an existing PENDING order and marks it
// PAID. A declined authorization returns domain.ErrPaymentDeclined and
// leaves the order untouched.
func (s *Service) PayOrder(ctx context.Context, input PayOrderInput) (*domain.Order, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	o, err := s.orders.FindByID(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}

	if !o.Status.CanTransitionTo(domain.OrderStatusPaid) {
		return nil, &domain.TransitionError{From: o.Status, To: domain.OrderStatusPaid}
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
		return nil, fmt.Errorf("authorize payment: %w", err)
	}
	if !auth.Authorized {
		s.log.Warn("payment declined", "order_id", o.ID.String(), "reason", auth.Reason)
		return nil, fmt.Errorf("%w: %s", domain.ErrPaymentDeclined, auth.Reason)
	}

	now := time.Now().UTC()
	if err := o.MarkPaid(buildPayment(input.Payment, auth), now); err != nil {
		return nil, err
	}

	if err := s.persistWithEvents(ctx, o); err != nil {
		return nil, err
	}

	s.log.Info("order paid", "order_id", o.ID.String(), "method", input.Payment.Method.String())
	return o, nil
}

// buildPayment converts an authorized payment input into the matching
// domain variant.
func buildPayment(in PaymentInput, auth domain.Authorization) domain.Payment {
	if in.Method == domain.PaymentMethodPayPal {
		return domain.PayPalPayment{Email: in.PayPalEmail, CaptureID: auth.CaptureID}
	}
	return domain.CardPayment{
		Brand:    in.CardBrand,
		Last4:    lastFour(in.CardNumber),
		AuthCode: auth.AuthCode,
	}
}

func lastFour(number string) string {
	if len(number) <= 4 {
		return number
	}
	return number[len(number)-4:]
}

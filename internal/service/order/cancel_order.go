package order

import (
	"context"
	"time"

	"github.com/oakmart/orders-backend/internal/domain"
)

// CancelOrder cancels a PENDING or PAID order. Cancelling an already
// cancelled order returns a TransitionError.
func (s *Service) CancelOrder(ctx context.Context, input CancelOrderInput) (*domain.Order, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	o, err := s.orders.FindByID(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := o.Cancel(input.Reason, now); err != nil {
		return nil, err
	}

	if err := s.persistWithEvents(ctx, o); err != nil {
		return nil, err
	}

	s.log.Info("order cancelled", "order_id", o.ID.String(), "reason", input.Reason)
	return o, nil
}

package order

import (
	"context"

	"github.com/oakmart/orders-backend/internal/domain"
)

// GetOrder loads one aggregate from the write model.
func (s *Service) GetOrder(ctx context.Context, id domain.OrderID) (*domain.Order, error) {
	if id.IsZero() {
		return nil, domain.NewValidationError("order_id", "required")
	}
	return s.orders.FindByID(ctx, id)
}

// ListOrders lists aggregates from the write model.
func (s *Service) ListOrders(ctx context.Context, f domain.OrderFilter) ([]*domain.Order, error) {
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}
	return s.orders.List(ctx, f)
}

// GetSummary reads one projected summary. Because projection is
// asynchronous the result may lag the write model; ErrNotFound can mean the
// order simply has not been projected yet.
func (s *Service) GetSummary(ctx context.Context, id domain.OrderID) (domain.OrderSummary, error) {
	if id.IsZero() {
		return domain.OrderSummary{}, domain.NewValidationError("order_id", "required")
	}
	return s.summaries.GetByOrderID(ctx, id)
}

// GetSummaryItems reads the projected item rows of one order.
func (s *Service) GetSummaryItems(ctx context.Context, id domain.OrderID) ([]domain.SummaryItem, error) {
	if id.IsZero() {
		return nil, domain.NewValidationError("order_id", "required")
	}
	return s.summaries.ItemsByOrderID(ctx, id)
}

// ListSummaries lists projected summaries matching the filter.
func (s *Service) ListSummaries(ctx context.Context, f domain.SummaryFilter) ([]domain.OrderSummary, error) {
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}
	return s.summaries.List(ctx, f)
}

// SummaryStats returns per-status counts and revenue from the read model.
func (s *Service) SummaryStats(ctx context.Context) ([]domain.StatusStat, error) {
	return s.summaries.Stats(ctx)
}

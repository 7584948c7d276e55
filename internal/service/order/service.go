// Package order implements the order write-side business logic: placing,
// paying, cancelling, and the checkout saga, plus read-model queries.
package order

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/oakmart/orders-backend/internal/config"
	"github.com/oakmart/orders-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type orderRepo interface {
	Save(ctx context.Context, o *domain.Order) error
	FindByID(ctx context.Context, id domain.OrderID) (*domain.Order, error)
	List(ctx context.Context, f domain.OrderFilter) ([]*domain.Order, error)
}

type outboxStore interface {
	Append(ctx context.Context, events ...domain.Event) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type inventoryGateway interface {
	Reserve(ctx context.Context, lines []domain.ReservationLine) (domain.Reservation, error)
	Release(ctx context.Context, lines []domain.ReservationLine) error
}

type paymentGateway interface {
	Authorize(ctx context.Context, req domain.AuthorizationRequest) (domain.Authorization, error)
}

type summaryReader interface {
	GetByOrderID(ctx context.Context, id domain.OrderID) (domain.OrderSummary, error)
	ItemsByOrderID(ctx context.Context, id domain.OrderID) ([]domain.SummaryItem, error)
	List(ctx context.Context, f domain.SummaryFilter) ([]domain.OrderSummary, error)
	Stats(ctx context.Context) ([]domain.StatusStat, error)
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements the order business logic.
type Service struct {
	log       *slog.Logger
	orders    orderRepo
	outbox    outboxStore
	tx        txManager
	inventory inventoryGateway
	payments  paymentGateway
	summaries summaryReader
	cfg       config.CheckoutConfig
}

// NewService creates a new Order service.
func NewService(
	logger *slog.Logger,
	orders orderRepo,
	outbox outboxStore,
	tx txManager,
	inventory inventoryGateway,
	payments paymentGateway,
	summaries summaryReader,
	cfg config.CheckoutConfig,
) *Service {
	return &Service{
		log:       logger.With("service", "order"),
		orders:    orders,
		outbox:    outbox,
		tx:        tx,
		inventory: inventory,
		payments:  payments,
		summaries: summaries,
		cfg:       cfg,
	}
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// persistWithEvents saves the aggregate and appends its buffered events to
// the outbox in one transaction. The event buffer is cleared only after the
// transaction commits: a rollback keeps the events for the retry, a commit
// guarantees they are never appended twice.
func (s *Service) persistWithEvents(ctx context.Context, o *domain.Order) error {
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.orders.Save(txCtx, o); err != nil {
			return fmt.Errorf("save order: %w", err)
		}
		if err := s.outbox.Append(txCtx, o.PendingEvents()...); err != nil {
			return fmt.Errorf("append outbox: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	o.ClearEvents()
	return nil
}

package projector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/oakmart/orders-backend/internal/domain"
)

type orderReader interface {
	FindByID(ctx context.Context, id domain.OrderID) (*domain.Order, error)
	List(ctx context.Context, f domain.OrderFilter) ([]*domain.Order, error)
}

type summaryWriter interface {
	UpsertSummary(ctx context.Context, s domain.OrderSummary) error
	UpsertItems(ctx context.Context, items []domain.SummaryItem) error
	SetStatus(ctx context.Context, id domain.OrderID, status domain.OrderStatus, paidAt, cancelledAt *time.Time) error
}

// Handlers project order events into the read model. Every handler
// re-queries the write model and upserts, so redelivering any event leaves
// the read model unchanged.
type Handlers struct {
	log       *slog.Logger
	orders    orderReader
	summaries summaryWriter
}

func NewHandlers(logger *slog.Logger, orders orderReader, summaries summaryWriter) *Handlers {
	return &Handlers{
		log:       logger.With("component", "projection"),
		orders:    orders,
		summaries: summaries,
	}
}

// RegisterAll binds all projection handlers to their topics.
func (h *Handlers) RegisterAll(p *Projector) {
	p.Register(domain.TopicOrderCreated, h.OnCreated)
	p.Register(domain.TopicOrderPaid, h.OnStatusChanged)
	p.Register(domain.TopicOrderCancelled, h.OnStatusChanged)
}

// OnCreated projects a new order into the read model: one summary row plus
// its denormalized item rows, all built from the current write-model state
// rather than the event payload, so a late delivery projects the settled
// truth.
func (h *Handlers) OnCreated(ctx context.Context, entry domain.OutboxEntry) error {
	o, err := h.orders.FindByID(ctx, entry.OrderID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// The aggregate vanished after the event was written. Nothing
			// to project; delivering the entry is the right outcome.
			h.log.Warn("order missing for created event", "order_id", entry.OrderID.String())
			return nil
		}
		return fmt.Errorf("load order: %w", err)
	}

	if err := h.summaries.UpsertSummary(ctx, summarize(o)); err != nil {
		return fmt.Errorf("upsert summary: %w", err)
	}
	if err := h.summaries.UpsertItems(ctx, summarizeItems(o)); err != nil {
		return fmt.Errorf("upsert summary items: %w", err)
	}
	return nil
}

// OnStatusChanged projects a paid or cancelled transition. A summary row
// that does not exist yet is not an error: the created event is still
// queued and will carry the final status when it projects.
func (h *Handlers) OnStatusChanged(ctx context.Context, entry domain.OutboxEntry) error {
	o, err := h.orders.FindByID(ctx, entry.OrderID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			h.log.Warn("order missing for status event", "order_id", entry.OrderID.String(), "topic", entry.Topic)
			return nil
		}
		return fmt.Errorf("load order: %w", err)
	}

	if err := h.summaries.SetStatus(ctx, o.ID, o.Status, o.PaidAt, o.CancelledAt); err != nil {
		return fmt.Errorf("set summary status: %w", err)
	}
	return nil
}

// summarize builds the denormalized summary row from current aggregate
// state.
func summarize(o *domain.Order) domain.OrderSummary {
	return domain.OrderSummary{
		OrderID:     o.ID,
		Number:      o.Number,
		CustomerID:  o.CustomerID,
		Status:      o.Status,
		Currency:    o.Currency,
		Total:       o.Total(),
		ItemsCount:  o.ItemsCount(),
		PlacedAt:    o.CreatedAt,
		PaidAt:      o.PaidAt,
		CancelledAt: o.CancelledAt,
	}
}

func summarizeItems(o *domain.Order) []domain.SummaryItem {
	items := make([]domain.SummaryItem, len(o.Items))
	for i, li := range o.Items {
		items[i] = domain.SummaryItem{
			ItemID:      li.ID,
			OrderID:     o.ID,
			OrderNumber: o.Number,
			OrderStatus: o.Status,
			Kind:        li.Kind,
			SKU:         li.SKU,
			Name:        li.Name,
			Quantity:    li.Quantity,
			LineTotal:   li.LineTotal(),
		}
	}
	return items
}

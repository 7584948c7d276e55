package projector

import (
	"context"
	"fmt"

	"github.com/oakmart/orders-backend/internal/domain"
)

const rebuildPageSize = 200

// Rebuild reprojects one order straight from the write model, bypassing the
// outbox. Upsert semantics make it safe to run against a read model that
// already holds the order.
func (h *Handlers) Rebuild(ctx context.Context, id domain.OrderID) error {
	o, err := h.orders.FindByID(ctx, id)
	if err != nil {
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

// RebuildAll reprojects every order, paging through the write model.
// Returns the number of orders projected.
func (h *Handlers) RebuildAll(ctx context.Context) (int, error) {
	total := 0
	for offset := 0; ; offset += rebuildPageSize {
		orders, err := h.orders.List(ctx, domain.OrderFilter{Limit: rebuildPageSize, Offset: offset})
		if err != nil {
			return total, fmt.Errorf("list orders: %w", err)
		}
		if len(orders) == 0 {
			return total, nil
		}

		for _, o := range orders {
			if err := h.summaries.UpsertSummary(ctx, summarize(o)); err != nil {
				return total, fmt.Errorf("upsert summary %s: %w", o.ID, err)
			}
			if err := h.summaries.UpsertItems(ctx, summarizeItems(o)); err != nil {
				return total, fmt.Errorf("upsert summary items %s: %w", o.ID, err)
			}
			total++
		}
	}
}

// Package projector drains the transactional outbox into projection
// handlers. Delivery is at-least-once: an entry is marked DELIVERED only
// after its handler returns nil, so every handler must tolerate
// redelivery.
//
// A single projector instance owns the outbox. Running two concurrently is
// not supported; entries would be delivered twice in parallel rather than
// corrupted, but the ordering guarantee below would be lost.
package projector

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/oakmart/orders-backend/internal/config"
	"github.com/oakmart/orders-backend/internal/domain"
)

// Handler processes one outbox entry. Returning nil marks the entry
// DELIVERED; returning an error marks it FAILED and blocks later entries of
// the same aggregate until the next cycle.
type Handler func(ctx context.Context, entry domain.OutboxEntry) error

type outboxStore interface {
	FetchPending(ctx context.Context, limit int) ([]domain.OutboxEntry, error)
	MarkDelivered(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64, cause error) error
}

// Projector dispatches pending outbox entries to registered handlers in id
// order.
type Projector struct {
	log      *slog.Logger
	store    outboxStore
	handlers map[string]Handler
	cfg      config.ProjectorConfig
}

// New creates a projector with no handlers registered.
func New(logger *slog.Logger, store outboxStore, cfg config.ProjectorConfig) *Projector {
	return &Projector{
		log:      logger.With("component", "projector"),
		store:    store,
		handlers: make(map[string]Handler),
		cfg:      cfg,
	}
}

// Register binds a handler to a topic, replacing any previous binding.
func (p *Projector) Register(topic string, h Handler) {
	p.handlers[topic] = h
}

// PublishAll drains the outbox once: it fetches and processes batches until
// no undelivered entry remains that it has not already attempted. Entries
// that keep failing are attempted exactly once per call, so a permanently
// failing handler cannot spin the drain forever. Returns the number of
// entries delivered.
func (p *Projector) PublishAll(ctx context.Context) (int, error) {
	seen := make(map[int64]struct{})
	delivered := 0

	for {
		entries, err := p.store.FetchPending(ctx, p.cfg.BatchSize)
		if err != nil {
			return delivered, fmt.Errorf("fetch pending: %w", err)
		}

		fresh := entries[:0:0]
		for _, e := range entries {
			if _, ok := seen[e.ID]; !ok {
				fresh = append(fresh, e)
				seen[e.ID] = struct{}{}
			}
		}
		if len(fresh) == 0 {
			return delivered, nil
		}

		delivered += p.processBatch(ctx, fresh)
	}
}

// Run polls the outbox until ctx is cancelled. Store fetch errors back off
// exponentially up to cfg.MaxBackoff; a batch already fetched is finished
// even when cancellation arrives mid-batch.
func (p *Projector) Run(ctx context.Context) error {
	bo := backoff.NewExponentialBackOff()
	bo.MaxInterval = p.cfg.MaxBackoff
	bo.MaxElapsedTime = 0

	ticker := time.NewTicker(p.cfg.PollInterval)
	defer ticker.Stop()

	p.log.Info("projector started",
		"batch_size", p.cfg.BatchSize,
		"poll_interval", p.cfg.PollInterval.String(),
	)

	for {
		entries, err := p.store.FetchPending(ctx, p.cfg.BatchSize)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			wait := bo.NextBackOff()
			p.log.Error("fetch pending", "error", err, "retry_in", wait.String())
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
			continue
		}
		bo.Reset()

		if len(entries) > 0 {
			// The in-flight batch finishes even if ctx is cancelled while
			// it runs.
			p.processBatch(context.WithoutCancel(ctx), entries)
		}

		select {
		case <-ctx.Done():
			p.log.Info("projector stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// processBatch delivers entries in order. A failed entry blocks later
// entries of the same aggregate for the rest of the batch, preserving
// per-aggregate event order. Returns the number of entries delivered.
func (p *Projector) processBatch(ctx context.Context, entries []domain.OutboxEntry) int {
	blocked := make(map[domain.OrderID]struct{})
	delivered := 0

	for _, e := range entries {
		if _, ok := blocked[e.OrderID]; ok {
			continue
		}

		h, ok := p.handlers[e.Topic]
		if !ok {
			p.fail(ctx, e, fmt.Errorf("no handler for topic %q", e.Topic))
			blocked[e.OrderID] = struct{}{}
			continue
		}

		if err := h(ctx, e); err != nil {
			p.fail(ctx, e, err)
			blocked[e.OrderID] = struct{}{}
			continue
		}

		if err := p.store.MarkDelivered(ctx, e.ID); err != nil {
			// The entry stays undelivered and will be retried; the handler
			// already ran, which at-least-once delivery permits.
			p.log.Error("mark delivered", "entry_id", e.ID, "error", err)
			blocked[e.OrderID] = struct{}{}
			continue
		}
		delivered++
	}

	return delivered
}

func (p *Projector) fail(ctx context.Context, e domain.OutboxEntry, cause error) {
	p.log.Error("deliver entry",
		"entry_id", e.ID,
		"topic", e.Topic,
		"order_id", e.OrderID.String(),
		"attempts", e.Attempts+1,
		"error", cause,
	)
	if err := p.store.MarkFailed(ctx, e.ID, cause); err != nil {
		p.log.Error("mark failed", "entry_id", e.ID, "error", err)
	}
}

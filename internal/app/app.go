package app

import (
	"context"
	"log/slog"

	"github.com/oakmart/orders-backend/internal/adapter/postgres"
	"github.com/oakmart/orders-backend/internal/adapter/postgres/order"
	"github.com/oakmart/orders-backend/internal/adapter/postgres/outbox"
	"github.com/oakmart/orders-backend/internal/adapter/postgres/summary"
	"github.com/oakmart/orders-backend/internal/config"
	"github.com/oakmart/orders-backend/internal/projector"
)

// Run is the projector service entry point. It loads configuration, wires
// the storage adapters and projection handlers, and polls the outbox until
// ctx is cancelled.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting projector",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	orderRepo := order.New(pool)
	outboxRepo := outbox.New(pool)
	summaryRepo := summary.New(pool)

	handlers := projector.NewHandlers(logger, orderRepo, summaryRepo)
	proj := projector.New(logger, outboxRepo, cfg.Projector)
	handlers.RegisterAll(proj)

	if err := proj.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

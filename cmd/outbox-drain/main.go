// Command outbox-drain delivers every pending outbox entry once and exits.
// It is intended for catch-up after downtime and for migration windows
// where the long-running projector is stopped.
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/oakmart/orders-backend/internal/adapter/postgres"
	"github.com/oakmart/orders-backend/internal/adapter/postgres/order"
	"github.com/oakmart/orders-backend/internal/adapter/postgres/outbox"
	"github.com/oakmart/orders-backend/internal/adapter/postgres/summary"
	"github.com/oakmart/orders-backend/internal/app"
	"github.com/oakmart/orders-backend/internal/config"
	"github.com/oakmart/orders-backend/internal/projector"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	handlers := projector.NewHandlers(logger, order.New(pool), summary.New(pool))
	proj := projector.New(logger, outbox.New(pool), cfg.Projector)
	handlers.RegisterAll(proj)

	delivered, err := proj.PublishAll(ctx)
	if err != nil {
		logger.Error("drain failed",
			slog.String("error", err.Error()),
			slog.Int("delivered", delivered),
		)
		os.Exit(1)
	}

	logger.Info("drain completed", slog.Int("delivered", delivered))
}

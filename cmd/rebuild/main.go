// Command rebuild reprojects the read model from the write model, bypassing
// the outbox. With -order it rebuilds a single order, otherwise every order.
// Run it with the projector stopped to avoid concurrent writers.
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/oakmart/orders-backend/internal/adapter/postgres"
	"github.com/oakmart/orders-backend/internal/adapter/postgres/order"
	"github.com/oakmart/orders-backend/internal/adapter/postgres/summary"
	"github.com/oakmart/orders-backend/internal/app"
	"github.com/oakmart/orders-backend/internal/config"
	"github.com/oakmart/orders-backend/internal/domain"
	"github.com/oakmart/orders-backend/internal/projector"
)

func main() {
	orderFlag := flag.String("order", "", "rebuild only this order id")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	handlers := projector.NewHandlers(logger, order.New(pool), summary.New(pool))

	if *orderFlag != "" {
		id, err := uuid.Parse(*orderFlag)
		if err != nil {
			logger.Error("invalid order id", slog.String("order_id", *orderFlag))
			os.Exit(1)
		}
		if err := handlers.Rebuild(ctx, domain.OrderID(id)); err != nil {
			logger.Error("rebuild failed", slog.String("order_id", *orderFlag), slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("rebuild completed", slog.String("order_id", *orderFlag))
		return
	}

	rebuilt, err := handlers.RebuildAll(ctx)
	if err != nil {
		logger.Error("rebuild failed",
			slog.String("error", err.Error()),
			slog.Int("rebuilt", rebuilt),
		)
		os.Exit(1)
	}

	logger.Info("rebuild completed", slog.Int("rebuilt", rebuilt))
}

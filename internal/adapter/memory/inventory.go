// Package memory provides in-process gateway adapters. They stand in for
// the external inventory and payment systems behind the same interfaces the
// checkout saga depends on.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/oakmart/orders-backend/internal/domain"
)

// InventoryGateway keeps per-SKU stock levels in memory and hands out
// reservations. Safe for concurrent use.
type InventoryGateway struct {
	mu    sync.Mutex
	stock map[string]int
}

// NewInventoryGateway seeds the gateway with initial stock levels.
func NewInventoryGateway(stock map[string]int) *InventoryGateway {
	s := make(map[string]int, len(stock))
	for sku, n := range stock {
		s[sku] = n
	}
	return &InventoryGateway{stock: s}
}

// Reserve atomically checks and decrements stock for all lines. Either every
// line is reserved or none is.
func (g *InventoryGateway) Reserve(_ context.Context, lines []domain.ReservationLine) (domain.Reservation, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, l := range lines {
		if g.stock[l.SKU] < l.Quantity {
			return domain.Reservation{
				Reserved: false,
				Reason:   fmt.Sprintf("insufficient stock for %s", l.SKU),
			}, nil
		}
	}
	for _, l := range lines {
		g.stock[l.SKU] -= l.Quantity
	}

	return domain.Reservation{Reserved: true}, nil
}

// Release returns previously reserved quantities to stock. Used by the
// checkout saga to compensate a declined authorization.
func (g *InventoryGateway) Release(_ context.Context, lines []domain.ReservationLine) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, l := range lines {
		g.stock[l.SKU] += l.Quantity
	}
	return nil
}

// Stock reports the current level for one SKU.
func (g *InventoryGateway) Stock(sku string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.stock[sku]
}

package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/oakmart/orders-backend/internal/domain"
)

func TestInventoryGateway_ReserveAllOrNothing(t *testing.T) {
	g := NewInventoryGateway(map[string]int{"LAPTOP": 5, "MOUSE": 1})
	ctx := context.Background()

	res, err := g.Reserve(ctx, []domain.ReservationLine{
		{SKU: "LAPTOP", Quantity: 1},
		{SKU: "MOUSE", Quantity: 2},
	})
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if res.Reserved {
		t.Fatal("reservation should fail when one line is short")
	}
	if res.Reason == "" {
		t.Fatal("failed reservation must carry a reason")
	}

	// The failed reservation must not have touched any line.
	if g.Stock("LAPTOP") != 5 || g.Stock("MOUSE") != 1 {
		t.Fatalf("stock mutated on failed reservation: LAPTOP=%d MOUSE=%d", g.Stock("LAPTOP"), g.Stock("MOUSE"))
	}

	res, err = g.Reserve(ctx, []domain.ReservationLine{
		{SKU: "LAPTOP", Quantity: 2},
		{SKU: "MOUSE", Quantity: 1},
	})
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if !res.Reserved {
		t.Fatalf("reservation should succeed: %s", res.Reason)
	}
	if g.Stock("LAPTOP") != 3 || g.Stock("MOUSE") != 0 {
		t.Fatalf("stock not decremented: LAPTOP=%d MOUSE=%d", g.Stock("LAPTOP"), g.Stock("MOUSE"))
	}
}

func TestInventoryGateway_UnknownSKU(t *testing.T) {
	g := NewInventoryGateway(map[string]int{"LAPTOP": 5})

	res, err := g.Reserve(context.Background(), []domain.ReservationLine{
		{SKU: "KEYBOARD", Quantity: 1},
	})
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if res.Reserved {
		t.Fatal("unknown SKU must not be reservable")
	}
}

func TestInventoryGateway_ReleaseRestoresStock(t *testing.T) {
	g := NewInventoryGateway(map[string]int{"LAPTOP": 2})
	ctx := context.Background()

	lines := []domain.ReservationLine{{SKU: "LAPTOP", Quantity: 2}}
	if res, _ := g.Reserve(ctx, lines); !res.Reserved {
		t.Fatal("setup reservation failed")
	}
	if err := g.Release(ctx, lines); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if g.Stock("LAPTOP") != 2 {
		t.Fatalf("stock after release = %d, want 2", g.Stock("LAPTOP"))
	}
}

func TestInventoryGateway_SeedIsCopied(t *testing.T) {
	seed := map[string]int{"LAPTOP": 5}
	g := NewInventoryGateway(seed)

	seed["LAPTOP"] = 0
	if g.Stock("LAPTOP") != 5 {
		t.Fatal("gateway must not alias the seed map")
	}
}

func TestInventoryGateway_ConcurrentReserve(t *testing.T) {
	g := NewInventoryGateway(map[string]int{"LAPTOP": 10})
	ctx := context.Background()

	var wg sync.WaitGroup
	reserved := make([]bool, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := g.Reserve(ctx, []domain.ReservationLine{{SKU: "LAPTOP", Quantity: 1}})
			if err != nil {
				t.Errorf("Reserve: %v", err)
				return
			}
			reserved[i] = res.Reserved
		}(i)
	}
	wg.Wait()

	var n int
	for _, ok := range reserved {
		if ok {
			n++
		}
	}
	if n != 10 {
		t.Fatalf("reserved %d units of 10 in stock", n)
	}
	if g.Stock("LAPTOP") != 0 {
		t.Fatalf("stock = %d, want 0", g.Stock("LAPTOP"))
	}
}

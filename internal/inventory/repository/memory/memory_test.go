package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/givebridge/distribution/internal/inventory/domain"
)

func TestCreditCreatesRecordLazily(t *testing.T) {
	repo := NewInventoryRepository()
	ctx := context.Background()

	record, err := repo.Credit(ctx, "rice", "food", "main", 20, decimal.NewFromInt(100), true, "donation-1")
	if err != nil {
		t.Fatalf("credit: %v", err)
	}
	if record.ID == 0 {
		t.Error("record id not assigned")
	}
	if record.QuantityAvailable != 20 {
		t.Errorf("available = %d, want 20", record.QuantityAvailable)
	}

	// Second credit at the same item+location reuses the row
	again, err := repo.Credit(ctx, "rice", "food", "main", 5, decimal.NewFromInt(25), true, "donation-2")
	if err != nil {
		t.Fatalf("second credit: %v", err)
	}
	if again.ID != record.ID {
		t.Errorf("second credit created record %d, want %d", again.ID, record.ID)
	}
	if again.QuantityAvailable != 25 {
		t.Errorf("available = %d, want 25", again.QuantityAvailable)
	}

	// Same item at another location is a separate row
	other, err := repo.Credit(ctx, "rice", "food", "warehouse-b", 3, decimal.NewFromInt(15), true, "donation-3")
	if err != nil {
		t.Fatalf("credit at second location: %v", err)
	}
	if other.ID == record.ID {
		t.Error("different locations share a record")
	}
}

func TestMutateLeavesRecordUntouchedOnFailure(t *testing.T) {
	repo := NewInventoryRepository()
	ctx := context.Background()
	seeded := repo.Seed(&domain.InventoryRecord{
		ItemName:          "soap",
		QuantityAvailable: 3,
		TotalValue:        decimal.NewFromInt(9),
		Status:            domain.StatusLowStock,
	})

	if _, err := repo.Reserve(ctx, seeded.ID, 10, "DP-X"); !domain.IsInsufficientStock(err) {
		t.Fatalf("got %v, want insufficient stock", err)
	}

	record, err := repo.FindByID(ctx, seeded.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if record.QuantityAvailable != 3 || record.QuantityReserved != 0 {
		t.Errorf("failed reserve mutated the record: available %d, reserved %d",
			record.QuantityAvailable, record.QuantityReserved)
	}

	entries, err := repo.Entries(ctx, seeded.ID, 0, 0)
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("failed reserve appended %d ledger entries", len(entries))
	}
}

func TestEntriesRecordMovements(t *testing.T) {
	repo := NewInventoryRepository()
	ctx := context.Background()

	record, err := repo.Credit(ctx, "blanket", "clothing", "main", 10, decimal.NewFromInt(50), true, "donation-7")
	if err != nil {
		t.Fatalf("credit: %v", err)
	}
	if _, err := repo.Reserve(ctx, record.ID, 4, "DP-1"); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if _, err := repo.Consume(ctx, record.ID, 4, "DP-1"); err != nil {
		t.Fatalf("consume: %v", err)
	}

	entries, err := repo.Entries(ctx, record.ID, 0, 0)
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}

	wantOps := []domain.LedgerOp{domain.OpCredit, domain.OpReserve, domain.OpConsume}
	wantRefs := []string{"donation-7", "DP-1", "DP-1"}
	for i, entry := range entries {
		if entry.Op != wantOps[i] {
			t.Errorf("entry %d op = %s, want %s", i, entry.Op, wantOps[i])
		}
		if entry.Reference != wantRefs[i] {
			t.Errorf("entry %d reference = %s, want %s", i, entry.Reference, wantRefs[i])
		}
	}
	if entries[2].ClosingQty != 6 {
		t.Errorf("closing quantity after consume = %d, want 6", entries[2].ClosingQty)
	}
}

func TestStatsAggregation(t *testing.T) {
	repo := NewInventoryRepository()
	ctx := context.Background()

	repo.Seed(&domain.InventoryRecord{
		ItemName: "rice", Category: "food",
		QuantityAvailable: 100, TotalValue: decimal.NewFromInt(500),
		Status: domain.StatusAvailable,
	})
	repo.Seed(&domain.InventoryRecord{
		ItemName: "canned goods", Category: "food",
		QuantityAvailable: 8, QuantityReserved: 2, TotalValue: decimal.NewFromInt(30),
		Status: domain.StatusLowStock,
	})
	repo.Seed(&domain.InventoryRecord{
		ItemName: "soap", Category: "hygiene",
		QuantityInbound: 40, TotalValue: decimal.NewFromInt(80),
		Status: domain.StatusReserved,
	})

	stats, err := repo.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}

	if stats.TotalRecords != 3 {
		t.Errorf("total records = %d, want 3", stats.TotalRecords)
	}
	if stats.TotalAvailable != 108 || stats.TotalReserved != 2 || stats.TotalInbound != 40 {
		t.Errorf("pools = %d/%d/%d, want 108/2/40",
			stats.TotalAvailable, stats.TotalReserved, stats.TotalInbound)
	}
	if !stats.TotalValue.Equal(decimal.NewFromInt(610)) {
		t.Errorf("total value = %s, want 610", stats.TotalValue)
	}
	if stats.LowStockCount != 1 {
		t.Errorf("low stock count = %d, want 1", stats.LowStockCount)
	}

	if len(stats.ByCategory) != 2 {
		t.Fatalf("got %d categories, want 2", len(stats.ByCategory))
	}
	if stats.ByCategory[0].Category != "food" || stats.ByCategory[0].Quantity != 110 {
		t.Errorf("food category = %+v", stats.ByCategory[0])
	}
	if stats.ByCategory[1].Category != "hygiene" || stats.ByCategory[1].Quantity != 40 {
		t.Errorf("hygiene category = %+v", stats.ByCategory[1])
	}
}

func TestFindAllocatableFiltersGatedRecords(t *testing.T) {
	repo := NewInventoryRepository()
	ctx := context.Background()

	repo.Seed(&domain.InventoryRecord{ItemName: "rice", QuantityAvailable: 10, Status: domain.StatusLowStock})
	repo.Seed(&domain.InventoryRecord{ItemName: "soap", QuantityInbound: 5, Status: domain.StatusReserved})
	repo.Seed(&domain.InventoryRecord{ItemName: "used books", QuantityAvailable: 20, Status: domain.StatusBazaar})
	repo.Seed(&domain.InventoryRecord{ItemName: "blanket", Status: domain.StatusNoStock})

	records, err := repo.FindAllocatable(ctx)
	if err != nil {
		t.Fatalf("find allocatable: %v", err)
	}
	if len(records) != 1 || records[0].ItemName != "rice" {
		t.Errorf("allocatable = %+v, want rice only", records)
	}
}

func TestFindLowStockSortsByQuantity(t *testing.T) {
	repo := NewInventoryRepository()
	ctx := context.Background()

	repo.Seed(&domain.InventoryRecord{ItemName: "rice", QuantityAvailable: 7, Status: domain.StatusLowStock})
	repo.Seed(&domain.InventoryRecord{ItemName: "soap", QuantityAvailable: 2, Status: domain.StatusLowStock})
	repo.Seed(&domain.InventoryRecord{ItemName: "oil", QuantityAvailable: 50, Status: domain.StatusAvailable})
	repo.Seed(&domain.InventoryRecord{ItemName: "used books", QuantityAvailable: 1, Status: domain.StatusBazaar})

	records, err := repo.FindLowStock(ctx, 10)
	if err != nil {
		t.Fatalf("find low stock: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].ItemName != "soap" || records[1].ItemName != "rice" {
		t.Errorf("order = %s, %s; want soap, rice", records[0].ItemName, records[1].ItemName)
	}
}

func TestFindByIDNotFound(t *testing.T) {
	repo := NewInventoryRepository()
	if _, err := repo.FindByID(context.Background(), 42); !errors.Is(err, domain.ErrRecordNotFound) {
		t.Errorf("got %v, want ErrRecordNotFound", err)
	}
}

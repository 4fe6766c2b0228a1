package integration

import (
	"context"
	"errors"
	"testing"

	"github.com/saboru/saboru-backend/internal/database"
	"github.com/saboru/saboru-backend/internal/store"
	"github.com/shopspring/decimal"
)

func TestAdjustInventoryUpsertAndLog(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	f := seedCatalog(t, ctx, db)

	dish, err := store.CreateDish(ctx, db, f.provider.ID, "Tamal", "", decimal.NewFromInt(900))
	if err != nil {
		t.Fatalf("Create dish: %v", err)
	}

	// First adjustment creates the record.
	record, err := store.AdjustInventory(ctx, db, dish.ID, f.provider.ID, 10, "carga inicial")
	if err != nil {
		t.Fatalf("Adjust inventory: %v", err)
	}
	if record.Quantity != 10 {
		t.Errorf("Expected quantity 10, got %d", record.Quantity)
	}

	// Second adjustment updates it in place.
	record, err = store.AdjustInventory(ctx, db, dish.ID, f.provider.ID, -4, "merma")
	if err != nil {
		t.Fatalf("Adjust inventory: %v", err)
	}
	if record.Quantity != 6 {
		t.Errorf("Expected quantity 6, got %d", record.Quantity)
	}

	entries, err := store.ListInventoryLog(ctx, db, dish.ID, f.provider.ID)
	if err != nil {
		t.Fatalf("List inventory log: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 log entries, got %d", len(entries))
	}
	latest := entries[0]
	if latest.Change != -4 || latest.Resulting != 6 {
		t.Errorf("Expected latest entry change -4 resulting 6, got %d/%d", latest.Change, latest.Resulting)
	}
	if latest.Reason != "merma" {
		t.Errorf("Expected reason %q, got %q", "merma", latest.Reason)
	}
}

func TestAdjustInventoryNeverGoesNegative(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	f := seedCatalog(t, ctx, db)
	dish := seedDish(t, ctx, db, f.provider.ID, "Ceviche", 1500, 2)

	_, err := store.AdjustInventory(ctx, db, dish.ID, f.provider.ID, -5, "venta")
	if !errors.Is(err, database.ErrValidation) {
		t.Errorf("Expected validation error, got: %v", err)
	}

	inv, err := store.GetInventory(ctx, db, dish.ID, f.provider.ID)
	if err != nil {
		t.Fatalf("Get inventory: %v", err)
	}
	if inv.Quantity != 2 {
		t.Errorf("Inventory should remain 2, got %d", inv.Quantity)
	}

	// The rejected change must not leave an audit row.
	entries, err := store.ListInventoryLog(ctx, db, dish.ID, f.provider.ID)
	if err != nil {
		t.Fatalf("List inventory log: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected 1 log entry (the seed), got %d", len(entries))
	}
}

func TestAdjustInventoryRejectsZeroChange(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	f := seedCatalog(t, ctx, db)
	dish := seedDish(t, ctx, db, f.provider.ID, "Patacones", 700, 1)

	_, err := store.AdjustInventory(ctx, db, dish.ID, f.provider.ID, 0, "")
	if !errors.Is(err, database.ErrValidation) {
		t.Errorf("Expected validation error for zero change, got: %v", err)
	}
}

func TestGetInventoryUnknownPairIsZero(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	inv, err := store.GetInventory(ctx, db, 9999, 9999)
	if err != nil {
		t.Fatalf("Get inventory: %v", err)
	}
	if inv.Quantity != 0 {
		t.Errorf("Expected zero quantity for unknown pair, got %d", inv.Quantity)
	}
}

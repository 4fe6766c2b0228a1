package integration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/saboru/saboru-backend/internal/database"
	"github.com/saboru/saboru-backend/internal/models"
	"github.com/saboru/saboru-backend/internal/store"
)

func TestAssignRouteIdempotent(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	userZ, err := store.CreateUser(ctx, db, "Zoe Vargas", "zoe@example.com", "Zapote, casa 4")
	if err != nil {
		t.Fatalf("Create user: %v", err)
	}
	userA, err := store.CreateUser(ctx, db, "Andrés Mora", "andres@example.com", "Alajuelita, casa 9")
	if err != nil {
		t.Fatalf("Create user: %v", err)
	}

	provider, err := store.CreateProvider(ctx, db, "Cocina de Doña Mar", "Curridabat, local 2")
	if err != nil {
		t.Fatalf("Create provider: %v", err)
	}
	dish := seedDish(t, ctx, db, provider.ID, "Sopa negra", 1100, 10)

	orderZ, _, err := store.PlaceOrder(ctx, db, store.PlaceOrderRequest{
		UserID:          userZ.ID,
		DeliveryAddress: "Edificio D",
		Items:           []store.OrderItemRequest{{DishID: dish.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("Place order: %v", err)
	}
	orderA, _, err := store.PlaceOrder(ctx, db, store.PlaceOrderRequest{
		UserID:          userA.ID,
		DeliveryAddress: "Edificio E",
		Items:           []store.OrderItemRequest{{DishID: dish.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("Place order: %v", err)
	}

	route, err := store.CreateRoute(ctx, db, time.Now(), 10, "moto", "Luis")
	if err != nil {
		t.Fatalf("Create route: %v", err)
	}

	result, err := store.AssignRoute(ctx, db, route.ID, time.Now())
	if err != nil {
		t.Fatalf("Assign route: %v", err)
	}
	if result.Assigned != 2 {
		t.Errorf("Expected 2 assigned orders, got %d", result.Assigned)
	}
	if result.AlreadyAssigned != 0 {
		t.Errorf("Expected 0 already assigned, got %d", result.AlreadyAssigned)
	}
	if len(result.Stops) != 2 {
		t.Fatalf("Expected 2 stops, got %d", len(result.Stops))
	}
	// Stops visit customers in alphabetical order of their home address.
	if result.Stops[0].OrderID != orderA.ID || result.Stops[1].OrderID != orderZ.ID {
		t.Errorf("Expected stop order [%d %d], got [%d %d]",
			orderA.ID, orderZ.ID, result.Stops[0].OrderID, result.Stops[1].OrderID)
	}

	for _, orderID := range []int64{orderA.ID, orderZ.ID} {
		entry, err := store.GetQueueEntry(ctx, db, orderID)
		if err != nil {
			t.Fatalf("Get queue entry: %v", err)
		}
		if entry.Status != models.QueueStatusAssigned {
			t.Errorf("Order %d: expected queue estado %q, got %q",
				orderID, models.QueueStatusAssigned, entry.Status)
		}

		events, err := store.ListOrderEvents(ctx, db, orderID)
		if err != nil {
			t.Fatalf("List order events: %v", err)
		}
		if len(events) != 2 {
			t.Errorf("Order %d: expected 2 events (created + assigned), got %d", orderID, len(events))
		}
	}

	// Re-running the assignment must not duplicate route items.
	again, err := store.AssignRoute(ctx, db, route.ID, time.Now())
	if err != nil {
		t.Fatalf("Assign route again: %v", err)
	}
	if again.Assigned != 0 {
		t.Errorf("Expected 0 newly assigned on re-run, got %d", again.Assigned)
	}
	if again.AlreadyAssigned != 2 {
		t.Errorf("Expected 2 already assigned on re-run, got %d", again.AlreadyAssigned)
	}

	items, err := store.ListRouteItems(ctx, db, route.ID)
	if err != nil {
		t.Fatalf("List route items: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("Expected 2 route items after re-run, got %d", len(items))
	}

	for _, orderID := range []int64{orderA.ID, orderZ.ID} {
		events, err := store.ListOrderEvents(ctx, db, orderID)
		if err != nil {
			t.Fatalf("List order events: %v", err)
		}
		if len(events) != 2 {
			t.Errorf("Order %d: re-run added events, got %d", orderID, len(events))
		}
	}
}

func TestAssignRouteUnknownRoute(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := store.AssignRoute(context.Background(), db, 9999, time.Now())
	if !errors.Is(err, database.ErrRouteNotFound) {
		t.Errorf("Expected route not found, got: %v", err)
	}
}

func TestCreateRouteRejectsZeroCapacity(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := store.CreateRoute(context.Background(), db, time.Now(), 0, "moto", "Luis")
	if !errors.Is(err, database.ErrValidation) {
		t.Errorf("Expected validation error, got: %v", err)
	}
}

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rentwise/rental-api/internal/domain"
	"github.com/rentwise/rental-api/internal/testutil"
)

func testDay(n int) time.Time {
	return time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func TestItemRepository(t *testing.T) {
	pool := testutil.NewTestPool(t)
	repo := NewItemRepository(pool)
	testutil.ApplyMigrations(t, context.Background(), pool)

	t.Run("CreateItem persists and GetItem returns it", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		orderID := testutil.InsertOrder(t, ctx, pool, domain.Order{
			Name: "shoot", PickupAt: testDay(0), ReturnAt: testDay(7), Status: domain.OrderStatusWorking,
		})
		inventoryID := testutil.InsertInventory(t, ctx, pool, "RW-0001")

		now := time.Now().UTC().Truncate(time.Microsecond)
		item := domain.OrderItem{
			ID:          "11111111-1111-1111-1111-111111111111",
			OrderID:     orderID,
			InventoryID: inventoryID,
			PickupAt:    testDay(0),
			ReturnAt:    testDay(7),
			Status:      domain.StatusAvailable,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := repo.CreateItem(ctx, item); err != nil {
			t.Fatalf("create item: %v", err)
		}

		got, err := repo.GetItem(ctx, item.ID)
		if err != nil {
			t.Fatalf("get item: %v", err)
		}
		if got.OrderID != orderID || got.InventoryID != inventoryID {
			t.Fatalf("unexpected item: %+v", got)
		}
		if got.Status != domain.StatusAvailable || got.Deleted {
			t.Fatalf("unexpected item state: %+v", got)
		}
	})

	t.Run("CreateItem maps constraint violations", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		orderID := testutil.InsertOrder(t, ctx, pool, domain.Order{
			Name: "shoot", PickupAt: testDay(0), ReturnAt: testDay(7), Status: domain.OrderStatusWorking,
		})
		inventoryID := testutil.InsertInventory(t, ctx, pool, "RW-0001")
		testutil.InsertItem(t, ctx, pool, domain.OrderItem{
			OrderID: orderID, InventoryID: inventoryID,
			PickupAt: testDay(0), ReturnAt: testDay(7), Status: domain.StatusAvailable,
		})

		now := time.Now().UTC()
		dup := domain.OrderItem{
			ID: "22222222-2222-2222-2222-222222222222", OrderID: orderID, InventoryID: inventoryID,
			PickupAt: testDay(0), ReturnAt: testDay(7), Status: domain.StatusAvailable,
			CreatedAt: now, UpdatedAt: now,
		}
		if err := repo.CreateItem(ctx, dup); !errors.Is(err, domain.ErrDuplicateItem) {
			t.Fatalf("expected ErrDuplicateItem, got %v", err)
		}

		orphan := dup
		orphan.ID = "33333333-3333-3333-3333-333333333333"
		orphan.OrderID = "44444444-4444-4444-4444-444444444444"
		if err := repo.CreateItem(ctx, orphan); !errors.Is(err, domain.ErrOrderNotFound) {
			t.Fatalf("expected ErrOrderNotFound, got %v", err)
		}

		bad := dup
		bad.ID = "not-a-uuid"
		if err := repo.CreateItem(ctx, bad); !errors.Is(err, domain.ErrInvalidID) {
			t.Fatalf("expected ErrInvalidID, got %v", err)
		}
	})

	t.Run("FindItemByOrderAndInventory sees soft-deleted rows", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		orderID := testutil.InsertOrder(t, ctx, pool, domain.Order{
			Name: "shoot", PickupAt: testDay(0), ReturnAt: testDay(7), Status: domain.OrderStatusWorking,
		})
		inventoryID := testutil.InsertInventory(t, ctx, pool, "RW-0001")
		testutil.InsertItem(t, ctx, pool, domain.OrderItem{
			OrderID: orderID, InventoryID: inventoryID,
			PickupAt: testDay(0), ReturnAt: testDay(7),
			Status: domain.StatusCancelled, Deleted: true,
		})

		found, err := repo.FindItemByOrderAndInventory(ctx, orderID, inventoryID)
		if err != nil {
			t.Fatalf("find item: %v", err)
		}
		if found == nil || !found.Deleted {
			t.Fatalf("expected deleted row returned, got %+v", found)
		}

		none, err := repo.FindItemByOrderAndInventory(ctx, orderID, "55555555-5555-5555-5555-555555555555")
		if err != nil {
			t.Fatalf("find item: %v", err)
		}
		if none != nil {
			t.Fatalf("expected nil for unused pair, got %+v", none)
		}
	})

	t.Run("SetOrderHoldRequested flips the flag", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		orderID := testutil.InsertOrder(t, ctx, pool, domain.Order{
			Name: "shoot", PickupAt: testDay(0), ReturnAt: testDay(7),
			Status: domain.OrderStatusHold, RequestHold: true,
		})

		if err := repo.SetOrderHoldRequested(ctx, orderID, false); err != nil {
			t.Fatalf("set flag: %v", err)
		}
		order, err := repo.GetOrder(ctx, orderID)
		if err != nil {
			t.Fatalf("get order: %v", err)
		}
		if order.RequestHold {
			t.Fatalf("expected flag cleared")
		}

		err = repo.SetOrderHoldRequested(ctx, "66666666-6666-6666-6666-666666666666", false)
		if !errors.Is(err, domain.ErrOrderNotFound) {
			t.Fatalf("expected ErrOrderNotFound, got %v", err)
		}
	})

	t.Run("ListConflicting applies the inclusive overlap predicate", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		ownOrderID := testutil.InsertOrder(t, ctx, pool, domain.Order{
			Name: "mine", PickupAt: testDay(0), ReturnAt: testDay(7), Status: domain.OrderStatusWorking,
		})
		otherOrderID := testutil.InsertOrder(t, ctx, pool, domain.Order{
			Name: "theirs", PickupAt: testDay(0), ReturnAt: testDay(30), Status: domain.OrderStatusWorking,
		})
		thirdOrderID := testutil.InsertOrder(t, ctx, pool, domain.Order{
			Name: "gone", PickupAt: testDay(0), ReturnAt: testDay(30), Status: domain.OrderStatusWorking,
		})
		inventoryID := testutil.InsertInventory(t, ctx, pool, "RW-0001")

		// Same order: excluded.
		testutil.InsertItem(t, ctx, pool, domain.OrderItem{
			OrderID: ownOrderID, InventoryID: inventoryID,
			PickupAt: testDay(0), ReturnAt: testDay(7), Status: domain.StatusAvailable,
		})
		// Touches the boundary: included.
		boundaryID := testutil.InsertItem(t, ctx, pool, domain.OrderItem{
			OrderID: otherOrderID, InventoryID: inventoryID,
			PickupAt: testDay(7), ReturnAt: testDay(10), Status: domain.StatusOnHold,
		})
		// Soft-deleted: excluded.
		testutil.InsertItem(t, ctx, pool, domain.OrderItem{
			OrderID: thirdOrderID, InventoryID: inventoryID,
			PickupAt: testDay(0), ReturnAt: testDay(7), Status: domain.StatusCancelled, Deleted: true,
		})

		conflicts, err := repo.ListConflicting(ctx, inventoryID, ownOrderID, testDay(0), testDay(7))
		if err != nil {
			t.Fatalf("list conflicting: %v", err)
		}
		if len(conflicts) != 1 || conflicts[0].ID != boundaryID {
			t.Fatalf("expected only the boundary item, got %+v", conflicts)
		}

		// Disjoint query range finds nothing.
		conflicts, err = repo.ListConflicting(ctx, inventoryID, ownOrderID, testDay(20), testDay(25))
		if err != nil {
			t.Fatalf("list conflicting: %v", err)
		}
		if len(conflicts) != 0 {
			t.Fatalf("expected no conflicts, got %+v", conflicts)
		}
	})

	t.Run("SaveItem inside WithTx is visible after commit", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		orderID := testutil.InsertOrder(t, ctx, pool, domain.Order{
			Name: "shoot", PickupAt: testDay(0), ReturnAt: testDay(7), Status: domain.OrderStatusWorking,
		})
		inventoryID := testutil.InsertInventory(t, ctx, pool, "RW-0001")
		itemID := testutil.InsertItem(t, ctx, pool, domain.OrderItem{
			OrderID: orderID, InventoryID: inventoryID,
			PickupAt: testDay(0), ReturnAt: testDay(7), Status: domain.StatusAvailable,
		})

		err := repo.WithTx(ctx, func(txCtx context.Context) error {
			if err := repo.LockInventory(txCtx, inventoryID); err != nil {
				return err
			}
			item, err := repo.GetItem(txCtx, itemID)
			if err != nil {
				return err
			}
			item.Status = domain.StatusOnHoldRequest
			item.RequestHold = true
			item.UpdatedAt = time.Now().UTC()
			return repo.SaveItem(txCtx, item)
		})
		if err != nil {
			t.Fatalf("tx failed: %v", err)
		}

		got, err := repo.GetItem(ctx, itemID)
		if err != nil {
			t.Fatalf("get item: %v", err)
		}
		if got.Status != domain.StatusOnHoldRequest || !got.RequestHold {
			t.Fatalf("expected committed update, got %+v", got)
		}
	})

	t.Run("WithTx rolls back on error", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		orderID := testutil.InsertOrder(t, ctx, pool, domain.Order{
			Name: "shoot", PickupAt: testDay(0), ReturnAt: testDay(7), Status: domain.OrderStatusWorking,
		})
		inventoryID := testutil.InsertInventory(t, ctx, pool, "RW-0001")
		itemID := testutil.InsertItem(t, ctx, pool, domain.OrderItem{
			OrderID: orderID, InventoryID: inventoryID,
			PickupAt: testDay(0), ReturnAt: testDay(7), Status: domain.StatusAvailable,
		})

		boom := errors.New("boom")
		err := repo.WithTx(ctx, func(txCtx context.Context) error {
			item, err := repo.GetItem(txCtx, itemID)
			if err != nil {
				return err
			}
			item.Status = domain.StatusUnavailable
			item.UpdatedAt = time.Now().UTC()
			if err := repo.SaveItem(txCtx, item); err != nil {
				return err
			}
			return boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("expected boom, got %v", err)
		}

		got, err := repo.GetItem(ctx, itemID)
		if err != nil {
			t.Fatalf("get item: %v", err)
		}
		if got.Status != domain.StatusAvailable {
			t.Fatalf("expected rollback, got %+v", got)
		}
	})
}

package app

import (
	"context"
	"errors"
	"time"

	"github.com/rentwise/rental-api/internal/clock"
	"github.com/rentwise/rental-api/internal/domain"
)

type ItemRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	LockInventory(ctx context.Context, inventoryID string) error
	GetOrder(ctx context.Context, orderID string) (domain.Order, error)
	GetItem(ctx context.Context, itemID string) (domain.OrderItem, error)
	FindItemByOrderAndInventory(ctx context.Context, orderID, inventoryID string) (*domain.OrderItem, error)
	CreateItem(ctx context.Context, item domain.OrderItem) error
	SaveItem(ctx context.Context, item domain.OrderItem) error
	SetOrderHoldRequested(ctx context.Context, orderID string, requested bool) error
	ListConflicting(ctx context.Context, inventoryID, excludeOrderID string, pickupAt, returnAt time.Time) ([]domain.OrderItem, error)
}

// ItemService owns the order-item lifecycle: attaching inventory to an
// order and soft-deleting it, cascading status recomputation to the
// sibling items the change affects.
type ItemService struct {
	repo     ItemRepository
	resolver *Resolver
	clock    clock.Clock
}

func NewItemService(repo ItemRepository, clk clock.Clock) *ItemService {
	return &ItemService{
		repo:     repo,
		resolver: NewResolver(repo),
		clock:    clk,
	}
}

type AddItemInput struct {
	OrderID     string
	InventoryID string
}

// AddItem attaches an inventory unit to an order. The item snapshots
// the order's current dates and gets its initial status from a plain
// availability check; adding an item invalidates any in-flight hold
// request on the order. The duplicate check counts soft-deleted rows:
// a removed pair cannot be re-added.
func (s *ItemService) AddItem(ctx context.Context, in AddItemInput) (domain.OrderItem, error) {
	if in.OrderID == "" || in.InventoryID == "" {
		return domain.OrderItem{}, domain.ErrInvalidID
	}

	var item domain.OrderItem
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindItemByOrderAndInventory(txCtx, in.OrderID, in.InventoryID)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrDuplicateItem
		}

		order, err := s.repo.GetOrder(txCtx, in.OrderID)
		if err != nil {
			return err
		}

		if err := s.repo.LockInventory(txCtx, in.InventoryID); err != nil {
			return err
		}
		avail, err := s.resolver.Resolve(txCtx, order.PickupAt, order.ReturnAt, in.InventoryID, in.OrderID)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		item = domain.OrderItem{
			ID:               newID(),
			OrderID:          in.OrderID,
			InventoryID:      in.InventoryID,
			PickupAt:         order.PickupAt,
			ReturnAt:         order.ReturnAt,
			Status:           avail.Status,
			UnavailableUntil: avail.UnavailableUntil,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if err := s.repo.CreateItem(txCtx, item); err != nil {
			return err
		}

		return s.repo.SetOrderHoldRequested(txCtx, in.OrderID, false)
	})
	if err != nil {
		return domain.OrderItem{}, err
	}
	return item, nil
}

// RemoveItem soft-deletes an item: the row is kept for history with its
// status frozen at cancelled. Every other non-deleted item of the same
// inventory whose range overlapped the removed one is re-resolved
// against its own order, except confirmed items, which are never
// overwritten by a deletion elsewhere.
func (s *ItemService) RemoveItem(ctx context.Context, itemID string) error {
	if itemID == "" {
		return domain.ErrInvalidID
	}

	return s.repo.WithTx(ctx, func(txCtx context.Context) error {
		item, err := s.repo.GetItem(txCtx, itemID)
		if err != nil {
			return err
		}

		if err := s.repo.LockInventory(txCtx, item.InventoryID); err != nil {
			return err
		}

		now := s.clock.Now()
		item.Deleted = true
		item.Status = domain.StatusCancelled
		item.UpdatedAt = now
		if err := s.repo.SaveItem(txCtx, item); err != nil {
			return err
		}

		related, err := s.repo.ListConflicting(txCtx, item.InventoryID, item.OrderID, item.PickupAt, item.ReturnAt)
		if err != nil {
			return err
		}
		for _, rel := range related {
			if rel.Status == domain.StatusConfirmed {
				continue
			}
			relOrder, err := s.repo.GetOrder(txCtx, rel.OrderID)
			if errors.Is(err, domain.ErrOrderNotFound) {
				continue
			}
			if err != nil {
				return err
			}

			avail, err := s.resolver.Resolve(txCtx, relOrder.PickupAt, relOrder.ReturnAt, rel.InventoryID, rel.OrderID)
			if err != nil {
				return err
			}
			rel.Status = avail.Status
			rel.UnavailableUntil = avail.UnavailableUntil
			rel.UpdatedAt = now
			if err := s.repo.SaveItem(txCtx, rel); err != nil {
				return err
			}
		}
		return nil
	})
}

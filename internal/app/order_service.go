package app

import (
	"context"
	"time"

	"github.com/rentwise/rental-api/internal/clock"
	"github.com/rentwise/rental-api/internal/domain"
)

type OrderRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	LockInventory(ctx context.Context, inventoryID string) error
	CreateOrder(ctx context.Context, order domain.Order) error
	GetOrder(ctx context.Context, orderID string) (domain.Order, error)
	GetOrderForUpdate(ctx context.Context, orderID string) (domain.Order, error)
	SaveOrder(ctx context.Context, order domain.Order) error
	ListItemsByOrder(ctx context.Context, orderID string) ([]domain.OrderItem, error)
	SaveItem(ctx context.Context, item domain.OrderItem) error
	ListConflicting(ctx context.Context, inventoryID, excludeOrderID string, pickupAt, returnAt time.Time) ([]domain.OrderItem, error)
	FindConfirmedConflict(ctx context.Context, inventoryID, excludeOrderID string, pickupAt, returnAt time.Time) (*domain.OrderItem, error)
	MarkConflictsUnavailableUntil(ctx context.Context, inventoryID, excludeOrderID string, pickupAt, returnAt, until time.Time) error
}

// OrderService owns order-level transitions: creation, the bulk hold
// request, date changes and confirmation. Each operation runs as one
// transaction and serializes on the inventory units it touches.
type OrderService struct {
	repo     OrderRepository
	resolver *Resolver
	clock    clock.Clock
}

func NewOrderService(repo OrderRepository, clk clock.Clock) *OrderService {
	return &OrderService{
		repo:     repo,
		resolver: NewResolver(repo),
		clock:    clk,
	}
}

type CreateOrderInput struct {
	Name     string
	PickupAt time.Time
	ReturnAt time.Time
}

func (s *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput) (domain.Order, error) {
	if in.PickupAt.IsZero() || in.ReturnAt.IsZero() || in.PickupAt.After(in.ReturnAt) {
		return domain.Order{}, domain.ErrInvalidDates
	}

	now := s.clock.Now()
	order := domain.Order{
		ID:        newID(),
		Name:      in.Name,
		PickupAt:  in.PickupAt,
		ReturnAt:  in.ReturnAt,
		Status:    domain.OrderStatusWorking,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateOrder(ctx, order); err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

func (s *OrderService) GetOrder(ctx context.Context, orderID string) (domain.Order, error) {
	if orderID == "" {
		return domain.Order{}, domain.ErrInvalidID
	}
	return s.repo.GetOrder(ctx, orderID)
}

// HoldRequestItem reports one item that received a waitlist tier.
type HoldRequestItem struct {
	ItemID      string
	InventoryID string
	Status      domain.ItemStatus
}

// HoldRequestError reports one item that could not get a tier. These
// are results, not failures: the rest of the order still proceeds.
type HoldRequestError struct {
	InventoryID string
	Message     string
}

type RequestHoldResult struct {
	OrderID      string
	UpdatedItems []HoldRequestItem
	Errors       []HoldRequestError
}

// RequestHold drives the bulk waitlist flow. With enable, every
// non-confirmed item of the order is allocated the next free tier for
// its inventory unit; items whose contention is already saturated are
// reported in Errors and left untouched. Without enable, items sitting
// in a request tier are re-resolved to their plain status and the
// request flag is cleared; cancelling twice is a no-op the second time.
func (s *OrderService) RequestHold(ctx context.Context, orderID string, enable bool) (RequestHoldResult, error) {
	if orderID == "" {
		return RequestHoldResult{}, domain.ErrInvalidID
	}

	result := RequestHoldResult{OrderID: orderID}
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		order, err := s.repo.GetOrderForUpdate(txCtx, orderID)
		if err != nil {
			return err
		}
		items, err := s.repo.ListItemsByOrder(txCtx, orderID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return domain.ErrNoItems
		}

		now := s.clock.Now()
		if enable {
			for _, item := range items {
				if item.Status == domain.StatusConfirmed {
					continue
				}
				if err := s.repo.LockInventory(txCtx, item.InventoryID); err != nil {
					return err
				}
				conflicts, err := s.repo.ListConflicting(txCtx, item.InventoryID, orderID, order.PickupAt, order.ReturnAt)
				if err != nil {
					return err
				}
				tier := NextHoldTier(conflicts)
				if tier == domain.StatusUnavailable {
					result.Errors = append(result.Errors, HoldRequestError{
						InventoryID: item.InventoryID,
						Message:     "maximum hold limit reached for this inventory",
					})
					continue
				}

				requestedAt := now
				item.Status = tier
				item.RequestHold = true
				item.RequestHoldAt = &requestedAt
				item.UpdatedAt = now
				if err := s.repo.SaveItem(txCtx, item); err != nil {
					return err
				}
				result.UpdatedItems = append(result.UpdatedItems, HoldRequestItem{
					ItemID:      item.ID,
					InventoryID: item.InventoryID,
					Status:      tier,
				})
			}

			order.RequestHold = true
			order.Status = domain.OrderStatusHold
			order.UpdatedAt = now
			return s.repo.SaveOrder(txCtx, order)
		}

		for _, item := range items {
			if !item.Status.IsHoldRequest() {
				continue
			}
			if err := s.repo.LockInventory(txCtx, item.InventoryID); err != nil {
				return err
			}
			avail, err := s.resolver.Resolve(txCtx, order.PickupAt, order.ReturnAt, item.InventoryID, orderID)
			if err != nil {
				return err
			}
			item.Status = avail.Status
			item.UnavailableUntil = avail.UnavailableUntil
			item.RequestHold = false
			item.RequestHoldAt = nil
			item.UpdatedAt = now
			if err := s.repo.SaveItem(txCtx, item); err != nil {
				return err
			}
		}

		order.RequestHold = false
		order.Status = domain.OrderStatusWorking
		order.UpdatedAt = now
		return s.repo.SaveOrder(txCtx, order)
	})
	if err != nil {
		return RequestHoldResult{}, err
	}
	return result, nil
}

type UpdateDatesInput struct {
	OrderID  string
	PickupAt time.Time
	ReturnAt time.Time
}

// UpdateDates moves an order to a new window. If any inventory unit of
// the order has a confirmed item elsewhere overlapping the new range,
// the whole update aborts with no writes. Otherwise the order and every
// item snapshot get the new dates, non-confirmed statuses are
// re-resolved, and the order's hold-requested flag is cleared.
func (s *OrderService) UpdateDates(ctx context.Context, in UpdateDatesInput) (domain.Order, error) {
	if in.OrderID == "" {
		return domain.Order{}, domain.ErrInvalidID
	}
	if in.PickupAt.IsZero() || in.ReturnAt.IsZero() || in.PickupAt.After(in.ReturnAt) {
		return domain.Order{}, domain.ErrInvalidDates
	}

	var updated domain.Order
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		order, err := s.repo.GetOrderForUpdate(txCtx, in.OrderID)
		if err != nil {
			return err
		}
		items, err := s.repo.ListItemsByOrder(txCtx, in.OrderID)
		if err != nil {
			return err
		}

		for _, item := range items {
			if err := s.repo.LockInventory(txCtx, item.InventoryID); err != nil {
				return err
			}
			conflict, err := s.repo.FindConfirmedConflict(txCtx, item.InventoryID, in.OrderID, in.PickupAt, in.ReturnAt)
			if err != nil {
				return err
			}
			if conflict != nil {
				return &domain.InventoryError{InventoryID: item.InventoryID, Err: domain.ErrDateConflict}
			}
		}

		now := s.clock.Now()
		order.PickupAt = in.PickupAt
		order.ReturnAt = in.ReturnAt
		order.RequestHold = false
		order.UpdatedAt = now
		if err := s.repo.SaveOrder(txCtx, order); err != nil {
			return err
		}

		for _, item := range items {
			item.PickupAt = in.PickupAt
			item.ReturnAt = in.ReturnAt
			avail, err := s.resolver.Resolve(txCtx, in.PickupAt, in.ReturnAt, item.InventoryID, in.OrderID)
			if err != nil {
				return err
			}
			// Confirmed items keep their status but still take the new
			// dates and recomputed unavailable-until bound.
			if item.Status != domain.StatusConfirmed {
				item.Status = avail.Status
			}
			item.UnavailableUntil = avail.UnavailableUntil
			item.UpdatedAt = now
			if err := s.repo.SaveItem(txCtx, item); err != nil {
				return err
			}
		}

		updated = order
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}
	return updated, nil
}

// Confirm finalizes an order. Pass one re-resolves every item and
// aborts with no writes if any unit is blocked. Pass two marks every
// item confirmed through the order's return date and force-overwrites
// overlapping items of other orders to unavailable-until, regardless of
// any hold tier they occupied.
func (s *OrderService) Confirm(ctx context.Context, orderID string) (domain.Order, error) {
	if orderID == "" {
		return domain.Order{}, domain.ErrInvalidID
	}

	var confirmed domain.Order
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		order, err := s.repo.GetOrderForUpdate(txCtx, orderID)
		if err != nil {
			return err
		}
		items, err := s.repo.ListItemsByOrder(txCtx, orderID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return domain.ErrNoItems
		}

		for _, item := range items {
			if err := s.repo.LockInventory(txCtx, item.InventoryID); err != nil {
				return err
			}
			avail, err := s.resolver.Resolve(txCtx, order.PickupAt, order.ReturnAt, item.InventoryID, orderID)
			if err != nil {
				return err
			}
			if avail.Status == domain.StatusUnavailable || avail.Status == domain.StatusUnavailableUntil {
				return &domain.InventoryError{InventoryID: item.InventoryID, Err: domain.ErrNotAvailable}
			}
		}

		now := s.clock.Now()
		for _, item := range items {
			until := order.ReturnAt
			item.Status = domain.StatusConfirmed
			item.UnavailableUntil = &until
			item.UpdatedAt = now
			if err := s.repo.SaveItem(txCtx, item); err != nil {
				return err
			}
			if err := s.repo.MarkConflictsUnavailableUntil(txCtx, item.InventoryID, orderID, order.PickupAt, order.ReturnAt, order.ReturnAt); err != nil {
				return err
			}
		}

		order.Status = domain.OrderStatusConfirm
		order.RequestHold = false
		order.UpdatedAt = now
		if err := s.repo.SaveOrder(txCtx, order); err != nil {
			return err
		}

		confirmed = order
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}
	return confirmed, nil
}

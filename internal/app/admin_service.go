package app

import (
	"context"
	"time"

	"github.com/rentwise/rental-api/internal/clock"
	"github.com/rentwise/rental-api/internal/domain"
)

// HoldRequestFilter narrows the admin hold queue. Status, when set,
// must be one of the three request tiers.
type HoldRequestFilter struct {
	Status  domain.ItemStatus
	OrderID string
}

type AdminRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	LockInventory(ctx context.Context, inventoryID string) error
	GetItem(ctx context.Context, itemID string) (domain.OrderItem, error)
	GetOrder(ctx context.Context, orderID string) (domain.Order, error)
	SaveItem(ctx context.Context, item domain.OrderItem) error
	ListConflicting(ctx context.Context, inventoryID, excludeOrderID string, pickupAt, returnAt time.Time) ([]domain.OrderItem, error)
	ListHoldRequests(ctx context.Context, filter HoldRequestFilter) ([]domain.HoldRequest, error)
	CreateInventory(ctx context.Context, inv domain.Inventory) error
	ListInventories(ctx context.Context) ([]domain.Inventory, error)
}

// AdminService serves the operator: the first-come-first-served hold
// queue, tier approval/rejection, and the inventory catalog.
type AdminService struct {
	repo     AdminRepository
	resolver *Resolver
	clock    clock.Clock
}

func NewAdminService(repo AdminRepository, clk clock.Clock) *AdminService {
	return &AdminService{
		repo:     repo,
		resolver: NewResolver(repo),
		clock:    clk,
	}
}

// ApproveHold promotes a pending request tier to its approved
// counterpart, or, on rejection, re-resolves the item's plain status
// as if the request had never been made. Only request-tier items are
// eligible; approval keeps the request timestamp for audit, rejection
// clears it.
func (s *AdminService) ApproveHold(ctx context.Context, itemID string, approved bool) (domain.OrderItem, error) {
	if itemID == "" {
		return domain.OrderItem{}, domain.ErrInvalidID
	}

	var item domain.OrderItem
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		var err error
		item, err = s.repo.GetItem(txCtx, itemID)
		if err != nil {
			return err
		}
		if item.Deleted {
			return domain.ErrItemDeleted
		}
		promoted, ok := item.Status.Approved()
		if !ok {
			return domain.ErrNotEligible
		}

		now := s.clock.Now()
		if approved {
			item.Status = promoted
			item.RequestHold = false
			item.UpdatedAt = now
			return s.repo.SaveItem(txCtx, item)
		}

		order, err := s.repo.GetOrder(txCtx, item.OrderID)
		if err != nil {
			return err
		}
		if err := s.repo.LockInventory(txCtx, item.InventoryID); err != nil {
			return err
		}
		avail, err := s.resolver.Resolve(txCtx, order.PickupAt, order.ReturnAt, item.InventoryID, item.OrderID)
		if err != nil {
			return err
		}
		item.Status = avail.Status
		item.UnavailableUntil = avail.UnavailableUntil
		item.RequestHold = false
		item.RequestHoldAt = nil
		item.UpdatedAt = now
		return s.repo.SaveItem(txCtx, item)
	})
	if err != nil {
		return domain.OrderItem{}, err
	}
	return item, nil
}

// ListHoldRequests returns the pending hold queue ordered by request
// timestamp ascending: the first requester is served first.
func (s *AdminService) ListHoldRequests(ctx context.Context, filter HoldRequestFilter) ([]domain.HoldRequest, error) {
	if filter.Status != "" && !filter.Status.IsHoldRequest() {
		return nil, domain.ErrInvalidStatusFilter
	}
	return s.repo.ListHoldRequests(ctx, filter)
}

type CreateInventoryInput struct {
	Barcode string
	General domain.InventoryGeneral
}

func (s *AdminService) CreateInventory(ctx context.Context, in CreateInventoryInput) (domain.Inventory, error) {
	if in.Barcode == "" {
		return domain.Inventory{}, domain.ErrBarcodeRequired
	}

	now := s.clock.Now()
	inv := domain.Inventory{
		ID:        newID(),
		Barcode:   in.Barcode,
		General:   in.General,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateInventory(ctx, inv); err != nil {
		return domain.Inventory{}, err
	}
	return inv, nil
}

func (s *AdminService) ListInventories(ctx context.Context) ([]domain.Inventory, error) {
	return s.repo.ListInventories(ctx)
}

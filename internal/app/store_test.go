package app

import (
	"context"
	"sort"
	"time"

	"github.com/rentwise/rental-api/internal/domain"
)

// memStore is an in-memory stand-in for the Postgres repositories,
// implementing ItemRepository, OrderRepository and AdminRepository so
// the services can be exercised without a database.
type memStore struct {
	orders      map[string]domain.Order
	items       map[string]domain.OrderItem
	inventories map[string]domain.Inventory
	seq         int
}

func newMemStore() *memStore {
	return &memStore{
		orders:      make(map[string]domain.Order),
		items:       make(map[string]domain.OrderItem),
		inventories: make(map[string]domain.Inventory),
	}
}

func (m *memStore) addOrder(order domain.Order) domain.Order {
	if order.Status == "" {
		order.Status = domain.OrderStatusWorking
	}
	m.orders[order.ID] = order
	return order
}

func (m *memStore) addItem(item domain.OrderItem) domain.OrderItem {
	m.seq++
	if item.CreatedAt.IsZero() {
		// Preserve insertion order for fetch-order dependent flows.
		item.CreatedAt = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(m.seq) * time.Second)
	}
	m.items[item.ID] = item
	return item
}

func (m *memStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (m *memStore) LockInventory(_ context.Context, _ string) error {
	return nil
}

func (m *memStore) GetOrder(_ context.Context, orderID string) (domain.Order, error) {
	order, ok := m.orders[orderID]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return order, nil
}

func (m *memStore) GetOrderForUpdate(ctx context.Context, orderID string) (domain.Order, error) {
	return m.GetOrder(ctx, orderID)
}

func (m *memStore) CreateOrder(_ context.Context, order domain.Order) error {
	m.orders[order.ID] = order
	return nil
}

func (m *memStore) SaveOrder(_ context.Context, order domain.Order) error {
	if _, ok := m.orders[order.ID]; !ok {
		return domain.ErrOrderNotFound
	}
	m.orders[order.ID] = order
	return nil
}

func (m *memStore) SetOrderHoldRequested(_ context.Context, orderID string, requested bool) error {
	order, ok := m.orders[orderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	order.RequestHold = requested
	m.orders[orderID] = order
	return nil
}

func (m *memStore) GetItem(_ context.Context, itemID string) (domain.OrderItem, error) {
	item, ok := m.items[itemID]
	if !ok {
		return domain.OrderItem{}, domain.ErrItemNotFound
	}
	return item, nil
}

func (m *memStore) FindItemByOrderAndInventory(_ context.Context, orderID, inventoryID string) (*domain.OrderItem, error) {
	for _, item := range m.items {
		if item.OrderID == orderID && item.InventoryID == inventoryID {
			found := item
			return &found, nil
		}
	}
	return nil, nil
}

func (m *memStore) CreateItem(_ context.Context, item domain.OrderItem) error {
	for _, existing := range m.items {
		if existing.OrderID == item.OrderID && existing.InventoryID == item.InventoryID {
			return domain.ErrDuplicateItem
		}
	}
	m.addItem(item)
	return nil
}

func (m *memStore) SaveItem(_ context.Context, item domain.OrderItem) error {
	if _, ok := m.items[item.ID]; !ok {
		return domain.ErrItemNotFound
	}
	m.items[item.ID] = item
	return nil
}

func (m *memStore) sortedItems() []domain.OrderItem {
	items := make([]domain.OrderItem, 0, len(m.items))
	for _, item := range m.items {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items
}

func (m *memStore) ListItemsByOrder(_ context.Context, orderID string) ([]domain.OrderItem, error) {
	var items []domain.OrderItem
	for _, item := range m.sortedItems() {
		if item.OrderID == orderID && !item.Deleted {
			items = append(items, item)
		}
	}
	return items, nil
}

func (m *memStore) ListConflicting(_ context.Context, inventoryID, excludeOrderID string, pickupAt, returnAt time.Time) ([]domain.OrderItem, error) {
	var items []domain.OrderItem
	for _, item := range m.sortedItems() {
		if item.InventoryID != inventoryID || item.OrderID == excludeOrderID || item.Deleted {
			continue
		}
		if !Overlaps(item.PickupAt, item.ReturnAt, pickupAt, returnAt) {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func (m *memStore) FindConfirmedConflict(ctx context.Context, inventoryID, excludeOrderID string, pickupAt, returnAt time.Time) (*domain.OrderItem, error) {
	for _, item := range m.sortedItems() {
		if item.InventoryID != inventoryID || item.OrderID == excludeOrderID {
			continue
		}
		if item.Status != domain.StatusConfirmed {
			continue
		}
		if !Overlaps(item.PickupAt, item.ReturnAt, pickupAt, returnAt) {
			continue
		}
		found := item
		return &found, nil
	}
	return nil, nil
}

func (m *memStore) MarkConflictsUnavailableUntil(_ context.Context, inventoryID, excludeOrderID string, pickupAt, returnAt, until time.Time) error {
	boundary := until
	for id, item := range m.items {
		if item.InventoryID != inventoryID || item.OrderID == excludeOrderID || item.Deleted {
			continue
		}
		if !Overlaps(item.PickupAt, item.ReturnAt, pickupAt, returnAt) {
			continue
		}
		item.Status = domain.StatusUnavailableUntil
		u := boundary
		item.UnavailableUntil = &u
		m.items[id] = item
	}
	return nil
}

func (m *memStore) ListHoldRequests(_ context.Context, filter HoldRequestFilter) ([]domain.HoldRequest, error) {
	var requests []domain.HoldRequest
	for _, item := range m.items {
		if item.Deleted {
			continue
		}
		if filter.Status != "" {
			if item.Status != filter.Status {
				continue
			}
		} else if !item.Status.IsHoldRequest() {
			continue
		}
		if filter.OrderID != "" && item.OrderID != filter.OrderID {
			continue
		}
		requests = append(requests, domain.HoldRequest{
			Item:      item,
			Order:     m.orders[item.OrderID],
			Inventory: m.inventories[item.InventoryID],
		})
	}
	sort.Slice(requests, func(i, j int) bool {
		a, b := requests[i].Item.RequestHoldAt, requests[j].Item.RequestHoldAt
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return a.Before(*b)
	})
	return requests, nil
}

func (m *memStore) CreateInventory(_ context.Context, inv domain.Inventory) error {
	m.inventories[inv.ID] = inv
	return nil
}

func (m *memStore) ListInventories(_ context.Context) ([]domain.Inventory, error) {
	inventories := make([]domain.Inventory, 0, len(m.inventories))
	for _, inv := range m.inventories {
		inventories = append(inventories, inv)
	}
	sort.Slice(inventories, func(i, j int) bool {
		return inventories[i].CreatedAt.Before(inventories[j].CreatedAt)
	})
	return inventories, nil
}

var (
	_ ItemRepository  = (*memStore)(nil)
	_ OrderRepository = (*memStore)(nil)
	_ AdminRepository = (*memStore)(nil)
)

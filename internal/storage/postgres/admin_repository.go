package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rentwise/rental-api/internal/app"
	"github.com/rentwise/rental-api/internal/domain"
)

// AdminRepository backs the operator-facing service: the hold queue
// projection and the inventory catalog.
type AdminRepository struct {
	pool *pgxpool.Pool
}

func NewAdminRepository(pool *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{pool: pool}
}

func (r *AdminRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *AdminRepository) LockInventory(ctx context.Context, inventoryID string) error {
	return lockInventory(ctx, r.pool, inventoryID)
}

func (r *AdminRepository) GetItem(ctx context.Context, itemID string) (domain.OrderItem, error) {
	return getItem(ctx, conn(ctx, r.pool), itemID)
}

func (r *AdminRepository) GetOrder(ctx context.Context, orderID string) (domain.Order, error) {
	return getOrder(ctx, conn(ctx, r.pool), orderID, false)
}

func (r *AdminRepository) SaveItem(ctx context.Context, item domain.OrderItem) error {
	return saveItem(ctx, conn(ctx, r.pool), item)
}

func (r *AdminRepository) ListConflicting(ctx context.Context, inventoryID, excludeOrderID string, pickupAt, returnAt time.Time) ([]domain.OrderItem, error) {
	return listConflicting(ctx, conn(ctx, r.pool), inventoryID, excludeOrderID, pickupAt, returnAt)
}

// ListHoldRequests projects the pending hold queue: request-tier items
// joined with their order and inventory, oldest request first.
func (r *AdminRepository) ListHoldRequests(ctx context.Context, filter app.HoldRequestFilter) ([]domain.HoldRequest, error) {
	query := `
SELECT oi.id, oi.order_id, oi.inventory_id, oi.pickup_at, oi.return_at, oi.status, oi.unavailable_until, oi.request_hold, oi.request_hold_at, oi.deleted, oi.created_at, oi.updated_at,
       o.id, o.name, o.pickup_at, o.return_at, o.status, o.request_hold, o.created_at, o.updated_at,
       i.id, i.barcode, i.width, i.depth, i.height, i.weight, i.seven_day_price, i.seven_day_visible, i.three_day_price, i.three_day_visible, i.created_at, i.updated_at
FROM order_items oi
JOIN orders o ON o.id = oi.order_id
JOIN inventories i ON i.id = oi.inventory_id
WHERE oi.deleted = FALSE`

	args := []any{}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += fmt.Sprintf(" AND oi.status = $%d", len(args))
	} else {
		statuses := make([]string, 0, len(domain.HoldRequestStatuses))
		for _, s := range domain.HoldRequestStatuses {
			statuses = append(statuses, string(s))
		}
		args = append(args, statuses)
		query += fmt.Sprintf(" AND oi.status = ANY($%d)", len(args))
	}
	if filter.OrderID != "" {
		args = append(args, filter.OrderID)
		query += fmt.Sprintf(" AND oi.order_id = $%d", len(args))
	}
	query += " ORDER BY oi.request_hold_at ASC NULLS LAST"

	rows, err := conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list hold requests: %w", err)
	}
	defer rows.Close()

	var requests []domain.HoldRequest
	for rows.Next() {
		var hr domain.HoldRequest
		var itemStatus, orderStatus string
		err := rows.Scan(
			&hr.Item.ID, &hr.Item.OrderID, &hr.Item.InventoryID, &hr.Item.PickupAt, &hr.Item.ReturnAt,
			&itemStatus, &hr.Item.UnavailableUntil, &hr.Item.RequestHold, &hr.Item.RequestHoldAt,
			&hr.Item.Deleted, &hr.Item.CreatedAt, &hr.Item.UpdatedAt,
			&hr.Order.ID, &hr.Order.Name, &hr.Order.PickupAt, &hr.Order.ReturnAt,
			&orderStatus, &hr.Order.RequestHold, &hr.Order.CreatedAt, &hr.Order.UpdatedAt,
			&hr.Inventory.ID, &hr.Inventory.Barcode,
			&hr.Inventory.General.Width, &hr.Inventory.General.Depth, &hr.Inventory.General.Height, &hr.Inventory.General.Weight,
			&hr.Inventory.General.SevenDayPrice, &hr.Inventory.General.SevenDayVisible,
			&hr.Inventory.General.ThreeDayPrice, &hr.Inventory.General.ThreeDayVisible,
			&hr.Inventory.CreatedAt, &hr.Inventory.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan hold request: %w", err)
		}
		hr.Item.Status = domain.ItemStatus(itemStatus)
		hr.Order.Status = domain.OrderStatus(orderStatus)
		requests = append(requests, hr)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate hold requests: %w", rows.Err())
	}
	return requests, nil
}

func (r *AdminRepository) CreateInventory(ctx context.Context, inv domain.Inventory) error {
	const stmt = `
INSERT INTO inventories (id, barcode, width, depth, height, weight, seven_day_price, seven_day_visible, three_day_price, three_day_visible, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := conn(ctx, r.pool).Exec(ctx, stmt,
		inv.ID,
		inv.Barcode,
		inv.General.Width,
		inv.General.Depth,
		inv.General.Height,
		inv.General.Weight,
		inv.General.SevenDayPrice,
		inv.General.SevenDayVisible,
		inv.General.ThreeDayPrice,
		inv.General.ThreeDayVisible,
		inv.CreatedAt,
		inv.UpdatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create inventory: %w", err)
	}
	return nil
}

func (r *AdminRepository) ListInventories(ctx context.Context) ([]domain.Inventory, error) {
	const query = `
SELECT id, barcode, width, depth, height, weight, seven_day_price, seven_day_visible, three_day_price, three_day_visible, created_at, updated_at
FROM inventories
ORDER BY created_at ASC`

	rows, err := conn(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list inventories: %w", err)
	}
	defer rows.Close()

	var inventories []domain.Inventory
	for rows.Next() {
		var inv domain.Inventory
		err := rows.Scan(
			&inv.ID, &inv.Barcode,
			&inv.General.Width, &inv.General.Depth, &inv.General.Height, &inv.General.Weight,
			&inv.General.SevenDayPrice, &inv.General.SevenDayVisible,
			&inv.General.ThreeDayPrice, &inv.General.ThreeDayVisible,
			&inv.CreatedAt, &inv.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan inventory: %w", err)
		}
		inventories = append(inventories, inv)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate inventories: %w", rows.Err())
	}
	return inventories, nil
}

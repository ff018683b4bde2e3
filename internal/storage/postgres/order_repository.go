package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rentwise/rental-api/internal/domain"
)

// OrderRepository backs the order lifecycle service.
type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

func (r *OrderRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *OrderRepository) LockInventory(ctx context.Context, inventoryID string) error {
	return lockInventory(ctx, r.pool, inventoryID)
}

func (r *OrderRepository) CreateOrder(ctx context.Context, order domain.Order) error {
	const stmt = `
INSERT INTO orders (id, name, pickup_at, return_at, status, request_hold, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := conn(ctx, r.pool).Exec(ctx, stmt,
		order.ID,
		order.Name,
		order.PickupAt,
		order.ReturnAt,
		order.Status,
		order.RequestHold,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

func (r *OrderRepository) GetOrder(ctx context.Context, orderID string) (domain.Order, error) {
	return getOrder(ctx, conn(ctx, r.pool), orderID, false)
}

func (r *OrderRepository) GetOrderForUpdate(ctx context.Context, orderID string) (domain.Order, error) {
	return getOrder(ctx, conn(ctx, r.pool), orderID, true)
}

func (r *OrderRepository) SaveOrder(ctx context.Context, order domain.Order) error {
	const stmt = `
UPDATE orders
SET name = $2,
    pickup_at = $3,
    return_at = $4,
    status = $5,
    request_hold = $6,
    updated_at = $7
WHERE id = $1`

	tag, err := conn(ctx, r.pool).Exec(ctx, stmt,
		order.ID,
		order.Name,
		order.PickupAt,
		order.ReturnAt,
		order.Status,
		order.RequestHold,
		order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// ListItemsByOrder returns the order's non-deleted items in creation
// order, which is also the per-item processing order of the bulk flows.
func (r *OrderRepository) ListItemsByOrder(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	query := `
SELECT ` + itemColumns + `
FROM order_items
WHERE order_id = $1 AND deleted = FALSE
ORDER BY created_at ASC`

	rows, err := conn(ctx, r.pool).Query(ctx, query, orderID)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list order items: %w", err)
	}
	return collectItems(rows)
}

func (r *OrderRepository) SaveItem(ctx context.Context, item domain.OrderItem) error {
	return saveItem(ctx, conn(ctx, r.pool), item)
}

func (r *OrderRepository) ListConflicting(ctx context.Context, inventoryID, excludeOrderID string, pickupAt, returnAt time.Time) ([]domain.OrderItem, error) {
	return listConflicting(ctx, conn(ctx, r.pool), inventoryID, excludeOrderID, pickupAt, returnAt)
}

// FindConfirmedConflict returns one confirmed item of another order
// overlapping the range, or nil. Used by the date-change precheck.
func (r *OrderRepository) FindConfirmedConflict(ctx context.Context, inventoryID, excludeOrderID string, pickupAt, returnAt time.Time) (*domain.OrderItem, error) {
	query := `
SELECT ` + itemColumns + `
FROM order_items
WHERE inventory_id = $1
  AND order_id <> $2
  AND status = 'confirmed'
  AND pickup_at <= $4
  AND return_at >= $3
LIMIT 1`

	it, err := scanItem(conn(ctx, r.pool).QueryRow(ctx, query, inventoryID, excludeOrderID, pickupAt, returnAt))
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find confirmed conflict: %w", err)
	}
	return &it, nil
}

// MarkConflictsUnavailableUntil force-overwrites the status of every
// non-deleted overlapping item of other orders on the inventory unit,
// including any hold tier. Runs as one bulk update when an order is
// confirmed.
func (r *OrderRepository) MarkConflictsUnavailableUntil(ctx context.Context, inventoryID, excludeOrderID string, pickupAt, returnAt, until time.Time) error {
	const stmt = `
UPDATE order_items
SET status = 'unavailable-until',
    unavailable_until = $5,
    updated_at = NOW()
WHERE inventory_id = $1
  AND order_id <> $2
  AND deleted = FALSE
  AND pickup_at <= $4
  AND return_at >= $3`

	_, err := conn(ctx, r.pool).Exec(ctx, stmt, inventoryID, excludeOrderID, pickupAt, returnAt, until)
	if err != nil {
		return fmt.Errorf("mark conflicts unavailable: %w", err)
	}
	return nil
}

package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rentwise/rental-api/internal/domain"
)

// ItemRepository backs the order-item lifecycle service.
type ItemRepository struct {
	pool *pgxpool.Pool
}

func NewItemRepository(pool *pgxpool.Pool) *ItemRepository {
	return &ItemRepository{pool: pool}
}

func (r *ItemRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *ItemRepository) LockInventory(ctx context.Context, inventoryID string) error {
	return lockInventory(ctx, r.pool, inventoryID)
}

func (r *ItemRepository) GetOrder(ctx context.Context, orderID string) (domain.Order, error) {
	return getOrder(ctx, conn(ctx, r.pool), orderID, false)
}

func (r *ItemRepository) GetItem(ctx context.Context, itemID string) (domain.OrderItem, error) {
	return getItem(ctx, conn(ctx, r.pool), itemID)
}

// FindItemByOrderAndInventory returns the item for the pair, deleted or
// not, or nil when the pair is unused.
func (r *ItemRepository) FindItemByOrderAndInventory(ctx context.Context, orderID, inventoryID string) (*domain.OrderItem, error) {
	query := `SELECT ` + itemColumns + ` FROM order_items WHERE order_id = $1 AND inventory_id = $2`
	it, err := scanItem(conn(ctx, r.pool).QueryRow(ctx, query, orderID, inventoryID))
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find order item: %w", err)
	}
	return &it, nil
}

func (r *ItemRepository) CreateItem(ctx context.Context, item domain.OrderItem) error {
	const stmt = `
INSERT INTO order_items (id, order_id, inventory_id, pickup_at, return_at, status, unavailable_until, request_hold, request_hold_at, deleted, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := conn(ctx, r.pool).Exec(ctx, stmt,
		item.ID,
		item.OrderID,
		item.InventoryID,
		item.PickupAt,
		item.ReturnAt,
		item.Status,
		item.UnavailableUntil,
		item.RequestHold,
		item.RequestHoldAt,
		item.Deleted,
		item.CreatedAt,
		item.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateItem
		}
		if isForeignKeyViolation(err) {
			return domain.ErrOrderNotFound
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create order item: %w", err)
	}
	return nil
}

func (r *ItemRepository) SaveItem(ctx context.Context, item domain.OrderItem) error {
	return saveItem(ctx, conn(ctx, r.pool), item)
}

func (r *ItemRepository) SetOrderHoldRequested(ctx context.Context, orderID string, requested bool) error {
	const stmt = `UPDATE orders SET request_hold = $2, updated_at = NOW() WHERE id = $1`
	tag, err := conn(ctx, r.pool).Exec(ctx, stmt, orderID, requested)
	if err != nil {
		return fmt.Errorf("set order hold flag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *ItemRepository) ListConflicting(ctx context.Context, inventoryID, excludeOrderID string, pickupAt, returnAt time.Time) ([]domain.OrderItem, error) {
	return listConflicting(ctx, conn(ctx, r.pool), inventoryID, excludeOrderID, pickupAt, returnAt)
}

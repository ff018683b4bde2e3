package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rentwise/rental-api/internal/domain"
)

// Shared row helpers for the order_items and orders tables. All three
// repositories resolve conflicts against the same collection, so the
// overlap predicate lives in exactly one query.

const itemColumns = `id, order_id, inventory_id, pickup_at, return_at, status, unavailable_until, request_hold, request_hold_at, deleted, created_at, updated_at`

func scanItem(row pgx.Row) (domain.OrderItem, error) {
	var it domain.OrderItem
	var status string
	err := row.Scan(
		&it.ID,
		&it.OrderID,
		&it.InventoryID,
		&it.PickupAt,
		&it.ReturnAt,
		&status,
		&it.UnavailableUntil,
		&it.RequestHold,
		&it.RequestHoldAt,
		&it.Deleted,
		&it.CreatedAt,
		&it.UpdatedAt,
	)
	if err != nil {
		return domain.OrderItem{}, err
	}
	it.Status = domain.ItemStatus(status)
	return it, nil
}

func collectItems(rows pgx.Rows) ([]domain.OrderItem, error) {
	defer rows.Close()
	var items []domain.OrderItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, it)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate order items: %w", rows.Err())
	}
	return items, nil
}

// listConflicting fetches the non-deleted items of other orders on the
// same inventory unit whose [pickup_at, return_at] intersects
// [pickupAt, returnAt], inclusive on both ends.
func listConflicting(ctx context.Context, db dbtx, inventoryID, excludeOrderID string, pickupAt, returnAt time.Time) ([]domain.OrderItem, error) {
	query := `
SELECT ` + itemColumns + `
FROM order_items
WHERE inventory_id = $1
  AND order_id <> $2
  AND deleted = FALSE
  AND pickup_at <= $4
  AND return_at >= $3
ORDER BY created_at ASC`

	rows, err := db.Query(ctx, query, inventoryID, excludeOrderID, pickupAt, returnAt)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list conflicting items: %w", err)
	}
	return collectItems(rows)
}

func getItem(ctx context.Context, db dbtx, itemID string) (domain.OrderItem, error) {
	query := `SELECT ` + itemColumns + ` FROM order_items WHERE id = $1`
	it, err := scanItem(db.QueryRow(ctx, query, itemID))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.OrderItem{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.OrderItem{}, domain.ErrItemNotFound
		}
		return domain.OrderItem{}, fmt.Errorf("get order item: %w", err)
	}
	return it, nil
}

func saveItem(ctx context.Context, db dbtx, item domain.OrderItem) error {
	const stmt = `
UPDATE order_items
SET pickup_at = $2,
    return_at = $3,
    status = $4,
    unavailable_until = $5,
    request_hold = $6,
    request_hold_at = $7,
    deleted = $8,
    updated_at = $9
WHERE id = $1`

	tag, err := db.Exec(ctx, stmt,
		item.ID,
		item.PickupAt,
		item.ReturnAt,
		item.Status,
		item.UnavailableUntil,
		item.RequestHold,
		item.RequestHoldAt,
		item.Deleted,
		item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save order item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

const orderColumns = `id, name, pickup_at, return_at, status, request_hold, created_at, updated_at`

func scanOrder(row pgx.Row) (domain.Order, error) {
	var o domain.Order
	var status string
	err := row.Scan(
		&o.ID,
		&o.Name,
		&o.PickupAt,
		&o.ReturnAt,
		&status,
		&o.RequestHold,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return domain.Order{}, err
	}
	o.Status = domain.OrderStatus(status)
	return o, nil
}

func getOrder(ctx context.Context, db dbtx, orderID string, forUpdate bool) (domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	o, err := scanOrder(db.QueryRow(ctx, query, orderID))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Order{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

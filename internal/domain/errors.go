package domain

import (
	"errors"
	"fmt"
)

var (
	ErrOrderNotFound       = errors.New("order not found")
	ErrItemNotFound        = errors.New("order item not found")
	ErrInventoryNotFound   = errors.New("inventory not found")
	ErrDuplicateItem       = errors.New("inventory already added to this order")
	ErrNoItems             = errors.New("order has no items")
	ErrNotEligible         = errors.New("only items with hold-request statuses can be approved")
	ErrItemDeleted         = errors.New("order item is deleted")
	ErrDateConflict        = errors.New("order dates conflict with a confirmed order")
	ErrNotAvailable        = errors.New("one or more items are not available to confirm")
	ErrInvalidDates        = errors.New("invalid pickup/return dates")
	ErrInvalidStatusFilter = errors.New("status filter must be a hold-request status")
	ErrBarcodeRequired     = errors.New("inventory barcode is required")
	ErrInvalidID           = errors.New("invalid id")
)

// InventoryError tags a failure with the inventory unit it concerns, so
// callers can report which unit blocked the operation. Matches the
// wrapped sentinel through errors.Is.
type InventoryError struct {
	InventoryID string
	Err         error
}

func (e *InventoryError) Error() string {
	return fmt.Sprintf("%s (inventory %s)", e.Err, e.InventoryID)
}

func (e *InventoryError) Unwrap() error {
	return e.Err
}

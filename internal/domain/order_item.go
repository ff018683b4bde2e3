package domain

import "time"

type ItemStatus string

const (
	StatusAvailable         ItemStatus = "available"
	StatusOnHoldRequest     ItemStatus = "on-hold-request"
	StatusOnHold            ItemStatus = "on-hold"
	StatusSecondHoldRequest ItemStatus = "2nd-hold-request"
	StatusSecondHold        ItemStatus = "2nd-hold"
	StatusThirdHoldRequest  ItemStatus = "3rd-hold-request"
	StatusThirdHold         ItemStatus = "3rd-hold"
	StatusUnavailable       ItemStatus = "unavailable"
	StatusUnavailableUntil  ItemStatus = "unavailable-until"
	StatusConfirmed         ItemStatus = "confirmed"
	StatusCancelled         ItemStatus = "cancelled"
)

// HoldRequestStatuses are the three pending waitlist tiers, in rank order.
var HoldRequestStatuses = []ItemStatus{
	StatusOnHoldRequest,
	StatusSecondHoldRequest,
	StatusThirdHoldRequest,
}

// IsHold reports whether s is an approved waitlist tier.
func (s ItemStatus) IsHold() bool {
	return s == StatusOnHold || s == StatusSecondHold || s == StatusThirdHold
}

// IsHoldRequest reports whether s is a pending waitlist tier.
func (s ItemStatus) IsHoldRequest() bool {
	return s == StatusOnHoldRequest || s == StatusSecondHoldRequest || s == StatusThirdHoldRequest
}

// Approved maps a request tier to its approved counterpart. ok is false
// when s is not a request tier.
func (s ItemStatus) Approved() (approved ItemStatus, ok bool) {
	switch s {
	case StatusOnHoldRequest:
		return StatusOnHold, true
	case StatusSecondHoldRequest:
		return StatusSecondHold, true
	case StatusThirdHoldRequest:
		return StatusThirdHold, true
	default:
		return "", false
	}
}

// OrderItem attaches one inventory unit to one order for a date range.
// PickupAt/ReturnAt are a snapshot of the order's dates at creation or
// last update. A soft-deleted item keeps its row but is excluded from
// conflict queries and frozen at cancelled.
type OrderItem struct {
	ID               string
	OrderID          string
	InventoryID      string
	PickupAt         time.Time
	ReturnAt         time.Time
	Status           ItemStatus
	UnavailableUntil *time.Time
	RequestHold      bool
	RequestHoldAt    *time.Time
	Deleted          bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// HoldRequest is the admin hold-queue row: a pending request-tier item
// expanded with its parent order and inventory unit.
type HoldRequest struct {
	Item      OrderItem
	Order     Order
	Inventory Inventory
}

package domain

import "time"

type OrderStatus string

const (
	OrderStatusWorking OrderStatus = "working"
	OrderStatusHold    OrderStatus = "hold"
	OrderStatusConfirm OrderStatus = "confirm"
)

// Order is a customer's booking intent over a pickup/return window.
// Items snapshot these dates; they are not a live reference.
type Order struct {
	ID          string
	Name        string
	PickupAt    time.Time
	ReturnAt    time.Time
	Status      OrderStatus
	RequestHold bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

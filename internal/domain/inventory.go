package domain

import "time"

// Inventory is a single physical rental unit. Static for booking
// purposes; the booking core only ever references it by id.
type Inventory struct {
	ID        string
	Barcode   string
	General   InventoryGeneral
	CreatedAt time.Time
	UpdatedAt time.Time
}

type InventoryGeneral struct {
	Width           float64
	Depth           float64
	Height          float64
	Weight          float64
	SevenDayPrice   float64
	SevenDayVisible bool
	ThreeDayPrice   float64
	ThreeDayVisible bool
}

package parking

import "errors"

var ErrUnknownDzongkhag = errors.New("dzongkhag does not exist")
var ErrDuplicateArea = errors.New("parking area already exists")

type Dzongkhag struct {
	ID   int    `json:"dzongkhag_id"`
	Name string `json:"dzongkhag_name"`
}

type Area struct {
	ID          int    `json:"parkingarea_id"`
	Location    string `json:"parking_location"`
	DzongkhagID int    `json:"dzongkhag_id"`
}

type Detail struct {
	ID             int     `json:"parking_detail_id"`
	AreaID         int     `json:"parkingarea_id"`
	TotalSlots     int     `json:"total_slots"`
	AvailableSlots int     `json:"available_slots"`
	FeePerHour     float64 `json:"fee_per_hour"`
}

type Slot struct {
	ID         int    `json:"slot_id"`
	AreaID     int    `json:"parkingarea_id"`
	SlotNumber string `json:"slot_number"`
	IsOccupied bool   `json:"is_occupied"`
}

// field names follow the original client payload
type CreateAreaRequest struct {
	ID          int    `json:"parkingarea_id" binding:"required,min=1"`
	Location    string `json:"parking_location" binding:"required,max=255"`
	DzongkhagID int    `json:"dzongkhag_id" binding:"required,min=1"`
}

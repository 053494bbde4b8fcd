package domain

import "time"

type ParkingStatus string

const (
	ParkingIn  ParkingStatus = "IN"
	ParkingOut ParkingStatus = "OUT"
)

const DefaultVehicleType = "MOTORBIKE"

type Vehicle struct {
	ID              int64         `json:"id" gorm:"primaryKey"`
	RoomID          int64         `json:"room_id" gorm:"not null;index"`
	PersonID        *int64        `json:"person_id" gorm:"index"`
	Plate           string        `json:"plate" gorm:"type:varchar(32);not null;uniqueIndex"`
	VehicleType     string        `json:"vehicle_type" gorm:"type:varchar(32);not null;default:MOTORBIKE"`
	Brand           *string       `json:"brand"`
	Model           *string       `json:"model"`
	Color           *string       `json:"color"`
	ParkingStatus   ParkingStatus `json:"parking_status" gorm:"type:varchar(8);not null;default:OUT;index"`
	ParkingSlot     *string       `json:"parking_slot" gorm:"type:varchar(32)"`
	LastCheckin     *time.Time    `json:"last_checkin"`
	LastCheckout    *time.Time    `json:"last_checkout"`
	ParkingFeeTotal float64       `json:"parking_fee_total" gorm:"type:decimal(14,2);not null;default:0"`
	CreatedAt       time.Time     `json:"created_at" gorm:"autoCreateTime"`
}

func (Vehicle) TableName() string { return "vehicles" }

// VehiclePatch covers the descriptive fields. Parking state and the fee total
// change only through check-in and checkout.
type VehiclePatch struct {
	RoomID      Optional[int64]
	PersonID    Optional[*int64]
	Plate       Optional[string]
	VehicleType Optional[string]
	Brand       Optional[*string]
	Model       Optional[*string]
	Color       Optional[*string]
	ParkingSlot Optional[*string]
}

func (p VehiclePatch) Columns() map[string]any {
	cols := make(map[string]any)
	setIf(cols, "room_id", p.RoomID)
	setIf(cols, "person_id", p.PersonID)
	setIf(cols, "plate", p.Plate)
	setIf(cols, "vehicle_type", p.VehicleType)
	setIf(cols, "brand", p.Brand)
	setIf(cols, "model", p.Model)
	setIf(cols, "color", p.Color)
	setIf(cols, "parking_slot", p.ParkingSlot)
	return cols
}

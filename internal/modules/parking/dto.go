package parking

import (
	"strings"

	"bluemoon/internal/domain"
)

type CreateVehicleRequest struct {
	RoomID      int64   `json:"room_id" binding:"required,gt=0"`
	PersonID    *int64  `json:"person_id" binding:"omitempty,gt=0"`
	Plate       string  `json:"plate" binding:"required"`
	VehicleType string  `json:"vehicle_type"`
	Brand       *string `json:"brand"`
	Model       *string `json:"model"`
	Color       *string `json:"color"`
	ParkingSlot *string `json:"parking_slot"`
}

type UpdateVehicleRequest struct {
	RoomID      domain.Optional[int64]   `json:"room_id"`
	PersonID    domain.Optional[*int64]  `json:"person_id"`
	Plate       domain.Optional[string]  `json:"plate"`
	VehicleType domain.Optional[string]  `json:"vehicle_type"`
	Brand       domain.Optional[*string] `json:"brand"`
	Model       domain.Optional[*string] `json:"model"`
	Color       domain.Optional[*string] `json:"color"`
	ParkingSlot domain.Optional[*string] `json:"parking_slot"`
}

func (r UpdateVehicleRequest) Patch() (domain.VehiclePatch, error) {
	if r.RoomID.Set && r.RoomID.Value <= 0 {
		return domain.VehiclePatch{}, ErrInvalidRoomID
	}
	if r.Plate.Set {
		r.Plate.Value = strings.TrimSpace(r.Plate.Value)
		if r.Plate.Value == "" {
			return domain.VehiclePatch{}, ErrPlateRequired
		}
	}
	if r.VehicleType.Set && strings.TrimSpace(r.VehicleType.Value) == "" {
		r.VehicleType.Value = domain.DefaultVehicleType
	}
	return domain.VehiclePatch{
		RoomID:      r.RoomID,
		PersonID:    r.PersonID,
		Plate:       r.Plate,
		VehicleType: r.VehicleType,
		Brand:       r.Brand,
		Model:       r.Model,
		Color:       r.Color,
		ParkingSlot: r.ParkingSlot,
	}, nil
}

type CheckinRequest struct {
	ParkingSlot *string `json:"parking_slot"`
}

// CheckoutRequest bills the stay. Omitted quantity means 1, omitted
// unit_price means 0.
type CheckoutRequest struct {
	FeeName   string   `json:"fee_name"`
	UnitPrice *float64 `json:"unit_price"`
	Quantity  *float64 `json:"quantity"`
}

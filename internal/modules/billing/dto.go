package billing

import (
	"strings"

	"bluemoon/internal/domain"
)

type CreateFeeRequest struct {
	RoomID    *int64   `json:"room_id" binding:"omitempty,gt=0"`
	PersonID  *int64   `json:"person_id" binding:"omitempty,gt=0"`
	VehicleID *int64   `json:"vehicle_id" binding:"omitempty,gt=0"`
	FeeName   string   `json:"fee_name" binding:"required"`
	FeeType   string   `json:"fee_type"`
	Period    string   `json:"period" binding:"period"`
	Quantity  *float64 `json:"quantity" binding:"omitempty,gte=0"`
	UnitPrice *float64 `json:"unit_price" binding:"omitempty,gte=0"`
	DueDate   string   `json:"due_date" binding:"date"`
	Note      *string  `json:"note"`
}

type UpdateFeeRequest struct {
	RoomID    domain.Optional[*int64]  `json:"room_id"`
	PersonID  domain.Optional[*int64]  `json:"person_id"`
	VehicleID domain.Optional[*int64]  `json:"vehicle_id"`
	FeeName   domain.Optional[string]  `json:"fee_name"`
	FeeType   domain.Optional[string]  `json:"fee_type"`
	Period    domain.Optional[*string] `json:"period"`
	Quantity  domain.Optional[float64] `json:"quantity"`
	UnitPrice domain.Optional[float64] `json:"unit_price"`
	DueDate   domain.Optional[*string] `json:"due_date"`
	Note      domain.Optional[*string] `json:"note"`
}

// Patch converts the request. Range and enum checks are left to the ledger.
func (r UpdateFeeRequest) Patch() (domain.FeePatch, error) {
	due, ok := domain.OptionalDate(r.DueDate)
	if !ok {
		return domain.FeePatch{}, ErrInvalidDate
	}

	patch := domain.FeePatch{
		RoomID:    r.RoomID,
		PersonID:  r.PersonID,
		VehicleID: r.VehicleID,
		FeeName:   r.FeeName,
		Period:    r.Period,
		Quantity:  r.Quantity,
		UnitPrice: r.UnitPrice,
		DueDate:   due,
		Note:      r.Note,
	}
	if r.FeeType.Set {
		patch.FeeType = domain.Some(domain.FeeType(strings.ToUpper(strings.TrimSpace(r.FeeType.Value))))
	}
	if patch.FeeName.Set {
		patch.FeeName.Value = strings.TrimSpace(patch.FeeName.Value)
	}
	if patch.Period.Set && patch.Period.Value != nil && *patch.Period.Value == "" {
		patch.Period.Value = nil
	}
	return patch, nil
}

type RecordPaymentRequest struct {
	FeeID  int64   `json:"fee_id" binding:"required,gt=0"`
	Amount float64 `json:"amount"`
	Method string  `json:"method"`
	Note   string  `json:"note"`
}

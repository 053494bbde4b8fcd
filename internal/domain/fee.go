package domain

import (
	"math"
	"time"

	"gorm.io/datatypes"
)

type FeeType string

const (
	FeeTypeRoom    FeeType = "ROOM"
	FeeTypeParking FeeType = "PARKING"
	FeeTypeOther   FeeType = "OTHER"
)

func (t FeeType) Valid() bool {
	switch t {
	case FeeTypeRoom, FeeTypeParking, FeeTypeOther:
		return true
	}
	return false
}

type FeeStatus string

const (
	FeeUnpaid  FeeStatus = "UNPAID"
	FeePartial FeeStatus = "PARTIAL"
	FeePaid    FeeStatus = "PAID"
)

const DefaultParkingFeeName = "Phí gửi xe"

// Fee is a billable obligation. AmountPaid and Status are owned by the
// ledger: AmountPaid is the sum of the fee's payments and Status is
// StatusFor(AmountPaid, AmountDue).
type Fee struct {
	ID         int64           `json:"id" gorm:"primaryKey"`
	RoomID     *int64          `json:"room_id" gorm:"index"`
	PersonID   *int64          `json:"person_id" gorm:"index"`
	VehicleID  *int64          `json:"vehicle_id" gorm:"index"`
	FeeName    string          `json:"fee_name" gorm:"type:varchar(128);not null"`
	FeeType    FeeType         `json:"fee_type" gorm:"type:varchar(16);not null;default:ROOM;index"`
	Period     *string         `json:"period" gorm:"type:varchar(7);index"`
	Quantity   float64         `json:"quantity" gorm:"type:decimal(14,2);not null"`
	UnitPrice  float64         `json:"unit_price" gorm:"type:decimal(14,2);not null;default:0"`
	AmountDue  float64         `json:"amount_due" gorm:"type:decimal(14,2);not null;default:0"`
	AmountPaid float64         `json:"amount_paid" gorm:"type:decimal(14,2);not null;default:0"`
	DueDate    *datatypes.Date `json:"due_date"`
	Status     FeeStatus       `json:"status" gorm:"type:varchar(16);not null;default:UNPAID;index"`
	Note       *string         `json:"note" gorm:"type:text"`
	CreatedAt  time.Time       `json:"created_at" gorm:"autoCreateTime;index"`
}

func (Fee) TableName() string { return "fees" }

// FeePatch lists the writable fee fields. Quantity and UnitPrice feed the
// recomputed AmountDue; AmountPaid and Status are never patched.
type FeePatch struct {
	RoomID    Optional[*int64]
	PersonID  Optional[*int64]
	VehicleID Optional[*int64]
	FeeName   Optional[string]
	FeeType   Optional[FeeType]
	Period    Optional[*string]
	Quantity  Optional[float64]
	UnitPrice Optional[float64]
	DueDate   Optional[*datatypes.Date]
	Note      Optional[*string]
}

func (p FeePatch) Empty() bool {
	return len(p.Columns()) == 0
}

func (p FeePatch) Columns() map[string]any {
	cols := make(map[string]any)
	setIf(cols, "room_id", p.RoomID)
	setIf(cols, "person_id", p.PersonID)
	setIf(cols, "vehicle_id", p.VehicleID)
	setIf(cols, "fee_name", p.FeeName)
	setIf(cols, "fee_type", p.FeeType)
	setIf(cols, "period", p.Period)
	setIf(cols, "quantity", p.Quantity)
	setIf(cols, "unit_price", p.UnitPrice)
	setIf(cols, "due_date", p.DueDate)
	setIf(cols, "note", p.Note)
	return cols
}

// Round2 rounds a monetary amount to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// AmountDue is round2(quantity * unitPrice).
func AmountDue(quantity, unitPrice float64) float64 {
	return Round2(quantity * unitPrice)
}

// StatusFor derives a fee status from what has been paid against what is due.
func StatusFor(amountPaid, amountDue float64) FeeStatus {
	switch {
	case amountPaid <= 0:
		return FeeUnpaid
	case amountPaid < amountDue:
		return FeePartial
	default:
		return FeePaid
	}
}

// Finite reports whether v is a usable monetary number.
func Finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

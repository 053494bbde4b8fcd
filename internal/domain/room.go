package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Room is an apartment unit. Persons and Vehicles reference it by room_id.
type Room struct {
	ID            int64           `json:"id" gorm:"primaryKey"`
	RoomNo        string          `json:"room_no" gorm:"type:varchar(32);not null;uniqueIndex"`
	Building      *string         `json:"building"`
	Floor         *int            `json:"floor"`
	RoomType      *string         `json:"room_type" gorm:"type:varchar(32)"`
	AreaM2        *float64        `json:"area_m2" gorm:"type:decimal(8,2)"`
	Status        *string         `json:"status" gorm:"type:varchar(32);index"`
	ContractStart *datatypes.Date `json:"contract_start"`
	ContractEnd   *datatypes.Date `json:"contract_end"`
	Note          *string         `json:"note" gorm:"type:text"`
	CreatedAt     time.Time       `json:"created_at" gorm:"autoCreateTime"`
}

func (Room) TableName() string { return "rooms" }

type RoomPatch struct {
	RoomNo        Optional[string]
	Building      Optional[*string]
	Floor         Optional[*int]
	RoomType      Optional[*string]
	AreaM2        Optional[*float64]
	Status        Optional[*string]
	ContractStart Optional[*datatypes.Date]
	ContractEnd   Optional[*datatypes.Date]
	Note          Optional[*string]
}

// Columns lists the columns the patch writes.
func (p RoomPatch) Columns() map[string]any {
	cols := make(map[string]any)
	setIf(cols, "room_no", p.RoomNo)
	setIf(cols, "building", p.Building)
	setIf(cols, "floor", p.Floor)
	setIf(cols, "room_type", p.RoomType)
	setIf(cols, "area_m2", p.AreaM2)
	setIf(cols, "status", p.Status)
	setIf(cols, "contract_start", p.ContractStart)
	setIf(cols, "contract_end", p.ContractEnd)
	setIf(cols, "note", p.Note)
	return cols
}

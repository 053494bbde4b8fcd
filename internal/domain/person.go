package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Person is a resident of a room. At most one person per room is expected to
// carry IsHead; the database does not enforce it.
type Person struct {
	ID             int64           `json:"id" gorm:"primaryKey"`
	RoomID         int64           `json:"room_id" gorm:"not null;index"`
	FullName       string          `json:"full_name" gorm:"type:varchar(128);not null"`
	CCCD           *string         `json:"cccd" gorm:"column:cccd;type:varchar(32)"`
	Ethnicity      *string         `json:"ethnicity"`
	Occupation     *string         `json:"occupation"`
	DOB            *datatypes.Date `json:"dob" gorm:"column:dob"`
	Hometown       *string         `json:"hometown"`
	RelationToHead *string         `json:"relation_to_head"`
	Phone          *string         `json:"phone" gorm:"type:varchar(32)"`
	Email          *string         `json:"email"`
	IsHead         bool            `json:"is_head" gorm:"not null;default:false"`
	CreatedAt      time.Time       `json:"created_at" gorm:"autoCreateTime"`
}

func (Person) TableName() string { return "persons" }

type PersonPatch struct {
	RoomID         Optional[int64]
	FullName       Optional[string]
	CCCD           Optional[*string]
	Ethnicity      Optional[*string]
	Occupation     Optional[*string]
	DOB            Optional[*datatypes.Date]
	Hometown       Optional[*string]
	RelationToHead Optional[*string]
	Phone          Optional[*string]
	Email          Optional[*string]
	IsHead         Optional[bool]
}

func (p PersonPatch) Columns() map[string]any {
	cols := make(map[string]any)
	setIf(cols, "room_id", p.RoomID)
	setIf(cols, "full_name", p.FullName)
	setIf(cols, "cccd", p.CCCD)
	setIf(cols, "ethnicity", p.Ethnicity)
	setIf(cols, "occupation", p.Occupation)
	setIf(cols, "dob", p.DOB)
	setIf(cols, "hometown", p.Hometown)
	setIf(cols, "relation_to_head", p.RelationToHead)
	setIf(cols, "phone", p.Phone)
	setIf(cols, "email", p.Email)
	setIf(cols, "is_head", p.IsHead)
	return cols
}

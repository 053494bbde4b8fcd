package resident

import (
	"strings"

	"bluemoon/internal/domain"
)

// PersonData is the head of household submitted with a new room.
type PersonData struct {
	FullName       string  `json:"full_name"`
	CCCD           *string `json:"cccd"`
	Ethnicity      *string `json:"ethnicity"`
	Occupation     *string `json:"occupation"`
	DOB            string  `json:"dob" binding:"date"`
	Hometown       *string `json:"hometown"`
	RelationToHead *string `json:"relation_to_head"`
	Phone          *string `json:"phone"`
	Email          *string `json:"email" binding:"omitempty,email"`
}

// CreateRoomRequest creates a room, optionally with a head of household
// (person_data.full_name) and a login account (username + password).
type CreateRoomRequest struct {
	RoomNo        string   `json:"room_no" binding:"required"`
	Building      *string  `json:"building"`
	Floor         *int     `json:"floor"`
	RoomType      *string  `json:"room_type"`
	AreaM2        *float64 `json:"area_m2" binding:"omitempty,gte=0"`
	Status        *string  `json:"status"`
	ContractStart string   `json:"contract_start" binding:"date"`
	ContractEnd   string   `json:"contract_end" binding:"date"`
	Note          *string  `json:"note"`

	Username string  `json:"username"`
	Password string  `json:"password"`
	Phone    *string `json:"phone"`
	Email    *string `json:"email" binding:"omitempty,email"`
	FullName *string `json:"full_name"`
	Role     string  `json:"role"`

	PersonData *PersonData `json:"person_data"`
}

type CreateRoomResponse struct {
	RoomID   int64  `json:"room_id"`
	PersonID *int64 `json:"person_id,omitempty"`
	UserID   *int64 `json:"user_id,omitempty"`
}

type UpdateRoomRequest struct {
	RoomNo        domain.Optional[string]   `json:"room_no"`
	Building      domain.Optional[*string]  `json:"building"`
	Floor         domain.Optional[*int]     `json:"floor"`
	RoomType      domain.Optional[*string]  `json:"room_type"`
	AreaM2        domain.Optional[*float64] `json:"area_m2"`
	Status        domain.Optional[*string]  `json:"status"`
	ContractStart domain.Optional[*string]  `json:"contract_start"`
	ContractEnd   domain.Optional[*string]  `json:"contract_end"`
	Note          domain.Optional[*string]  `json:"note"`
}

func (r UpdateRoomRequest) Patch() (domain.RoomPatch, error) {
	if r.RoomNo.Set && strings.TrimSpace(r.RoomNo.Value) == "" {
		return domain.RoomPatch{}, ErrRoomNoRequired
	}
	start, ok := domain.OptionalDate(r.ContractStart)
	if !ok {
		return domain.RoomPatch{}, ErrInvalidDate
	}
	end, ok := domain.OptionalDate(r.ContractEnd)
	if !ok {
		return domain.RoomPatch{}, ErrInvalidDate
	}

	patch := domain.RoomPatch{
		RoomNo:        r.RoomNo,
		Building:      r.Building,
		Floor:         r.Floor,
		RoomType:      r.RoomType,
		AreaM2:        r.AreaM2,
		Status:        r.Status,
		ContractStart: start,
		ContractEnd:   end,
		Note:          r.Note,
	}
	if patch.RoomNo.Set {
		patch.RoomNo.Value = strings.TrimSpace(patch.RoomNo.Value)
	}
	return patch, nil
}

type CreatePersonRequest struct {
	RoomID         int64   `json:"room_id" binding:"required,gt=0"`
	FullName       string  `json:"full_name" binding:"required"`
	CCCD           *string `json:"cccd"`
	Ethnicity      *string `json:"ethnicity"`
	Occupation     *string `json:"occupation"`
	DOB            string  `json:"dob" binding:"date"`
	Hometown       *string `json:"hometown"`
	RelationToHead *string `json:"relation_to_head"`
	Phone          *string `json:"phone"`
	Email          *string `json:"email" binding:"omitempty,email"`
	IsHead         bool    `json:"is_head"`
}

type UpdatePersonRequest struct {
	RoomID         domain.Optional[int64]   `json:"room_id"`
	FullName       domain.Optional[string]  `json:"full_name"`
	CCCD           domain.Optional[*string] `json:"cccd"`
	Ethnicity      domain.Optional[*string] `json:"ethnicity"`
	Occupation     domain.Optional[*string] `json:"occupation"`
	DOB            domain.Optional[*string] `json:"dob"`
	Hometown       domain.Optional[*string] `json:"hometown"`
	RelationToHead domain.Optional[*string] `json:"relation_to_head"`
	Phone          domain.Optional[*string] `json:"phone"`
	Email          domain.Optional[*string] `json:"email"`
	IsHead         domain.Optional[bool]    `json:"is_head"`
}

func (r UpdatePersonRequest) Patch() (domain.PersonPatch, error) {
	if r.FullName.Set && strings.TrimSpace(r.FullName.Value) == "" {
		return domain.PersonPatch{}, ErrFullNameRequired
	}
	if r.RoomID.Set && r.RoomID.Value <= 0 {
		return domain.PersonPatch{}, ErrInvalidRoomID
	}
	dob, ok := domain.OptionalDate(r.DOB)
	if !ok {
		return domain.PersonPatch{}, ErrInvalidDate
	}

	return domain.PersonPatch{
		RoomID:         r.RoomID,
		FullName:       r.FullName,
		CCCD:           r.CCCD,
		Ethnicity:      r.Ethnicity,
		Occupation:     r.Occupation,
		DOB:            dob,
		Hometown:       r.Hometown,
		RelationToHead: r.RelationToHead,
		Phone:          r.Phone,
		Email:          r.Email,
		IsHead:         r.IsHead,
	}, nil
}

type BulkDeleteRequest struct {
	IDs []int64 `json:"ids"`
}

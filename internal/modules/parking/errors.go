package parking

import "bluemoon/internal/apperr"

var (
	ErrVehicleNotFound  = apperr.NotFound("Vehicle not found")
	ErrRoomNotFound     = apperr.NotFound("Room not found")
	ErrPersonNotFound   = apperr.NotFound("Person not found")
	ErrPlateTaken       = apperr.Conflict("plate already exists", nil)
	ErrPlateRequired    = apperr.Validation("plate is required")
	ErrInvalidRoomID    = apperr.Validation("room_id is invalid")
	ErrNoFieldsToUpdate = apperr.Validation("no fields to update")
	ErrInvalidRange     = apperr.Validation("from/to must be YYYY-MM-DD and from must not be after to")
)

package cascade

import "bluemoon/internal/apperr"

var (
	ErrRoomNotFound    = apperr.NotFound("Room not found")
	ErrVehicleNotFound = apperr.NotFound("Vehicle not found")
	ErrFeeNotFound     = apperr.NotFound("Fee not found")
	ErrPersonNotFound  = apperr.NotFound("Person not found")
	ErrEmptyIDList     = apperr.Validation("ids must be a non-empty list of positive ids")
)

package ledger

import "bluemoon/internal/apperr"

var (
	ErrFeeNotFound      = apperr.NotFound("Fee not found")
	ErrVehicleNotFound  = apperr.NotFound("Vehicle not found")
	ErrRoomNotFound     = apperr.NotFound("Room not found")
	ErrPersonNotFound   = apperr.NotFound("Person not found")
	ErrInvalidAmount    = apperr.Validation("amount must be a positive number")
	ErrInvalidUnitPrice = apperr.Validation("unit_price must be a non-negative number")
	ErrInvalidQuantity  = apperr.Validation("quantity must be a non-negative number")
	ErrFeeNameRequired  = apperr.Validation("fee_name is required")
	ErrInvalidFeeType   = apperr.Validation("fee_type must be ROOM, PARKING or OTHER")
	ErrInvalidPeriod    = apperr.Validation("period must be YYYY-MM")
	ErrNoFieldsToUpdate = apperr.Validation("no fields to update")
)

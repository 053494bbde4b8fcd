package resident

import "bluemoon/internal/apperr"

var (
	ErrRoomNotFound     = apperr.NotFound("Room not found")
	ErrPersonNotFound   = apperr.NotFound("Person not found")
	ErrRoomNoTaken      = apperr.Conflict("room_no already exists", nil)
	ErrUsernameTaken    = apperr.Conflict("username already exists", nil)
	ErrNoFieldsToUpdate = apperr.Validation("no fields to update")
	ErrRoomNoRequired   = apperr.Validation("room_no is required")
	ErrFullNameRequired = apperr.Validation("full_name is required")
	ErrInvalidRoomID    = apperr.Validation("room_id is invalid")
	ErrInvalidRole      = apperr.Validation("role must be ADMIN or RESIDENT")
	ErrInvalidDate      = apperr.Validation("dates must be YYYY-MM-DD")
	ErrPasswordRequired = apperr.Validation("password is required when username is given")
)

package auth

import (
	"errors"

	"bluemoon/internal/apperr"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserNotFound       = apperr.NotFound("User not found")
	ErrMissingCredentials = apperr.Validation("username and password are required")
)

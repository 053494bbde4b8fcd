package billing

import "bluemoon/internal/apperr"

var (
	ErrFeeNotFound = apperr.NotFound("Fee not found")
	ErrInvalidDate = apperr.Validation("due_date must be YYYY-MM-DD")
)

package models

import (
	"errors"
	"fmt"
)

// Domain specific errors shared by repositories, services and handlers.
var (
	ErrNotFound           = errors.New("requested item not found")
	ErrConflict           = errors.New("item already exists or conflict")
	ErrUnauthenticated    = errors.New("authentication required or invalid credentials")
	ErrForbidden          = errors.New("action forbidden")
	ErrBadRequest         = errors.New("bad request")
	ErrValidation         = errors.New("validation failed")
	ErrSaveInProgress     = errors.New("trip save already in progress")
	ErrDayOutOfRange      = errors.New("day is outside the trip date range")
	ErrInvalidPlace       = errors.New("place has no identifier")
	ErrNoDraft            = errors.New("no planner draft in this session")
	ErrStorageUnavailable = errors.New("file storage is not configured")
	ErrSuggestUnavailable = errors.New("itinerary suggestions are not configured")
)

// ValidationError carries a message meant to be shown to the user as-is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError returns a ValidationError wrapping ErrValidation.
func NewValidationError(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

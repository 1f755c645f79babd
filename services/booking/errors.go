package booking

import (
	"errors"
	"fmt"
)

// ErrBookingNotFound is returned when no booking carries the requested ID.
var ErrBookingNotFound = errors.New("booking not found")

// ValidationError reports booking data that breaks a reservation rule.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, msg string) error {
	return &ValidationError{
		Field:   field,
		Message: msg,
	}
}

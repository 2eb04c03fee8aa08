package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an update targets a complaint that does not exist.
	ErrNotFound = errors.New("complaint not found")

	// ErrStoreUnavailable wraps failures of the backing document store.
	ErrStoreUnavailable = errors.New("complaint store unavailable")
)

// ValidationError reports missing or malformed input.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a ValidationError for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IsValidation reports whether err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// StoreError wraps err so that errors.Is(err, ErrStoreUnavailable) holds.
func StoreError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}

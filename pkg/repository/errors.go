package repository

import (
	"errors"
	"fmt"
)

// Error kinds returned by store operations. Handlers translate them to HTTP
// exactly once, at the request boundary.
var (
	// ErrNotFound marks an id that matches no active record.
	ErrNotFound = errors.New("carnet not found")

	// ErrDuplicateID marks a national id already held by an active record.
	// Soft-deleted records do not conflict, which permits re-registration.
	ErrDuplicateID = errors.New("national id already registered")
)

// ValidationError reports a malformed or missing field in a create or update
// request.
type ValidationError struct {
	Field  string
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Detail)
}

// NewValidationError builds a ValidationError for the given field.
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Detail: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

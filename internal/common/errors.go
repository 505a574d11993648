package common

import (
	"errors"
	"fmt"
)

// Error classes shared by all modules. Handlers translate them to HTTP
// status codes: validation -> 400, not found -> 404, conflict -> 409.
// Anything unwrapped is a storage failure and surfaces as 500.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
)

// Validationf wraps a formatted message as a validation error.
func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFoundf wraps a formatted message as a not-found error.
func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Conflictf wraps a formatted message as a conflict error.
func Conflictf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

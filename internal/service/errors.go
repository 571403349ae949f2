package service

import (
	"errors"
	"fmt"

	"github.com/thinkex/clusters-api/internal/store"
)

// ErrConflict is reserved for multi-writer scenarios. The per-list lock
// currently prevents it from being triggered.
var ErrConflict = errors.New("conflicting concurrent modification")

// ValidationError indicates rejected caller input: an empty required field,
// a missing at-least-one-of constraint, or a mismatched reorder set. The
// message is safe to return to the caller.
type ValidationError struct {
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a ValidationError with a formatted message.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError indicates a list, cluster, or card that is absent or not
// linked as the operation expected. It wraps the underlying store sentinel
// so errors.Is(err, store.ErrNotFound) holds, and carries a message naming
// the missing entity that is safe to return to the caller.
type NotFoundError struct {
	Message string
	Err     error
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return e.Message
}

// Unwrap returns the underlying store sentinel.
func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// NewNotFoundError creates a NotFoundError wrapping the given sentinel with
// a formatted message.
func NewNotFoundError(sentinel error, format string, args ...any) *NotFoundError {
	return &NotFoundError{
		Message: fmt.Sprintf(format, args...),
		Err:     sentinel,
	}
}

// IsValidationError checks whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFoundError checks whether err indicates a missing entity, at either
// the service or the store layer.
func IsNotFoundError(err error) bool {
	var nfe *NotFoundError
	return errors.As(err, &nfe) || store.IsNotFoundError(err)
}

package core

import (
	"errors"
	"fmt"

	"github.com/sendflowai/sendflow-go/pkg/storage"
)

// Predefined errors for common failure scenarios.
var (
	// ErrValidation indicates that an input failed validation (unknown
	// memory type, confidence outside [0,1], unknown content type).
	ErrValidation = errors.New("validation failed")

	// ErrNotFound indicates that a lookup by a required identifier found
	// nothing. Lead-scoped queries never return this: absence of data is an
	// empty result, not an error.
	ErrNotFound = errors.New("not found")

	// ErrStoreUnavailable indicates the backing persistence is unreachable.
	// It always propagates to the caller; there is no fallback.
	ErrStoreUnavailable = storage.ErrUnavailable

	// ErrInvalidConfig indicates that the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ServiceError wraps errors with operation context.
//
// Example:
//
//	err := &ServiceError{Op: "StoreMemory", Err: ErrValidation}
//	// Error() returns: "sendflow: StoreMemory: validation failed"
type ServiceError struct {
	// Op is the name of the operation that failed.
	Op string

	// Err is the underlying error.
	Err error
}

// Error returns a formatted error message in the form "sendflow: <Op>: <Err>".
func (e *ServiceError) Error() string {
	return fmt.Sprintf("sendflow: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error so errors.Is and errors.As work
// through the wrapper.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError wraps err with operation context. If err is nil, it
// returns nil, so it is safe to wrap unconditionally.
func NewServiceError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &ServiceError{Op: op, Err: err}
}

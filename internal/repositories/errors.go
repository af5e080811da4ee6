package repositories

import "fmt"

// StoreErrorCode enumerates repository error causes.
type StoreErrorCode string

const (
	// StoreErrorUnknown represents an unspecified failure.
	StoreErrorUnknown StoreErrorCode = "store_unknown"
	// StoreErrorNotFound indicates the requested record does not exist.
	StoreErrorNotFound StoreErrorCode = "store_not_found"
	// StoreErrorConflict indicates the record state forbids the operation.
	StoreErrorConflict StoreErrorCode = "store_conflict"
	// StoreErrorUnavailable indicates the underlying store could not serve the request.
	StoreErrorUnavailable StoreErrorCode = "store_unavailable"
)

// StoreError wraps persistence failures with machine readable codes. It
// implements RepositoryError.
type StoreError struct {
	Op      string
	Code    StoreErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e == nil {
		return ""
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return e.Message
}

// Unwrap exposes the underlying error, if any.
func (e *StoreError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsNotFound implements RepositoryError.
func (e *StoreError) IsNotFound() bool {
	return e != nil && e.Code == StoreErrorNotFound
}

// IsConflict implements RepositoryError.
func (e *StoreError) IsConflict() bool {
	return e != nil && e.Code == StoreErrorConflict
}

// IsUnavailable implements RepositoryError.
func (e *StoreError) IsUnavailable() bool {
	return e != nil && e.Code == StoreErrorUnavailable
}

// NewStoreError constructs a typed store error.
func NewStoreError(op string, code StoreErrorCode, message string, err error) *StoreError {
	if message == "" {
		message = string(code)
	}
	return &StoreError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewNotFoundError reports a missing record.
func NewNotFoundError(op, message string) *StoreError {
	return NewStoreError(op, StoreErrorNotFound, message, nil)
}

// NewConflictError reports an operation forbidden by record state.
func NewConflictError(op, message string) *StoreError {
	return NewStoreError(op, StoreErrorConflict, message, nil)
}

// NewUnavailableError reports an unreachable or failing store.
func NewUnavailableError(op string, err error) *StoreError {
	return NewStoreError(op, StoreErrorUnavailable, "store unavailable", err)
}

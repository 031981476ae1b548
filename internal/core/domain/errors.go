// Package domain defines the core domain models for Dew.
package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a business domain error with a structured error code.
//
// Codes have the form DW-<AREA>-<NNNN>. The last four digits follow HTTP
// semantics (4xxx client errors, 5xxx server faults) so transports can map
// them without a lookup table.
type DomainError struct {
	Code    string // Error code (e.g., "DW-TODO-4040")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Details != "" {
		msg += ": " + e.Details
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison.
// Two domain errors are equal when their codes match.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// ============================================================================
// Todo Errors (TODO)
// ============================================================================

var (
	// ErrTodoNotFound indicates a mutation targeted an id absent from the store.
	ErrTodoNotFound = NewDomainError("DW-TODO-4040", "todo not found")

	// ErrTodoValidation indicates todo data validation failed.
	ErrTodoValidation = NewDomainError("DW-TODO-4001", "todo validation failed")

	// ErrInvalidStatus indicates an unknown status value.
	ErrInvalidStatus = NewDomainError("DW-TODO-4002", "invalid todo status")
)

// ============================================================================
// Snapshot Errors (SNAP)
// ============================================================================

var (
	// ErrCorruptSnapshot indicates a snapshot file exists but cannot be
	// decoded under any known version. Fatal at startup.
	ErrCorruptSnapshot = NewDomainError("DW-SNAP-5001", "corrupt snapshot")

	// ErrPersistenceFailure indicates a snapshot write failed.
	ErrPersistenceFailure = NewDomainError("DW-SNAP-5002", "snapshot write failed")
)

// ============================================================================
// System Errors (SYS)
// ============================================================================

var (
	// ErrInternalServer indicates an internal server error.
	ErrInternalServer = NewDomainError("DW-SYS-5000", "internal server error")

	// ErrBadRequest indicates a malformed request.
	ErrBadRequest = NewDomainError("DW-SYS-4000", "bad request")

	// ErrRateLimited indicates too many requests.
	ErrRateLimited = NewDomainError("DW-SYS-4290", "too many requests")
)

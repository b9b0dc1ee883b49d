package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every DomainError wraps exactly one of these so transport
// layers can map it to a status without knowing individual codes.
var (
	ErrValidation    = errors.New("validation failed")
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrUnprocessable = errors.New("unprocessable")
	ErrUnavailable   = errors.New("unavailable")
	ErrUnauthorized  = errors.New("unauthorized")
)

// DomainError is a typed, caller-recoverable failure.
type DomainError struct {
	Err     error
	Code    string
	Message string
	Details any
	Cause   error
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes both the kind and the underlying cause.
func (e *DomainError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Err, e.Cause}
	}
	return []error{e.Err}
}

// Is matches another DomainError by code, so sentinel values work with
// errors.Is even when the instance carries details.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithDetails returns a copy carrying details.
func (e *DomainError) WithDetails(details any) *DomainError {
	cp := *e
	cp.Details = details
	return &cp
}

// WithCause returns a copy carrying the underlying cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	cp := *e
	cp.Cause = cause
	return &cp
}

// New creates a DomainError of the given kind.
func New(kind error, code, message string) *DomainError {
	return &DomainError{Err: kind, Code: code, Message: message}
}

// NewNotFoundError creates a not-found error for an entity.
func NewNotFoundError(entity, id string) *DomainError {
	return &DomainError{
		Err:     ErrNotFound,
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s %s not found", entity, id),
	}
}

// NewValidationError creates a generic validation error.
func NewValidationError(message string) *DomainError {
	return &DomainError{Err: ErrValidation, Code: "VALIDATION_ERROR", Message: message}
}

// As extracts a DomainError from err.
func As(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

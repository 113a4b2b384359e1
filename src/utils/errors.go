package utils

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Entity kinds used in NotFoundError and ConflictError.
const (
	KindHolder     = "holder"
	KindInstrument = "instrument"
	KindPosition   = "position"
	KindAddress    = "address"
)

// NotFoundError reports that no persisted record matches key.
type NotFoundError struct {
	Kind string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.Key)
}

func NewNotFoundError(kind string, key any) error {
	return &NotFoundError{Kind: kind, Key: fmt.Sprint(key)}
}

// ValidationError is raised for malformed input before the store is touched.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// OwnershipError means the resolved position belongs to another holder.
type OwnershipError struct {
	HolderID   int
	PositionID int
}

func (e *OwnershipError) Error() string {
	return fmt.Sprintf("position %d does not belong to holder %d", e.PositionID, e.HolderID)
}

// ConflictError wraps a uniqueness violation raised by the store.
type ConflictError struct {
	Kind string
	Key  string
	Err  error
}

func (e *ConflictError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s already exists: %s: %v", e.Kind, e.Key, e.Err)
	}
	return fmt.Sprintf("%s already exists: %s", e.Kind, e.Key)
}

func (e *ConflictError) Unwrap() error {
	return e.Err
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}

// ToHTTPError maps domain errors onto HTTPError. Errors that are already
// HTTPError pass through unchanged.
func ToHTTPError(err error) error {
	var (
		httpErr       *HTTPError
		notFoundErr   *NotFoundError
		validationErr *ValidationError
		ownershipErr  *OwnershipError
		conflictErr   *ConflictError
	)
	switch {
	case err == nil:
		return nil
	case errors.As(err, &httpErr):
		return httpErr
	case errors.As(err, &notFoundErr):
		return NotFound(notFoundErr.Error())
	case errors.As(err, &validationErr):
		return BadRequest(validationErr.Error())
	case errors.As(err, &ownershipErr):
		return Forbidden(ownershipErr.Error())
	case errors.As(err, &conflictErr):
		return NewHTTPError(http.StatusConflict, fmt.Sprintf("%s already exists: %s", conflictErr.Kind, conflictErr.Key))
	case errors.Is(err, context.DeadlineExceeded):
		return NewHTTPError(http.StatusGatewayTimeout, "Request timed out")
	default:
		return InternalServerError(err.Error())
	}
}

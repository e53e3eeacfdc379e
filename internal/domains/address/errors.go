package address

import (
	"errors"
	"fmt"
	"net/http"
)

// AddressError is the base error for the address domain.
type AddressError struct {
	Code    string
	Message string
	Field   string // set for INVALID_ADDRESS
	Op      string // set for PERSISTENCE_ERROR
	Err     error
}

// Error implements the error interface.
func (e *AddressError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap allows error wrapping compatibility.
func (e *AddressError) Unwrap() error {
	return e.Err
}

const (
	ErrCodeAddressNotFound  = "ADDRESS_NOT_FOUND"
	ErrCodeInvalidAddress   = "INVALID_ADDRESS"
	ErrCodePersistenceError = "PERSISTENCE_ERROR"
)

// NewAddressNotFound builds an "address not found" error.
func NewAddressNotFound() *AddressError {
	return &AddressError{
		Code:    ErrCodeAddressNotFound,
		Message: "Address not found",
	}
}

// NewInvalidAddress builds a validation error naming the first blank field.
func NewInvalidAddress(field string) *AddressError {
	return &AddressError{
		Code:    ErrCodeInvalidAddress,
		Message: fmt.Sprintf("Address field %q is required and cannot be blank", field),
		Field:   field,
	}
}

// NewPersistenceError wraps a storage-layer fault. These are retryable:
// the in-memory collection is never partially applied.
func NewPersistenceError(op string, err error) *AddressError {
	return &AddressError{
		Code:    ErrCodePersistenceError,
		Message: fmt.Sprintf("Address storage %s failed", op),
		Op:      op,
		Err:     err,
	}
}

// IsAddressNotFound checks for a "not found" error.
func IsAddressNotFound(err error) bool {
	var addrErr *AddressError
	return errors.As(err, &addrErr) && addrErr.Code == ErrCodeAddressNotFound
}

// IsInvalidAddress checks for a validation error.
func IsInvalidAddress(err error) bool {
	var addrErr *AddressError
	return errors.As(err, &addrErr) && addrErr.Code == ErrCodeInvalidAddress
}

// IsPersistenceError checks for a storage-layer fault.
func IsPersistenceError(err error) bool {
	var addrErr *AddressError
	return errors.As(err, &addrErr) && addrErr.Code == ErrCodePersistenceError
}

// GetErrorCode extracts the domain error code.
func GetErrorCode(err error) string {
	var addrErr *AddressError
	if errors.As(err, &addrErr) {
		return addrErr.Code
	}
	return "UNKNOWN_ERROR"
}

// MapErrorToHTTP maps a domain error onto an HTTP status and message.
func MapErrorToHTTP(err error) (int, string, string) {
	if err == nil {
		return http.StatusOK, "Success", ""
	}

	var addrErr *AddressError
	if !errors.As(err, &addrErr) {
		return http.StatusInternalServerError, "Internal server error", "INTERNAL_ERROR"
	}

	switch addrErr.Code {
	case ErrCodeAddressNotFound:
		return http.StatusNotFound, addrErr.Message, addrErr.Code
	case ErrCodeInvalidAddress:
		return http.StatusBadRequest, addrErr.Message, addrErr.Code
	case ErrCodePersistenceError:
		return http.StatusServiceUnavailable, addrErr.Message, addrErr.Code
	default:
		return http.StatusInternalServerError, addrErr.Message, addrErr.Code
	}
}

package checkout

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
)

// CheckoutError is the base error for the checkout domain. Field is set
// for VALIDATION_ERROR; Requested/Remaining for CAPACITY_EXCEEDED.
type CheckoutError struct {
	Code      string
	Message   string
	Field     string
	Requested decimal.Decimal
	Remaining decimal.Decimal
	Err       error
}

// Error implements the error interface.
func (e *CheckoutError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap allows error wrapping compatibility.
func (e *CheckoutError) Unwrap() error {
	return e.Err
}

const (
	ErrCodeValidation           = "VALIDATION_ERROR"
	ErrCodeEmptyCart            = "EMPTY_CART"
	ErrCodeNoActiveSubscription = "NO_ACTIVE_SUBSCRIPTION"
	ErrCodeCapacityExceeded     = "CAPACITY_EXCEEDED"
	ErrCodeOrderCreation        = "ORDER_CREATION_ERROR"
	ErrCodeConfirmationPending  = "CONFIRMATION_PENDING"
	ErrCodeInvalidPhase         = "INVALID_PHASE"
	ErrCodeNotConfirmed         = "NOT_CONFIRMED"
)

// NewValidationError names the first mandatory address field that failed.
func NewValidationError(field string) *CheckoutError {
	return &CheckoutError{
		Code:    ErrCodeValidation,
		Message: fmt.Sprintf("Address field %q is required and cannot be blank", field),
		Field:   field,
	}
}

// NewEmptyCart rejects confirmation of a cart with no items.
func NewEmptyCart() *CheckoutError {
	return &CheckoutError{
		Code:    ErrCodeEmptyCart,
		Message: "Cart has no items",
	}
}

// NewNoActiveSubscription rejects confirmation without an active plan.
func NewNoActiveSubscription() *CheckoutError {
	return &CheckoutError{
		Code:    ErrCodeNoActiveSubscription,
		Message: "No active subscription",
	}
}

// NewCapacityExceeded carries the requested and remaining weights so the
// app can render both.
func NewCapacityExceeded(requested, remaining decimal.Decimal) *CheckoutError {
	return &CheckoutError{
		Code: ErrCodeCapacityExceeded,
		Message: fmt.Sprintf("Requested weight %s kg exceeds remaining capacity %s kg",
			requested.String(), remaining.String()),
		Requested: requested,
		Remaining: remaining,
	}
}

// NewOrderCreationError wraps a failed remote order-creation call. The
// session stays in review and is fully re-confirmable.
func NewOrderCreationError(err error) *CheckoutError {
	return &CheckoutError{
		Code:    ErrCodeOrderCreation,
		Message: "Order creation failed",
		Err:     err,
	}
}

// NewConfirmationPending rejects a reconfirm while one is in flight.
func NewConfirmationPending() *CheckoutError {
	return &CheckoutError{
		Code:    ErrCodeConfirmationPending,
		Message: "A confirmation is already in progress",
	}
}

// NewInvalidPhase rejects an action not permitted in the current phase.
func NewInvalidPhase(action string, phase Phase) *CheckoutError {
	return &CheckoutError{
		Code:    ErrCodeInvalidPhase,
		Message: fmt.Sprintf("Cannot %s while checkout is in phase %s", action, phase),
	}
}

// NewNotConfirmed reports a declined confirmation prompt.
func NewNotConfirmed() *CheckoutError {
	return &CheckoutError{
		Code:    ErrCodeNotConfirmed,
		Message: "Order was not confirmed",
	}
}

// IsValidationError checks for a VALIDATION_ERROR.
func IsValidationError(err error) bool {
	return hasCode(err, ErrCodeValidation)
}

// IsEmptyCart checks for an EMPTY_CART rejection.
func IsEmptyCart(err error) bool {
	return hasCode(err, ErrCodeEmptyCart)
}

// IsNoActiveSubscription checks for a NO_ACTIVE_SUBSCRIPTION rejection.
func IsNoActiveSubscription(err error) bool {
	return hasCode(err, ErrCodeNoActiveSubscription)
}

// IsCapacityExceeded checks for a CAPACITY_EXCEEDED rejection.
func IsCapacityExceeded(err error) bool {
	return hasCode(err, ErrCodeCapacityExceeded)
}

// IsOrderCreationError checks for a failed submission.
func IsOrderCreationError(err error) bool {
	return hasCode(err, ErrCodeOrderCreation)
}

// IsConfirmationPending checks for a rejected reconfirm.
func IsConfirmationPending(err error) bool {
	return hasCode(err, ErrCodeConfirmationPending)
}

// IsNotConfirmed checks for a declined prompt.
func IsNotConfirmed(err error) bool {
	return hasCode(err, ErrCodeNotConfirmed)
}

func hasCode(err error, code string) bool {
	var chkErr *CheckoutError
	return errors.As(err, &chkErr) && chkErr.Code == code
}

// GetErrorCode extracts the domain error code.
func GetErrorCode(err error) string {
	var chkErr *CheckoutError
	if errors.As(err, &chkErr) {
		return chkErr.Code
	}
	return "UNKNOWN_ERROR"
}

// MapErrorToHTTP maps a domain error onto an HTTP status and message.
func MapErrorToHTTP(err error) (int, string, string) {
	if err == nil {
		return http.StatusOK, "Success", ""
	}

	var chkErr *CheckoutError
	if !errors.As(err, &chkErr) {
		return http.StatusInternalServerError, "Internal server error", "INTERNAL_ERROR"
	}

	switch chkErr.Code {
	case ErrCodeValidation, ErrCodeNotConfirmed:
		return http.StatusBadRequest, chkErr.Message, chkErr.Code
	case ErrCodeEmptyCart, ErrCodeNoActiveSubscription, ErrCodeCapacityExceeded:
		return http.StatusUnprocessableEntity, chkErr.Message, chkErr.Code
	case ErrCodeConfirmationPending, ErrCodeInvalidPhase:
		return http.StatusConflict, chkErr.Message, chkErr.Code
	case ErrCodeOrderCreation:
		return http.StatusBadGateway, chkErr.Message, chkErr.Code
	default:
		return http.StatusInternalServerError, chkErr.Message, chkErr.Code
	}
}

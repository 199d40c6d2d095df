package errors

import (
	"errors"
	"fmt"
	"net/http"
)

type AppError struct {
	Code       string
	Message    string
	Detail     string
	StatusCode int
	Err        error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

func (e *AppError) WithDetail(detail string) *AppError {
	e.Detail = detail

	return e
}

func (e *AppError) WithError(err error) *AppError {
	e.Err = err

	return e
}

const (
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeForbidden       = "FORBIDDEN"
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeDatabaseError   = "DATABASE_ERROR"
	ErrCodeDuplicateEntry  = "DUPLICATE_ENTRY"
	ErrCodeThirdPartyError = "THIRD_PARTY_ERROR"
	ErrCodeTooManyRequests = "TOO_MANY_REQUESTS"

	// Cart and checkout taxonomy. These propagate unhandled up to the HTTP
	// boundary, which translates them to status codes.
	ErrCodeCartEmpty               = "CART_EMPTY"
	ErrCodeCartOperationFailed     = "CART_OPERATION_FAILED"
	ErrCodeCheckoutFailed          = "CHECKOUT_FAILED"
	ErrCodeInvalidStatusTransition = "INVALID_STATUS_TRANSITION"
)

func ValidationError(message string) *AppError {
	return NewAppError(ErrCodeValidation, message, http.StatusBadRequest)
}

func BadRequestError(message string) *AppError {
	return NewAppError(ErrCodeBadRequest, message, http.StatusBadRequest)
}

func NotFoundError(message string) *AppError {
	return NewAppError(ErrCodeNotFound, message, http.StatusNotFound)
}

func UnauthorizedError(message string) *AppError {
	return NewAppError(ErrCodeUnauthorized, message, http.StatusUnauthorized)
}

func ForbiddenError(message string) *AppError {
	return NewAppError(ErrCodeForbidden, message, http.StatusForbidden)
}

func InternalError(message string) *AppError {
	return NewAppError(ErrCodeInternal, message, http.StatusInternalServerError)
}

func DatabaseError(message string) *AppError {
	return NewAppError(ErrCodeDatabaseError, message, http.StatusInternalServerError)
}

func DuplicateEntryError(message string) *AppError {
	return NewAppError(ErrCodeDuplicateEntry, message, http.StatusConflict)
}

func ThirdPartyError(message string) *AppError {
	return NewAppError(ErrCodeThirdPartyError, message, http.StatusInternalServerError)
}

func TooManyRequestsError(message string) *AppError {
	return NewAppError(ErrCodeTooManyRequests, message, http.StatusTooManyRequests)
}

// CartEmptyError is raised when checkout is attempted on a cart with no
// lines. It is a user-facing error and performs no writes.
func CartEmptyError() *AppError {
	return NewAppError(ErrCodeCartEmpty, "Cannot checkout an empty cart", http.StatusUnprocessableEntity)
}

func CartOperationFailedError(err error) *AppError {
	return NewAppError(ErrCodeCartOperationFailed, "Cart operation failed", http.StatusInternalServerError).WithError(err)
}

func CheckoutFailedError(err error) *AppError {
	return NewAppError(ErrCodeCheckoutFailed, "Checkout failed", http.StatusInternalServerError).WithError(err)
}

// InvalidStatusTransitionError names the rejected target status, as the
// validation surface for order updates.
func InvalidStatusTransitionError(target string) *AppError {
	return NewAppError(
		ErrCodeInvalidStatusTransition,
		fmt.Sprintf("The order cannot transition to the status '%s'", target),
		http.StatusUnprocessableEntity,
	)
}

func IsAppError(err error) (*AppError, bool) {
	var appError *AppError

	if errors.As(err, &appError) {
		return appError, true
	}

	return nil, false
}

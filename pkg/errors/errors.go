package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError
func NewAppError(code, message string, status int, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// Constructors for the dispatch error taxonomy

// NotFound creates a 404 error for an absent trip or entity
func NotFound(message string, err error) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: message,
		Status:  http.StatusNotFound,
		Err:     err,
	}
}

// Conflict creates a 409 error (lock held, or a conditional update matched zero rows)
func Conflict(message string, err error) *AppError {
	return &AppError{
		Code:    "CONFLICT",
		Message: message,
		Status:  http.StatusConflict,
		Err:     err,
	}
}

// InvalidStateTransition creates a 422 error for a lifecycle guard violation
func InvalidStateTransition(message string, err error) *AppError {
	return &AppError{
		Code:    "INVALID_STATE_TRANSITION",
		Message: message,
		Status:  http.StatusUnprocessableEntity,
		Err:     err,
	}
}

// AuthRejected creates a 401 error for handshake or identity failure
func AuthRejected(message string, err error) *AppError {
	return &AppError{
		Code:    "AUTH_REJECTED",
		Message: message,
		Status:  http.StatusUnauthorized,
		Err:     err,
	}
}

// MalformedInput creates a 400 error for a bad payload
func MalformedInput(message string, err error) *AppError {
	return &AppError{
		Code:    "MALFORMED_INPUT",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     err,
	}
}

// DownstreamUnavailable creates a 503 error for an unreachable store or bus.
// Surfaced as retryable to the caller.
func DownstreamUnavailable(message string, err error) *AppError {
	return &AppError{
		Code:    "DOWNSTREAM_UNAVAILABLE",
		Message: message,
		Status:  http.StatusServiceUnavailable,
		Err:     err,
	}
}

// Internal creates a 500 error
func Internal(message string, err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: message,
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// Domain-specific errors

var (
	ErrTripNotFound   = NotFound("Trip not found", nil)
	ErrDriverNotFound = NotFound("Driver not found", nil)

	ErrAlreadyAssigned = Conflict("Trip is already assigned to a driver", nil)
	ErrLockHeld        = Conflict("Assignment lock is held by another driver", nil)

	ErrInvalidTransition  = InvalidStateTransition("Invalid trip status transition", nil)
	ErrInvalidCoordinates = MalformedInput("Invalid coordinates", nil)
	ErrInvalidVehicleType = MalformedInput("Invalid vehicle type", nil)
)

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError attempts to convert an error to AppError
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	// Return generic internal error if not an AppError
	return Internal("An unexpected error occurred", err)
}

// IsConflict reports whether err maps to the Conflict taxonomy entry
func IsConflict(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == "CONFLICT"
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

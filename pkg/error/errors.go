package error

import (
	"errors"
	"net/http"

	"github.com/fixora/tasklist/application/port/inbound"
	"github.com/fixora/tasklist/application/port/outbound"
	domainerr "github.com/fixora/tasklist/domain/error"
)

type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func (e *AppError) Error() string {
	return e.Message
}

func NewBadRequest(message string) *AppError {
	return &AppError{Code: "BAD_REQUEST", Message: message, Status: http.StatusBadRequest}
}

func NewUnauthorized(message string) *AppError {
	return &AppError{Code: "UNAUTHORIZED", Message: message, Status: http.StatusUnauthorized}
}

func NewForbidden(message string) *AppError {
	return &AppError{Code: "FORBIDDEN", Message: message, Status: http.StatusForbidden}
}

func NewNotFound(message string) *AppError {
	return &AppError{Code: "NOT_FOUND", Message: message, Status: http.StatusNotFound}
}

func NewInternalServer(message string) *AppError {
	return &AppError{Code: "INTERNAL_ERROR", Message: message, Status: http.StatusInternalServerError}
}

func NewConflict(message string) *AppError {
	return &AppError{Code: "CONFLICT", Message: message, Status: http.StatusConflict}
}

// MapError turns use case errors into an HTTP status and client message.
// Anything unrecognised becomes a generic 500 so internals never reach clients.
func MapError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, inbound.ErrInvalidEmail),
		errors.Is(err, inbound.ErrInvalidTaskTitle):
		return NewBadRequest(err.Error())
	case errors.Is(err, inbound.ErrMissingRefreshToken):
		return NewBadRequest("Refresh token is required")
	case errors.Is(err, inbound.ErrForbidden):
		return NewForbidden("You can only view your own tasks")
	case errors.Is(err, outbound.ErrUserNotFound):
		return NewNotFound("User not found")
	case errors.Is(err, outbound.ErrTaskNotFound):
		return NewNotFound("Task not found")
	case errors.Is(err, outbound.ErrUserAlreadyExists):
		return NewConflict("User already exists")
	}

	switch domainerr.KindOf(err) {
	case domainerr.ErrCodeRefreshTokenExpired:
		return NewUnauthorized("Refresh token expired. Please login again.")
	case domainerr.ErrCodeRefreshTokenInvalid:
		return NewUnauthorized("Invalid refresh token")
	case domainerr.ErrCodeTokenExpired:
		return NewUnauthorized("Access token expired")
	case domainerr.ErrCodeTokenInvalid,
		domainerr.ErrCodeHeaderMissing,
		domainerr.ErrCodeHeaderMalformed,
		domainerr.ErrCodeTokenMissing:
		return NewUnauthorized("Invalid or missing token")
	}

	return NewInternalServer("An unexpected error occurred")
}

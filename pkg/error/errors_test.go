package error

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fixora/tasklist/application/port/inbound"
	"github.com/fixora/tasklist/application/port/outbound"
	domainerr "github.com/fixora/tasklist/domain/error"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"invalid email", inbound.ErrInvalidEmail, http.StatusBadRequest, "invalid email format"},
		{"empty title", inbound.ErrInvalidTaskTitle, http.StatusBadRequest, "task title is required"},
		{"missing refresh token", inbound.ErrMissingRefreshToken, http.StatusBadRequest, "Refresh token is required"},
		{"forbidden", inbound.ErrForbidden, http.StatusForbidden, "You can only view your own tasks"},
		{"user not found", outbound.ErrUserNotFound, http.StatusNotFound, "User not found"},
		{"wrapped task not found", fmt.Errorf("lookup: %w", outbound.ErrTaskNotFound), http.StatusNotFound, "Task not found"},
		{"duplicate user", outbound.ErrUserAlreadyExists, http.StatusConflict, "User already exists"},
		{"refresh expired", domainerr.ErrRefreshTokenExpired(nil), http.StatusUnauthorized, "Refresh token expired. Please login again."},
		{"refresh invalid", domainerr.ErrRefreshTokenInvalid(nil), http.StatusUnauthorized, "Invalid refresh token"},
		{"issuance failed", domainerr.ErrIssuanceFailed(errors.New("x")), http.StatusInternalServerError, "An unexpected error occurred"},
		{"verification failed", domainerr.ErrVerificationFailed(nil), http.StatusInternalServerError, "An unexpected error occurred"},
		{"unknown", errors.New("pq: connection refused"), http.StatusInternalServerError, "An unexpected error occurred"},
		{"already mapped", NewConflict("taken"), http.StatusConflict, "taken"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			assert.Equal(t, tt.status, got.Status)
			assert.Equal(t, tt.message, got.Message)
		})
	}
}

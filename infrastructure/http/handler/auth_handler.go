package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/fixora/tasklist/application/port/inbound"
	"github.com/fixora/tasklist/infrastructure/http/response"
	"github.com/fixora/tasklist/infrastructure/http/validator"
	"github.com/fixora/tasklist/infrastructure/service/logger"
	apperror "github.com/fixora/tasklist/pkg/error"
)

type AuthHandler struct {
	authUseCase inbound.AuthUseCase
	logger      logger.Logger
}

func NewAuthHandler(authUseCase inbound.AuthUseCase, log logger.Logger) *AuthHandler {
	return &AuthHandler{
		authUseCase: authUseCase,
		logger:      log,
	}
}

// Refresh exchanges a refresh token for a new access token. Tokens that are
// not even JWT shaped are refused before any signature work.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req inbound.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Refresh token is required")
		return
	}

	if token := strings.TrimSpace(req.RefreshToken); token != "" && !validator.ValidateJWTShape(token) {
		response.Unauthorized(w, "Invalid refresh token")
		return
	}

	res, err := h.authUseCase.Refresh(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Success(w, http.StatusOK, "Token refreshed successfully", res)
}

// writeError maps err to the envelope. 5xx causes are logged, never echoed.
func writeError(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	appErr := apperror.MapError(err)
	if appErr.Status >= http.StatusInternalServerError {
		log.Error(r.Context(), "Request failed", err, map[string]interface{}{
			"method": r.Method,
			"path":   r.URL.Path,
		})
	}
	response.Error(w, appErr.Status, appErr.Message)
}

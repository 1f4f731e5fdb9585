package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/fixora/tasklist/application/port/inbound"
	"github.com/fixora/tasklist/infrastructure/http/response"
	"github.com/fixora/tasklist/infrastructure/http/validator"
	"github.com/fixora/tasklist/infrastructure/service/logger"
)

type UserHandler struct {
	userUseCase inbound.UserUseCase
	logger      logger.Logger
}

func NewUserHandler(userUseCase inbound.UserUseCase, log logger.Logger) *UserHandler {
	return &UserHandler{
		userUseCase: userUseCase,
		logger:      log,
	}
}

type CreateUserRequest struct {
	Email string `json:"email"`
}

func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	email := strings.TrimSpace(req.Email)
	if !validator.ValidateEmail(email) {
		response.BadRequest(w, "Invalid email format")
		return
	}

	user, err := h.userUseCase.CreateUser(r.Context(), email)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Success(w, http.StatusCreated, "User created successfully", user)
}

// LookupUser finds a user by email and answers with a fresh token pair.
func (h *UserHandler) LookupUser(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(mux.Vars(r)["email"])
	if !validator.ValidateEmail(email) {
		response.BadRequest(w, "Invalid email format")
		return
	}

	res, err := h.userUseCase.LookupUser(r.Context(), email)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Success(w, http.StatusOK, "User found", res)
}

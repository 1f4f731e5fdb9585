package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/fixora/tasklist/application/port/inbound"
	"github.com/fixora/tasklist/infrastructure/http/middleware"
	"github.com/fixora/tasklist/infrastructure/http/response"
	"github.com/fixora/tasklist/infrastructure/http/validator"
	"github.com/fixora/tasklist/infrastructure/service/logger"
)

const maxTaskTitleLength = 255

// TaskHandler serves the task routes. Every route sits behind RequireAuth,
// so the caller identity is always present.
type TaskHandler struct {
	taskUseCase inbound.TaskUseCase
	logger      logger.Logger
}

func NewTaskHandler(taskUseCase inbound.TaskUseCase, log logger.Logger) *TaskHandler {
	return &TaskHandler{
		taskUseCase: taskUseCase,
		logger:      log,
	}
}

func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	var req inbound.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if !validTitle(w, req.Title) {
		return
	}

	task, err := h.taskUseCase.CreateTask(r.Context(), identity.UserID, req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Success(w, http.StatusCreated, "Task created successfully", task)
}

// ListTasks answers 403 when the path names anyone but the caller.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	tasks, err := h.taskUseCase.ListTasks(r.Context(), identity.UserID, mux.Vars(r)["userId"])
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Success(w, http.StatusOK, "Tasks retrieved successfully", tasks)
}

func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	var req inbound.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if !validTitle(w, req.Title) {
		return
	}

	task, err := h.taskUseCase.UpdateTask(r.Context(), identity.UserID, mux.Vars(r)["taskId"], req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Success(w, http.StatusOK, "Task updated successfully", task)
}

func (h *TaskHandler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	if err := h.taskUseCase.CompleteTask(r.Context(), identity.UserID, mux.Vars(r)["taskId"]); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Success(w, http.StatusOK, "Task marked as completed", nil)
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	if err := h.taskUseCase.DeleteTask(r.Context(), identity.UserID, mux.Vars(r)["taskId"]); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Success(w, http.StatusOK, "Task deleted successfully", nil)
}

func (h *TaskHandler) identity(w http.ResponseWriter, r *http.Request) (*middleware.Identity, bool) {
	identity := middleware.GetIdentity(r.Context())
	if identity == nil {
		// Route registered without RequireAuth.
		response.Unauthorized(w, middleware.MessageAuthFailed)
		return nil, false
	}
	return identity, true
}

func validTitle(w http.ResponseWriter, title string) bool {
	if !validator.ValidateRequired(title) {
		response.BadRequest(w, "Task title is required")
		return false
	}
	if !validator.ValidateMaxLength(title, maxTaskTitleLength) {
		response.BadRequest(w, "Task title is too long")
		return false
	}
	return true
}

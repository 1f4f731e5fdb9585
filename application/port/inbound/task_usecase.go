package inbound

import (
	"context"
	"errors"

	"github.com/fixora/tasklist/domain/entity"
)

var (
	ErrInvalidEmail        = errors.New("invalid email format")
	ErrInvalidTaskTitle    = errors.New("task title is required")
	ErrForbidden           = errors.New("tasks belong to another user")
	ErrMissingRefreshToken = errors.New("refresh token is required")
)

type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type UpdateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// TaskUseCase manages the authenticated caller's tasks. userID is always
// the caller's identity, never client input.
type TaskUseCase interface {
	CreateTask(ctx context.Context, userID string, req CreateTaskRequest) (*entity.Task, error)
	// ListTasks returns ownerID's active tasks, newest first. It fails with
	// ErrForbidden unless ownerID is the caller.
	ListTasks(ctx context.Context, userID, ownerID string) ([]*entity.Task, error)
	UpdateTask(ctx context.Context, userID, taskID string, req UpdateTaskRequest) (*entity.Task, error)
	CompleteTask(ctx context.Context, userID, taskID string) error
	DeleteTask(ctx context.Context, userID, taskID string) error
}

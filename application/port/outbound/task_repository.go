package outbound

import (
	"context"
	"errors"

	"github.com/fixora/tasklist/domain/entity"
)

var ErrTaskNotFound = errors.New("task not found")

// TaskRepository persists tasks. Delete is never physical; callers flip
// IsActive through Update.
type TaskRepository interface {
	Create(ctx context.Context, task *entity.Task) error

	// FindByID returns ErrTaskNotFound for unknown ids, active or not.
	FindByID(ctx context.Context, id string) (*entity.Task, error)

	// ListActiveByUser returns active tasks of userID, newest first.
	ListActiveByUser(ctx context.Context, userID string) ([]*entity.Task, error)

	// Update writes title, description, completion, activity and updated_at.
	Update(ctx context.Context, task *entity.Task) error
}

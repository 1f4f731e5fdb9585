package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/fixora/tasklist/application/port/outbound"
	"github.com/fixora/tasklist/domain/entity"
)

type TaskRepositoryAdapter struct {
	db *sql.DB
}

func NewTaskRepositoryAdapter(db *sql.DB) outbound.TaskRepository {
	return &TaskRepositoryAdapter{
		db: db,
	}
}

const taskColumns = `id, user_id, title, description, is_completed, created_at, updated_at, is_active`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row rowScanner) (*entity.Task, error) {
	var task entity.Task
	err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&task.Description,
		&task.IsCompleted,
		&task.CreatedAt,
		&task.UpdatedAt,
		&task.IsActive,
	)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepositoryAdapter) Create(ctx context.Context, task *entity.Task) error {
	if task == nil {
		return fmt.Errorf("task cannot be nil")
	}

	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		task.ID,
		task.UserID,
		task.Title,
		task.Description,
		task.IsCompleted,
		task.CreatedAt,
		task.UpdatedAt,
		task.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	return nil
}

func (r *TaskRepositoryAdapter) FindByID(ctx context.Context, id string) (*entity.Task, error) {
	// Ids are UUID columns; anything else cannot exist.
	if _, err := uuid.Parse(id); err != nil {
		return nil, outbound.ErrTaskNotFound
	}

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	task, err := scanTask(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, outbound.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task by ID: %w", err)
	}

	return task, nil
}

func (r *TaskRepositoryAdapter) ListActiveByUser(ctx context.Context, userID string) ([]*entity.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE user_id = $1 AND is_active = TRUE
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []*entity.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}

	return tasks, nil
}

// Update writes task over an active row only; a row soft deleted since it was
// loaded answers ErrTaskNotFound instead of being revived.
func (r *TaskRepositoryAdapter) Update(ctx context.Context, task *entity.Task) error {
	query := `
		UPDATE tasks
		SET title = $2, description = $3, is_completed = $4, is_active = $5, updated_at = $6
		WHERE id = $1 AND is_active = TRUE
	`

	result, err := r.db.ExecContext(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		task.IsCompleted,
		task.IsActive,
		task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return outbound.ErrTaskNotFound
	}

	return nil
}

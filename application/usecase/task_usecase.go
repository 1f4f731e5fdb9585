package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/fixora/tasklist/application/port/inbound"
	"github.com/fixora/tasklist/application/port/outbound"
	"github.com/fixora/tasklist/domain/entity"
	"github.com/fixora/tasklist/infrastructure/service/logger"
)

type TaskUseCase struct {
	taskRepository outbound.TaskRepository
	logger         logger.Logger
}

func NewTaskUseCase(taskRepo outbound.TaskRepository, log logger.Logger) inbound.TaskUseCase {
	return &TaskUseCase{
		taskRepository: taskRepo,
		logger:         log,
	}
}

func (uc *TaskUseCase) CreateTask(ctx context.Context, userID string, req inbound.CreateTaskRequest) (*entity.Task, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, inbound.ErrInvalidTaskTitle
	}

	task := entity.NewTask(uuid.NewString(), userID, req.Title, req.Description)
	if err := uc.taskRepository.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	uc.logger.Info(ctx, "Task created", map[string]interface{}{
		"task_id": task.ID,
		"user_id": userID,
	})

	return task, nil
}

func (uc *TaskUseCase) ListTasks(ctx context.Context, userID, ownerID string) ([]*entity.Task, error) {
	if ownerID != userID {
		logger.LogSecurityEvent(ctx, uc.logger, "foreign_task_list", "LOW", map[string]interface{}{
			"user_id":  userID,
			"owner_id": ownerID,
		})
		return nil, inbound.ErrForbidden
	}

	tasks, err := uc.taskRepository.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	uc.logger.Debug(ctx, "Tasks listed", map[string]interface{}{
		"user_id": userID,
		"count":   len(tasks),
	})

	return tasks, nil
}

func (uc *TaskUseCase) UpdateTask(ctx context.Context, userID, taskID string, req inbound.UpdateTaskRequest) (*entity.Task, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, inbound.ErrInvalidTaskTitle
	}

	task, err := uc.ownedTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	task.Update(req.Title, req.Description)
	if err := uc.save(ctx, task); err != nil {
		return nil, err
	}

	return task, nil
}

func (uc *TaskUseCase) CompleteTask(ctx context.Context, userID, taskID string) error {
	task, err := uc.ownedTask(ctx, userID, taskID)
	if err != nil {
		return err
	}

	task.Complete()
	return uc.save(ctx, task)
}

func (uc *TaskUseCase) DeleteTask(ctx context.Context, userID, taskID string) error {
	task, err := uc.ownedTask(ctx, userID, taskID)
	if err != nil {
		return err
	}

	task.Delete()
	if err := uc.save(ctx, task); err != nil {
		return err
	}

	uc.logger.Info(ctx, "Task deleted (soft delete)", map[string]interface{}{
		"task_id": taskID,
		"user_id": userID,
	})

	return nil
}

// ownedTask loads taskID and hides it unless userID owns it and it is active.
// Foreign tasks answer ErrTaskNotFound so ids of other users do not leak.
func (uc *TaskUseCase) ownedTask(ctx context.Context, userID, taskID string) (*entity.Task, error) {
	task, err := uc.taskRepository.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, outbound.ErrTaskNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if !task.IsVisibleTo(userID) {
		if task.IsActive {
			logger.LogSecurityEvent(ctx, uc.logger, "foreign_task_access", "LOW", map[string]interface{}{
				"task_id": taskID,
				"user_id": userID,
			})
		}
		return nil, outbound.ErrTaskNotFound
	}

	return task, nil
}

func (uc *TaskUseCase) save(ctx context.Context, task *entity.Task) error {
	if err := uc.taskRepository.Update(ctx, task); err != nil {
		if errors.Is(err, outbound.ErrTaskNotFound) {
			return err
		}
		return fmt.Errorf("failed to update task: %w", err)
	}
	return nil
}

package entity

import (
	"strings"
	"time"
)

// Task is a to-do item owned by a single user. Deletion is soft: IsActive
// flips to false and the row stays.
type Task struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	IsCompleted bool      `json:"isCompleted"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	IsActive    bool      `json:"isActive"`
}

func NewTask(id, userID, title, description string) *Task {
	now := time.Now().UTC()
	return &Task{
		ID:          id,
		UserID:      userID,
		Title:       strings.TrimSpace(title),
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
		IsActive:    true,
	}
}

func (t *Task) Complete() {
	t.IsCompleted = true
	t.touch()
}

func (t *Task) Update(title, description string) {
	t.Title = strings.TrimSpace(title)
	t.Description = description
	t.touch()
}

func (t *Task) Delete() {
	t.IsActive = false
	t.touch()
}

// IsVisibleTo reports whether userID may read or change the task.
func (t *Task) IsVisibleTo(userID string) bool {
	return t.IsActive && t.UserID == userID
}

func (t *Task) touch() {
	t.UpdatedAt = time.Now().UTC()
}

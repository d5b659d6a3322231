package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TaskStore defines persistence operations for tasks. Every operation is
// scoped to the owning user; a task belonging to someone else behaves as
// if it does not exist.
type TaskStore interface {
	Create(ctx context.Context, task Task) (Task, error)
	GetByID(ctx context.Context, id, userID uuid.UUID) (Task, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Task, error)
	Update(ctx context.Context, task Task) (Task, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
}

// Task is a user-owned todo item with zero or more attachment references.
// Attachment bytes live in object storage; only keys are recorded here.
type Task struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"userId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Done        bool      `json:"done"`
	Attachments []string  `json:"attachments"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

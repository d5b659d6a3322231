package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/olopez/tasknest/internal/logger"
	"github.com/olopez/tasknest/internal/model"
)

// Attachment is an incoming file to be stored alongside a task or user.
type Attachment struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// TaskUpdate carries the mutable task fields. Nil means "leave as is".
type TaskUpdate struct {
	Title       *string
	Description *string
	Done        *bool
}

// Task manages user-owned tasks and their attachment objects.
type Task struct {
	taskStore model.TaskStore
	storage   model.Storage
	logger    *logger.Logger
}

func NewTask(taskStore model.TaskStore, storage model.Storage, logger *logger.Logger) *Task {
	return &Task{
		taskStore: taskStore,
		storage:   storage,
		logger:    logger,
	}
}

// Create stores the attachments in object storage and records the task
// with their keys. If any upload fails, objects stored so far are
// removed again and the task is not created.
func (t *Task) Create(ctx context.Context, userID uuid.UUID, title, description string, attachments []Attachment) (model.Task, error) {
	t.logger.Debug("Task service: creating task",
		"user_id", userID,
		"attachments", len(attachments))

	taskID := uuid.New()

	keys := make([]string, 0, len(attachments))
	for _, attachment := range attachments {
		key := attachmentKey(taskID, attachment.Filename)
		if err := t.storage.Upload(ctx, key, attachment.Reader, attachment.Size, attachment.ContentType); err != nil {
			t.logger.Error("Task service: failed to upload attachment",
				"user_id", userID,
				"key", key,
				"error", err.Error())
			t.removeObjects(ctx, keys)
			return model.Task{}, fmt.Errorf("failed to upload attachment: %w", err)
		}
		keys = append(keys, key)
	}

	task := model.Task{
		ID:          taskID,
		UserID:      userID,
		Title:       title,
		Description: description,
		Attachments: keys,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	task, err := t.taskStore.Create(ctx, task)
	if err != nil {
		t.logger.Error("Task service: failed to create task",
			"user_id", userID,
			"error", err.Error())
		t.removeObjects(ctx, keys)
		return model.Task{}, fmt.Errorf("failed to create task: %w", err)
	}

	t.logger.Info("Task service: task created",
		"task_id", task.ID,
		"user_id", userID)

	return task, nil
}

// List returns all tasks owned by the user.
func (t *Task) List(ctx context.Context, userID uuid.UUID) ([]model.Task, error) {
	tasks, err := t.taskStore.ListByUser(ctx, userID)
	if err != nil {
		t.logger.Error("Task service: failed to list tasks",
			"user_id", userID,
			"error", err.Error())
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// Get returns the task if it exists and belongs to the user.
func (t *Task) Get(ctx context.Context, id, userID uuid.UUID) (model.Task, error) {
	task, err := t.taskStore.GetByID(ctx, id, userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.Task{}, model.ErrNotFound
		}
		t.logger.Error("Task service: failed to get task",
			"task_id", id,
			"user_id", userID,
			"error", err.Error())
		return model.Task{}, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

// Update applies the given changes to the user's task.
func (t *Task) Update(ctx context.Context, id, userID uuid.UUID, update TaskUpdate) (model.Task, error) {
	task, err := t.Get(ctx, id, userID)
	if err != nil {
		return model.Task{}, err
	}

	if update.Title != nil {
		task.Title = *update.Title
	}
	if update.Description != nil {
		task.Description = *update.Description
	}
	if update.Done != nil {
		task.Done = *update.Done
	}

	task, err = t.taskStore.Update(ctx, task)
	if err != nil {
		t.logger.Error("Task service: failed to update task",
			"task_id", id,
			"user_id", userID,
			"error", err.Error())
		return model.Task{}, fmt.Errorf("failed to update task: %w", err)
	}

	t.logger.Info("Task service: task updated",
		"task_id", id,
		"user_id", userID)

	return task, nil
}

// Delete removes the user's task and its attachment objects. Failures to
// remove individual objects are logged, the record is deleted regardless.
func (t *Task) Delete(ctx context.Context, id, userID uuid.UUID) error {
	task, err := t.Get(ctx, id, userID)
	if err != nil {
		return err
	}

	if err := t.taskStore.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.ErrNotFound
		}
		t.logger.Error("Task service: failed to delete task",
			"task_id", id,
			"user_id", userID,
			"error", err.Error())
		return fmt.Errorf("failed to delete task: %w", err)
	}

	t.removeObjects(ctx, task.Attachments)

	t.logger.Info("Task service: task deleted",
		"task_id", id,
		"user_id", userID)

	return nil
}

func (t *Task) removeObjects(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := t.storage.Delete(ctx, key); err != nil {
			t.logger.Error("Task service: failed to delete object",
				"key", key,
				"error", err.Error())
		}
	}
}

func attachmentKey(taskID uuid.UUID, filename string) string {
	return fmt.Sprintf("tasks/%s/%s%s", taskID, uuid.New(), filepath.Ext(filename))
}

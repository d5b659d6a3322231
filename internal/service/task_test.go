package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/olopez/tasknest/internal/logger"
	"github.com/olopez/tasknest/internal/mocks"
	"github.com/olopez/tasknest/internal/model"
)

func TestTask_Create_Success(t *testing.T) {
	ctx := context.Background()
	taskStore := &mocks.TaskStore{}
	storage := &mocks.Storage{}
	userID := uuid.New()

	storage.On("Upload", mock.Anything, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "tasks/") && strings.HasSuffix(key, ".png")
	}), mock.Anything, int64(4), "image/png").Return(nil)
	taskStore.On("Create", mock.Anything, mock.MatchedBy(func(task model.Task) bool {
		return task.UserID == userID && task.Title == "buy milk" && len(task.Attachments) == 1
	})).Return(func(_ context.Context, task model.Task) (model.Task, error) { return task, nil })

	svc := NewTask(taskStore, storage, logger.New(0))

	task, err := svc.Create(ctx, userID, "buy milk", "2 liters", []Attachment{
		{Filename: "receipt.png", ContentType: "image/png", Size: 4, Reader: bytes.NewReader([]byte("data"))},
	})
	require.NoError(t, err)
	assert.Equal(t, "buy milk", task.Title)
	assert.Len(t, task.Attachments, 1)
	taskStore.AssertExpectations(t)
	storage.AssertExpectations(t)
}

func TestTask_Create_UploadFailureCleansUp(t *testing.T) {
	ctx := context.Background()
	taskStore := &mocks.TaskStore{}
	storage := &mocks.Storage{}
	userID := uuid.New()

	storage.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	storage.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("storage down")).Once()
	storage.On("Delete", mock.Anything, mock.Anything).Return(nil)

	svc := NewTask(taskStore, storage, logger.New(0))

	_, err := svc.Create(ctx, userID, "t", "", []Attachment{
		{Filename: "a.png", Reader: bytes.NewReader(nil)},
		{Filename: "b.png", Reader: bytes.NewReader(nil)},
	})
	require.Error(t, err)
	taskStore.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	storage.AssertCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestTask_Get_NotOwner(t *testing.T) {
	ctx := context.Background()
	taskStore := &mocks.TaskStore{}
	storage := &mocks.Storage{}
	id, userID := uuid.New(), uuid.New()

	taskStore.On("GetByID", mock.Anything, id, userID).Return(model.Task{}, model.ErrNotFound)

	svc := NewTask(taskStore, storage, logger.New(0))

	_, err := svc.Get(ctx, id, userID)
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestTask_List(t *testing.T) {
	ctx := context.Background()
	taskStore := &mocks.TaskStore{}
	storage := &mocks.Storage{}
	userID := uuid.New()

	taskStore.On("ListByUser", mock.Anything, userID).Return([]model.Task{{Title: "a"}, {Title: "b"}}, nil)

	svc := NewTask(taskStore, storage, logger.New(0))

	tasks, err := svc.List(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
}

func TestTask_Update(t *testing.T) {
	ctx := context.Background()
	taskStore := &mocks.TaskStore{}
	storage := &mocks.Storage{}
	id, userID := uuid.New(), uuid.New()

	stored := model.Task{ID: id, UserID: userID, Title: "old", Description: "keep", Done: false}
	taskStore.On("GetByID", mock.Anything, id, userID).Return(stored, nil)
	taskStore.On("Update", mock.Anything, mock.MatchedBy(func(task model.Task) bool {
		return task.Title == "new" && task.Description == "keep" && task.Done
	})).Return(func(_ context.Context, task model.Task) (model.Task, error) { return task, nil })

	svc := NewTask(taskStore, storage, logger.New(0))

	title := "new"
	done := true
	task, err := svc.Update(ctx, id, userID, TaskUpdate{Title: &title, Done: &done})
	require.NoError(t, err)
	assert.Equal(t, "new", task.Title)
	assert.Equal(t, "keep", task.Description)
	assert.True(t, task.Done)
}

func TestTask_Delete_RemovesAttachmentObjects(t *testing.T) {
	ctx := context.Background()
	taskStore := &mocks.TaskStore{}
	storage := &mocks.Storage{}
	id, userID := uuid.New(), uuid.New()

	stored := model.Task{ID: id, UserID: userID, Attachments: []string{"tasks/x/a.png", "tasks/x/b.png"}}
	taskStore.On("GetByID", mock.Anything, id, userID).Return(stored, nil)
	taskStore.On("Delete", mock.Anything, id, userID).Return(nil)
	storage.On("Delete", mock.Anything, "tasks/x/a.png").Return(nil)
	storage.On("Delete", mock.Anything, "tasks/x/b.png").Return(errors.New("gone already"))

	svc := NewTask(taskStore, storage, logger.New(0))

	require.NoError(t, svc.Delete(ctx, id, userID))
	storage.AssertExpectations(t)
}

func TestTask_Delete_NotFound(t *testing.T) {
	ctx := context.Background()
	taskStore := &mocks.TaskStore{}
	storage := &mocks.Storage{}
	id, userID := uuid.New(), uuid.New()

	taskStore.On("GetByID", mock.Anything, id, userID).Return(model.Task{}, model.ErrNotFound)

	svc := NewTask(taskStore, storage, logger.New(0))

	require.ErrorIs(t, svc.Delete(ctx, id, userID), model.ErrNotFound)
	taskStore.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}

package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/olopez/tasknest/internal/model"
)

// TaskStore is a testify mock for model.TaskStore.
type TaskStore struct {
	mock.Mock
}

func (m *TaskStore) Create(ctx context.Context, task model.Task) (model.Task, error) {
	args := m.Called(ctx, task)
	if rf, ok := args.Get(0).(func(context.Context, model.Task) (model.Task, error)); ok {
		return rf(ctx, task)
	}
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *TaskStore) GetByID(ctx context.Context, id, userID uuid.UUID) (model.Task, error) {
	args := m.Called(ctx, id, userID)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *TaskStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Task, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Task), args.Error(1)
}

func (m *TaskStore) Update(ctx context.Context, task model.Task) (model.Task, error) {
	args := m.Called(ctx, task)
	if rf, ok := args.Get(0).(func(context.Context, model.Task) (model.Task, error)); ok {
		return rf(ctx, task)
	}
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *TaskStore) Delete(ctx context.Context, id, userID uuid.UUID) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

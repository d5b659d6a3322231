package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// Dispatcher is a testify mock for model.Dispatcher.
type Dispatcher struct {
	mock.Mock
}

func (m *Dispatcher) SendVerificationEmail(ctx context.Context, to, username, token string) error {
	args := m.Called(ctx, to, username, token)
	return args.Error(0)
}

func (m *Dispatcher) SendPasswordResetEmail(ctx context.Context, to, username, token string) error {
	args := m.Called(ctx, to, username, token)
	return args.Error(0)
}

package mocks

import (
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/olopez/tasknest/internal/model"
)

// TokenManager is a testify mock for model.TokenManager.
type TokenManager struct {
	mock.Mock
}

func (m *TokenManager) GenerateSessionToken(user model.User) (string, error) {
	args := m.Called(user)
	return args.String(0), args.Error(1)
}

func (m *TokenManager) GenerateResetToken(userID uuid.UUID) (string, error) {
	args := m.Called(userID)
	return args.String(0), args.Error(1)
}

func (m *TokenManager) ParseSessionToken(token string) (model.SessionClaims, error) {
	args := m.Called(token)
	return args.Get(0).(model.SessionClaims), args.Error(1)
}

func (m *TokenManager) ParseResetToken(token string) (uuid.UUID, error) {
	args := m.Called(token)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

package usecase_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"go-todo-backend/internal/domain"
	"go-todo-backend/pkg/security"
)

func quietSecLog() *security.SecurityLogger {
	return security.NewSecurityLogger(zap.NewNop(), "test", "test")
}

type MockIdentity struct {
	mock.Mock
}

func (m *MockIdentity) SignInWithPassword(ctx context.Context, email, password string) (*domain.AuthSession, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuthSession), args.Error(1)
}

func (m *MockIdentity) SignUp(ctx context.Context, email, password string) (*domain.Identity, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Identity), args.Error(1)
}

func (m *MockIdentity) GetUser(ctx context.Context, token string) (*domain.Identity, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Identity), args.Error(1)
}

func (m *MockIdentity) SignOut(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

type MockIdentityAdmin struct {
	mock.Mock
}

func (m *MockIdentityAdmin) DeleteUser(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

type MockRevoker struct {
	mock.Mock
}

func (m *MockRevoker) Revoke(ctx context.Context, token string, until time.Time) error {
	return m.Called(ctx, token, until).Error(0)
}

func (m *MockRevoker) IsRevoked(ctx context.Context, token string) (bool, error) {
	args := m.Called(ctx, token)
	return args.Bool(0), args.Error(1)
}

type MockProfileRepo struct {
	mock.Mock
}

func (m *MockProfileRepo) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *MockProfileRepo) List(ctx context.Context) ([]domain.Profile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Profile), args.Error(1)
}

func (m *MockProfileRepo) SetBlocked(ctx context.Context, id string, blocked bool) (int64, error) {
	args := m.Called(ctx, id, blocked)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProfileRepo) SetRole(ctx context.Context, id string, role domain.Role) (int64, error) {
	args := m.Called(ctx, id, role)
	return args.Get(0).(int64), args.Error(1)
}

type MockDeletionRepo struct {
	mock.Mock
}

func (m *MockDeletionRepo) DeleteUserData(ctx context.Context, userID string) (domain.DeletedRows, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(domain.DeletedRows), args.Error(1)
}

type MockDeletion struct {
	mock.Mock
}

func (m *MockDeletion) DeleteUser(ctx context.Context, userID string) (*domain.DeletedRows, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DeletedRows), args.Error(1)
}

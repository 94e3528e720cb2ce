package v1_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"go-todo-backend/internal/domain"
)

type MockAuthUC struct{ mock.Mock }

func (m *MockAuthUC) Login(ctx context.Context, email, password string) (*domain.LoginResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoginResult), args.Error(1)
}

func (m *MockAuthUC) Signup(ctx context.Context, email, password string) (*domain.SignupResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SignupResult), args.Error(1)
}

func (m *MockAuthUC) Logout(ctx context.Context, sess *domain.Session) error {
	return m.Called(ctx, sess).Error(0)
}

func (m *MockAuthUC) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

type MockTaskUC struct{ mock.Mock }

func (m *MockTaskUC) Load(ctx context.Context, sess *domain.Session) (*domain.Dashboard, error) {
	args := m.Called(ctx, sess)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Dashboard), args.Error(1)
}

func (m *MockTaskUC) Add(ctx context.Context, sess *domain.Session, text string) (*domain.Dashboard, bool, error) {
	args := m.Called(ctx, sess, text)
	return args.Get(0).(*domain.Dashboard), args.Bool(1), args.Error(2)
}

func (m *MockTaskUC) ToggleStatus(ctx context.Context, sess *domain.Session, id int64) (*domain.Dashboard, error) {
	args := m.Called(ctx, sess, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Dashboard), args.Error(1)
}

func (m *MockTaskUC) Delete(ctx context.Context, sess *domain.Session, id int64) (*domain.Dashboard, int64, error) {
	args := m.Called(ctx, sess, id)
	return args.Get(0).(*domain.Dashboard), args.Get(1).(int64), args.Error(2)
}

func (m *MockTaskUC) Export(ctx context.Context, sess *domain.Session) ([]byte, string, error) {
	args := m.Called(ctx, sess)
	return args.Get(0).([]byte), args.String(1), args.Error(2)
}

type MockAdminUC struct{ mock.Mock }

func (m *MockAdminUC) users(args mock.Arguments) ([]domain.Profile, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Profile), args.Error(1)
}

func (m *MockAdminUC) ListUsers(ctx context.Context, actor *domain.Profile) ([]domain.Profile, error) {
	return m.users(m.Called(ctx, actor))
}

func (m *MockAdminUC) ToggleBlock(ctx context.Context, actor *domain.Profile, id string) ([]domain.Profile, error) {
	return m.users(m.Called(ctx, actor, id))
}

func (m *MockAdminUC) Promote(ctx context.Context, actor *domain.Profile, id string) ([]domain.Profile, error) {
	return m.users(m.Called(ctx, actor, id))
}

func (m *MockAdminUC) HardDelete(ctx context.Context, actor *domain.Profile, id string) ([]domain.Profile, error) {
	return m.users(m.Called(ctx, actor, id))
}

type MockDeletionUC struct{ mock.Mock }

func (m *MockDeletionUC) DeleteUser(ctx context.Context, id string) (*domain.DeletedRows, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DeletedRows), args.Error(1)
}

type healthFunc func(ctx context.Context) domain.HealthReport

func (f healthFunc) Check(ctx context.Context) domain.HealthReport { return f(ctx) }

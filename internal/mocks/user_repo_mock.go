package mocks

import (
	"context"
	"time"

	"profile-service/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of core.UserRepository
type MockUserRepository struct {
	mock.Mock
}

// Create mocks the Create method
func (m *MockUserRepository) Create(ctx context.Context, firstName, lastName, username, email, passwordHash string) (string, error) {
	args := m.Called(ctx, firstName, lastName, username, email, passwordHash)
	return args.String(0), args.Error(1)
}

// FindByEmail mocks the email lookup
func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// FindByID mocks the FindByID method
func (m *MockUserRepository) FindByID(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) ExistsEmailForOtherUser(ctx context.Context, email, excludingUserID string) (bool, error) {
	args := m.Called(ctx, email, excludingUserID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, userID, firstName, lastName, email, passwordHash string) error {
	return m.Called(ctx, userID, firstName, lastName, email, passwordHash).Error(0)
}

func (m *MockUserRepository) DeleteByID(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockUserRepository) SetPhotoURL(ctx context.Context, userID string, url *string) error {
	return m.Called(ctx, userID, url).Error(0)
}

func (m *MockUserRepository) GetPhotoURL(ctx context.Context, userID string) (*string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*string), args.Error(1)
}

func (m *MockUserRepository) Now(ctx context.Context) (time.Time, error) {
	args := m.Called(ctx)
	return args.Get(0).(time.Time), args.Error(1)
}

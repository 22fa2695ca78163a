package mocks

import (
	"context"
	"io"
	"time"

	"profile-service/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockUserService is a mock implementation of core.UserService
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, req models.RegisterRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *MockUserService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LoginResponse), args.Error(1)
}

func (m *MockUserService) GetProfile(ctx context.Context, userID string) (*models.PublicUser, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PublicUser), args.Error(1)
}

func (m *MockUserService) UpdateProfile(ctx context.Context, userID string, req models.UpdateProfileRequest) error {
	return m.Called(ctx, userID, req).Error(0)
}

func (m *MockUserService) DeleteAccount(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

// MockPhotoService is a mock implementation of core.PhotoService
type MockPhotoService struct {
	mock.Mock
}

// Replace drains r so tests can assert on what the handler streamed.
func (m *MockPhotoService) Replace(ctx context.Context, userID, originalName string, r io.Reader) (string, error) {
	body, _ := io.ReadAll(r)
	args := m.Called(ctx, userID, originalName, body)
	return args.String(0), args.Error(1)
}

func (m *MockPhotoService) Remove(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockPhotoService) Discard(ctx context.Context, url *string) {
	m.Called(ctx, url)
}

// MockTokenService is a mock implementation of core.TokenService
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) Issue(userID string) (string, time.Time, error) {
	args := m.Called(userID)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockTokenService) Verify(token string) (string, error) {
	args := m.Called(token)
	return args.String(0), args.Error(1)
}

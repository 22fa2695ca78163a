package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"
)

// MockPhotoStorage is a mock implementation of core.PhotoStorage
type MockPhotoStorage struct {
	mock.Mock
}

func (m *MockPhotoStorage) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	args := m.Called(ctx, name, r)
	return args.String(0), args.Error(1)
}

func (m *MockPhotoStorage) Delete(ctx context.Context, url string) error {
	return m.Called(ctx, url).Error(0)
}

package mocks

import (
	"io"

	"github.com/stretchr/testify/mock"
	"github.com/welldanyogia/estate-intake-backend/internal/models"
)

// MockFileStorage implements storage.FileStorage
type MockFileStorage struct {
	mock.Mock
}

// SaveUpload stores an uploaded file
func (m *MockFileStorage) SaveUpload(filename string, content io.Reader) (*models.Attachment, error) {
	args := m.Called(filename, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Attachment), args.Error(1)
}

// Get retrieves a file by its path
func (m *MockFileStorage) Get(filePath string) (io.ReadCloser, error) {
	args := m.Called(filePath)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

// Delete removes a file by its path
func (m *MockFileStorage) Delete(filePath string) error {
	args := m.Called(filePath)
	return args.Error(0)
}

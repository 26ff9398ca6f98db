package handlers

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/welldanyogia/estate-intake-backend/internal/form"
	"github.com/welldanyogia/estate-intake-backend/internal/models"
	"github.com/welldanyogia/estate-intake-backend/internal/services"
)

// MockIntakeService is a mock implementation of services.IntakeService.
// SubmitViewing drains the upload so tests can assert on its content.
type MockIntakeService struct {
	mock.Mock
	uploaded []byte
}

func (m *MockIntakeService) Listings(ctx context.Context) ([]models.Property, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Property), args.Error(1)
}

func (m *MockIntakeService) ViewableListings(ctx context.Context) ([]models.Property, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Property), args.Error(1)
}

func (m *MockIntakeService) SubmitOffer(ctx context.Context, p form.Payload) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockIntakeService) SubmitViewing(ctx context.Context, p form.Payload, upload *services.Upload) error {
	if upload != nil {
		m.uploaded, _ = io.ReadAll(upload.Content)
	}
	args := m.Called(ctx, p, upload)
	return args.Error(0)
}

func (m *MockIntakeService) SubmitNDA(ctx context.Context, p form.Payload) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

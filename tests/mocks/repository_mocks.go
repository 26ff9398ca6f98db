package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/welldanyogia/estate-intake-backend/internal/models"
)

// MockSubmissionRepository implements repository.SubmissionRepository
type MockSubmissionRepository struct {
	mock.Mock
}

func (m *MockSubmissionRepository) AppendOffer(ctx context.Context, record *models.OfferRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockSubmissionRepository) AppendViewing(ctx context.Context, record *models.ViewingRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockSubmissionRepository) AppendNDA(ctx context.Context, record *models.NDARecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

// MockListingStore implements listing.ListingStore
type MockListingStore struct {
	mock.Mock
}

func (m *MockListingStore) Fetch(ctx context.Context) ([]models.Property, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Property), args.Error(1)
}

package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/tts885/musubisuite/internal/domain"
)

// MockProviderStore is a mock implementation of port.ProviderStore.
type MockProviderStore struct {
	mock.Mock
}

func (m *MockProviderStore) Create(ctx context.Context, p *domain.AIProvider) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProviderStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.AIProvider, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AIProvider), args.Error(1)
}

func (m *MockProviderStore) GetByName(ctx context.Context, name string) (*domain.AIProvider, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AIProvider), args.Error(1)
}

func (m *MockProviderStore) GetActiveDefault(ctx context.Context) (*domain.AIProvider, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AIProvider), args.Error(1)
}

func (m *MockProviderStore) List(ctx context.Context) ([]domain.AIProvider, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AIProvider), args.Error(1)
}

func (m *MockProviderStore) Update(ctx context.Context, p *domain.AIProvider) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProviderStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProviderStore) SetDefault(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

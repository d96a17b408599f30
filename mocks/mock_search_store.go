package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/tts885/musubisuite/internal/domain"
)

// MockSearchStore is a mock implementation of port.SearchStore.
type MockSearchStore struct {
	mock.Mock
}

func (m *MockSearchStore) Create(ctx context.Context, e *domain.SearchEngine) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockSearchStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.SearchEngine, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SearchEngine), args.Error(1)
}

func (m *MockSearchStore) GetActiveDefault(ctx context.Context) (*domain.SearchEngine, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SearchEngine), args.Error(1)
}

func (m *MockSearchStore) List(ctx context.Context) ([]domain.SearchEngine, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SearchEngine), args.Error(1)
}

func (m *MockSearchStore) Update(ctx context.Context, e *domain.SearchEngine) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockSearchStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSearchStore) SetDefault(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

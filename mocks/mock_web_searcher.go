package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/tts885/musubisuite/internal/port"
)

// MockWebSearcher is a mock implementation of port.WebSearcher.
type MockWebSearcher struct {
	mock.Mock
}

func (m *MockWebSearcher) Search(ctx context.Context, query string) ([]port.SearchResult, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]port.SearchResult), args.Error(1)
}

func (m *MockWebSearcher) SearchCompanyInfo(ctx context.Context, companyName string) ([]port.SearchResult, error) {
	args := m.Called(ctx, companyName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]port.SearchResult), args.Error(1)
}

package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/tts885/musubisuite/internal/domain"
	"github.com/tts885/musubisuite/internal/port"
)

// MockTextGenerator is a mock implementation of port.TextGenerator.
type MockTextGenerator struct {
	mock.Mock
}

func (m *MockTextGenerator) ResolveProvider(ctx context.Context, ref port.ProviderRef) (*domain.AIProvider, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AIProvider), args.Error(1)
}

func (m *MockTextGenerator) Generate(ctx context.Context, ref port.ProviderRef, req port.GenerateRequest) (string, error) {
	args := m.Called(ctx, ref, req)
	return args.String(0), args.Error(1)
}

func (m *MockTextGenerator) GenerateStream(ctx context.Context, ref port.ProviderRef, req port.GenerateRequest) (port.ChunkStream, error) {
	args := m.Called(ctx, ref, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(port.ChunkStream), args.Error(1)
}

func (m *MockTextGenerator) GenerateMultimodal(ctx context.Context, ref port.ProviderRef, req port.GenerateRequest) (string, error) {
	args := m.Called(ctx, ref, req)
	return args.String(0), args.Error(1)
}

// StaticChunkStream replays fixed chunks, then ends with the configured
// terminal error (io.EOF when nil).
type StaticChunkStream struct {
	Chunks   []string
	Terminal error

	pos    int
	Closed bool
}

func (s *StaticChunkStream) Recv() (string, error) {
	if s.pos < len(s.Chunks) {
		chunk := s.Chunks[s.pos]
		s.pos++
		return chunk, nil
	}
	if s.Terminal != nil {
		return "", s.Terminal
	}
	return "", io.EOF
}

func (s *StaticChunkStream) Close() error {
	s.Closed = true
	return nil
}

package llm

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tts885/musubisuite/internal/domain"
	"github.com/tts885/musubisuite/internal/port"
	"github.com/tts885/musubisuite/mocks"
)

// fakeAdapter replays canned chunks and records the params it was called with.
type fakeAdapter struct {
	chunks []string
	err    error
	got    Params
}

func (f *fakeAdapter) Stream(ctx context.Context, p Params) (port.ChunkStream, error) {
	f.got = p
	s := NewStream(nil, nil)
	go func() {
		defer s.Finish()
		for _, c := range f.chunks {
			if !s.Emit(c) {
				return
			}
		}
		if f.err != nil {
			s.Fail(f.err)
		}
	}()
	return s, nil
}

func (f *fakeAdapter) GenerateVision(ctx context.Context, p Params) (string, error) {
	f.got = p
	var out string
	for _, c := range f.chunks {
		out += c
	}
	return out, f.err
}

func installAdapter(t *testing.T, kind domain.ProviderKind, a Adapter) {
	t.Helper()
	prev, had := adapters[kind]
	adapters[kind] = a
	t.Cleanup(func() {
		if had {
			adapters[kind] = prev
		} else {
			delete(adapters, kind)
		}
	})
}

func testProvider() *domain.AIProvider {
	return &domain.AIProvider{
		Name:            "main",
		Kind:            domain.ProviderOpenAI,
		ModelName:       "gpt-4o",
		MaxTokens:       1000,
		Temperature:     0.7,
		APIKeyEncrypted: "sk-test",
		IsActive:        true,
		IsDefault:       true,
	}
}

func newTestGateway(store port.ProviderStore) *Gateway {
	return NewGateway(store, mocks.PassthroughCipher{}, 0)
}

func TestGateway_GenerateConcatenatesStream(t *testing.T) {
	adapter := &fakeAdapter{chunks: []string{"hello", " ", "world"}}
	installAdapter(t, domain.ProviderOpenAI, adapter)

	store := new(mocks.MockProviderStore)
	store.On("GetActiveDefault", mock.Anything).Return(testProvider(), nil)

	g := newTestGateway(store)
	text, err := g.Generate(context.Background(), port.ProviderRef{}, port.GenerateRequest{Prompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "hello world", text)
}

func TestGateway_GenerateStreamEarlyClose(t *testing.T) {
	adapter := &fakeAdapter{chunks: []string{"a", "b", "c", "d", "e"}}
	installAdapter(t, domain.ProviderOpenAI, adapter)

	store := new(mocks.MockProviderStore)
	store.On("GetActiveDefault", mock.Anything).Return(testProvider(), nil)

	g := newTestGateway(store)
	stream, err := g.GenerateStream(context.Background(), port.ProviderRef{}, port.GenerateRequest{Prompt: "hi"})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err := stream.Recv()
		require.NoError(t, err)
	}
	require.NoError(t, stream.Close())

	_, err = stream.Recv()
	assert.Equal(t, io.EOF, err)
}

func TestGateway_ParamsMergeRequestOverrides(t *testing.T) {
	adapter := &fakeAdapter{chunks: []string{"x"}}
	installAdapter(t, domain.ProviderOpenAI, adapter)

	store := new(mocks.MockProviderStore)
	store.On("GetActiveDefault", mock.Anything).Return(testProvider(), nil)

	g := newTestGateway(store)
	temp := 0.1
	_, err := g.Generate(context.Background(), port.ProviderRef{}, port.GenerateRequest{
		Prompt:      "hi",
		MaxTokens:   42,
		Temperature: &temp,
	})
	require.NoError(t, err)

	assert.Equal(t, 42, adapter.got.MaxTokens)
	assert.Equal(t, 0.1, adapter.got.Temperature)
	assert.Equal(t, "sk-test", adapter.got.APIKey)
	assert.Equal(t, defaultCallTimeout, adapter.got.Timeout)
}

func TestGateway_ParamsFallBackToProviderDefaults(t *testing.T) {
	adapter := &fakeAdapter{chunks: []string{"x"}}
	installAdapter(t, domain.ProviderOpenAI, adapter)

	store := new(mocks.MockProviderStore)
	store.On("GetActiveDefault", mock.Anything).Return(testProvider(), nil)

	g := newTestGateway(store)
	_, err := g.Generate(context.Background(), port.ProviderRef{}, port.GenerateRequest{Prompt: "hi"})
	require.NoError(t, err)

	assert.Equal(t, 1000, adapter.got.MaxTokens)
	assert.Equal(t, 0.7, adapter.got.Temperature)
}

func TestGateway_ResolveByNameAndID(t *testing.T) {
	provider := testProvider()
	store := new(mocks.MockProviderStore)
	store.On("GetByName", mock.Anything, "main").Return(provider, nil)

	g := newTestGateway(store)
	got, err := g.ResolveProvider(context.Background(), port.ProviderRef{Name: "main"})
	require.NoError(t, err)
	assert.Equal(t, provider, got)
	store.AssertExpectations(t)
}

func TestGateway_MissingCredential(t *testing.T) {
	provider := testProvider()
	provider.APIKeyEncrypted = ""
	store := new(mocks.MockProviderStore)
	store.On("GetActiveDefault", mock.Anything).Return(provider, nil)

	g := newTestGateway(store)
	_, err := g.Generate(context.Background(), port.ProviderRef{}, port.GenerateRequest{Prompt: "hi"})
	assert.ErrorIs(t, err, domain.ErrCredentialMissing)
}

func TestGateway_ProviderNotFound(t *testing.T) {
	store := new(mocks.MockProviderStore)
	store.On("GetActiveDefault", mock.Anything).Return(nil, domain.ErrProviderNotFound)

	g := newTestGateway(store)
	_, err := g.Generate(context.Background(), port.ProviderRef{}, port.GenerateRequest{Prompt: "hi"})
	assert.ErrorIs(t, err, domain.ErrProviderNotFound)
}

func TestGateway_UnregisteredKind(t *testing.T) {
	provider := testProvider()
	provider.Kind = domain.ProviderKind("nonexistent")
	store := new(mocks.MockProviderStore)
	store.On("GetActiveDefault", mock.Anything).Return(provider, nil)

	g := newTestGateway(store)
	_, err := g.Generate(context.Background(), port.ProviderRef{}, port.GenerateRequest{Prompt: "hi"})
	assert.ErrorIs(t, err, domain.ErrProviderNotFound)
}

func TestGateway_MultimodalRequiresImage(t *testing.T) {
	store := new(mocks.MockProviderStore)
	g := newTestGateway(store)

	_, err := g.GenerateMultimodal(context.Background(), port.ProviderRef{}, port.GenerateRequest{Prompt: "hi"})
	assert.ErrorIs(t, err, domain.ErrUnsupportedModality)
}

// textOnlyAdapter has no vision support.
type textOnlyAdapter struct{}

func (textOnlyAdapter) Stream(ctx context.Context, p Params) (port.ChunkStream, error) {
	s := NewStream(nil, nil)
	s.Finish()
	return s, nil
}

func TestGateway_MultimodalUnsupportedByAdapter(t *testing.T) {
	installAdapter(t, domain.ProviderOpenAI, textOnlyAdapter{})

	store := new(mocks.MockProviderStore)
	store.On("GetActiveDefault", mock.Anything).Return(testProvider(), nil)

	g := newTestGateway(store)
	_, err := g.GenerateMultimodal(context.Background(), port.ProviderRef{}, port.GenerateRequest{
		Prompt:    "hi",
		Image:     []byte{0x89},
		ImageMIME: "image/png",
	})
	assert.ErrorIs(t, err, domain.ErrUnsupportedModality)
}

func TestGateway_MultimodalDelegatesToVisionAdapter(t *testing.T) {
	adapter := &fakeAdapter{chunks: []string{"extracted text"}}
	installAdapter(t, domain.ProviderOpenAI, adapter)

	store := new(mocks.MockProviderStore)
	store.On("GetActiveDefault", mock.Anything).Return(testProvider(), nil)

	g := newTestGateway(store)
	text, err := g.GenerateMultimodal(context.Background(), port.ProviderRef{}, port.GenerateRequest{
		Prompt:    "read this",
		Image:     []byte{0x89, 0x50},
		ImageMIME: "image/png",
	})
	require.NoError(t, err)
	assert.Equal(t, "extracted text", text)
	assert.Equal(t, []byte{0x89, 0x50}, adapter.got.Image)
	assert.Equal(t, "image/png", adapter.got.ImageMIME)
}

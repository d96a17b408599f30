package llm

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/tts885/musubisuite/internal/domain"
	"github.com/tts885/musubisuite/internal/port"
)

const defaultCallTimeout = 50 * time.Second

// Gateway routes generation requests to the adapter for the resolved
// provider. It owns provider lookup, credential decryption and parameter
// merging; vendor wire protocols live in the adapter packages.
type Gateway struct {
	store       port.ProviderStore
	cipher      port.SecretCipher
	callTimeout time.Duration
}

func NewGateway(store port.ProviderStore, cipher port.SecretCipher, callTimeout time.Duration) *Gateway {
	if callTimeout <= 0 {
		callTimeout = defaultCallTimeout
	}
	return &Gateway{store: store, cipher: cipher, callTimeout: callTimeout}
}

// ResolveProvider finds the provider a reference points at: by id, by name,
// or the active default when the reference is empty.
func (g *Gateway) ResolveProvider(ctx context.Context, ref port.ProviderRef) (*domain.AIProvider, error) {
	switch {
	case ref.ID != nil:
		return g.store.GetByID(ctx, *ref.ID)
	case ref.Name != "":
		return g.store.GetByName(ctx, ref.Name)
	default:
		return g.store.GetActiveDefault(ctx)
	}
}

// Generate runs a full non-streaming generation. It drives the streaming path
// and concatenates the chunks, so both paths share one wire implementation.
func (g *Gateway) Generate(ctx context.Context, ref port.ProviderRef, req port.GenerateRequest) (string, error) {
	stream, err := g.GenerateStream(ctx, ref, req)
	if err != nil {
		return "", err
	}
	defer stream.Close()

	var sb strings.Builder
	for {
		text, err := stream.Recv()
		if err == io.EOF {
			return sb.String(), nil
		}
		if err != nil {
			return "", err
		}
		sb.WriteString(text)
	}
}

// GenerateStream resolves the provider and opens a lazy chunk stream against
// its vendor API.
func (g *Gateway) GenerateStream(ctx context.Context, ref port.ProviderRef, req port.GenerateRequest) (port.ChunkStream, error) {
	provider, key, err := g.resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	adapter, err := adapterFor(provider.Kind)
	if err != nil {
		return nil, err
	}
	log.Printf("Gateway.GenerateStream: provider=%s kind=%s model=%s", provider.Name, provider.Kind, provider.ModelName)
	return adapter.Stream(ctx, g.params(provider, key, req))
}

// GenerateMultimodal runs a single-shot prompt over text plus one image.
func (g *Gateway) GenerateMultimodal(ctx context.Context, ref port.ProviderRef, req port.GenerateRequest) (string, error) {
	if len(req.Image) == 0 {
		return "", fmt.Errorf("multimodal request without image data: %w", domain.ErrUnsupportedModality)
	}
	provider, key, err := g.resolve(ctx, ref)
	if err != nil {
		return "", err
	}
	adapter, err := adapterFor(provider.Kind)
	if err != nil {
		return "", err
	}
	vision, ok := adapter.(VisionAdapter)
	if !ok {
		return "", fmt.Errorf("provider kind %q has no image support: %w", provider.Kind, domain.ErrUnsupportedModality)
	}
	log.Printf("Gateway.GenerateMultimodal: provider=%s kind=%s model=%s image=%dB", provider.Name, provider.Kind, provider.ModelName, len(req.Image))
	return vision.GenerateVision(ctx, g.params(provider, key, req))
}

// resolve loads the provider and decrypts its credential. Providers without a
// stored key are unusable for calls.
func (g *Gateway) resolve(ctx context.Context, ref port.ProviderRef) (*domain.AIProvider, string, error) {
	provider, err := g.ResolveProvider(ctx, ref)
	if err != nil {
		return nil, "", err
	}
	if provider.APIKeyEncrypted == "" {
		return nil, "", fmt.Errorf("provider %q has no stored api key: %w", provider.Name, domain.ErrCredentialMissing)
	}
	key, err := g.cipher.Decrypt(provider.APIKeyEncrypted)
	if err != nil {
		return nil, "", fmt.Errorf("provider %q credential: %w", provider.Name, domain.ErrCredentialMissing)
	}
	if key == "" {
		return nil, "", fmt.Errorf("provider %q has no stored api key: %w", provider.Name, domain.ErrCredentialMissing)
	}
	return provider, key, nil
}

// params merges request overrides onto provider defaults.
func (g *Gateway) params(provider *domain.AIProvider, key string, req port.GenerateRequest) Params {
	p := Params{
		Provider:    provider,
		APIKey:      key,
		Prompt:      req.Prompt,
		Image:       req.Image,
		ImageMIME:   req.ImageMIME,
		MaxTokens:   provider.MaxTokens,
		Temperature: provider.Temperature,
		Timeout:     g.callTimeout,
	}
	if req.MaxTokens > 0 {
		p.MaxTokens = req.MaxTokens
	}
	if req.Temperature != nil {
		p.Temperature = *req.Temperature
	}
	if req.Timeout > 0 {
		p.Timeout = req.Timeout
	}
	return p
}

package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tts885/musubisuite/internal/domain"
)

// ProviderRef selects which AI provider services a call. The zero value
// resolves to the active default provider; ID takes precedence over Name.
type ProviderRef struct {
	ID   *uuid.UUID
	Name string
}

// GenerateRequest carries the data for one generation call. Zero-valued
// parameters fall back to the provider's stored defaults.
type GenerateRequest struct {
	Prompt      string
	Image       []byte
	ImageMIME   string
	MaxTokens   int
	Temperature *float64
	Timeout     time.Duration
}

// ChunkStream is a finite, single-pass sequence of generated text chunks.
// Recv returns io.EOF on normal completion. Close releases the underlying
// transport and may be called at any point to stop consumption early.
type ChunkStream interface {
	Recv() (string, error)
	Close() error
}

// TextGenerator abstracts the generation gateway for callers.
type TextGenerator interface {
	ResolveProvider(ctx context.Context, ref ProviderRef) (*domain.AIProvider, error)
	Generate(ctx context.Context, ref ProviderRef, req GenerateRequest) (string, error)
	GenerateStream(ctx context.Context, ref ProviderRef, req GenerateRequest) (ChunkStream, error)
	GenerateMultimodal(ctx context.Context, ref ProviderRef, req GenerateRequest) (string, error)
}

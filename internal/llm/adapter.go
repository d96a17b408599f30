package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/tts885/musubisuite/internal/domain"
	"github.com/tts885/musubisuite/internal/port"
)

// Params is the fully resolved input for one vendor call: the provider row,
// its decrypted key, and the merged generation parameters.
type Params struct {
	Provider    *domain.AIProvider
	APIKey      string
	Prompt      string
	Image       []byte
	ImageMIME   string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// Adapter speaks one vendor's wire protocol. Stream lazily produces text
// chunks; production stops when the returned stream is closed.
type Adapter interface {
	Stream(ctx context.Context, p Params) (port.ChunkStream, error)
}

// VisionAdapter is implemented by adapters whose vendor accepts image input.
type VisionAdapter interface {
	Adapter
	GenerateVision(ctx context.Context, p Params) (string, error)
}

var adapters = map[domain.ProviderKind]Adapter{}

// RegisterAdapter wires a vendor adapter under its provider kind. Called from
// adapter package init functions; not safe for concurrent use.
func RegisterAdapter(kind domain.ProviderKind, a Adapter) {
	if _, dup := adapters[kind]; dup {
		panic(fmt.Sprintf("llm: adapter already registered for kind %q", kind))
	}
	adapters[kind] = a
}

func adapterFor(kind domain.ProviderKind) (Adapter, error) {
	a, ok := adapters[kind]
	if !ok {
		return nil, fmt.Errorf("no adapter for provider kind %q: %w", kind, domain.ErrProviderNotFound)
	}
	return a, nil
}

package port

import (
	"context"

	"github.com/google/uuid"

	"github.com/tts885/musubisuite/internal/domain"
)

// ProviderStore persists AI provider configs. Implementations must uphold the
// single-default invariant: a write that marks a config default demotes any
// previous default in the same transaction.
type ProviderStore interface {
	Create(ctx context.Context, p *domain.AIProvider) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.AIProvider, error)
	GetByName(ctx context.Context, name string) (*domain.AIProvider, error)
	GetActiveDefault(ctx context.Context) (*domain.AIProvider, error)
	List(ctx context.Context) ([]domain.AIProvider, error)
	Update(ctx context.Context, p *domain.AIProvider) error
	Delete(ctx context.Context, id uuid.UUID) error
	SetDefault(ctx context.Context, id uuid.UUID) error
}

// SearchStore persists search engine configs, with the same single-default rule.
type SearchStore interface {
	Create(ctx context.Context, e *domain.SearchEngine) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.SearchEngine, error)
	GetActiveDefault(ctx context.Context) (*domain.SearchEngine, error)
	List(ctx context.Context) ([]domain.SearchEngine, error)
	Update(ctx context.Context, e *domain.SearchEngine) error
	Delete(ctx context.Context, id uuid.UUID) error
	SetDefault(ctx context.Context, id uuid.UUID) error
}

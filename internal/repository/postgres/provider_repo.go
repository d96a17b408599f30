package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tts885/musubisuite/internal/domain"
	"github.com/tts885/musubisuite/internal/port"
)

type providerRepo struct {
	db *sqlx.DB
}

// NewProviderRepo creates a new PostgreSQL-backed ProviderStore.
func NewProviderRepo(db *sqlx.DB) port.ProviderStore {
	return &providerRepo{db: db}
}

func (r *providerRepo) Create(ctx context.Context, p *domain.AIProvider) error {
	p.ID = uuid.New()
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("providerRepo.Create: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// A new default demotes any previous default before the insert lands.
	if p.IsDefault {
		if err := demoteDefaults(ctx, tx, "ai_providers", p.ID); err != nil {
			return fmt.Errorf("providerRepo.Create: %w", err)
		}
	}

	query := `INSERT INTO ai_providers
		(id, name, kind, endpoint, api_version, deployment_name, organization_id,
		 model_name, max_tokens, temperature, api_key_encrypted, is_active, is_default,
		 created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err = tx.ExecContext(ctx, query,
		p.ID, p.Name, p.Kind, p.Endpoint, p.APIVersion, p.DeploymentName, p.OrganizationID,
		p.ModelName, p.MaxTokens, p.Temperature, p.APIKeyEncrypted, p.IsActive, p.IsDefault,
		p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return domain.ErrDuplicateName
		}
		return fmt.Errorf("providerRepo.Create: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("providerRepo.Create: commit: %w", err)
	}
	return nil
}

func (r *providerRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.AIProvider, error) {
	var p domain.AIProvider
	err := r.db.GetContext(ctx, &p, "SELECT * FROM ai_providers WHERE id = $1 AND is_active", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProviderNotFound
		}
		return nil, fmt.Errorf("providerRepo.GetByID: %w", err)
	}
	return &p, nil
}

func (r *providerRepo) GetByName(ctx context.Context, name string) (*domain.AIProvider, error) {
	var p domain.AIProvider
	err := r.db.GetContext(ctx, &p, "SELECT * FROM ai_providers WHERE name = $1 AND is_active", name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProviderNotFound
		}
		return nil, fmt.Errorf("providerRepo.GetByName: %w", err)
	}
	return &p, nil
}

func (r *providerRepo) GetActiveDefault(ctx context.Context) (*domain.AIProvider, error) {
	var p domain.AIProvider
	err := r.db.GetContext(ctx, &p, "SELECT * FROM ai_providers WHERE is_active AND is_default LIMIT 1")
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProviderNotFound
		}
		return nil, fmt.Errorf("providerRepo.GetActiveDefault: %w", err)
	}
	return &p, nil
}

func (r *providerRepo) List(ctx context.Context) ([]domain.AIProvider, error) {
	var providers []domain.AIProvider
	err := r.db.SelectContext(ctx, &providers,
		"SELECT * FROM ai_providers ORDER BY is_default DESC, is_active DESC, name")
	if err != nil {
		return nil, fmt.Errorf("providerRepo.List: %w", err)
	}
	return providers, nil
}

func (r *providerRepo) Update(ctx context.Context, p *domain.AIProvider) error {
	p.UpdatedAt = time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("providerRepo.Update: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if p.IsDefault {
		if err := demoteDefaults(ctx, tx, "ai_providers", p.ID); err != nil {
			return fmt.Errorf("providerRepo.Update: %w", err)
		}
	}

	query := `UPDATE ai_providers SET
		name = $2, kind = $3, endpoint = $4, api_version = $5, deployment_name = $6,
		organization_id = $7, model_name = $8, max_tokens = $9, temperature = $10,
		api_key_encrypted = $11, is_active = $12, is_default = $13, updated_at = $14
		WHERE id = $1`

	res, err := tx.ExecContext(ctx, query,
		p.ID, p.Name, p.Kind, p.Endpoint, p.APIVersion, p.DeploymentName,
		p.OrganizationID, p.ModelName, p.MaxTokens, p.Temperature,
		p.APIKeyEncrypted, p.IsActive, p.IsDefault, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("providerRepo.Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrProviderNotFound
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("providerRepo.Update: commit: %w", err)
	}
	return nil
}

func (r *providerRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM ai_providers WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("providerRepo.Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrProviderNotFound
	}
	return nil
}

func (r *providerRepo) SetDefault(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("providerRepo.SetDefault: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := demoteDefaults(ctx, tx, "ai_providers", id); err != nil {
		return fmt.Errorf("providerRepo.SetDefault: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		"UPDATE ai_providers SET is_default = true, updated_at = $2 WHERE id = $1 AND is_active",
		id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("providerRepo.SetDefault: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrProviderNotFound
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("providerRepo.SetDefault: commit: %w", err)
	}
	return nil
}

// demoteDefaults clears the default flag on every row except the given id.
func demoteDefaults(ctx context.Context, tx *sqlx.Tx, table string, keep uuid.UUID) error {
	query := fmt.Sprintf(
		"UPDATE %s SET is_default = false WHERE is_default AND id <> $1", table)
	if _, err := tx.ExecContext(ctx, query, keep); err != nil {
		return fmt.Errorf("demoting previous default: %w", err)
	}
	return nil
}

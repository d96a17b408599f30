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

type searchRepo struct {
	db *sqlx.DB
}

// NewSearchRepo creates a new PostgreSQL-backed SearchStore.
func NewSearchRepo(db *sqlx.DB) port.SearchStore {
	return &searchRepo{db: db}
}

func (r *searchRepo) Create(ctx context.Context, e *domain.SearchEngine) error {
	e.ID = uuid.New()
	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("searchRepo.Create: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if e.IsDefault {
		if err := demoteDefaults(ctx, tx, "search_engines", e.ID); err != nil {
			return fmt.Errorf("searchRepo.Create: %w", err)
		}
	}

	query := `INSERT INTO search_engines
		(id, name, kind, api_key_encrypted, search_engine_id, max_results,
		 is_active, is_default, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = tx.ExecContext(ctx, query,
		e.ID, e.Name, e.Kind, e.APIKeyEncrypted, e.SearchEngineID, e.MaxResults,
		e.IsActive, e.IsDefault, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return domain.ErrDuplicateName
		}
		return fmt.Errorf("searchRepo.Create: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("searchRepo.Create: commit: %w", err)
	}
	return nil
}

func (r *searchRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.SearchEngine, error) {
	var e domain.SearchEngine
	err := r.db.GetContext(ctx, &e, "SELECT * FROM search_engines WHERE id = $1 AND is_active", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSearchEngineNotFound
		}
		return nil, fmt.Errorf("searchRepo.GetByID: %w", err)
	}
	return &e, nil
}

func (r *searchRepo) GetActiveDefault(ctx context.Context) (*domain.SearchEngine, error) {
	var e domain.SearchEngine
	err := r.db.GetContext(ctx, &e, "SELECT * FROM search_engines WHERE is_active AND is_default LIMIT 1")
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSearchEngineNotFound
		}
		return nil, fmt.Errorf("searchRepo.GetActiveDefault: %w", err)
	}
	return &e, nil
}

func (r *searchRepo) List(ctx context.Context) ([]domain.SearchEngine, error) {
	var engines []domain.SearchEngine
	err := r.db.SelectContext(ctx, &engines,
		"SELECT * FROM search_engines ORDER BY is_default DESC, is_active DESC, name")
	if err != nil {
		return nil, fmt.Errorf("searchRepo.List: %w", err)
	}
	return engines, nil
}

func (r *searchRepo) Update(ctx context.Context, e *domain.SearchEngine) error {
	e.UpdatedAt = time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("searchRepo.Update: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if e.IsDefault {
		if err := demoteDefaults(ctx, tx, "search_engines", e.ID); err != nil {
			return fmt.Errorf("searchRepo.Update: %w", err)
		}
	}

	query := `UPDATE search_engines SET
		name = $2, kind = $3, api_key_encrypted = $4, search_engine_id = $5,
		max_results = $6, is_active = $7, is_default = $8, updated_at = $9
		WHERE id = $1`

	res, err := tx.ExecContext(ctx, query,
		e.ID, e.Name, e.Kind, e.APIKeyEncrypted, e.SearchEngineID,
		e.MaxResults, e.IsActive, e.IsDefault, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("searchRepo.Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrSearchEngineNotFound
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("searchRepo.Update: commit: %w", err)
	}
	return nil
}

func (r *searchRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM search_engines WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("searchRepo.Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrSearchEngineNotFound
	}
	return nil
}

func (r *searchRepo) SetDefault(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("searchRepo.SetDefault: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := demoteDefaults(ctx, tx, "search_engines", id); err != nil {
		return fmt.Errorf("searchRepo.SetDefault: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		"UPDATE search_engines SET is_default = true, updated_at = $2 WHERE id = $1 AND is_active",
		id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("searchRepo.SetDefault: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrSearchEngineNotFound
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("searchRepo.SetDefault: commit: %w", err)
	}
	return nil
}

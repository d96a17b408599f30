package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tts885/musubisuite/internal/domain"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

const demoteProvidersSQL = "UPDATE ai_providers SET is_default = false WHERE is_default AND id <> $1"

func TestProviderRepo_SetDefault_DemotesOthersInSameTx(t *testing.T) {
	db, mock := newMockDB(t)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(demoteProvidersSQL)).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE ai_providers SET is_default = true, updated_at = $2 WHERE id = $1 AND is_active")).
		WithArgs(id, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := NewProviderRepo(db)
	require.NoError(t, repo.SetDefault(context.Background(), id))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProviderRepo_SetDefault_InactiveTargetRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(demoteProvidersSQL)).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE ai_providers SET is_default = true")).
		WithArgs(id, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	repo := NewProviderRepo(db)
	err := repo.SetDefault(context.Background(), id)
	assert.ErrorIs(t, err, domain.ErrProviderNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProviderRepo_Create_DefaultDemotesOthers(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(demoteProvidersSQL)).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO ai_providers")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := NewProviderRepo(db)
	err := repo.Create(context.Background(), &domain.AIProvider{
		Name: "main", Kind: domain.ProviderOpenAI, ModelName: "gpt-4o",
		IsActive: true, IsDefault: true,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProviderRepo_Create_NonDefaultSkipsDemote(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO ai_providers")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := NewProviderRepo(db)
	err := repo.Create(context.Background(), &domain.AIProvider{
		Name: "secondary", Kind: domain.ProviderOpenAI, ModelName: "gpt-4o",
		IsActive: true,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProviderRepo_Update_DefaultDemotesOthers(t *testing.T) {
	db, mock := newMockDB(t)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(demoteProvidersSQL)).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE ai_providers SET")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := NewProviderRepo(db)
	err := repo.Update(context.Background(), &domain.AIProvider{
		ID: id, Name: "main", Kind: domain.ProviderOpenAI, ModelName: "gpt-4o",
		IsActive: true, IsDefault: true,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProviderRepo_Create_DuplicateName(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO ai_providers")).
		WillReturnError(errors.New(`ERROR: duplicate key value violates unique constraint "ai_providers_name_key"`))
	mock.ExpectRollback()

	repo := NewProviderRepo(db)
	err := repo.Create(context.Background(), &domain.AIProvider{
		Name: "main", Kind: domain.ProviderOpenAI, ModelName: "gpt-4o",
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateName)
}

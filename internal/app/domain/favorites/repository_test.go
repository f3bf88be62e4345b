package favorites

import (
	"context"
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/FACorreiaa/backpackor/internal/app/models"
)

func newMockRepo(t *testing.T) (*RepositoryImpl, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewRepository(mock, zap.NewNop()), mock
}

func TestAdd_IncrementsCount(t *testing.T) {
	repo, mock := newMockRepo(t)
	user := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO favorites")).
		WithArgs(user, int64(5)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(regexp.QuoteMeta("favorite_count = favorite_count + 1")).
		WithArgs(int64(5)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	added, err := repo.Add(context.Background(), user, 5)
	require.NoError(t, err)
	assert.True(t, added)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdd_AlreadyFavoriteLeavesCount(t *testing.T) {
	repo, mock := newMockRepo(t)
	user := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO favorites")).
		WithArgs(user, int64(5)).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))
	mock.ExpectRollback()

	added, err := repo.Add(context.Background(), user, 5)
	require.NoError(t, err)
	assert.False(t, added)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdd_UnknownPlace(t *testing.T) {
	repo, mock := newMockRepo(t)
	user := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO favorites")).
		WithArgs(user, int64(404)).
		WillReturnError(&pgconn.PgError{Code: foreignKeyViolation})
	mock.ExpectRollback()

	_, err := repo.Add(context.Background(), user, 404)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemove_DecrementsCount(t *testing.T) {
	repo, mock := newMockRepo(t)
	user := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM favorites")).
		WithArgs(user, int64(5)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(regexp.QuoteMeta("GREATEST(favorite_count - 1, 0)")).
		WithArgs(int64(5)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	removed, err := repo.Remove(context.Background(), user, 5)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsFavorite(t *testing.T) {
	repo, mock := newMockRepo(t)
	user := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs(user, int64(5)).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	fav, err := repo.IsFavorite(context.Background(), user, 5)
	require.NoError(t, err)
	assert.True(t, fav)
	assert.NoError(t, mock.ExpectationsWereMet())
}

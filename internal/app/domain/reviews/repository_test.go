package reviews

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
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

var reviewColumns = []string{"review_id", "place_id", "user_id", "rating", "content", "image_urls", "created_at"}

func TestCreate_RefreshesAggregates(t *testing.T) {
	repo, mock := newMockRepo(t)
	user := uuid.New()
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO reviews")).
		WithArgs(int64(3), user, 4, "Lovely view", []string{"https://cdn/a.jpg"}).
		WillReturnRows(pgxmock.NewRows([]string{"review_id", "created_at"}).AddRow(int64(11), now))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE places SET")).
		WithArgs(int64(3)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	rv, err := repo.Create(context.Background(), models.Review{
		PlaceID: 3, UserID: user, Rating: 4, Content: "Lovely view", ImageURLs: []string{"https://cdn/a.jpg"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(11), rv.ID)
	assert.Equal(t, now, rv.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_AggregateFailureRollsBack(t *testing.T) {
	repo, mock := newMockRepo(t)
	user := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO reviews")).
		WithArgs(int64(3), user, 5, "ok", []string{}).
		WillReturnRows(pgxmock.NewRows([]string{"review_id", "created_at"}).AddRow(int64(12), time.Now()))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE places SET")).
		WithArgs(int64(3)).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), models.Review{PlaceID: 3, UserID: user, Rating: 5, Content: "ok"})
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByPlace(t *testing.T) {
	repo, mock := newMockRepo(t)
	user := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM reviews")).
		WithArgs(int64(3)).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(12))
	mock.ExpectQuery(regexp.QuoteMeta("LIMIT $2 OFFSET $3")).
		WithArgs(int64(3), 5, 5).
		WillReturnRows(pgxmock.NewRows(reviewColumns).
			AddRow(int64(6), int64(3), user, 5, "great", []string{}, time.Now()).
			AddRow(int64(5), int64(3), user, 3, "fine", []string{"u"}, time.Now()))

	page, err := repo.ListByPlace(context.Background(), 3, 2, 5)
	require.NoError(t, err)
	assert.Equal(t, 12, page.Total)
	assert.Equal(t, 2, page.Page)
	require.Len(t, page.Reviews, 2)
	assert.Equal(t, int64(6), page.Reviews[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByPlace_EmptySkipsPageQuery(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM reviews")).
		WithArgs(int64(3)).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))

	page, err := repo.ListByPlace(context.Background(), 3, 0, 500)
	require.NoError(t, err)
	assert.Empty(t, page.Reviews)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, MaxPageSize, page.PageSize)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Delete(t *testing.T) {
	t.Run("refreshes the place", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("DELETE FROM reviews")).
			WithArgs(int64(9)).
			WillReturnRows(pgxmock.NewRows([]string{"place_id"}).AddRow(int64(3)))
		mock.ExpectExec(regexp.QuoteMeta("UPDATE places SET")).
			WithArgs(int64(3)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectCommit()

		require.NoError(t, repo.Delete(context.Background(), 9))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing review", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("DELETE FROM reviews")).
			WithArgs(int64(9)).
			WillReturnError(pgx.ErrNoRows)
		mock.ExpectRollback()

		assert.ErrorIs(t, repo.Delete(context.Background(), 9), models.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

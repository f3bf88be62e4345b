package planner

import (
	"context"
	"errors"
	"regexp"
	"testing"

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

func TestSavePlan_ExistingTripReplacesDetails(t *testing.T) {
	repo, mock := newMockRepo(t)
	ctx := context.Background()

	trip := models.TripPlan{ID: 42, Title: "Busan", StartDate: "2025-03-01", EndDate: "2025-03-02"}
	editor := NewEditor(trip.StartDate, trip.EndDate, nil)
	_, err := editor.AddPlace(1, testPlace(101, "P1"))
	require.NoError(t, err)
	_, err = editor.AddPlace(2, testPlace(102, "P2"))
	require.NoError(t, err)
	_, err = editor.AddPlace(2, testPlace(103, "P3"))
	require.NoError(t, err)
	details := editor.Details(trip.ID)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE trip_plans")).
		WithArgs("Busan", "2025-03-01", "2025-03-02", int64(42)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM trip_plan_details WHERE trip_id = $1")).
		WithArgs(int64(42)).
		WillReturnResult(pgxmock.NewResult("DELETE", 5))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO trip_plan_details (trip_id,day_number,visit_order,place_id) VALUES ($1,$2,$3,$4),($5,$6,$7,$8),($9,$10,$11,$12)")).
		WithArgs(
			int64(42), 1, 1, int64(101),
			int64(42), 2, 1, int64(102),
			int64(42), 2, 2, int64(103),
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 3))
	mock.ExpectCommit()

	id, err := repo.SavePlan(ctx, trip, details)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSavePlan_NewTripCapturesID(t *testing.T) {
	repo, mock := newMockRepo(t)
	ctx := context.Background()
	owner := uuid.New()

	trip := models.TripPlan{Title: "Jeju", StartDate: "2025-05-01", EndDate: "2025-05-01", UserID: &owner}
	details := []models.TripPlanDetail{{DayNumber: 1, VisitOrder: 1, PlaceID: 7}}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO trip_plans")).
		WithArgs("Jeju", "2025-05-01", "2025-05-01", &owner).
		WillReturnRows(pgxmock.NewRows([]string{"trip_id"}).AddRow(int64(9)))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM trip_plan_details")).
		WithArgs(int64(9)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO trip_plan_details")).
		WithArgs(int64(9), 1, 1, int64(7)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	id, err := repo.SavePlan(ctx, trip, details)
	require.NoError(t, err)
	assert.Equal(t, int64(9), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSavePlan_DetailInsertFailureRollsBack(t *testing.T) {
	repo, mock := newMockRepo(t)
	ctx := context.Background()

	trip := models.TripPlan{ID: 42, Title: "Busan", StartDate: "2025-03-01", EndDate: "2025-03-01"}
	details := []models.TripPlanDetail{{TripID: 42, DayNumber: 1, VisitOrder: 1, PlaceID: 101}}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE trip_plans")).
		WithArgs("Busan", "2025-03-01", "2025-03-01", int64(42)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM trip_plan_details")).
		WithArgs(int64(42)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO trip_plan_details")).
		WithArgs(int64(42), 1, 1, int64(101)).
		WillReturnError(errors.New("foreign key violation"))
	mock.ExpectRollback()

	_, err := repo.SavePlan(ctx, trip, details)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert trip details")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSavePlan_MissingTrip(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE trip_plans")).
		WithArgs("Gone", "2025-03-01", "2025-03-01", int64(5)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectRollback()

	_, err := repo.SavePlan(context.Background(),
		models.TripPlan{ID: 5, Title: "Gone", StartDate: "2025-03-01", EndDate: "2025-03-01"}, nil)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSavePlan_EmptyDetailsSkipsInsert(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE trip_plans")).
		WithArgs("Empty", "2025-03-01", "2025-03-01", int64(3)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM trip_plan_details")).
		WithArgs(int64(3)).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectCommit()

	id, err := repo.SavePlan(context.Background(),
		models.TripPlan{ID: 3, Title: "Empty", StartDate: "2025-03-01", EndDate: "2025-03-01"}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTrip_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM trip_plans WHERE trip_id = $1")).
		WithArgs(int64(77)).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetTrip(context.Background(), 77)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTripPlaces(t *testing.T) {
	repo, mock := newMockRepo(t)
	lat, lng := 35.1, 129.0

	mock.ExpectQuery(regexp.QuoteMeta("FROM trip_plan_details d")).
		WithArgs(int64(42)).
		WillReturnRows(pgxmock.NewRows([]string{
			"day_number", "visit_order", "place_id", "place_name", "place_address",
			"place_image", "latitude", "longitude", "average_rating",
		}).
			AddRow(1, 1, int64(101), "P1", "addr", "", &lat, &lng, 4.5).
			AddRow(2, 1, int64(102), "P2", "addr", "", (*float64)(nil), (*float64)(nil), 3.0))

	places, err := repo.GetTripPlaces(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, places, 2)
	assert.Equal(t, int64(101), places[0].PlaceID)
	require.NotNil(t, places[0].Latitude)
	assert.InDelta(t, 35.1, *places[0].Latitude, 1e-9)
	assert.Equal(t, 2, places[1].DayNumber)
	assert.Nil(t, places[1].Latitude)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteTrip(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM trip_plans WHERE trip_id = $1")).
		WithArgs(int64(42)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM trip_plans WHERE trip_id = $1")).
		WithArgs(int64(43)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	require.NoError(t, repo.DeleteTrip(context.Background(), 42))
	assert.ErrorIs(t, repo.DeleteTrip(context.Background(), 43), models.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

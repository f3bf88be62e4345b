package planner

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/FACorreiaa/backpackor/internal/app/models"
	database "github.com/FACorreiaa/backpackor/internal/db"
)

var _ Repository = (*RepositoryImpl)(nil)

// Repository persists trip headers and their detail rows.
type Repository interface {
	// SavePlan inserts the trip when trip.ID is zero, otherwise updates it in place,
	// then replaces every detail row of the trip. Runs in one transaction and
	// returns the trip id.
	SavePlan(ctx context.Context, trip models.TripPlan, details []models.TripPlanDetail) (int64, error)
	GetTrip(ctx context.Context, tripID int64) (models.TripPlan, error)
	GetTripPlaces(ctx context.Context, tripID int64) ([]models.PlannedPlace, error)
	ListUserTrips(ctx context.Context, userID uuid.UUID) ([]models.TripPlan, error)
	DeleteTrip(ctx context.Context, tripID int64) error
}

type RepositoryImpl struct {
	logger *zap.Logger
	pgpool database.Pool
}

func NewRepository(pgpool database.Pool, logger *zap.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		logger: logger,
		pgpool: pgpool,
	}
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func (r *RepositoryImpl) rollback(ctx context.Context, tx pgx.Tx) {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		r.logger.Error("Failed to rollback transaction", zap.Error(err))
	}
}

func (r *RepositoryImpl) SavePlan(ctx context.Context, trip models.TripPlan, details []models.TripPlanDetail) (int64, error) {
	tx, err := r.pgpool.Begin(ctx)
	if err != nil {
		r.logger.Error("Failed to begin transaction", zap.Error(err))
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}

	tripID := trip.ID
	if tripID == 0 {
		err = tx.QueryRow(ctx, `
			INSERT INTO trip_plans (title, start_date, end_date, user_id)
			VALUES ($1, $2::date, $3::date, $4)
			RETURNING trip_id`,
			trip.Title, trip.StartDate, trip.EndDate, trip.UserID,
		).Scan(&tripID)
		if err != nil {
			r.rollback(ctx, tx)
			r.logger.Error("Failed to insert trip", zap.Error(err))
			return 0, fmt.Errorf("failed to insert trip: %w", err)
		}
	} else {
		tag, err := tx.Exec(ctx, `
			UPDATE trip_plans
			SET title = $1, start_date = $2::date, end_date = $3::date, updated_at = NOW()
			WHERE trip_id = $4`,
			trip.Title, trip.StartDate, trip.EndDate, tripID,
		)
		if err != nil {
			r.rollback(ctx, tx)
			r.logger.Error("Failed to update trip", zap.Int64("trip_id", tripID), zap.Error(err))
			return 0, fmt.Errorf("failed to update trip: %w", err)
		}
		if tag.RowsAffected() == 0 {
			r.rollback(ctx, tx)
			return 0, fmt.Errorf("trip %d: %w", tripID, models.ErrNotFound)
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM trip_plan_details WHERE trip_id = $1`, tripID); err != nil {
		r.rollback(ctx, tx)
		r.logger.Error("Failed to clear trip details", zap.Int64("trip_id", tripID), zap.Error(err))
		return 0, fmt.Errorf("failed to clear trip details: %w", err)
	}

	if len(details) > 0 {
		insert := psql.Insert("trip_plan_details").Columns("trip_id", "day_number", "visit_order", "place_id")
		for _, d := range details {
			insert = insert.Values(tripID, d.DayNumber, d.VisitOrder, d.PlaceID)
		}
		query, args, err := insert.ToSql()
		if err != nil {
			r.rollback(ctx, tx)
			return 0, fmt.Errorf("failed to build detail insert: %w", err)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			r.rollback(ctx, tx)
			r.logger.Error("Failed to insert trip details",
				zap.Int64("trip_id", tripID), zap.Int("rows", len(details)), zap.Error(err))
			return 0, fmt.Errorf("failed to insert trip details: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.Error("Failed to commit trip save", zap.Int64("trip_id", tripID), zap.Error(err))
		return 0, fmt.Errorf("failed to commit trip save: %w", err)
	}
	return tripID, nil
}

const tripColumns = `trip_id, title, to_char(start_date, 'YYYY-MM-DD'), to_char(end_date, 'YYYY-MM-DD'),
	user_id, created_at, updated_at`

func scanTrip(row pgx.Row) (models.TripPlan, error) {
	var t models.TripPlan
	err := row.Scan(&t.ID, &t.Title, &t.StartDate, &t.EndDate, &t.UserID, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func (r *RepositoryImpl) GetTrip(ctx context.Context, tripID int64) (models.TripPlan, error) {
	trip, err := scanTrip(r.pgpool.QueryRow(ctx,
		`SELECT `+tripColumns+` FROM trip_plans WHERE trip_id = $1`, tripID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.TripPlan{}, fmt.Errorf("trip %d: %w", tripID, models.ErrNotFound)
		}
		r.logger.Error("Failed to get trip", zap.Int64("trip_id", tripID), zap.Error(err))
		return models.TripPlan{}, fmt.Errorf("failed to get trip: %w", err)
	}
	return trip, nil
}

// GetTripPlaces returns the trip's detail rows joined with their places,
// ordered by day and visit order.
func (r *RepositoryImpl) GetTripPlaces(ctx context.Context, tripID int64) ([]models.PlannedPlace, error) {
	rows, err := r.pgpool.Query(ctx, `
		SELECT d.day_number, d.visit_order, p.place_id, p.place_name, p.place_address,
		       p.place_image, p.latitude, p.longitude, p.average_rating::float8
		FROM trip_plan_details d
		JOIN places p ON p.place_id = d.place_id
		WHERE d.trip_id = $1
		ORDER BY d.day_number, d.visit_order`, tripID)
	if err != nil {
		r.logger.Error("Failed to get trip details", zap.Int64("trip_id", tripID), zap.Error(err))
		return nil, fmt.Errorf("failed to get trip details: %w", err)
	}
	defer rows.Close()

	var places []models.PlannedPlace
	for rows.Next() {
		var p models.PlannedPlace
		if err := rows.Scan(&p.DayNumber, &p.VisitOrder, &p.PlaceID, &p.Name, &p.Address,
			&p.ImageURL, &p.Latitude, &p.Longitude, &p.Rating); err != nil {
			r.logger.Error("Failed to scan trip detail", zap.Error(err))
			return nil, fmt.Errorf("failed to scan trip detail: %w", err)
		}
		places = append(places, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trip details: %w", err)
	}
	return places, nil
}

func (r *RepositoryImpl) ListUserTrips(ctx context.Context, userID uuid.UUID) ([]models.TripPlan, error) {
	rows, err := r.pgpool.Query(ctx,
		`SELECT `+tripColumns+` FROM trip_plans WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		r.logger.Error("Failed to list trips", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}
	defer rows.Close()

	trips := []models.TripPlan{}
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trip: %w", err)
		}
		trips = append(trips, trip)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trips: %w", err)
	}
	return trips, nil
}

// DeleteTrip removes the trip; detail rows go with it through ON DELETE CASCADE.
func (r *RepositoryImpl) DeleteTrip(ctx context.Context, tripID int64) error {
	tag, err := r.pgpool.Exec(ctx, `DELETE FROM trip_plans WHERE trip_id = $1`, tripID)
	if err != nil {
		r.logger.Error("Failed to delete trip", zap.Int64("trip_id", tripID), zap.Error(err))
		return fmt.Errorf("failed to delete trip: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("trip %d: %w", tripID, models.ErrNotFound)
	}
	return nil
}

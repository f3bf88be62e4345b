package favorites

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/FACorreiaa/backpackor/internal/app/models"
	database "github.com/FACorreiaa/backpackor/internal/db"
)

const foreignKeyViolation = "23503"

var _ Repository = (*RepositoryImpl)(nil)

type Repository interface {
	// Add returns false when the place was already a favorite.
	Add(ctx context.Context, userID uuid.UUID, placeID int64) (bool, error)
	// Remove returns false when the place was not a favorite.
	Remove(ctx context.Context, userID uuid.UUID, placeID int64) (bool, error)
	IsFavorite(ctx context.Context, userID uuid.UUID, placeID int64) (bool, error)
	ListUserFavorites(ctx context.Context, userID uuid.UUID) ([]models.Place, error)
}

type RepositoryImpl struct {
	logger *zap.Logger
	pgpool database.Pool
}

func NewRepository(pgpool database.Pool, logger *zap.Logger) *RepositoryImpl {
	return &RepositoryImpl{logger: logger, pgpool: pgpool}
}

// toggle runs the favorites row change and the favorite_count update in one transaction.
func (r *RepositoryImpl) toggle(ctx context.Context, rowSQL, countSQL string, userID uuid.UUID, placeID int64) (bool, error) {
	tx, err := r.pgpool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			r.logger.Error("Failed to rollback transaction", zap.Error(err))
		}
	}()

	tag, err := tx.Exec(ctx, rowSQL, userID, placeID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return false, fmt.Errorf("place %d: %w", placeID, models.ErrNotFound)
		}
		return false, fmt.Errorf("failed to update favorite: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	if _, err := tx.Exec(ctx, countSQL, placeID); err != nil {
		return false, fmt.Errorf("failed to update favorite count: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit favorite: %w", err)
	}
	return true, nil
}

func (r *RepositoryImpl) Add(ctx context.Context, userID uuid.UUID, placeID int64) (bool, error) {
	added, err := r.toggle(ctx,
		`INSERT INTO favorites (user_id, place_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		`UPDATE places SET favorite_count = favorite_count + 1 WHERE place_id = $1`,
		userID, placeID)
	if err != nil {
		r.logger.Error("Failed to add favorite", zap.Int64("place_id", placeID), zap.Error(err))
	}
	return added, err
}

func (r *RepositoryImpl) Remove(ctx context.Context, userID uuid.UUID, placeID int64) (bool, error) {
	removed, err := r.toggle(ctx,
		`DELETE FROM favorites WHERE user_id = $1 AND place_id = $2`,
		`UPDATE places SET favorite_count = GREATEST(favorite_count - 1, 0) WHERE place_id = $1`,
		userID, placeID)
	if err != nil {
		r.logger.Error("Failed to remove favorite", zap.Int64("place_id", placeID), zap.Error(err))
	}
	return removed, err
}

func (r *RepositoryImpl) IsFavorite(ctx context.Context, userID uuid.UUID, placeID int64) (bool, error) {
	var exists bool
	err := r.pgpool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM favorites WHERE user_id = $1 AND place_id = $2)`,
		userID, placeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check favorite: %w", err)
	}
	return exists, nil
}

func (r *RepositoryImpl) ListUserFavorites(ctx context.Context, userID uuid.UUID) ([]models.Place, error) {
	rows, err := r.pgpool.Query(ctx, `
		SELECT p.place_id, p.place_name, p.place_address, p.place_image, p.latitude, p.longitude,
		       p.average_rating::float8, p.favorite_count, p.review_count, p.region_id, p.category
		FROM favorites f
		JOIN places p ON p.place_id = f.place_id
		WHERE f.user_id = $1
		ORDER BY f.created_at DESC`, userID)
	if err != nil {
		r.logger.Error("Failed to list favorites", zap.Error(err))
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	defer rows.Close()

	places := []models.Place{}
	for rows.Next() {
		var p models.Place
		if err := rows.Scan(&p.ID, &p.Name, &p.Address, &p.ImageURL, &p.Latitude, &p.Longitude,
			&p.AverageRating, &p.FavoriteCount, &p.ReviewCount, &p.RegionID, &p.Category); err != nil {
			return nil, fmt.Errorf("failed to scan favorite: %w", err)
		}
		places = append(places, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating favorites: %w", err)
	}
	return places, nil
}

package reviews

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/FACorreiaa/backpackor/internal/app/models"
	database "github.com/FACorreiaa/backpackor/internal/db"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 50
)

var _ Repository = (*RepositoryImpl)(nil)

type Repository interface {
	Create(ctx context.Context, review models.Review) (models.Review, error)
	ListByPlace(ctx context.Context, placeID int64, page, pageSize int) (models.ReviewPage, error)
	Get(ctx context.Context, reviewID int64) (models.Review, error)
	Delete(ctx context.Context, reviewID int64) error
}

type RepositoryImpl struct {
	logger *zap.Logger
	pgpool database.Pool
}

func NewRepository(pgpool database.Pool, logger *zap.Logger) *RepositoryImpl {
	return &RepositoryImpl{logger: logger, pgpool: pgpool}
}

// refreshAggregatesSQL recomputes the cached rating and review count of a place.
const refreshAggregatesSQL = `
	UPDATE places SET
		review_count = (SELECT COUNT(*) FROM reviews WHERE place_id = $1),
		average_rating = COALESCE((SELECT ROUND(AVG(rating), 2) FROM reviews WHERE place_id = $1), 0)
	WHERE place_id = $1`

func (r *RepositoryImpl) rollback(ctx context.Context, tx pgx.Tx) {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		r.logger.Error("Failed to rollback transaction", zap.Error(err))
	}
}

func (r *RepositoryImpl) Create(ctx context.Context, review models.Review) (models.Review, error) {
	tx, err := r.pgpool.Begin(ctx)
	if err != nil {
		return models.Review{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer r.rollback(ctx, tx)

	if review.ImageURLs == nil {
		review.ImageURLs = []string{}
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO reviews (place_id, user_id, rating, content, image_urls)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING review_id, created_at`,
		review.PlaceID, review.UserID, review.Rating, review.Content, review.ImageURLs,
	).Scan(&review.ID, &review.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return models.Review{}, fmt.Errorf("place %d: %w", review.PlaceID, models.ErrNotFound)
		}
		r.logger.Error("Failed to insert review", zap.Int64("place_id", review.PlaceID), zap.Error(err))
		return models.Review{}, fmt.Errorf("failed to insert review: %w", err)
	}

	if _, err := tx.Exec(ctx, refreshAggregatesSQL, review.PlaceID); err != nil {
		r.logger.Error("Failed to refresh place aggregates", zap.Int64("place_id", review.PlaceID), zap.Error(err))
		return models.Review{}, fmt.Errorf("failed to refresh place rating: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return models.Review{}, fmt.Errorf("failed to commit review: %w", err)
	}
	return review, nil
}

// NormalizePage clamps page and page size to sane values.
func NormalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

func (r *RepositoryImpl) ListByPlace(ctx context.Context, placeID int64, page, pageSize int) (models.ReviewPage, error) {
	page, pageSize = NormalizePage(page, pageSize)
	result := models.ReviewPage{Reviews: []models.Review{}, Page: page, PageSize: pageSize}

	if err := r.pgpool.QueryRow(ctx,
		`SELECT COUNT(*) FROM reviews WHERE place_id = $1`, placeID,
	).Scan(&result.Total); err != nil {
		return models.ReviewPage{}, fmt.Errorf("failed to count reviews: %w", err)
	}
	if result.Total == 0 {
		return result, nil
	}

	rows, err := r.pgpool.Query(ctx, `
		SELECT review_id, place_id, user_id, rating, content, image_urls, created_at
		FROM reviews
		WHERE place_id = $1
		ORDER BY created_at DESC, review_id DESC
		LIMIT $2 OFFSET $3`,
		placeID, pageSize, (page-1)*pageSize)
	if err != nil {
		r.logger.Error("Failed to list reviews", zap.Int64("place_id", placeID), zap.Error(err))
		return models.ReviewPage{}, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return models.ReviewPage{}, fmt.Errorf("failed to scan review: %w", err)
		}
		result.Reviews = append(result.Reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return models.ReviewPage{}, fmt.Errorf("error iterating reviews: %w", err)
	}
	return result, nil
}

func scanReview(row pgx.Row) (models.Review, error) {
	var rv models.Review
	err := row.Scan(&rv.ID, &rv.PlaceID, &rv.UserID, &rv.Rating, &rv.Content, &rv.ImageURLs, &rv.CreatedAt)
	return rv, err
}

func (r *RepositoryImpl) Get(ctx context.Context, reviewID int64) (models.Review, error) {
	rv, err := scanReview(r.pgpool.QueryRow(ctx, `
		SELECT review_id, place_id, user_id, rating, content, image_urls, created_at
		FROM reviews WHERE review_id = $1`, reviewID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Review{}, fmt.Errorf("review %d: %w", reviewID, models.ErrNotFound)
		}
		return models.Review{}, fmt.Errorf("failed to get review: %w", err)
	}
	return rv, nil
}

func (r *RepositoryImpl) Delete(ctx context.Context, reviewID int64) error {
	tx, err := r.pgpool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer r.rollback(ctx, tx)

	var placeID int64
	err = tx.QueryRow(ctx, `DELETE FROM reviews WHERE review_id = $1 RETURNING place_id`, reviewID).Scan(&placeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("review %d: %w", reviewID, models.ErrNotFound)
		}
		return fmt.Errorf("failed to delete review: %w", err)
	}

	if _, err := tx.Exec(ctx, refreshAggregatesSQL, placeID); err != nil {
		return fmt.Errorf("failed to refresh place rating: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit review deletion: %w", err)
	}
	return nil
}

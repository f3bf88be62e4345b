package profiles

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/FACorreiaa/backpackor/internal/app/models"
	database "github.com/FACorreiaa/backpackor/internal/db"
)

var _ Repository = (*RepositoryImpl)(nil)

type Repository interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (models.Profile, error)
	UpdateNickname(ctx context.Context, userID uuid.UUID, nickname string) (models.Profile, error)
	// UpdateImage stores the new image URL and returns the one it replaced, if any.
	UpdateImage(ctx context.Context, userID uuid.UUID, imageURL string) (models.Profile, string, error)
}

type RepositoryImpl struct {
	logger *zap.Logger
	pgpool database.Pool
}

func NewRepository(pgpool database.Pool, logger *zap.Logger) *RepositoryImpl {
	return &RepositoryImpl{logger: logger, pgpool: pgpool}
}

// GetProfile returns an empty profile for users that never saved one;
// rows are created on first write.
func (r *RepositoryImpl) GetProfile(ctx context.Context, userID uuid.UUID) (models.Profile, error) {
	p := models.Profile{UserID: userID}
	err := r.pgpool.QueryRow(ctx,
		`SELECT nickname, image_url, updated_at FROM profiles WHERE user_id = $1`, userID,
	).Scan(&p.Nickname, &p.ImageURL, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return p, nil
		}
		r.logger.Error("Failed to get profile", zap.String("user_id", userID.String()), zap.Error(err))
		return models.Profile{}, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

func (r *RepositoryImpl) UpdateNickname(ctx context.Context, userID uuid.UUID, nickname string) (models.Profile, error) {
	p := models.Profile{UserID: userID}
	err := r.pgpool.QueryRow(ctx, `
		INSERT INTO profiles (user_id, nickname) VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET nickname = EXCLUDED.nickname, updated_at = now()
		RETURNING nickname, image_url, updated_at`,
		userID, nickname,
	).Scan(&p.Nickname, &p.ImageURL, &p.UpdatedAt)
	if err != nil {
		return models.Profile{}, fmt.Errorf("failed to update nickname: %w", err)
	}
	return p, nil
}

func (r *RepositoryImpl) UpdateImage(ctx context.Context, userID uuid.UUID, imageURL string) (models.Profile, string, error) {
	p := models.Profile{UserID: userID}
	var previous *string
	err := r.pgpool.QueryRow(ctx, `
		WITH prev AS (SELECT image_url FROM profiles WHERE user_id = $1)
		INSERT INTO profiles (user_id, image_url) VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET image_url = EXCLUDED.image_url, updated_at = now()
		RETURNING nickname, image_url, updated_at, (SELECT image_url FROM prev)`,
		userID, imageURL,
	).Scan(&p.Nickname, &p.ImageURL, &p.UpdatedAt, &previous)
	if err != nil {
		r.logger.Error("Failed to update profile image", zap.String("user_id", userID.String()), zap.Error(err))
		return models.Profile{}, "", fmt.Errorf("failed to update profile image: %w", err)
	}
	if previous == nil {
		return p, "", nil
	}
	return p, *previous, nil
}

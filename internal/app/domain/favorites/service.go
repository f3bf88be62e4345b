package favorites

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/FACorreiaa/backpackor/internal/app/models"
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	Add(ctx context.Context, userID uuid.UUID, placeID int64) (bool, error)
	Remove(ctx context.Context, userID uuid.UUID, placeID int64) (bool, error)
	IsFavorite(ctx context.Context, userID uuid.UUID, placeID int64) (bool, error)
	ListUserFavorites(ctx context.Context, userID uuid.UUID) ([]models.Place, error)
}

type ServiceImpl struct {
	logger *zap.Logger
	repo   Repository
}

func NewService(repo Repository, logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{logger: logger, repo: repo}
}

func (s *ServiceImpl) Add(ctx context.Context, userID uuid.UUID, placeID int64) (bool, error) {
	added, err := s.repo.Add(ctx, userID, placeID)
	if err != nil {
		return false, err
	}
	s.logger.Debug("Favorite added", zap.Int64("place_id", placeID), zap.Bool("changed", added))
	return added, nil
}

func (s *ServiceImpl) Remove(ctx context.Context, userID uuid.UUID, placeID int64) (bool, error) {
	return s.repo.Remove(ctx, userID, placeID)
}

func (s *ServiceImpl) IsFavorite(ctx context.Context, userID uuid.UUID, placeID int64) (bool, error) {
	return s.repo.IsFavorite(ctx, userID, placeID)
}

func (s *ServiceImpl) ListUserFavorites(ctx context.Context, userID uuid.UUID) ([]models.Place, error) {
	return s.repo.ListUserFavorites(ctx, userID)
}

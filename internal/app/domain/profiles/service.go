package profiles

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/FACorreiaa/backpackor/internal/app/models"
	"github.com/FACorreiaa/backpackor/internal/app/observability/metrics"
	"github.com/FACorreiaa/backpackor/internal/pkg/storage"
)

const maxNicknameLength = 30

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (models.Profile, error)
	UpdateNickname(ctx context.Context, userID uuid.UUID, nickname string) (models.Profile, error)
	UploadPhoto(ctx context.Context, userID uuid.UUID, data []byte) (models.Profile, error)
}

type ServiceImpl struct {
	logger  *zap.Logger
	repo    Repository
	storage storage.Storage
}

func NewService(repo Repository, store storage.Storage, logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{logger: logger, repo: repo, storage: store}
}

func (s *ServiceImpl) GetProfile(ctx context.Context, userID uuid.UUID) (models.Profile, error) {
	return s.repo.GetProfile(ctx, userID)
}

func (s *ServiceImpl) UpdateNickname(ctx context.Context, userID uuid.UUID, nickname string) (models.Profile, error) {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return models.Profile{}, models.NewValidationError("please enter a nickname")
	}
	if utf8.RuneCountInString(nickname) > maxNicknameLength {
		return models.Profile{}, models.NewValidationError("nicknames are limited to %d characters", maxNicknameLength)
	}
	return s.repo.UpdateNickname(ctx, userID, nickname)
}

// UploadPhoto replaces the profile photo. The previous object is removed on a
// best-effort basis once the row points at the new one.
func (s *ServiceImpl) UploadPhoto(ctx context.Context, userID uuid.UUID, data []byte) (models.Profile, error) {
	ctx, span := otel.Tracer("ProfileService").Start(ctx, "UploadPhoto")
	defer span.End()
	l := s.logger.With(zap.String("method", "UploadPhoto"), zap.String("user_id", userID.String()))

	img, err := storage.NormalizeImage(data)
	if err != nil {
		metrics.RecordImageUpload(ctx, "profile", "invalid")
		return models.Profile{}, err
	}

	path := fmt.Sprintf("profiles/%s/%s.jpg", userID, uuid.NewString())
	url, err := s.storage.Upload(ctx, path, img, storage.JPEGContentType)
	if err != nil {
		metrics.RecordImageUpload(ctx, "profile", "error")
		span.RecordError(err)
		span.SetStatus(codes.Error, "upload failed")
		return models.Profile{}, err
	}
	metrics.RecordImageUpload(ctx, "profile", "ok")

	profile, previous, err := s.repo.UpdateImage(ctx, userID, url)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		if rmErr := s.storage.Remove(ctx, path); rmErr != nil {
			l.Warn("Failed to remove orphaned photo", zap.String("path", path), zap.Error(rmErr))
		}
		return models.Profile{}, err
	}

	if previous != "" && previous != url {
		if oldPath, ok := s.storage.PathFromURL(previous); ok {
			if err := s.storage.Remove(ctx, oldPath); err != nil {
				l.Warn("Failed to remove previous photo", zap.String("path", oldPath), zap.Error(err))
			}
		}
	}

	l.Info("Profile photo updated")
	return profile, nil
}

package reviews

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/backpackor/internal/app/models"
	"github.com/FACorreiaa/backpackor/internal/app/observability/metrics"
	"github.com/FACorreiaa/backpackor/internal/pkg/storage"
)

const (
	MaxImages        = 5
	MaxContentLength = 2000
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	Create(ctx context.Context, params models.CreateReviewParams) (models.Review, error)
	ListByPlace(ctx context.Context, placeID int64, page, pageSize int) (models.ReviewPage, error)
	Delete(ctx context.Context, reviewID int64, userID uuid.UUID) error
}

type ServiceImpl struct {
	logger  *zap.Logger
	repo    Repository
	storage storage.Storage
}

func NewService(repo Repository, store storage.Storage, logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{logger: logger, repo: repo, storage: store}
}

func tracer() trace.Tracer {
	return otel.Tracer("ReviewService")
}

func validate(params models.CreateReviewParams) error {
	if params.Rating < 1 || params.Rating > 5 {
		return models.NewValidationError("rating must be between 1 and 5")
	}
	content := strings.TrimSpace(params.Content)
	if content == "" {
		return models.NewValidationError("please write something about the place")
	}
	if len([]rune(content)) > MaxContentLength {
		return models.NewValidationError("reviews are limited to %d characters", MaxContentLength)
	}
	if len(params.Images) > MaxImages {
		return models.NewValidationError("a review can have at most %d images", MaxImages)
	}
	return nil
}

func (s *ServiceImpl) Create(ctx context.Context, params models.CreateReviewParams) (models.Review, error) {
	ctx, span := tracer().Start(ctx, "Create", trace.WithAttributes(
		attribute.Int64("place.id", params.PlaceID),
		attribute.Int("images", len(params.Images)),
	))
	defer span.End()
	l := s.logger.With(zap.String("method", "Create"), zap.Int64("place_id", params.PlaceID))

	if err := validate(params); err != nil {
		return models.Review{}, err
	}

	urls, err := s.uploadImages(ctx, params.PlaceID, params.Images)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "image upload failed")
		l.Warn("Review image upload failed", zap.Error(err))
		return models.Review{}, err
	}

	review, err := s.repo.Create(ctx, models.Review{
		PlaceID:   params.PlaceID,
		UserID:    params.UserID,
		Rating:    params.Rating,
		Content:   strings.TrimSpace(params.Content),
		ImageURLs: urls,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		s.removeImages(ctx, urls)
		return models.Review{}, err
	}

	l.Info("Review created", zap.Int64("review_id", review.ID))
	return review, nil
}

// uploadImages normalizes and uploads all images concurrently, keeping input
// order in the returned URLs. On failure already uploaded objects are removed.
func (s *ServiceImpl) uploadImages(ctx context.Context, placeID int64, images []models.ReviewImage) ([]string, error) {
	urls := make([]string, len(images))
	if len(images) == 0 {
		return urls, nil
	}

	var mu sync.Mutex
	var uploaded []string

	g, gctx := errgroup.WithContext(ctx)
	for i, img := range images {
		g.Go(func() error {
			data, err := storage.NormalizeImage(img.Data)
			if err != nil {
				metrics.RecordImageUpload(gctx, "review", "invalid")
				return err
			}
			path := fmt.Sprintf("reviews/%d/%s.jpg", placeID, uuid.NewString())
			url, err := s.storage.Upload(gctx, path, data, storage.JPEGContentType)
			if err != nil {
				metrics.RecordImageUpload(gctx, "review", "error")
				return fmt.Errorf("failed to upload %q: %w", img.Filename, err)
			}
			metrics.RecordImageUpload(gctx, "review", "ok")

			mu.Lock()
			uploaded = append(uploaded, url)
			mu.Unlock()
			urls[i] = url
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.removeImages(ctx, uploaded)
		return nil, err
	}
	return urls, nil
}

// removeImages deletes stored objects, logging and ignoring failures.
func (s *ServiceImpl) removeImages(ctx context.Context, urls []string) {
	for _, url := range urls {
		path, ok := s.storage.PathFromURL(url)
		if !ok {
			continue
		}
		if err := s.storage.Remove(ctx, path); err != nil {
			s.logger.Warn("Failed to remove review image", zap.String("path", path), zap.Error(err))
		}
	}
}

func (s *ServiceImpl) ListByPlace(ctx context.Context, placeID int64, page, pageSize int) (models.ReviewPage, error) {
	return s.repo.ListByPlace(ctx, placeID, page, pageSize)
}

func (s *ServiceImpl) Delete(ctx context.Context, reviewID int64, userID uuid.UUID) error {
	ctx, span := tracer().Start(ctx, "Delete", trace.WithAttributes(attribute.Int64("review.id", reviewID)))
	defer span.End()

	review, err := s.repo.Get(ctx, reviewID)
	if err != nil {
		return err
	}
	if review.UserID != userID {
		return fmt.Errorf("review %d: %w", reviewID, models.ErrForbidden)
	}

	s.removeImages(ctx, review.ImageURLs)

	if err := s.repo.Delete(ctx, reviewID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete failed")
		return err
	}
	s.logger.Info("Review deleted", zap.Int64("review_id", reviewID))
	return nil
}

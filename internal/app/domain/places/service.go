package places

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/backpackor/internal/app/models"
)

// FavoriteChecker reports whether a user has favorited a place.
type FavoriteChecker interface {
	IsFavorite(ctx context.Context, userID uuid.UUID, placeID int64) (bool, error)
}

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	ListRegions(ctx context.Context) ([]models.Region, error)
	ListPlaces(ctx context.Context, filter models.PlaceFilter) (models.PlacePage, error)
	GetPlace(ctx context.Context, placeID int64) (models.Place, error)
	GetPlacesByIDs(ctx context.Context, placeIDs []int64) ([]models.Place, error)
	GetPlacesByRegion(ctx context.Context, regionID int64) ([]models.Place, error)
	GetPlaceDetail(ctx context.Context, placeID int64, userID *uuid.UUID) (models.PlaceDetail, error)
}

type ServiceImpl struct {
	logger    *zap.Logger
	repo      Repository
	favorites FavoriteChecker
	cache     *cache.Cache
}

const (
	regionsCacheKey = "regions"
	catalogTTL      = 10 * time.Minute
)

func NewService(repo Repository, favorites FavoriteChecker, logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:    logger,
		repo:      repo,
		favorites: favorites,
		cache:     cache.New(catalogTTL, 2*catalogTTL),
	}
}

func (s *ServiceImpl) ListRegions(ctx context.Context) ([]models.Region, error) {
	if cached, found := s.cache.Get(regionsCacheKey); found {
		return cached.([]models.Region), nil
	}
	regions, err := s.repo.ListRegions(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Set(regionsCacheKey, regions, cache.DefaultExpiration)
	return regions, nil
}

func (s *ServiceImpl) ListPlaces(ctx context.Context, filter models.PlaceFilter) (models.PlacePage, error) {
	ctx, span := otel.Tracer("PlaceService").Start(ctx, "ListPlaces", trace.WithAttributes(
		attribute.String("filter.sort", string(filter.Sort)),
		attribute.String("filter.category", filter.Category),
	))
	defer span.End()

	page, err := s.repo.ListPlaces(ctx, filter)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to list places")
		return models.PlacePage{}, err
	}
	return page, nil
}

func (s *ServiceImpl) GetPlace(ctx context.Context, placeID int64) (models.Place, error) {
	return s.repo.GetPlace(ctx, placeID)
}

func (s *ServiceImpl) GetPlacesByIDs(ctx context.Context, placeIDs []int64) ([]models.Place, error) {
	return s.repo.GetPlacesByIDs(ctx, placeIDs)
}

// GetPlacesByRegion returns the region catalog, cached for catalogTTL.
func (s *ServiceImpl) GetPlacesByRegion(ctx context.Context, regionID int64) ([]models.Place, error) {
	key := fmt.Sprintf("region:%d", regionID)
	if cached, found := s.cache.Get(key); found {
		s.logger.Debug("Region catalog cache hit", zap.Int64("region_id", regionID))
		return cached.([]models.Place), nil
	}
	places, err := s.repo.GetPlacesByRegion(ctx, regionID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, places, cache.DefaultExpiration)
	return places, nil
}

// GetPlaceDetail loads the place and, for signed-in users, the favorite flag concurrently.
func (s *ServiceImpl) GetPlaceDetail(ctx context.Context, placeID int64, userID *uuid.UUID) (models.PlaceDetail, error) {
	ctx, span := otel.Tracer("PlaceService").Start(ctx, "GetPlaceDetail", trace.WithAttributes(
		attribute.Int64("place.id", placeID),
	))
	defer span.End()

	var (
		place    models.Place
		favorite bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.repo.GetPlace(gctx, placeID)
		if err != nil {
			return err
		}
		place = p
		return nil
	})
	if userID != nil && s.favorites != nil {
		g.Go(func() error {
			fav, err := s.favorites.IsFavorite(gctx, *userID, placeID)
			if err != nil {
				return fmt.Errorf("failed to load favorite status: %w", err)
			}
			favorite = fav
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to load place detail")
		return models.PlaceDetail{}, err
	}

	return models.PlaceDetail{Place: place, IsFavorite: favorite}, nil
}

package places

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/FACorreiaa/backpackor/internal/app/models"
	database "github.com/FACorreiaa/backpackor/internal/db"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

var _ Repository = (*RepositoryImpl)(nil)

type Repository interface {
	ListRegions(ctx context.Context) ([]models.Region, error)
	ListPlaces(ctx context.Context, filter models.PlaceFilter) (models.PlacePage, error)
	GetPlace(ctx context.Context, placeID int64) (models.Place, error)
	GetPlacesByIDs(ctx context.Context, placeIDs []int64) ([]models.Place, error)
	GetPlacesByRegion(ctx context.Context, regionID int64) ([]models.Place, error)
}

type RepositoryImpl struct {
	logger *zap.Logger
	pgpool database.Pool
}

func NewRepository(pgpool database.Pool, logger *zap.Logger) *RepositoryImpl {
	return &RepositoryImpl{logger: logger, pgpool: pgpool}
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var placeColumns = []string{
	"place_id", "place_name", "place_address", "place_image", "latitude", "longitude",
	"average_rating::float8", "favorite_count", "review_count", "region_id", "category",
}

func scanPlace(row pgx.Row) (models.Place, error) {
	var p models.Place
	err := row.Scan(&p.ID, &p.Name, &p.Address, &p.ImageURL, &p.Latitude, &p.Longitude,
		&p.AverageRating, &p.FavoriteCount, &p.ReviewCount, &p.RegionID, &p.Category)
	return p, err
}

func collectPlaces(rows pgx.Rows) ([]models.Place, error) {
	defer rows.Close()
	places := []models.Place{}
	for rows.Next() {
		p, err := scanPlace(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan place: %w", err)
		}
		places = append(places, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating places: %w", err)
	}
	return places, nil
}

func (r *RepositoryImpl) ListRegions(ctx context.Context) ([]models.Region, error) {
	rows, err := r.pgpool.Query(ctx, `SELECT region_id, region_name FROM regions ORDER BY region_name`)
	if err != nil {
		r.logger.Error("Failed to list regions", zap.Error(err))
		return nil, fmt.Errorf("failed to list regions: %w", err)
	}
	defer rows.Close()

	regions := []models.Region{}
	for rows.Next() {
		var reg models.Region
		if err := rows.Scan(&reg.ID, &reg.Name); err != nil {
			return nil, fmt.Errorf("failed to scan region: %w", err)
		}
		regions = append(regions, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating regions: %w", err)
	}
	return regions, nil
}

// NormalizeFilter clamps paging and defaults the sort order.
func NormalizeFilter(f models.PlaceFilter) models.PlaceFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
	switch f.Sort {
	case models.PlaceSortRating, models.PlaceSortFavorites, models.PlaceSortReviews, models.PlaceSortName:
	default:
		f.Sort = models.PlaceSortRating
	}
	f.Keyword = strings.TrimSpace(f.Keyword)
	f.Category = strings.TrimSpace(f.Category)
	return f
}

func orderBy(s models.PlaceSort) []string {
	switch s {
	case models.PlaceSortFavorites:
		return []string{"favorite_count DESC", "place_id"}
	case models.PlaceSortReviews:
		return []string{"review_count DESC", "place_id"}
	case models.PlaceSortName:
		return []string{"place_name ASC", "place_id"}
	default:
		return []string{"average_rating DESC", "place_id"}
	}
}

func filterWhere(f models.PlaceFilter) sq.And {
	where := sq.And{}
	if f.RegionID != nil {
		where = append(where, sq.Eq{"region_id": *f.RegionID})
	}
	if f.Category != "" {
		where = append(where, sq.Eq{"category": f.Category})
	}
	if f.Keyword != "" {
		like := "%" + f.Keyword + "%"
		where = append(where, sq.Or{
			sq.ILike{"place_name": like},
			sq.ILike{"place_address": like},
		})
	}
	return where
}

// ListPlaces returns one page of places matching the filter plus the total match count.
func (r *RepositoryImpl) ListPlaces(ctx context.Context, filter models.PlaceFilter) (models.PlacePage, error) {
	f := NormalizeFilter(filter)
	where := filterWhere(f)

	countSQL, countArgs, err := psql.Select("COUNT(*)").From("places").Where(where).ToSql()
	if err != nil {
		return models.PlacePage{}, fmt.Errorf("failed to build count query: %w", err)
	}
	var total int
	if err := r.pgpool.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		r.logger.Error("Failed to count places", zap.Error(err))
		return models.PlacePage{}, fmt.Errorf("failed to count places: %w", err)
	}

	query, args, err := psql.Select(placeColumns...).
		From("places").
		Where(where).
		OrderBy(orderBy(f.Sort)...).
		Limit(uint64(f.PageSize)).
		Offset(uint64((f.Page - 1) * f.PageSize)).
		ToSql()
	if err != nil {
		return models.PlacePage{}, fmt.Errorf("failed to build place query: %w", err)
	}
	rows, err := r.pgpool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list places", zap.Error(err))
		return models.PlacePage{}, fmt.Errorf("failed to list places: %w", err)
	}
	places, err := collectPlaces(rows)
	if err != nil {
		return models.PlacePage{}, err
	}

	return models.PlacePage{Places: places, Total: total, Page: f.Page, PageSize: f.PageSize}, nil
}

func (r *RepositoryImpl) GetPlace(ctx context.Context, placeID int64) (models.Place, error) {
	query, args, err := psql.Select(placeColumns...).From("places").Where(sq.Eq{"place_id": placeID}).ToSql()
	if err != nil {
		return models.Place{}, fmt.Errorf("failed to build place query: %w", err)
	}
	p, err := scanPlace(r.pgpool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Place{}, fmt.Errorf("place %d: %w", placeID, models.ErrNotFound)
		}
		r.logger.Error("Failed to get place", zap.Int64("place_id", placeID), zap.Error(err))
		return models.Place{}, fmt.Errorf("failed to get place: %w", err)
	}
	return p, nil
}

// GetPlacesByIDs returns the places that exist among ids, in id order.
func (r *RepositoryImpl) GetPlacesByIDs(ctx context.Context, placeIDs []int64) ([]models.Place, error) {
	if len(placeIDs) == 0 {
		return []models.Place{}, nil
	}
	query, args, err := psql.Select(placeColumns...).
		From("places").
		Where(sq.Eq{"place_id": placeIDs}).
		OrderBy("place_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build place query: %w", err)
	}
	rows, err := r.pgpool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to get places by ids", zap.Error(err))
		return nil, fmt.Errorf("failed to get places: %w", err)
	}
	return collectPlaces(rows)
}

// GetPlacesByRegion returns the whole catalog of a region, best rated first.
func (r *RepositoryImpl) GetPlacesByRegion(ctx context.Context, regionID int64) ([]models.Place, error) {
	query, args, err := psql.Select(placeColumns...).
		From("places").
		Where(sq.Eq{"region_id": regionID}).
		OrderBy(orderBy(models.PlaceSortRating)...).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build place query: %w", err)
	}
	rows, err := r.pgpool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to get region places", zap.Int64("region_id", regionID), zap.Error(err))
		return nil, fmt.Errorf("failed to get region places: %w", err)
	}
	return collectPlaces(rows)
}

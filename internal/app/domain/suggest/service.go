// Package suggest asks a generative model for a day-by-day itinerary built
// from a region's place catalog.
package suggest

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/FACorreiaa/backpackor/internal/app/domain/planner"
	"github.com/FACorreiaa/backpackor/internal/app/models"
	"github.com/FACorreiaa/backpackor/internal/app/observability/metrics"
)

// Catalog is the part of the places service the suggester reads.
type Catalog interface {
	ListRegions(ctx context.Context) ([]models.Region, error)
	GetPlacesByRegion(ctx context.Context, regionID int64) ([]models.Place, error)
}

var _ planner.Suggester = (*Service)(nil)

type Service struct {
	logger    *zap.Logger
	catalog   Catalog
	generator Generator
}

func NewService(catalog Catalog, generator Generator, logger *zap.Logger) *Service {
	return &Service{logger: logger, catalog: catalog, generator: generator}
}

// Suggest returns the parsed suggestion together with the catalog its names
// should be resolved against.
func (s *Service) Suggest(ctx context.Context, req models.SuggestionRequest) (models.SuggestedPlan, []models.Place, error) {
	ctx, span := otel.Tracer("SuggestService").Start(ctx, "Suggest", trace.WithAttributes(
		attribute.Int64("region.id", req.RegionID),
		attribute.String("pace", req.Pace),
	))
	defer span.End()
	l := s.logger.With(zap.String("method", "Suggest"), zap.Int64("region_id", req.RegionID))
	start := time.Now()

	fail := func(status string, err error) (models.SuggestedPlan, []models.Place, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, status)
		metrics.RecordSuggestion(ctx, status, time.Since(start))
		return models.SuggestedPlan{}, nil, err
	}

	days := planner.DayCount(req.StartDate, req.EndDate)
	if days == 0 {
		return fail("invalid", models.NewValidationError("choose the trip dates before asking for a suggestion"))
	}

	region, err := s.region(ctx, req.RegionID)
	if err != nil {
		return fail("invalid", err)
	}
	catalog, err := s.catalog.GetPlacesByRegion(ctx, req.RegionID)
	if err != nil {
		return fail("catalog_error", fmt.Errorf("failed to load region places: %w", err))
	}
	names := catalogNames(catalog)
	if len(names) == 0 {
		return fail("invalid", models.NewValidationError("no places are available for %s yet", region.Name))
	}

	prompt := BuildPrompt(PromptInput{
		RegionName: region.Name,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		Days:       days,
		PartyType:  req.PartyType,
		Pace:       req.Pace,
		PlaceNames: names,
	})
	text, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		l.Error("Model call failed", zap.Error(err))
		return fail("model_error", err)
	}

	suggestion, err := ParseSuggestion(text)
	if err != nil {
		l.Warn("Unparseable model response", zap.Int("length", len(text)), zap.Error(err))
		return fail("parse_error", err)
	}

	metrics.RecordSuggestion(ctx, "ok", time.Since(start))
	span.SetStatus(codes.Ok, "Suggestion generated")
	l.Info("Suggestion generated", zap.Int("days", len(suggestion.Plan)), zap.Duration("elapsed", time.Since(start)))
	return suggestion, catalog, nil
}

func (s *Service) region(ctx context.Context, regionID int64) (models.Region, error) {
	regions, err := s.catalog.ListRegions(ctx)
	if err != nil {
		return models.Region{}, fmt.Errorf("failed to load regions: %w", err)
	}
	for _, r := range regions {
		if r.ID == regionID {
			return r, nil
		}
	}
	return models.Region{}, models.NewValidationError("unknown region")
}

package planner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/FACorreiaa/backpackor/internal/app/domain/drafts"
	"github.com/FACorreiaa/backpackor/internal/app/models"
	"github.com/FACorreiaa/backpackor/internal/app/observability/metrics"
	"github.com/FACorreiaa/backpackor/internal/pkg/geo"
)

// PlaceFinder resolves catalog places; used to backfill coordinates.
type PlaceFinder interface {
	GetPlace(ctx context.Context, placeID int64) (models.Place, error)
}

// Suggester produces an AI itinerary together with the catalog its names refer to.
type Suggester interface {
	Suggest(ctx context.Context, req models.SuggestionRequest) (models.SuggestedPlan, []models.Place, error)
}

// EditResult is a draft after an editor operation and what the operation did.
type EditResult struct {
	Draft   models.DraftView `json:"draft"`
	Outcome Outcome          `json:"outcome"`
}

type SuggestionResult struct {
	Draft  models.DraftView `json:"draft"`
	Result ApplyResult      `json:"result"`
}

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	StartDraft(ctx context.Context, sessionID string, userID *uuid.UUID, req models.StartDraftRequest) (models.DraftView, error)
	GetDraft(ctx context.Context, sessionID string) (models.DraftView, error)
	UpdateTripInfo(ctx context.Context, sessionID string, req models.UpdateTripInfoRequest) (models.DraftView, error)
	AddPlace(ctx context.Context, sessionID string, day int, place models.Place) (EditResult, error)
	RemovePlace(ctx context.Context, sessionID string, day int, placeID int64) (EditResult, error)
	ReorderPlaces(ctx context.Context, sessionID string, fromPlaceID, toPlaceID int64) (EditResult, error)
	SetActiveDay(ctx context.Context, sessionID string, day int) (models.DraftView, error)
	ApplySuggestion(ctx context.Context, sessionID string, req models.SuggestionRequest) (SuggestionResult, error)
	DiscardDraft(ctx context.Context, sessionID string) error
	ConfirmDraft(ctx context.Context, sessionID string, userID *uuid.UUID) (models.TripPlan, error)

	GetTrip(ctx context.Context, tripID int64) (models.TripWithPlan, error)
	ListUserTrips(ctx context.Context, userID uuid.UUID) ([]models.TripPlan, error)
	DeleteTrip(ctx context.Context, tripID int64, userID *uuid.UUID) error

	DraftMap(ctx context.Context, sessionID string) (geo.MapPayload, error)
	TripMap(ctx context.Context, tripID int64) (geo.MapPayload, error)
}

type ServiceImpl struct {
	logger    *zap.Logger
	repo      Repository
	drafts    drafts.Store
	places    PlaceFinder
	suggester Suggester

	// saving holds the sessions whose confirm is between Saving and Saved|Failed.
	mu     sync.Mutex
	saving map[string]struct{}
}

// NewService wires the planner. suggester may be nil when no model is configured.
func NewService(repo Repository, store drafts.Store, places PlaceFinder, suggester Suggester, logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:    logger,
		repo:      repo,
		drafts:    store,
		places:    places,
		suggester: suggester,
		saving:    make(map[string]struct{}),
	}
}

func tracer() trace.Tracer {
	return otel.Tracer("PlannerService")
}

func failSpan(span trace.Span, err error, msg string) {
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)
}

func view(e *Editor, d models.Draft) models.DraftView {
	d.Plan = e.Plan()
	d.ActiveDay = e.ActiveDay()
	return models.DraftView{Draft: d, Days: e.Days()}
}

// loadDraft returns the session draft, or an empty one when the session has none.
func (s *ServiceImpl) loadDraft(ctx context.Context, sessionID string) (models.Draft, error) {
	d, err := s.drafts.Load(ctx, sessionID)
	if errors.Is(err, models.ErrNoDraft) {
		return models.Draft{Plan: models.Plan{}}, nil
	}
	if err != nil {
		return models.Draft{}, err
	}
	return d, nil
}

func (s *ServiceImpl) store(ctx context.Context, sessionID string, e *Editor, d models.Draft) (models.DraftView, error) {
	v := view(e, d)
	if err := s.drafts.Save(ctx, sessionID, v.Draft); err != nil {
		return models.DraftView{}, fmt.Errorf("failed to save draft: %w", err)
	}
	return v, nil
}

func canEdit(trip models.TripPlan, userID *uuid.UUID) bool {
	if trip.UserID == nil {
		return true
	}
	return userID != nil && *userID == *trip.UserID
}

// planFromPlaces groups rows ordered by day and visit order into a plan.
func planFromPlaces(places []models.PlannedPlace) models.Plan {
	plan := models.Plan{}
	for _, p := range places {
		plan[p.DayNumber] = append(plan[p.DayNumber], p)
	}
	return plan
}

// StartDraft replaces the session draft with an empty one, or with an existing trip.
func (s *ServiceImpl) StartDraft(ctx context.Context, sessionID string, userID *uuid.UUID, req models.StartDraftRequest) (models.DraftView, error) {
	ctx, span := tracer().Start(ctx, "StartDraft")
	defer span.End()
	l := s.logger.With(zap.String("method", "StartDraft"))

	d := models.Draft{
		Title:     strings.TrimSpace(req.Title),
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	}
	var plan models.Plan

	if req.TripID != nil {
		span.SetAttributes(attribute.Int64("trip.id", *req.TripID))
		trip, err := s.repo.GetTrip(ctx, *req.TripID)
		if err != nil {
			failSpan(span, err, "Failed to load trip")
			return models.DraftView{}, err
		}
		if !canEdit(trip, userID) {
			return models.DraftView{}, models.ErrForbidden
		}
		places, err := s.repo.GetTripPlaces(ctx, trip.ID)
		if err != nil {
			failSpan(span, err, "Failed to load trip details")
			return models.DraftView{}, err
		}
		d.TripID = &trip.ID
		d.Title = trip.Title
		d.StartDate = trip.StartDate
		d.EndDate = trip.EndDate
		plan = planFromPlaces(places)
		l.Debug("Editing existing trip", zap.Int64("trip_id", trip.ID), zap.Int("places", len(places)))
	}
	if err := CheckTripLength(d.StartDate, d.EndDate); err != nil {
		return models.DraftView{}, err
	}

	e := NewEditor(d.StartDate, d.EndDate, plan)
	v, err := s.store(ctx, sessionID, e, d)
	if err != nil {
		l.Error("Failed to start draft", zap.Error(err))
		failSpan(span, err, "Failed to save draft")
		return models.DraftView{}, err
	}
	metrics.RecordDraftOperation(ctx, "start", "ok")
	return v, nil
}

func (s *ServiceImpl) GetDraft(ctx context.Context, sessionID string) (models.DraftView, error) {
	d, err := s.drafts.Load(ctx, sessionID)
	if err != nil {
		return models.DraftView{}, err
	}
	return view(EditorFromDraft(d), d), nil
}

// UpdateTripInfo changes title and/or dates. A date change reshapes the day list.
func (s *ServiceImpl) UpdateTripInfo(ctx context.Context, sessionID string, req models.UpdateTripInfoRequest) (models.DraftView, error) {
	ctx, span := tracer().Start(ctx, "UpdateTripInfo")
	defer span.End()

	d, err := s.loadDraft(ctx, sessionID)
	if err != nil {
		failSpan(span, err, "Failed to load draft")
		return models.DraftView{}, err
	}
	if req.Title != nil {
		d.Title = strings.TrimSpace(*req.Title)
	}
	if req.StartDate != nil {
		d.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		d.EndDate = *req.EndDate
	}
	for _, date := range []string{d.StartDate, d.EndDate} {
		if date != "" && !ValidDate(date) {
			return models.DraftView{}, models.NewValidationError("dates must be formatted YYYY-MM-DD")
		}
	}
	if err := CheckTripLength(d.StartDate, d.EndDate); err != nil {
		return models.DraftView{}, err
	}

	e := EditorFromDraft(d)
	e.SetDateRange(d.StartDate, d.EndDate)
	v, err := s.store(ctx, sessionID, e, d)
	if err != nil {
		failSpan(span, err, "Failed to save draft")
		return models.DraftView{}, err
	}
	metrics.RecordDraftOperation(ctx, "update_trip_info", "ok")
	return v, nil
}

// AddPlace appends a place to a day, fetching the catalog record when the
// caller sent no coordinates or no name.
func (s *ServiceImpl) AddPlace(ctx context.Context, sessionID string, day int, place models.Place) (EditResult, error) {
	ctx, span := tracer().Start(ctx, "AddPlace", trace.WithAttributes(
		attribute.Int("day", day),
		attribute.Int64("place.id", place.ID),
	))
	defer span.End()
	l := s.logger.With(zap.String("method", "AddPlace"), zap.Int64("place_id", place.ID))

	if place.ID <= 0 {
		return EditResult{}, models.ErrInvalidPlace
	}
	if !place.HasCoordinates() || place.Name == "" {
		found, err := s.places.GetPlace(ctx, place.ID)
		switch {
		case errors.Is(err, models.ErrNotFound):
			return EditResult{}, models.ErrInvalidPlace
		case err != nil:
			l.Warn("Could not backfill place, keeping client data", zap.Error(err))
		default:
			place = backfill(place, found)
		}
	}

	d, err := s.loadDraft(ctx, sessionID)
	if err != nil {
		failSpan(span, err, "Failed to load draft")
		return EditResult{}, err
	}
	e := EditorFromDraft(d)
	outcome, err := e.AddPlace(day, place)
	if err != nil {
		return EditResult{}, err
	}
	v, err := s.store(ctx, sessionID, e, d)
	if err != nil {
		failSpan(span, err, "Failed to save draft")
		return EditResult{}, err
	}
	metrics.RecordDraftOperation(ctx, "add_place", string(outcome))
	return EditResult{Draft: v, Outcome: outcome}, nil
}

func backfill(place, found models.Place) models.Place {
	if place.Name == "" {
		place.Name = found.Name
	}
	if place.Address == "" {
		place.Address = found.Address
	}
	if place.ImageURL == "" {
		place.ImageURL = found.ImageURL
	}
	if place.AverageRating == 0 {
		place.AverageRating = found.AverageRating
	}
	if !place.HasCoordinates() {
		place.Latitude = found.Latitude
		place.Longitude = found.Longitude
	}
	return place
}

func (s *ServiceImpl) RemovePlace(ctx context.Context, sessionID string, day int, placeID int64) (EditResult, error) {
	ctx, span := tracer().Start(ctx, "RemovePlace")
	defer span.End()

	d, err := s.loadDraft(ctx, sessionID)
	if err != nil {
		failSpan(span, err, "Failed to load draft")
		return EditResult{}, err
	}
	e := EditorFromDraft(d)
	outcome := e.RemovePlace(day, placeID)
	v, err := s.store(ctx, sessionID, e, d)
	if err != nil {
		failSpan(span, err, "Failed to save draft")
		return EditResult{}, err
	}
	metrics.RecordDraftOperation(ctx, "remove_place", string(outcome))
	return EditResult{Draft: v, Outcome: outcome}, nil
}

// ReorderPlaces drags fromPlaceID onto toPlaceID within the active day.
func (s *ServiceImpl) ReorderPlaces(ctx context.Context, sessionID string, fromPlaceID, toPlaceID int64) (EditResult, error) {
	ctx, span := tracer().Start(ctx, "ReorderPlaces")
	defer span.End()

	d, err := s.loadDraft(ctx, sessionID)
	if err != nil {
		failSpan(span, err, "Failed to load draft")
		return EditResult{}, err
	}
	e := EditorFromDraft(d)
	outcome := e.Reorder(fromPlaceID, toPlaceID)
	v, err := s.store(ctx, sessionID, e, d)
	if err != nil {
		failSpan(span, err, "Failed to save draft")
		return EditResult{}, err
	}
	metrics.RecordDraftOperation(ctx, "reorder", string(outcome))
	return EditResult{Draft: v, Outcome: outcome}, nil
}

func (s *ServiceImpl) SetActiveDay(ctx context.Context, sessionID string, day int) (models.DraftView, error) {
	d, err := s.loadDraft(ctx, sessionID)
	if err != nil {
		return models.DraftView{}, err
	}
	e := EditorFromDraft(d)
	if err := e.SetActiveDay(day); err != nil {
		return models.DraftView{}, err
	}
	return s.store(ctx, sessionID, e, d)
}

// ApplySuggestion asks the model for an itinerary over the draft's dates and
// overwrites the draft plan with it.
func (s *ServiceImpl) ApplySuggestion(ctx context.Context, sessionID string, req models.SuggestionRequest) (SuggestionResult, error) {
	ctx, span := tracer().Start(ctx, "ApplySuggestion", trace.WithAttributes(
		attribute.Int64("region.id", req.RegionID),
	))
	defer span.End()
	l := s.logger.With(zap.String("method", "ApplySuggestion"), zap.Int64("region_id", req.RegionID))

	if s.suggester == nil {
		return SuggestionResult{}, models.ErrSuggestUnavailable
	}
	d, err := s.loadDraft(ctx, sessionID)
	if err != nil {
		failSpan(span, err, "Failed to load draft")
		return SuggestionResult{}, err
	}
	if DayCount(d.StartDate, d.EndDate) == 0 {
		return SuggestionResult{}, models.NewValidationError("choose the trip dates before asking for a suggestion")
	}
	req.StartDate, req.EndDate = d.StartDate, d.EndDate

	suggested, catalog, err := s.suggester.Suggest(ctx, req)
	if err != nil {
		l.Error("Suggestion failed", zap.Error(err))
		failSpan(span, err, "Suggestion failed")
		return SuggestionResult{}, err
	}

	e := EditorFromDraft(d)
	result := e.ApplySuggestedPlan(suggested.Plan, catalog)
	if d.Title == "" {
		d.Title = strings.TrimSpace(suggested.Title)
	}
	if len(result.Skipped) > 0 {
		l.Info("Suggested places not in catalog", zap.Strings("skipped", result.Skipped))
	}

	v, err := s.store(ctx, sessionID, e, d)
	if err != nil {
		failSpan(span, err, "Failed to save draft")
		return SuggestionResult{}, err
	}
	metrics.RecordDraftOperation(ctx, "apply_suggestion", "ok")
	return SuggestionResult{Draft: v, Result: result}, nil
}

func (s *ServiceImpl) DiscardDraft(ctx context.Context, sessionID string) error {
	if err := s.drafts.Clear(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to discard draft: %w", err)
	}
	metrics.RecordDraftOperation(ctx, "discard", "ok")
	return nil
}

// validateDraft returns the user-facing problem with the draft, if any.
func validateDraft(d models.Draft, e *Editor) error {
	if strings.TrimSpace(d.Title) == "" {
		return models.NewValidationError("please enter a trip title")
	}
	if !ValidDate(d.StartDate) || !ValidDate(d.EndDate) {
		return models.NewValidationError("please choose the trip dates")
	}
	if len(e.Days()) == 0 {
		return models.NewValidationError("the end date cannot be before the start date")
	}
	if err := CheckTripLength(d.StartDate, d.EndDate); err != nil {
		return err
	}
	if e.Plan().PlaceCount() == 0 {
		return models.NewValidationError("please add at least one place to the plan")
	}
	return nil
}

func (s *ServiceImpl) beginSave(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.saving[sessionID]; busy {
		return false
	}
	s.saving[sessionID] = struct{}{}
	return true
}

func (s *ServiceImpl) endSave(sessionID string) {
	s.mu.Lock()
	delete(s.saving, sessionID)
	s.mu.Unlock()
}

// ConfirmDraft writes the session draft to the database, replacing the
// trip's detail rows, and clears the draft on success.
func (s *ServiceImpl) ConfirmDraft(ctx context.Context, sessionID string, userID *uuid.UUID) (models.TripPlan, error) {
	ctx, span := tracer().Start(ctx, "ConfirmDraft")
	defer span.End()
	l := s.logger.With(zap.String("method", "ConfirmDraft"))

	if !s.beginSave(sessionID) {
		metrics.RecordPlanSave(ctx, "in_progress", 0)
		return models.TripPlan{}, models.ErrSaveInProgress
	}
	defer s.endSave(sessionID)
	start := time.Now()

	d, err := s.drafts.Load(ctx, sessionID)
	if err != nil {
		return models.TripPlan{}, err
	}
	e := EditorFromDraft(d)
	if err := validateDraft(d, e); err != nil {
		metrics.RecordPlanSave(ctx, "invalid", time.Since(start))
		return models.TripPlan{}, err
	}

	trip := models.TripPlan{
		Title:     strings.TrimSpace(d.Title),
		StartDate: d.StartDate,
		EndDate:   d.EndDate,
		UserID:    userID,
	}
	if d.TripID != nil {
		existing, err := s.repo.GetTrip(ctx, *d.TripID)
		if err != nil {
			failSpan(span, err, "Failed to load trip")
			metrics.RecordPlanSave(ctx, "failed", time.Since(start))
			return models.TripPlan{}, err
		}
		if !canEdit(existing, userID) {
			metrics.RecordPlanSave(ctx, "forbidden", time.Since(start))
			return models.TripPlan{}, models.ErrForbidden
		}
		trip.ID = existing.ID
		trip.UserID = existing.UserID
		trip.CreatedAt = existing.CreatedAt
	}
	span.SetAttributes(attribute.Int64("trip.id", trip.ID), attribute.Int("places", e.Plan().PlaceCount()))

	tripID, err := s.repo.SavePlan(ctx, trip, e.Details(trip.ID))
	if err != nil {
		l.Error("Failed to save plan", zap.Error(err))
		failSpan(span, err, "Failed to save plan")
		metrics.RecordPlanSave(ctx, "failed", time.Since(start))
		return models.TripPlan{}, err
	}
	trip.ID = tripID

	if err := s.drafts.Clear(ctx, sessionID); err != nil {
		l.Warn("Saved trip but failed to clear draft", zap.Int64("trip_id", tripID), zap.Error(err))
	}

	metrics.RecordPlanSave(ctx, "saved", time.Since(start))
	l.Info("Trip plan saved", zap.Int64("trip_id", tripID))
	span.SetStatus(codes.Ok, "Trip saved")
	return trip, nil
}

func (s *ServiceImpl) GetTrip(ctx context.Context, tripID int64) (models.TripWithPlan, error) {
	ctx, span := tracer().Start(ctx, "GetTrip", trace.WithAttributes(attribute.Int64("trip.id", tripID)))
	defer span.End()

	trip, err := s.repo.GetTrip(ctx, tripID)
	if err != nil {
		failSpan(span, err, "Failed to load trip")
		return models.TripWithPlan{}, err
	}
	places, err := s.repo.GetTripPlaces(ctx, tripID)
	if err != nil {
		failSpan(span, err, "Failed to load trip details")
		return models.TripWithPlan{}, err
	}

	e := NewEditor(trip.StartDate, trip.EndDate, planFromPlaces(places))
	return models.TripWithPlan{TripPlan: trip, Days: e.Days(), Plan: e.Plan()}, nil
}

func (s *ServiceImpl) ListUserTrips(ctx context.Context, userID uuid.UUID) ([]models.TripPlan, error) {
	ctx, span := tracer().Start(ctx, "ListUserTrips")
	defer span.End()

	trips, err := s.repo.ListUserTrips(ctx, userID)
	if err != nil {
		failSpan(span, err, "Failed to list trips")
		return nil, err
	}
	return trips, nil
}

func (s *ServiceImpl) DeleteTrip(ctx context.Context, tripID int64, userID *uuid.UUID) error {
	ctx, span := tracer().Start(ctx, "DeleteTrip", trace.WithAttributes(attribute.Int64("trip.id", tripID)))
	defer span.End()
	l := s.logger.With(zap.String("method", "DeleteTrip"), zap.Int64("trip_id", tripID))

	trip, err := s.repo.GetTrip(ctx, tripID)
	if err != nil {
		return err
	}
	if trip.UserID == nil || userID == nil || *trip.UserID != *userID {
		return models.ErrForbidden
	}
	if err := s.repo.DeleteTrip(ctx, tripID); err != nil {
		l.Error("Failed to delete trip", zap.Error(err))
		failSpan(span, err, "Failed to delete trip")
		return err
	}
	l.Info("Trip deleted")
	return nil
}

func (s *ServiceImpl) DraftMap(ctx context.Context, sessionID string) (geo.MapPayload, error) {
	v, err := s.GetDraft(ctx, sessionID)
	if err != nil {
		return geo.MapPayload{}, err
	}
	return geo.BuildRoutes(v.Days, v.Plan), nil
}

func (s *ServiceImpl) TripMap(ctx context.Context, tripID int64) (geo.MapPayload, error) {
	t, err := s.GetTrip(ctx, tripID)
	if err != nil {
		return geo.MapPayload{}, err
	}
	return geo.BuildRoutes(t.Days, t.Plan), nil
}

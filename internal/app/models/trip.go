package models

import (
	"time"

	"github.com/google/uuid"
)

// TripPlan is a persisted itinerary header. ID is zero until the first save.
type TripPlan struct {
	ID        int64      `json:"trip_id"`
	Title     string     `json:"title"`
	StartDate string     `json:"start_date"`
	EndDate   string     `json:"end_date"`
	UserID    *uuid.UUID `json:"user_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// TripPlanDetail is one normalized (trip, day, visit order, place) row.
type TripPlanDetail struct {
	TripID     int64 `json:"trip_id"`
	DayNumber  int   `json:"day_number"`
	VisitOrder int   `json:"visit_order"`
	PlaceID    int64 `json:"place_id"`
}

// TripDay is one entry of the derived day list.
type TripDay struct {
	Day  int    `json:"day"`
	Date string `json:"date"`
}

// PlannedPlace is the reduced place shape kept in plans and drafts.
type PlannedPlace struct {
	PlaceID    int64    `json:"place_id"`
	Name       string   `json:"place_name"`
	Address    string   `json:"place_address"`
	ImageURL   string   `json:"place_image"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
	Rating     float64  `json:"average_rating"`
	VisitOrder int      `json:"visit_order"`
	DayNumber  int      `json:"day_number"`
}

// NewPlannedPlace reduces a Place to the fields the planner keeps.
func NewPlannedPlace(p Place) PlannedPlace {
	return PlannedPlace{
		PlaceID:   p.ID,
		Name:      p.Name,
		Address:   p.Address,
		ImageURL:  p.ImageURL,
		Latitude:  p.Latitude,
		Longitude: p.Longitude,
		Rating:    p.AverageRating,
	}
}

// Plan maps a 1-based day number to the ordered places of that day.
type Plan map[int][]PlannedPlace

// Clone returns a deep copy of the plan.
func (p Plan) Clone() Plan {
	out := make(Plan, len(p))
	for day, places := range p {
		cp := make([]PlannedPlace, len(places))
		copy(cp, places)
		out[day] = cp
	}
	return out
}

// PlaceCount returns the number of entries across all days.
func (p Plan) PlaceCount() int {
	n := 0
	for _, places := range p {
		n += len(places)
	}
	return n
}

// TripWithPlan is a persisted trip and its plan rebuilt from detail rows.
type TripWithPlan struct {
	TripPlan
	Days []TripDay `json:"days"`
	Plan Plan      `json:"plan"`
}

// Draft is the session-scoped, in-progress itinerary.
type Draft struct {
	TripID    *int64 `json:"trip_id"`
	Title     string `json:"title"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	ActiveDay int    `json:"active_day"`
	Plan      Plan   `json:"plan"`
}

// DraftView is what the planner endpoints return.
type DraftView struct {
	Draft
	Days []TripDay `json:"days"`
}

type StartDraftRequest struct {
	TripID    *int64 `json:"trip_id"`
	Title     string `json:"title"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type UpdateTripInfoRequest struct {
	Title     *string `json:"title"`
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
}

// SuggestedPlan is the itinerary proposed by the AI service, by place name.
type SuggestedPlan struct {
	Title string
	Plan  map[int][]string
}

type SuggestionRequest struct {
	RegionID  int64  `json:"region_id" binding:"required"`
	PartyType string `json:"party_type"`
	Pace      string `json:"pace"`
	StartDate string `json:"-"`
	EndDate   string `json:"-"`
}

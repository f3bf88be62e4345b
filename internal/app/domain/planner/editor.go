package planner

import (
	"slices"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/FACorreiaa/backpackor/internal/app/models"
)

// Outcome tells callers what an editor operation actually did.
type Outcome string

const (
	OutcomeAdded          Outcome = "added"
	OutcomeAlreadyPresent Outcome = "already_present"
	OutcomeRemoved        Outcome = "removed"
	OutcomeMoved          Outcome = "moved"
	OutcomeNotFound       Outcome = "not_found"
	OutcomeUnchanged      Outcome = "unchanged"
)

// ApplyResult summarises an applied suggestion. Skipped holds the names that
// did not resolve against the catalog or fell outside the trip days.
type ApplyResult struct {
	Matched int      `json:"matched"`
	Skipped []string `json:"skipped"`
}

// Editor holds the day-by-day itinerary being edited.
// Invariants after every call: plan keys are exactly 1..len(days), each day's
// visit orders are 1..len with no gaps, and a place appears at most once per day.
type Editor struct {
	days      []models.TripDay
	plan      models.Plan
	activeDay int
}

// NewEditor creates an editor for the date range, seeded with an optional plan.
// Entries for days outside the range are dropped.
func NewEditor(startDate, endDate string, plan models.Plan) *Editor {
	e := &Editor{plan: plan.Clone()}
	e.SetDateRange(startDate, endDate)
	return e
}

// EditorFromDraft restores an editor, including the active day, from a draft.
func EditorFromDraft(d models.Draft) *Editor {
	e := NewEditor(d.StartDate, d.EndDate, d.Plan)
	if e.hasDay(d.ActiveDay) {
		e.activeDay = d.ActiveDay
	}
	return e
}

func (e *Editor) Days() []models.TripDay {
	return slices.Clone(e.days)
}

func (e *Editor) Plan() models.Plan {
	return e.plan.Clone()
}

func (e *Editor) ActiveDay() int {
	return e.activeDay
}

func (e *Editor) SetActiveDay(day int) error {
	if !e.hasDay(day) {
		return models.ErrDayOutOfRange
	}
	e.activeDay = day
	return nil
}

// AddPlace appends the place to the end of the day. Adding a place the day
// already holds leaves the list untouched and reports OutcomeAlreadyPresent.
// Coordinates are taken as given; backfilling them is the caller's job.
func (e *Editor) AddPlace(day int, place models.Place) (Outcome, error) {
	if place.ID == 0 {
		return OutcomeUnchanged, models.ErrInvalidPlace
	}
	if !e.hasDay(day) {
		return OutcomeUnchanged, models.ErrDayOutOfRange
	}
	if indexOf(e.plan[day], place.ID) >= 0 {
		return OutcomeAlreadyPresent, nil
	}

	places := append(slices.Clone(e.plan[day]), models.NewPlannedPlace(place))
	e.plan[day] = normalizeDay(day, places)
	return OutcomeAdded, nil
}

// RemovePlace drops the place from the day and closes the gap in visit order.
func (e *Editor) RemovePlace(day int, placeID int64) Outcome {
	places, ok := e.plan[day]
	if !ok {
		return OutcomeNotFound
	}
	idx := indexOf(places, placeID)
	if idx < 0 {
		return OutcomeNotFound
	}

	e.plan[day] = normalizeDay(day, slices.Delete(slices.Clone(places), idx, idx+1))
	return OutcomeRemoved
}

// Reorder moves the dragged place to the drop target's position within the active day.
func (e *Editor) Reorder(fromPlaceID, toPlaceID int64) Outcome {
	places := e.plan[e.activeDay]
	from := indexOf(places, fromPlaceID)
	to := indexOf(places, toPlaceID)
	if from < 0 || to < 0 {
		return OutcomeNotFound
	}
	if from == to {
		return OutcomeUnchanged
	}

	e.plan[e.activeDay] = normalizeDay(e.activeDay, arrayMove(places, from, to))
	return OutcomeMoved
}

// SetDateRange recomputes the day list. Lists for surviving days are kept,
// days past the new range are dropped and new days start empty. The active
// day resets to day 1 when it no longer exists.
func (e *Editor) SetDateRange(startDate, endDate string) {
	e.days = DayList(startDate, endDate)

	next := make(models.Plan, len(e.days))
	for _, d := range e.days {
		next[d.Day] = normalizeDay(d.Day, e.plan[d.Day])
	}
	e.plan = next

	if !e.hasDay(e.activeDay) {
		e.activeDay = firstDay(e.days)
	}
}

// ApplySuggestedPlan overwrites the whole plan with a day -> place-name mapping.
// Names are resolved against the catalog; names that do not resolve and days
// outside the trip are skipped without error.
func (e *Editor) ApplySuggestedPlan(suggested map[int][]string, catalog []models.Place) ApplyResult {
	byName := make(map[string]models.Place, len(catalog))
	for _, p := range catalog {
		key := normalizeName(p.Name)
		if _, exists := byName[key]; !exists && p.ID != 0 {
			byName[key] = p
		}
	}

	result := ApplyResult{Skipped: []string{}}
	next := make(models.Plan, len(e.days))
	for _, d := range e.days {
		next[d.Day] = []models.PlannedPlace{}
	}

	dayNumbers := make([]int, 0, len(suggested))
	for day := range suggested {
		dayNumbers = append(dayNumbers, day)
	}
	sort.Ints(dayNumbers)

	for _, day := range dayNumbers {
		names := suggested[day]
		if !e.hasDay(day) {
			result.Skipped = append(result.Skipped, names...)
			continue
		}
		for _, name := range names {
			place, ok := byName[normalizeName(name)]
			if !ok {
				result.Skipped = append(result.Skipped, name)
				continue
			}
			if indexOf(next[day], place.ID) >= 0 {
				continue
			}
			next[day] = append(next[day], models.NewPlannedPlace(place))
			result.Matched++
		}
	}

	for day, places := range next {
		next[day] = normalizeDay(day, places)
	}
	e.plan = next
	e.activeDay = firstDay(e.days)
	return result
}

// Details flattens the plan into detail rows with visit order taken from list position.
func (e *Editor) Details(tripID int64) []models.TripPlanDetail {
	details := make([]models.TripPlanDetail, 0, e.plan.PlaceCount())
	for _, d := range e.days {
		for i, p := range e.plan[d.Day] {
			details = append(details, models.TripPlanDetail{
				TripID:     tripID,
				DayNumber:  d.Day,
				VisitOrder: i + 1,
				PlaceID:    p.PlaceID,
			})
		}
	}
	return details
}

func (e *Editor) hasDay(day int) bool {
	return day >= 1 && day <= len(e.days)
}

func firstDay(days []models.TripDay) int {
	if len(days) == 0 {
		return 0
	}
	return 1
}

// normalizeDay returns a fresh slice with duplicates removed and visit order
// and day number rewritten from list position.
func normalizeDay(day int, places []models.PlannedPlace) []models.PlannedPlace {
	out := make([]models.PlannedPlace, 0, len(places))
	for _, p := range places {
		if indexOf(out, p.PlaceID) >= 0 {
			continue
		}
		p.DayNumber = day
		p.VisitOrder = len(out) + 1
		out = append(out, p)
	}
	return out
}

func indexOf(places []models.PlannedPlace, placeID int64) int {
	return slices.IndexFunc(places, func(p models.PlannedPlace) bool {
		return p.PlaceID == placeID
	})
}

func arrayMove(places []models.PlannedPlace, from, to int) []models.PlannedPlace {
	out := slices.Clone(places)
	item := out[from]
	out = slices.Delete(out, from, from+1)
	return slices.Insert(out, to, item)
}

// normalizeName folds case and Unicode composition so that AI output such as
// decomposed Hangul or different capitalisation still matches catalog names.
func normalizeName(name string) string {
	folded := cases.Fold().String(norm.NFC.String(name))
	return strings.Join(strings.Fields(folded), " ")
}

package planner

import (
	"time"

	"github.com/FACorreiaa/backpackor/internal/app/models"
)

const dateLayout = "2006-01-02"

// MaxTripDays bounds the length of a single trip.
const MaxTripDays = 30

const secondsPerDay = 24 * 60 * 60

// DayList derives the ordered trip days for an inclusive date range.
// It returns an empty list when a date is missing or unparseable, or when end precedes start.
func DayList(start, end string) []models.TripDay {
	startDate, endDate, ok := parseRange(start, end)
	if !ok {
		return []models.TripDay{}
	}

	days := make([]models.TripDay, 0, daysBetween(startDate, endDate)+1)
	for d, day := startDate, 1; !d.After(endDate); d, day = d.AddDate(0, 0, 1), day+1 {
		days = append(days, models.TripDay{Day: day, Date: d.Format(dateLayout)})
	}
	return days
}

// DayCount is len(DayList(start, end)) without building the list.
func DayCount(start, end string) int {
	startDate, endDate, ok := parseRange(start, end)
	if !ok {
		return 0
	}
	return daysBetween(startDate, endDate) + 1
}

// ValidDate reports whether s is an ISO calendar date.
func ValidDate(s string) bool {
	_, err := time.Parse(dateLayout, s)
	return err == nil
}

func parseRange(start, end string) (time.Time, time.Time, bool) {
	if start == "" || end == "" {
		return time.Time{}, time.Time{}, false
	}
	startDate, err := time.Parse(dateLayout, start)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	endDate, err := time.Parse(dateLayout, end)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	if endDate.Before(startDate) {
		return time.Time{}, time.Time{}, false
	}
	return startDate, endDate, true
}

// daysBetween counts whole calendar days; both dates are UTC midnights.
// Unix seconds do not saturate the way time.Duration does past ~292 years.
func daysBetween(a, b time.Time) int {
	return int((b.Unix() - a.Unix()) / secondsPerDay)
}

// CheckTripLength rejects ranges longer than MaxTripDays.
func CheckTripLength(start, end string) error {
	if DayCount(start, end) > MaxTripDays {
		return models.NewValidationError("trips can be at most %d days long", MaxTripDays)
	}
	return nil
}

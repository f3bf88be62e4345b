package drafts

import (
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/FACorreiaa/backpackor/internal/app/models"
)

// Encode serializes a draft with the reduced place fields used for preview and map rendering.
func Encode(d models.Draft) ([]byte, error) {
	if d.Plan == nil {
		d.Plan = models.Plan{}
	}
	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("failed to encode draft: %w", err)
	}
	return data, nil
}

type wireDraft struct {
	TripID    flexNumber             `json:"trip_id"`
	Title     string                 `json:"title"`
	StartDate string                 `json:"start_date"`
	EndDate   string                 `json:"end_date"`
	ActiveDay flexNumber             `json:"active_day"`
	Plan      map[string][]wirePlace `json:"plan"`
}

type wirePlace struct {
	PlaceID    flexNumber `json:"place_id"`
	Name       string     `json:"place_name"`
	Address    string     `json:"place_address"`
	ImageURL   string     `json:"place_image"`
	Latitude   flexNumber `json:"latitude"`
	Longitude  flexNumber `json:"longitude"`
	Rating     flexNumber `json:"average_rating"`
	VisitOrder flexNumber `json:"visit_order"`
}

// Decode rebuilds a draft. Day keys become integers and keys that are not
// positive integers are skipped. Numeric fields accept numbers or numeric
// strings; anything else decodes as null or zero. Entries without a usable
// place id are dropped. When several keys name the same day ("1", " 01"),
// the canonical key wins, otherwise the first in sorted order.
func Decode(data []byte) (models.Draft, error) {
	var w wireDraft
	if err := json.Unmarshal(data, &w); err != nil {
		return models.Draft{}, fmt.Errorf("failed to decode draft: %w", err)
	}

	d := models.Draft{
		TripID:    w.TripID.Int64Ptr(),
		Title:     w.Title,
		StartDate: w.StartDate,
		EndDate:   w.EndDate,
		ActiveDay: int(w.ActiveDay.Int64()),
		Plan:      make(models.Plan, len(w.Plan)),
	}
	if d.TripID != nil && *d.TripID <= 0 {
		d.TripID = nil
	}

	for day, key := range dayKeys(w.Plan) {
		places := w.Plan[key]
		out := make([]models.PlannedPlace, 0, len(places))
		for _, p := range places {
			id := p.PlaceID.Int64()
			if id <= 0 {
				continue
			}
			out = append(out, models.PlannedPlace{
				PlaceID:    id,
				Name:       p.Name,
				Address:    p.Address,
				ImageURL:   p.ImageURL,
				Latitude:   p.Latitude.Float64Ptr(),
				Longitude:  p.Longitude.Float64Ptr(),
				Rating:     p.Rating.Float64(),
				VisitOrder: int(p.VisitOrder.Int64()),
				DayNumber:  day,
			})
		}
		d.Plan[day] = out
	}
	return d, nil
}

// dayKeys picks one raw key per day number.
func dayKeys(plan map[string][]wirePlace) map[int]string {
	chosen := make(map[int]string, len(plan))
	for _, key := range slices.Sorted(maps.Keys(plan)) {
		day, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil || day < 1 {
			continue
		}
		prev, seen := chosen[day]
		canonical := strconv.Itoa(day)
		if seen && (prev == canonical || key != canonical) {
			continue
		}
		chosen[day] = key
	}
	return chosen
}

// flexNumber accepts a JSON number, a numeric string, or anything else as "absent".
type flexNumber struct {
	value float64
	valid bool
}

func (n *flexNumber) UnmarshalJSON(b []byte) error {
	*n = flexNumber{}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return nil
	}
	switch t := v.(type) {
	case float64:
		n.value, n.valid = t, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			n.value, n.valid = f, true
		}
	}
	return nil
}

func (n flexNumber) Float64() float64 {
	if !n.valid {
		return 0
	}
	return n.value
}

func (n flexNumber) Float64Ptr() *float64 {
	if !n.valid {
		return nil
	}
	v := n.value
	return &v
}

func (n flexNumber) Int64() int64 {
	if !n.valid {
		return 0
	}
	return int64(n.value)
}

func (n flexNumber) Int64Ptr() *int64 {
	if !n.valid {
		return nil
	}
	v := int64(n.value)
	return &v
}

// Package geo computes the map payload for an itinerary: numbered markers,
// one polyline per day and haversine distance sums.
package geo

import (
	"math"

	"github.com/FACorreiaa/backpackor/internal/app/models"
)

type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
	MinLng float64 `json:"min_lng"`
	MaxLng float64 `json:"max_lng"`
}

// Marker is a numbered pin; Order is the place's visit order within its day.
type Marker struct {
	PlaceID int64   `json:"place_id"`
	Name    string  `json:"place_name"`
	Day     int     `json:"day"`
	Order   int     `json:"order"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

type DayRoute struct {
	Day        int      `json:"day"`
	Date       string   `json:"date"`
	Color      string   `json:"color"`
	Markers    []Marker `json:"markers"`
	Path       []Point  `json:"path"`
	DistanceKm float64  `json:"distance_km"`
	// Unmapped counts places of the day without usable coordinates.
	Unmapped int `json:"unmapped"`
}

type MapPayload struct {
	Center          Point      `json:"center"`
	Bounds          *Bounds    `json:"bounds,omitempty"`
	Days            []DayRoute `json:"days"`
	TotalDistanceKm float64    `json:"total_distance_km"`
}

// DefaultCenter is used when nothing in the plan has coordinates (Seoul City Hall).
var DefaultCenter = Point{Lat: 37.5665, Lng: 126.9780}

var dayColors = []string{"#FF6B6B", "#4D96FF", "#6BCB77", "#FFD93D", "#9B5DE5", "#F15BB5", "#00BBF9"}

// DayColor returns the polyline colour of a 1-based day.
func DayColor(day int) string {
	if day < 1 {
		return dayColors[0]
	}
	return dayColors[(day-1)%len(dayColors)]
}

// BuildRoutes lays out one route per trip day in day order. Places without
// valid coordinates are counted but left off the map.
func BuildRoutes(days []models.TripDay, plan models.Plan) MapPayload {
	payload := MapPayload{Days: make([]DayRoute, 0, len(days))}
	var all []Point

	for _, d := range days {
		route := DayRoute{
			Day:     d.Day,
			Date:    d.Date,
			Color:   DayColor(d.Day),
			Markers: []Marker{},
			Path:    []Point{},
		}
		for i, p := range plan[d.Day] {
			if p.Latitude == nil || p.Longitude == nil || !ValidateCoordinates(*p.Latitude, *p.Longitude) {
				route.Unmapped++
				continue
			}
			pt := Point{Lat: *p.Latitude, Lng: *p.Longitude}
			if n := len(route.Path); n > 0 {
				route.DistanceKm += Haversine(route.Path[n-1], pt)
			}
			route.Path = append(route.Path, pt)
			route.Markers = append(route.Markers, Marker{
				PlaceID: p.PlaceID,
				Name:    p.Name,
				Day:     d.Day,
				Order:   i + 1,
				Lat:     pt.Lat,
				Lng:     pt.Lng,
			})
		}
		route.DistanceKm = round2(route.DistanceKm)
		payload.TotalDistanceKm += route.DistanceKm
		all = append(all, route.Path...)
		payload.Days = append(payload.Days, route)
	}

	payload.TotalDistanceKm = round2(payload.TotalDistanceKm)
	payload.Center = CalculateCenterPoint(all, DefaultCenter)
	payload.Bounds = CalculateBounds(all)
	return payload
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

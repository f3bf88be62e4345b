package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/backpackor/internal/app/models"
)

func f(v float64) *float64 { return &v }

func TestHaversine(t *testing.T) {
	seoul := Point{Lat: 37.5665, Lng: 126.9780}
	busan := Point{Lat: 35.1796, Lng: 129.0756}

	assert.InDelta(t, 325.0, Haversine(seoul, busan), 5.0)
	assert.Zero(t, Haversine(seoul, seoul))
}

func TestValidateCoordinates(t *testing.T) {
	assert.True(t, ValidateCoordinates(37.5, 127.0))
	assert.False(t, ValidateCoordinates(0, 0))
	assert.False(t, ValidateCoordinates(91, 10))
	assert.False(t, ValidateCoordinates(10, -181))
}

func TestCalculateCenterAndBounds(t *testing.T) {
	points := []Point{{Lat: 37, Lng: 127}, {Lat: 35, Lng: 129}, {Lat: 0, Lng: 0}}

	center := CalculateCenterPoint(points, DefaultCenter)
	assert.InDelta(t, 36.0, center.Lat, 1e-9)
	assert.InDelta(t, 128.0, center.Lng, 1e-9)

	b := CalculateBounds(points)
	require.NotNil(t, b)
	assert.Equal(t, Bounds{MinLat: 35, MaxLat: 37, MinLng: 127, MaxLng: 129}, *b)

	assert.Equal(t, DefaultCenter, CalculateCenterPoint(nil, DefaultCenter))
	assert.Nil(t, CalculateBounds(nil))
}

func TestBuildRoutes(t *testing.T) {
	days := []models.TripDay{{Day: 1, Date: "2025-03-01"}, {Day: 2, Date: "2025-03-02"}, {Day: 3, Date: "2025-03-03"}}
	plan := models.Plan{
		1: {
			{PlaceID: 1, Name: "A", Latitude: f(37.5665), Longitude: f(126.9780), VisitOrder: 1, DayNumber: 1},
			{PlaceID: 2, Name: "B", VisitOrder: 2, DayNumber: 1},
			{PlaceID: 3, Name: "C", Latitude: f(37.5796), Longitude: f(126.9770), VisitOrder: 3, DayNumber: 1},
		},
		2: {
			{PlaceID: 4, Name: "D", Latitude: f(35.1796), Longitude: f(129.0756), VisitOrder: 1, DayNumber: 2},
		},
		3: {},
	}

	payload := BuildRoutes(days, plan)
	require.Len(t, payload.Days, 3)

	day1 := payload.Days[0]
	assert.Equal(t, DayColor(1), day1.Color)
	require.Len(t, day1.Markers, 2)
	assert.Equal(t, 1, day1.Markers[0].Order)
	assert.Equal(t, 3, day1.Markers[1].Order)
	assert.Equal(t, 1, day1.Unmapped)
	assert.Len(t, day1.Path, 2)
	assert.InDelta(t, 1.45, day1.DistanceKm, 0.1)

	day2 := payload.Days[1]
	assert.Len(t, day2.Markers, 1)
	assert.Zero(t, day2.DistanceKm)

	assert.Empty(t, payload.Days[2].Markers)
	assert.NotNil(t, payload.Bounds)
	assert.Equal(t, day1.DistanceKm, payload.TotalDistanceKm)
}

func TestBuildRoutes_NoCoordinates(t *testing.T) {
	days := []models.TripDay{{Day: 1, Date: "2025-03-01"}}
	payload := BuildRoutes(days, models.Plan{1: {{PlaceID: 1, Name: "A"}}})

	assert.Equal(t, DefaultCenter, payload.Center)
	assert.Nil(t, payload.Bounds)
	assert.Equal(t, 1, payload.Days[0].Unmapped)
}

func TestDayColorCycles(t *testing.T) {
	assert.Equal(t, DayColor(1), DayColor(1+len(dayColors)))
	assert.NotEqual(t, DayColor(1), DayColor(2))
}

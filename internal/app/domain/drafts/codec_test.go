package drafts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/backpackor/internal/app/models"
)

func f(v float64) *float64 { return &v }

func sampleDraft() models.Draft {
	tripID := int64(42)
	return models.Draft{
		TripID:    &tripID,
		Title:     "Busan weekend",
		StartDate: "2025-03-01",
		EndDate:   "2025-03-02",
		ActiveDay: 2,
		Plan: models.Plan{
			1: {
				{PlaceID: 1, Name: "Haeundae", Address: "Busan", ImageURL: "https://img/1.jpg", Latitude: f(35.15), Longitude: f(129.16), Rating: 4.7, VisitOrder: 1, DayNumber: 1},
			},
			2: {
				{PlaceID: 2, Name: "Gamcheon", VisitOrder: 1, DayNumber: 2},
				{PlaceID: 3, Name: "Jagalchi", Latitude: f(35.09), Longitude: f(129.03), VisitOrder: 2, DayNumber: 2},
			},
		},
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	original := sampleDraft()

	data, err := Encode(original)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)

	assert.Equal(t, original, decoded)
}

func TestEncode_NilPlan(t *testing.T) {
	data, err := Encode(models.Draft{Title: "empty"})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"plan":{}`)
}

func TestDecode_CollidingDayKeys(t *testing.T) {
	t.Run("canonical key wins", func(t *testing.T) {
		raw := `{"title":"Seoul","plan":{" 01":[{"place_id":2}],"1":[{"place_id":1}],"01":[{"place_id":3}]}}`
		for i := 0; i < 20; i++ {
			d, err := Decode([]byte(raw))
			require.NoError(t, err)
			require.Len(t, d.Plan[1], 1)
			assert.Equal(t, int64(1), d.Plan[1][0].PlaceID)
		}
	})

	t.Run("first sorted key without a canonical one", func(t *testing.T) {
		raw := `{"title":"Seoul","plan":{"02":[{"place_id":5}]," 2":[{"place_id":4}]}}`
		for i := 0; i < 20; i++ {
			d, err := Decode([]byte(raw))
			require.NoError(t, err)
			require.Len(t, d.Plan[2], 1)
			assert.Equal(t, int64(4), d.Plan[2][0].PlaceID)
		}
	})
}

func TestDecode_Defensive(t *testing.T) {
	raw := `{
		"trip_id": "17",
		"title": "Seoul",
		"start_date": "2025-03-01",
		"end_date": "2025-03-03",
		"active_day": "two",
		"plan": {
			"1": [
				{"place_id": "5", "place_name": "A", "latitude": "37.5", "longitude": null, "average_rating": "n/a", "visit_order": "1"},
				{"place_id": "abc", "place_name": "dropped"},
				{"place_id": 6, "place_name": "B", "latitude": {"nested": true}, "visit_order": 2}
			],
			"x": [{"place_id": 7}],
			"0": [{"place_id": 8}]
		}
	}`

	d, err := Decode([]byte(raw))
	require.NoError(t, err)

	require.NotNil(t, d.TripID)
	assert.Equal(t, int64(17), *d.TripID)
	assert.Equal(t, 0, d.ActiveDay)
	require.Len(t, d.Plan, 1)
	require.Len(t, d.Plan[1], 2)

	first := d.Plan[1][0]
	assert.Equal(t, int64(5), first.PlaceID)
	require.NotNil(t, first.Latitude)
	assert.InDelta(t, 37.5, *first.Latitude, 1e-9)
	assert.Nil(t, first.Longitude)
	assert.Zero(t, first.Rating)
	assert.Equal(t, 1, first.VisitOrder)
	assert.Equal(t, 1, first.DayNumber)

	second := d.Plan[1][1]
	assert.Equal(t, int64(6), second.PlaceID)
	assert.Nil(t, second.Latitude)
}

func TestDecode_NullTripID(t *testing.T) {
	d, err := Decode([]byte(`{"trip_id": null, "plan": {}}`))
	require.NoError(t, err)
	assert.Nil(t, d.TripID)
}

func TestDecode_NotJSON(t *testing.T) {
	_, err := Decode([]byte(`not json`))
	assert.Error(t, err)
}

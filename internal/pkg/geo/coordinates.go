package geo

import "math"

const earthRadiusKm = 6371.0

// ValidateCoordinates checks if latitude and longitude are valid.
// The (0, 0) pair and zero on either axis are treated as missing data.
func ValidateCoordinates(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180 && lat != 0 && lng != 0
}

// Haversine returns the great-circle distance between two points in kilometres.
func Haversine(a, b Point) float64 {
	lat1, lat2 := toRadians(a.Lat), toRadians(b.Lat)
	dLat := lat2 - lat1
	dLng := toRadians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// CalculateCenterPoint averages the valid points, or returns fallback when there are none.
func CalculateCenterPoint(points []Point, fallback Point) Point {
	var latSum, lngSum float64
	n := 0
	for _, p := range points {
		if !ValidateCoordinates(p.Lat, p.Lng) {
			continue
		}
		latSum += p.Lat
		lngSum += p.Lng
		n++
	}
	if n == 0 {
		return fallback
	}
	return Point{Lat: latSum / float64(n), Lng: lngSum / float64(n)}
}

// CalculateBounds returns the bounding box of the valid points, or nil when there are none.
func CalculateBounds(points []Point) *Bounds {
	var b *Bounds
	for _, p := range points {
		if !ValidateCoordinates(p.Lat, p.Lng) {
			continue
		}
		if b == nil {
			b = &Bounds{MinLat: p.Lat, MaxLat: p.Lat, MinLng: p.Lng, MaxLng: p.Lng}
			continue
		}
		b.MinLat = math.Min(b.MinLat, p.Lat)
		b.MaxLat = math.Max(b.MaxLat, p.Lat)
		b.MinLng = math.Min(b.MinLng, p.Lng)
		b.MaxLng = math.Max(b.MaxLng, p.Lng)
	}
	return b
}

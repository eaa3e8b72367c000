package navigation

import (
	"math"

	"wms/internal/models"
)

const earthRadiusMeters = 6371000.0

func radians(deg float64) float64 { return deg * math.Pi / 180 }
func degrees(rad float64) float64 { return rad * 180 / math.Pi }

// Bearing returns the initial great-circle bearing from start to end in
// degrees clockwise from north, in [0, 360).
func Bearing(start, end models.LatLng) float64 {
	lat1 := radians(start.Latitude)
	lat2 := radians(end.Latitude)
	dLng := radians(end.Longitude - start.Longitude)

	y := math.Sin(dLng) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLng)

	b := math.Mod(degrees(math.Atan2(y, x))+360, 360)
	if b == 360 {
		b = 0
	}
	return b
}

// Distance returns the haversine distance between a and b in meters.
func Distance(a, b models.LatLng) float64 {
	lat1 := radians(a.Latitude)
	lat2 := radians(b.Latitude)
	dLat := lat2 - lat1
	dLng := radians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}

// Compass names the 8-point compass direction of a bearing. Any angle is
// accepted; negative and >= 360 bearings wrap.
func Compass(bearing float64) string {
	points := [...]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}
	i := int(math.Mod(math.Mod(bearing, 360)+360+22.5, 360) / 45)
	return points[i%len(points)]
}

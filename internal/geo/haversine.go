package geo

import (
	"dispatch-route-service/internal/domain"
	"math"
)

// EarthRadiusKm is the mean Earth radius used by DistanceKm.
const EarthRadiusKm = 6371.0

// DistanceKm returns the great-circle (haversine) distance in kilometers
// between two points given in degrees.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	return EarthRadiusKm * centralAngle(a)
}

// centralAngle converts the haversine term a into radians. Rounding can push
// a slightly outside [0, 1] for near-antipodal points, so it is clamped.
func centralAngle(a float64) float64 {
	a = math.Max(0, math.Min(1, a))
	return 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// Between returns DistanceKm for two coordinates.
func Between(a, b domain.Coordinates) float64 {
	return DistanceKm(a.Lat, a.Lon, b.Lat, b.Lon)
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

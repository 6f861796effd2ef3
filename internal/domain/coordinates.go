package domain

import "strconv"

// Immutable geographic coordinates (longitude, latitude) in degrees.
// No range validation is applied; upstream services are trusted.
type Coordinates struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// Return coordinates as [lon, lat] for external API compatibility.
func (c Coordinates) CoordsToList() []float64 { return []float64{c.Lon, c.Lat} }

// Key renders "lon,lat" with full precision; used as a stable cache key.
func (c Coordinates) Key() string {
	return strconv.FormatFloat(c.Lon, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lat, 'f', -1, 64)
}

package ports

import (
	"context"
	"dispatch-route-service/internal/domain"
)

// Contract for resolving a free-text place name to coordinates.
type Geocoder interface {
	// Return the best matching coordinates for the place name.
	Geocode(ctx context.Context, place string) (domain.Coordinates, error)
}

package ports

import (
	"context"
	"dispatch-route-service/internal/domain"
)

// Persistent place -> coordinates lookup used in front of a Geocoder.
type GeocodeCache interface {
	// Return cached coordinates for the given places; misses are absent from the map.
	GetMany(ctx context.Context, places []string) (map[string]domain.Coordinates, error)
	PutMany(ctx context.Context, results map[string]domain.Coordinates) error
}

// Route candidate lookup keyed by the start/end coordinate pair.
type RouteCache interface {
	// ok is false on a miss.
	Get(ctx context.Context, start, end domain.Coordinates) (_ []domain.RouteCandidate, ok bool, err error)
	Put(ctx context.Context, start, end domain.Coordinates, routes []domain.RouteCandidate) error
}

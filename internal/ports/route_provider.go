package ports

import (
	"context"
	"dispatch-route-service/internal/domain"
)

// Contract for enumerating candidate driving routes between two points.
type RouteProvider interface {
	// Return alternative routes from start to end. An empty slice with a
	// nil error means the provider found no routes.
	GetRoutes(ctx context.Context, start, end domain.Coordinates) ([]domain.RouteCandidate, error)
}

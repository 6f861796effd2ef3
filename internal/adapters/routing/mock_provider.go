package routing

import (
	"context"
	"dispatch-route-service/internal/domain"
	"fmt"
	"sync"
)

type MockPlace struct {
	Name string
	At   domain.Coordinates
}

type MockRoute struct {
	From, To string
	Routes   []domain.RouteCandidate
}

// MockProvider is an in-memory Geocoder and RouteProvider keyed by place name.
// Route lookups for unknown pairs return no routes rather than an error.
type MockProvider struct {
	mu     sync.Mutex
	places map[string]domain.Coordinates
	routes map[string][]domain.RouteCandidate
	calls  map[string]int
}

func NewMockProvider(places []MockPlace, routes []MockRoute) *MockProvider {
	p := &MockProvider{
		places: make(map[string]domain.Coordinates, len(places)),
		routes: make(map[string][]domain.RouteCandidate, len(routes)),
		calls:  make(map[string]int),
	}
	for _, pl := range places {
		p.places[normalize(pl.Name)] = pl.At
	}
	for _, r := range routes {
		from, okFrom := p.places[normalize(r.From)]
		to, okTo := p.places[normalize(r.To)]
		if !okFrom || !okTo {
			continue
		}
		p.routes[from.Key()+"|"+to.Key()] = r.Routes
	}
	return p
}

func (p *MockProvider) Geocode(ctx context.Context, place string) (domain.Coordinates, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls["geocode"]++

	c, ok := p.places[normalize(place)]
	if !ok {
		return domain.Coordinates{}, fmt.Errorf("no geocode results for %q", place)
	}
	return c, nil
}

func (p *MockProvider) GetRoutes(ctx context.Context, start, end domain.Coordinates) ([]domain.RouteCandidate, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls["routes"]++

	r := p.routes[start.Key()+"|"+end.Key()]
	return append([]domain.RouteCandidate(nil), r...), nil
}

// Calls returns how many times op ("geocode" or "routes") was invoked.
func (p *MockProvider) Calls(op string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[op]
}

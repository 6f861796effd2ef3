package routing

import (
	"context"
	"dispatch-route-service/internal/domain"
	"dispatch-route-service/internal/platform/metrics"
	"dispatch-route-service/internal/platform/obs"
	"dispatch-route-service/internal/ports"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ORSConfig holds OpenRouteService connection settings.
type ORSConfig struct {
	APIKey  string
	BaseURL string
	Profile string
	Timeout time.Duration
	// Alternatives is the requested number of alternative routes (ORS caps it at 3).
	Alternatives int
	// Country restricts geocoding results (ISO alpha-2/3); empty means worldwide.
	Country string
}

// ORSClient implements ports.Geocoder and ports.RouteProvider using
// OpenRouteService.
//
// It coordinates:
//   - Place name normalization
//   - Optional read-through geocode and route caches
//   - External API calls with retry/backoff
//
// The client is safe for concurrent use.
type ORSClient struct {
	session      *http.Client
	apiKey       string
	baseURL      string
	profile      string
	alternatives int
	country      string
	geocodeCache ports.GeocodeCache
	routeCache   ports.RouteCache
	retry        retryPolicy
	logger       *zap.Logger
}

func NewORSClient(
	cfg ORSConfig,
	geocodeCache ports.GeocodeCache,
	routeCache ports.RouteCache,
	logger *zap.Logger,
) (*ORSClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("ORS api key is empty")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openrouteservice.org"
	}
	if cfg.Profile == "" {
		cfg.Profile = "driving-car"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Alternatives <= 0 {
		cfg.Alternatives = 3
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ORSClient{
		session:      &http.Client{Timeout: cfg.Timeout},
		apiKey:       cfg.APIKey,
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		profile:      cfg.Profile,
		alternatives: cfg.Alternatives,
		country:      cfg.Country,
		geocodeCache: geocodeCache,
		routeCache:   routeCache,
		retry:        defaultRetryPolicy(),
		logger:       logger,
	}, nil
}

// normalize ensures consistent cache keys by collapsing whitespace.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Geocode resolves a place name, consulting the geocode cache first.
func (o *ORSClient) Geocode(ctx context.Context, place string) (_ domain.Coordinates, err error) {
	defer obs.Time(ctx, "ors.Geocode")(&err)

	norm := normalize(place)
	if norm == "" {
		return domain.Coordinates{}, errors.New("geocode: place must be non-empty")
	}

	if o.geocodeCache != nil {
		hits, err := o.geocodeCache.GetMany(ctx, []string{norm})
		if err != nil {
			// A broken cache degrades to direct lookups.
			o.logger.Warn("geocode cache read failed", zap.String("place", norm), zap.Error(err))
		} else if c, ok := hits[norm]; ok {
			metrics.CacheHits.WithLabelValues("geocode").Inc()
			return c, nil
		}
		metrics.CacheMisses.WithLabelValues("geocode").Inc()
	}

	c, err := o.geocodeOne(ctx, norm)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("retrieving coordinates for %q: %w", norm, err)
	}

	if o.geocodeCache != nil {
		if err := o.geocodeCache.PutMany(ctx, map[string]domain.Coordinates{norm: c}); err != nil {
			o.logger.Warn("geocode cache write failed", zap.String("place", norm), zap.Error(err))
		}
	}

	return c, nil
}

// GetRoutes returns alternative driving routes, consulting the route cache first.
// Empty results are not cached so a later call can still find routes.
func (o *ORSClient) GetRoutes(
	ctx context.Context,
	start domain.Coordinates,
	end domain.Coordinates,
) (_ []domain.RouteCandidate, err error) {
	defer obs.Time(ctx, "ors.GetRoutes")(&err)

	if o.routeCache != nil {
		cached, ok, err := o.routeCache.Get(ctx, start, end)
		if err != nil {
			o.logger.Warn("route cache read failed", zap.String("start", start.Key()), zap.String("end", end.Key()), zap.Error(err))
		} else if ok {
			metrics.CacheHits.WithLabelValues("routes").Inc()
			return cached, nil
		}
		metrics.CacheMisses.WithLabelValues("routes").Inc()
	}

	routes, err := o.fetchDirections(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("fetching directions: %w", err)
	}

	if o.routeCache != nil && len(routes) > 0 {
		if err := o.routeCache.Put(ctx, start, end, routes); err != nil {
			o.logger.Warn("route cache write failed", zap.Error(err))
		}
	}

	return routes, nil
}

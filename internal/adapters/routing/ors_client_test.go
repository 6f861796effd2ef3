package routing

import (
	"context"
	"dispatch-route-service/internal/domain"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memGeocodeCache struct {
	mu   sync.Mutex
	data map[string]domain.Coordinates
}

func (m *memGeocodeCache) GetMany(_ context.Context, places []string) (map[string]domain.Coordinates, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]domain.Coordinates{}
	for _, p := range places {
		if c, ok := m.data[p]; ok {
			out[p] = c
		}
	}
	return out, nil
}

func (m *memGeocodeCache) PutMany(_ context.Context, results map[string]domain.Coordinates) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range results {
		m.data[k] = v
	}
	return nil
}

type memRouteCache struct {
	mu   sync.Mutex
	data map[string][]domain.RouteCandidate
}

func (m *memRouteCache) Get(_ context.Context, start, end domain.Coordinates) ([]domain.RouteCandidate, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.data[start.Key()+"|"+end.Key()]
	return r, ok, nil
}

func (m *memRouteCache) Put(_ context.Context, start, end domain.Coordinates, routes []domain.RouteCandidate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[start.Key()+"|"+end.Key()] = routes
	return nil
}

func newTestClient(t *testing.T, srv *httptest.Server, gc *memGeocodeCache, rc *memRouteCache) *ORSClient {
	t.Helper()
	cfg := ORSConfig{APIKey: "test-key", BaseURL: srv.URL, Timeout: 2 * time.Second}

	var c *ORSClient
	var err error
	switch {
	case gc != nil && rc != nil:
		c, err = NewORSClient(cfg, gc, rc, nil)
	case gc != nil:
		c, err = NewORSClient(cfg, gc, nil, nil)
	case rc != nil:
		c, err = NewORSClient(cfg, nil, rc, nil)
	default:
		c, err = NewORSClient(cfg, nil, nil, nil)
	}
	require.NoError(t, err)
	c.retry = retryPolicy{maxAttempts: 3, backoff: time.Millisecond, maxBackoff: 5 * time.Millisecond}
	return c
}

func TestNewORSClientRequiresKey(t *testing.T) {
	_, err := NewORSClient(ORSConfig{APIKey: "  "}, nil, nil, nil)
	assert.Error(t, err)
}

func TestGeocode(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/geocode/search", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "Phoenix, AZ", r.URL.Query().Get("text"))
		assert.Equal(t, "1", r.URL.Query().Get("size"))
		_, _ = w.Write([]byte(`{"features":[{"geometry":{"coordinates":[-112.074,33.4484]}}]}`))
	}))
	defer srv.Close()

	gc := &memGeocodeCache{data: map[string]domain.Coordinates{}}
	c := newTestClient(t, srv, gc, nil)

	got, err := c.Geocode(context.Background(), "  Phoenix,   AZ ")
	require.NoError(t, err)
	assert.Equal(t, domain.Coordinates{Lon: -112.074, Lat: 33.4484}, got)

	// Second lookup is served from the cache.
	got, err = c.Geocode(context.Background(), "Phoenix, AZ")
	require.NoError(t, err)
	assert.Equal(t, -112.074, got.Lon)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGeocodeNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"features":[]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, nil, nil)
	_, err := c.Geocode(context.Background(), "Nowhere")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no geocode results")
}

func TestGeocodeRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"features":[{"geometry":{"coordinates":[1,2]}}]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, nil, nil)
	got, err := c.Geocode(context.Background(), "Somewhere")
	require.NoError(t, err)
	assert.Equal(t, domain.Coordinates{Lon: 1, Lat: 2}, got)
	assert.Equal(t, int32(3), calls.Load())
}

func TestGeocodeDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"error":"invalid key"}`, http.StatusForbidden)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, nil, nil)
	_, err := c.Geocode(context.Background(), "Somewhere")
	require.Error(t, err)

	var he *httpStatusError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusForbidden, he.Code)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGetRoutes(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/directions/driving-car/geojson", r.URL.Path)

		var body directionsRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, [][]float64{{-112.074, 33.4484}, {-111.8315, 33.4152}}, body.Coordinates)
		if assert.NotNil(t, body.AlternativeRoutes) {
			assert.Equal(t, 3, body.AlternativeRoutes.TargetCount)
		}

		_, _ = w.Write([]byte(`{"features":[
			{"properties":{"segments":[{"distance":60000,"duration":4800}],"summary":{"distance":1,"duration":1}}},
			{"properties":{"summary":{"distance":80000,"duration":3600}}}
		]}`))
	}))
	defer srv.Close()

	rc := &memRouteCache{data: map[string][]domain.RouteCandidate{}}
	c := newTestClient(t, srv, nil, rc)

	start := domain.Coordinates{Lon: -112.074, Lat: 33.4484}
	end := domain.Coordinates{Lon: -111.8315, Lat: 33.4152}

	routes, err := c.GetRoutes(context.Background(), start, end)
	require.NoError(t, err)
	assert.Equal(t, []domain.RouteCandidate{
		{DistanceMeters: 60000, DurationSeconds: 4800},
		{DistanceMeters: 80000, DurationSeconds: 3600},
	}, routes)

	_, err = c.GetRoutes(context.Background(), start, end)
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGetRoutesEmptyIsNotCached(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"features":[]}`))
	}))
	defer srv.Close()

	rc := &memRouteCache{data: map[string][]domain.RouteCandidate{}}
	c := newTestClient(t, srv, nil, rc)

	for i := 0; i < 2; i++ {
		routes, err := c.GetRoutes(context.Background(), domain.Coordinates{}, domain.Coordinates{Lon: 1, Lat: 1})
		require.NoError(t, err)
		assert.Empty(t, routes)
	}
	assert.Equal(t, int32(2), calls.Load())
}

func TestDoWithRetryStopsOnCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, nil, nil)
	c.retry = retryPolicy{maxAttempts: 10, backoff: time.Hour, maxBackoff: time.Hour}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Geocode(ctx, "Somewhere")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestParseRetryAfter(t *testing.T) {
	assert.Equal(t, 3*time.Second, parseRetryAfter("3"))
	assert.Zero(t, parseRetryAfter(""))
	assert.Zero(t, parseRetryAfter("soon"))
}

func TestMockProvider(t *testing.T) {
	p := NewMockProvider(
		[]MockPlace{
			{Name: "Phoenix", At: domain.Coordinates{Lon: -112.074, Lat: 33.4484}},
			{Name: "Mesa", At: domain.Coordinates{Lon: -111.8315, Lat: 33.4152}},
		},
		[]MockRoute{
			{From: "Phoenix", To: "Mesa", Routes: []domain.RouteCandidate{{DistanceMeters: 1, DurationSeconds: 2}}},
			{From: "Phoenix", To: "Unknown", Routes: []domain.RouteCandidate{{DistanceMeters: 9}}},
		},
	)
	ctx := context.Background()

	from, err := p.Geocode(ctx, " Phoenix ")
	require.NoError(t, err)
	to, err := p.Geocode(ctx, "Mesa")
	require.NoError(t, err)

	routes, err := p.GetRoutes(ctx, from, to)
	require.NoError(t, err)
	assert.Len(t, routes, 1)

	back, err := p.GetRoutes(ctx, to, from)
	require.NoError(t, err)
	assert.Empty(t, back)

	_, err = p.Geocode(ctx, "Atlantis")
	assert.Error(t, err)
	assert.Equal(t, 3, p.Calls("geocode"))
	assert.Equal(t, 2, p.Calls("routes"))
}

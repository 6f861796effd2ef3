package cache

import (
	"context"
	"database/sql"
	"dispatch-route-service/internal/domain"
	"dispatch-route-service/internal/platform/obs"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// SQLRouteCache stores route candidates per start/end pair as JSONB.
// Entries older than TTL are treated as misses; a zero TTL never expires.
type SQLRouteCache struct {
	DB  *sql.DB
	TTL time.Duration
}

func NewSQLRouteCache(db *sql.DB, ttl time.Duration) *SQLRouteCache {
	return &SQLRouteCache{DB: db, TTL: ttl}
}

func (s *SQLRouteCache) Get(
	ctx context.Context,
	start, end domain.Coordinates,
) (_ []domain.RouteCandidate, _ bool, err error) {
	defer obs.Time(ctx, "route.cache.Get")(&err)

	if s.DB == nil {
		return nil, false, errors.New("route cache: db is nil")
	}

	var raw []byte
	var cachedAt time.Time
	err = s.DB.QueryRowContext(ctx, `
	SELECT routes, cached_at
	FROM route_cache
	WHERE start_key = $1 AND end_key = $2;
	`, start.Key(), end.Key()).Scan(&raw, &cachedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get route cache: %w", err)
	}

	if s.TTL > 0 && time.Since(cachedAt) > s.TTL {
		return nil, false, nil
	}

	var routes []domain.RouteCandidate
	if err := json.Unmarshal(raw, &routes); err != nil {
		return nil, false, fmt.Errorf("get route cache: decode routes: %w", err)
	}

	return routes, true, nil
}

func (s *SQLRouteCache) Put(
	ctx context.Context,
	start, end domain.Coordinates,
	routes []domain.RouteCandidate,
) (err error) {
	defer obs.Time(ctx, "route.cache.Put")(&err)

	if s.DB == nil {
		return errors.New("route cache: db is nil")
	}

	raw, err := json.Marshal(routes)
	if err != nil {
		return fmt.Errorf("put route cache: encode routes: %w", err)
	}

	_, err = s.DB.ExecContext(ctx, `
	INSERT INTO route_cache (start_key, end_key, routes, cached_at)
	VALUES ($1, $2, $3::jsonb, now())
	ON CONFLICT (start_key, end_key) DO UPDATE
	SET routes = EXCLUDED.routes,
		cached_at = EXCLUDED.cached_at;
	`, start.Key(), end.Key(), string(raw))
	if err != nil {
		return fmt.Errorf("put route cache: %w", err)
	}

	return nil
}

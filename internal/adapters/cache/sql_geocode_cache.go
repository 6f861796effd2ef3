package cache

import (
	"context"
	"database/sql"
	"dispatch-route-service/internal/domain"
	"dispatch-route-service/internal/platform/obs"
	"errors"
	"fmt"
	"strings"
)

// SQLGeocodeCache is a Postgres-backed cache mapping place names to coordinates.
type SQLGeocodeCache struct {
	DB *sql.DB
}

func NewSQLGeocodeCache(db *sql.DB) *SQLGeocodeCache {
	return &SQLGeocodeCache{DB: db}
}

// uniquePlaces trims places and drops blanks and duplicates, keeping order.
func uniquePlaces(places []string) []string {
	seen := make(map[string]struct{}, len(places))
	out := make([]string, 0, len(places))
	for _, p := range places {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

func (s *SQLGeocodeCache) GetMany(
	ctx context.Context,
	places []string,
) (_ map[string]domain.Coordinates, err error) {
	defer obs.Time(ctx, "geocode.cache.GetMany")(&err)

	if s.DB == nil {
		return nil, errors.New("geocode cache: db is nil")
	}

	uniq := uniquePlaces(places)
	if len(uniq) == 0 {
		return map[string]domain.Coordinates{}, nil
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT place, lon, lat
	FROM geocode_cache
	WHERE place = ANY($1::text[]);
	`, uniq)
	if err != nil {
		return nil, fmt.Errorf("get geocode cache: query: %w", err)
	}
	defer rows.Close()

	out := make(map[string]domain.Coordinates, len(uniq))
	for rows.Next() {
		var place string
		var c domain.Coordinates
		if err := rows.Scan(&place, &c.Lon, &c.Lat); err != nil {
			return nil, fmt.Errorf("get geocode cache: scan: %w", err)
		}
		out[place] = c
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get geocode cache: rows: %w", err)
	}

	return out, nil
}

// PutMany upserts all mappings in one statement.
func (s *SQLGeocodeCache) PutMany(ctx context.Context, results map[string]domain.Coordinates) (err error) {
	defer obs.Time(ctx, "geocode.cache.PutMany")(&err)

	if s.DB == nil {
		return errors.New("geocode cache: db is nil")
	}
	if len(results) == 0 {
		return nil
	}

	places := make([]string, 0, len(results))
	lons := make([]float64, 0, len(results))
	lats := make([]float64, 0, len(results))
	for place, c := range results {
		place = strings.TrimSpace(place)
		if place == "" {
			return errors.New("put geocode cache: empty place key")
		}
		places = append(places, place)
		lons = append(lons, c.Lon)
		lats = append(lats, c.Lat)
	}

	_, err = s.DB.ExecContext(ctx, `
	INSERT INTO geocode_cache (place, lon, lat)
	SELECT * FROM unnest($1::text[], $2::float8[], $3::float8[])
	ON CONFLICT (place) DO UPDATE
	SET lon = EXCLUDED.lon,
		lat = EXCLUDED.lat,
		updated_at = now();
	`, places, lons, lats)
	if err != nil {
		return fmt.Errorf("put geocode cache: %w", err)
	}

	return nil
}

package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
)

// InitSchema creates the cache and decision tables if they do not exist.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	statements := []string{
		`
	CREATE TABLE IF NOT EXISTS geocode_cache (
		place TEXT PRIMARY KEY,
		lon DOUBLE PRECISION NOT NULL,
		lat DOUBLE PRECISION NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`,
		`
	CREATE TABLE IF NOT EXISTS route_cache (
		start_key TEXT NOT NULL,
		end_key TEXT NOT NULL,
		routes JSONB NOT NULL,
		cached_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (start_key, end_key)
	);
	`,
		`
	CREATE TABLE IF NOT EXISTS dispatch_decisions (
		id UUID PRIMARY KEY,
		origin TEXT NOT NULL,
		destination TEXT NOT NULL,
		from_lon DOUBLE PRECISION NOT NULL,
		from_lat DOUBLE PRECISION NOT NULL,
		to_lon DOUBLE PRECISION NOT NULL,
		to_lat DOUBLE PRECISION NOT NULL,
		candidates JSONB NOT NULL,
		best_index INTEGER NOT NULL,
		used_fallback BOOLEAN NOT NULL DEFAULT false,
		decided_at TIMESTAMPTZ NOT NULL
	);
	`,
		`
	CREATE INDEX IF NOT EXISTS idx_dispatch_decisions_decided_at
	ON dispatch_decisions (decided_at DESC);
	`,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type GeocodeSeed struct {
	Place string  `json:"place"`
	Lon   float64 `json:"lon"`
	Lat   float64 `json:"lat"`
}

// ParseGeocodeSeeds validates seed records read from a JSON array.
func ParseGeocodeSeeds(raw []byte) ([]GeocodeSeed, error) {
	var data []GeocodeSeed
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("seed geocodes: parse json: %w", err)
	}

	out := make([]GeocodeSeed, 0, len(data))
	for i, item := range data {
		place := strings.Join(strings.Fields(item.Place), " ")
		if place == "" {
			return nil, fmt.Errorf("seed geocodes: item %d: place cannot be empty", i+1)
		}
		if math.Abs(item.Lat) > 90 || math.Abs(item.Lon) > 180 {
			return nil, fmt.Errorf("seed geocodes: item %d (%q): coordinates out of range", i+1, place)
		}
		out = append(out, GeocodeSeed{Place: place, Lon: item.Lon, Lat: item.Lat})
	}
	return out, nil
}

// SeedGeocodesFromJSON preloads the geocode cache from a JSON file of
// {"place", "lon", "lat"} records. Existing places are overwritten.
func SeedGeocodesFromJSON(ctx context.Context, db *sql.DB, jsonPath string) (int, error) {
	raw, err := os.ReadFile(jsonPath)
	if err != nil {
		return 0, fmt.Errorf("seed geocodes: read %q: %w", jsonPath, err)
	}

	rows, err := ParseGeocodeSeeds(raw)
	if err != nil {
		return 0, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("seed geocodes: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO geocode_cache (place, lon, lat)
	VALUES ($1, $2, $3)
	ON CONFLICT (place) DO UPDATE
	SET lon = EXCLUDED.lon,
		lat = EXCLUDED.lat,
		updated_at = now();
	`)
	if err != nil {
		return 0, fmt.Errorf("seed geocodes: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.Place, r.Lon, r.Lat); err != nil {
			return 0, fmt.Errorf("seed geocodes: insert %q: %w", r.Place, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("seed geocodes: commit tx: %w", err)
	}

	return len(rows), nil
}

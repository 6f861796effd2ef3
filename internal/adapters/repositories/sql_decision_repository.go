package repositories

import (
	"context"
	"database/sql"
	"dispatch-route-service/internal/domain"
	"dispatch-route-service/internal/platform/obs"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// SQLDecisionRepository persists dispatch decisions in Postgres.
type SQLDecisionRepository struct {
	DB *sql.DB
}

func NewSQLDecisionRepository(db *sql.DB) *SQLDecisionRepository {
	return &SQLDecisionRepository{DB: db}
}

const maxListLimit = 500

func (r *SQLDecisionRepository) SaveDecision(ctx context.Context, d *domain.DispatchDecision) (err error) {
	defer obs.Time(ctx, "decisions.Save")(&err)

	if r.DB == nil {
		return errors.New("decision repository: db is nil")
	}
	if d == nil {
		return errors.New("save decision: decision is nil")
	}

	candidates, err := json.Marshal(d.Candidates)
	if err != nil {
		return fmt.Errorf("save decision %s: encode candidates: %w", d.ID, err)
	}

	_, err = r.DB.ExecContext(ctx, `
	INSERT INTO dispatch_decisions (
		id, origin, destination,
		from_lon, from_lat, to_lon, to_lat,
		candidates, best_index, used_fallback, decided_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, $9, $10, $11)
	ON CONFLICT (id) DO NOTHING;
	`,
		d.ID.String(), d.Origin, d.Destination,
		d.From.Lon, d.From.Lat, d.To.Lon, d.To.Lat,
		string(candidates), d.Best.Index, d.UsedFallback, d.DecidedAt,
	)
	if err != nil {
		return fmt.Errorf("save decision %s: %w", d.ID, err)
	}

	return nil
}

// ListDecisions returns up to limit decisions, newest first. Non-positive
// limits default to 20.
func (r *SQLDecisionRepository) ListDecisions(
	ctx context.Context,
	limit int,
) (_ []*domain.DispatchDecision, err error) {
	defer obs.Time(ctx, "decisions.List")(&err)

	if r.DB == nil {
		return nil, errors.New("decision repository: db is nil")
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	rows, err := r.DB.QueryContext(ctx, `
	SELECT id, origin, destination,
		from_lon, from_lat, to_lon, to_lat,
		candidates, best_index, used_fallback, decided_at
	FROM dispatch_decisions
	ORDER BY decided_at DESC, id
	LIMIT $1;
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list decisions: query: %w", err)
	}
	defer rows.Close()

	var out []*domain.DispatchDecision
	for rows.Next() {
		var (
			d          domain.DispatchDecision
			id         string
			candidates []byte
			bestIndex  int
		)
		if err := rows.Scan(
			&id, &d.Origin, &d.Destination,
			&d.From.Lon, &d.From.Lat, &d.To.Lon, &d.To.Lat,
			&candidates, &bestIndex, &d.UsedFallback, &d.DecidedAt,
		); err != nil {
			return nil, fmt.Errorf("list decisions: scan: %w", err)
		}

		if d.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("list decisions: parse id %q: %w", id, err)
		}
		if err := json.Unmarshal(candidates, &d.Candidates); err != nil {
			return nil, fmt.Errorf("list decisions %s: decode candidates: %w", id, err)
		}
		if bestIndex < 0 || bestIndex >= len(d.Candidates) {
			return nil, fmt.Errorf("list decisions %s: best index %d out of range", id, bestIndex)
		}
		d.Best = d.Candidates[bestIndex]
		d.DecidedAt = d.DecidedAt.UTC()

		out = append(out, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list decisions: rows: %w", err)
	}

	return out, nil
}

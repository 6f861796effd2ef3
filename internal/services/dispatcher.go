package services

import (
	"context"
	"dispatch-route-service/internal/domain"
	"dispatch-route-service/internal/platform/metrics"
	"dispatch-route-service/internal/platform/obs"
	"dispatch-route-service/internal/ports"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultFallbackRoutes are scored when the route provider returns no routes.
func DefaultFallbackRoutes() []domain.RouteCandidate {
	return []domain.RouteCandidate{
		{DistanceMeters: 60000, DurationSeconds: 4800},
		{DistanceMeters: 80000, DurationSeconds: 3600},
	}
}

// Dispatcher resolves two place names, selects the most profitable route
// between them and drives a simulated vehicle to the destination.
//
// Geocoding and routing failures are returned as *domain.UpstreamError
// without retry; adapters own their own retry policy.
type Dispatcher struct {
	geocoder  ports.Geocoder
	routes    ports.RouteProvider
	model     EconomicModel
	simulator MovementSimulator
	reporter  ports.Reporter
	decisions ports.DecisionRepository
	fallback  []domain.RouteCandidate
	logger    *zap.Logger
	now       func() time.Time
}

type DispatcherOption func(*Dispatcher)

// WithFallbackRoutes replaces the fallback list; an empty list disables it.
func WithFallbackRoutes(routes []domain.RouteCandidate) DispatcherOption {
	return func(d *Dispatcher) { d.fallback = append([]domain.RouteCandidate(nil), routes...) }
}

// WithDecisionRepository persists every decision made by Plan.
func WithDecisionRepository(repo ports.DecisionRepository) DispatcherOption {
	return func(d *Dispatcher) { d.decisions = repo }
}

func WithClock(now func() time.Time) DispatcherOption {
	return func(d *Dispatcher) { d.now = now }
}

func NewDispatcher(
	geocoder ports.Geocoder,
	routes ports.RouteProvider,
	model EconomicModel,
	simulator MovementSimulator,
	reporter ports.Reporter,
	logger *zap.Logger,
	opts ...DispatcherOption,
) (*Dispatcher, error) {
	if geocoder == nil || routes == nil {
		return nil, errors.New("new dispatcher: geocoder and route provider are required")
	}
	if err := model.Validate(); err != nil {
		return nil, fmt.Errorf("new dispatcher: %w", err)
	}
	if reporter == nil {
		reporter = nopReporter{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	d := &Dispatcher{
		geocoder:  geocoder,
		routes:    routes,
		model:     model,
		simulator: simulator,
		reporter:  reporter,
		fallback:  DefaultFallbackRoutes(),
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}

	return d, nil
}

// Plan geocodes origin and destination, fetches candidate routes and
// selects the best one.
func (d *Dispatcher) Plan(ctx context.Context, origin, destination string) (_ *domain.DispatchDecision, err error) {
	defer obs.Time(ctx, "dispatch.Plan")(&err)

	origin = strings.TrimSpace(origin)
	destination = strings.TrimSpace(destination)
	if origin == "" || destination == "" {
		return nil, errors.New("plan dispatch: origin and destination must be non-empty")
	}

	from, err := d.geocode(ctx, origin)
	if err != nil {
		return nil, err
	}
	to, err := d.geocode(ctx, destination)
	if err != nil {
		return nil, err
	}

	routes, err := d.routes.GetRoutes(ctx, from, to)
	if err != nil {
		metrics.UpstreamErrors.WithLabelValues("routes").Inc()
		return nil, &domain.UpstreamError{
			Op:    "get routes",
			Input: from.Key() + " -> " + to.Key(),
			Err:   err,
		}
	}

	usedFallback := false
	if len(routes) == 0 {
		d.logger.Warn("route provider returned no routes, using fallback routes",
			zap.String("origin", origin),
			zap.String("destination", destination),
			zap.Int("fallback_count", len(d.fallback)),
		)
		routes = d.fallback
		usedFallback = true
	}

	id := uuid.New()
	rep := decisionReporter{next: d.reporter, id: id}
	scorer := NewRouteScorer(d.model, rep)

	best, scored, err := scorer.Select(routes)
	if err != nil {
		return nil, fmt.Errorf("plan dispatch %q -> %q: %w", origin, destination, err)
	}
	rep.RouteSelected(best)

	metrics.CandidatesScored.Add(float64(len(scored)))
	metrics.DecisionsTotal.WithLabelValues(strconv.FormatBool(usedFallback)).Inc()

	decision := &domain.DispatchDecision{
		ID:           id,
		Origin:       origin,
		Destination:  destination,
		From:         from,
		To:           to,
		Candidates:   scored,
		Best:         best,
		UsedFallback: usedFallback,
		DecidedAt:    d.now().UTC(),
	}

	d.logger.Info("route selected",
		zap.String("decision_id", decision.ID.String()),
		zap.Int("candidates", len(scored)),
		zap.Int("best_index", best.Index),
		zap.Float64("best_score", best.Score),
		zap.Bool("fallback", usedFallback),
	)

	// Persistence is best-effort; a failed write must not lose the decision.
	if d.decisions != nil {
		if err := d.decisions.SaveDecision(ctx, decision); err != nil {
			d.logger.Warn("save decision failed", zap.String("decision_id", decision.ID.String()), zap.Error(err))
		}
	}

	return decision, nil
}

// Drive simulates the vehicle travelling from the decision's origin to its
// destination, reporting every step.
func (d *Dispatcher) Drive(ctx context.Context, decision *domain.DispatchDecision) (domain.SimulationResult, error) {
	if decision == nil {
		return domain.SimulationResult{}, errors.New("drive: decision must be non-nil")
	}

	rep := decisionReporter{next: d.reporter, id: decision.ID}
	res, err := d.simulator.Run(ctx, decision.From, decision.To, func(step domain.SimulationStep) {
		metrics.SimulationSteps.Inc()
		rep.VehicleMoved(step)
	})
	if err != nil {
		return domain.SimulationResult{}, fmt.Errorf("drive decision %s: %w", decision.ID, err)
	}
	res.DecisionID = decision.ID

	metrics.SimulationRuns.WithLabelValues(string(res.Outcome)).Inc()
	rep.SimulationFinished(res)

	d.logger.Info("simulation finished",
		zap.String("decision_id", decision.ID.String()),
		zap.String("outcome", string(res.Outcome)),
		zap.Int("steps", res.Steps),
		zap.Float64("remaining_km", res.DistanceRemainingKm),
	)

	return res, nil
}

// Recent returns the latest persisted decisions, or an error when no
// repository is configured.
func (d *Dispatcher) Recent(ctx context.Context, limit int) ([]*domain.DispatchDecision, error) {
	if d.decisions == nil {
		return nil, ErrNoDecisionStore
	}
	return d.decisions.ListDecisions(ctx, limit)
}

// ErrNoDecisionStore is returned by Recent when decisions are not persisted.
var ErrNoDecisionStore = errors.New("decision store not configured")

func (d *Dispatcher) geocode(ctx context.Context, place string) (domain.Coordinates, error) {
	c, err := d.geocoder.Geocode(ctx, place)
	if err != nil {
		metrics.UpstreamErrors.WithLabelValues("geocode").Inc()
		return domain.Coordinates{}, &domain.UpstreamError{Op: "geocode", Input: place, Err: err}
	}
	return c, nil
}

// decisionReporter stamps every event with the decision it belongs to, so
// a shared reporter can tell concurrent dispatches apart.
type decisionReporter struct {
	next ports.Reporter
	id   uuid.UUID
}

func (r decisionReporter) CandidateScored(sc domain.ScoredCandidate) {
	sc.DecisionID = r.id
	r.next.CandidateScored(sc)
}

func (r decisionReporter) RouteSelected(best domain.ScoredCandidate) {
	best.DecisionID = r.id
	r.next.RouteSelected(best)
}

func (r decisionReporter) VehicleMoved(step domain.SimulationStep) {
	step.DecisionID = r.id
	r.next.VehicleMoved(step)
}

func (r decisionReporter) SimulationFinished(res domain.SimulationResult) {
	res.DecisionID = r.id
	r.next.SimulationFinished(res)
}

type nopReporter struct{}

func (nopReporter) CandidateScored(domain.ScoredCandidate) {}
func (nopReporter) RouteSelected(domain.ScoredCandidate) {}
func (nopReporter) VehicleMoved(domain.SimulationStep) {}
func (nopReporter) SimulationFinished(domain.SimulationResult) {}

package events

import (
	"dispatch-route-service/internal/domain"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const (
	SubjectRouteScored   = "dispatch.route.scored"
	SubjectRouteSelected = "dispatch.route.selected"
)

// VehicleSubject returns the per-run subject for kind ("position" or "arrived").
func VehicleSubject(runID, kind string) string {
	return "dispatch.vehicle." + runID + "." + kind
}

type publisher interface {
	Publish(subject string, data []byte) error
}

// Connect dials NATS with reconnects enabled.
func Connect(url string) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name("dispatch-route-service"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return nc, nil
}

// Close drains nc so buffered events are flushed, logging any failure.
func Close(nc *nats.Conn, logger *zap.Logger) {
	drain(nc, logger)
}

type drainer interface {
	Drain() error
}

func drain(d drainer, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := d.Drain(); err != nil {
		logger.Warn("nats drain failed", zap.Error(err))
	}
}

// NATSReporter publishes dispatch progress as JSON events. Publish failures
// are logged and dropped.
//
// Events are keyed on the decision they carry. Events without one fall back
// to a run id fixed when the reporter is built.
type NATSReporter struct {
	pub    publisher
	runID  string
	logger *zap.Logger
	now    func() time.Time
}

func NewNATSReporter(nc *nats.Conn, logger *zap.Logger) *NATSReporter {
	return newReporter(nc, logger)
}

func newReporter(pub publisher, logger *zap.Logger) *NATSReporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NATSReporter{
		pub:    pub,
		runID:  uuid.NewString(),
		logger: logger,
		now:    time.Now,
	}
}

// RunID is the fallback id for events that carry no decision.
func (r *NATSReporter) RunID() string { return r.runID }

func (r *NATSReporter) run(decision uuid.UUID) string {
	if decision == uuid.Nil {
		return r.runID
	}
	return decision.String()
}

type candidateEvent struct {
	RunID          string  `json:"run_id"`
	Index          int     `json:"index"`
	DistanceMeters float64 `json:"distance_meters"`
	DurationSecs   float64 `json:"duration_seconds"`
	FuelCost       float64 `json:"fuel_cost"`
	Revenue        float64 `json:"revenue"`
	Score          float64 `json:"score"`
	At             int64   `json:"at"`
}

type positionEvent struct {
	RunID       string  `json:"run_id"`
	Step        int     `json:"step"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	RemainingKm float64 `json:"remaining_km"`
	At          int64   `json:"at"`
}

type finishedEvent struct {
	RunID       string  `json:"run_id"`
	Outcome     string  `json:"outcome"`
	Steps       int     `json:"steps"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	RemainingKm float64 `json:"remaining_km"`
	At          int64   `json:"at"`
}

func (r *NATSReporter) publish(subject string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		r.logger.Warn("encode event", zap.String("subject", subject), zap.Error(err))
		return
	}
	if err := r.pub.Publish(subject, data); err != nil {
		r.logger.Warn("publish event", zap.String("subject", subject), zap.Error(err))
	}
}

func (r *NATSReporter) candidate(sc domain.ScoredCandidate) candidateEvent {
	return candidateEvent{
		RunID:          r.run(sc.DecisionID),
		Index:          sc.Index,
		DistanceMeters: sc.DistanceMeters,
		DurationSecs:   sc.DurationSeconds,
		FuelCost:       sc.FuelCost,
		Revenue:        sc.Revenue,
		Score:          sc.Score,
		At:             r.now().UnixMilli(),
	}
}

func (r *NATSReporter) CandidateScored(sc domain.ScoredCandidate) {
	r.publish(SubjectRouteScored, r.candidate(sc))
}

func (r *NATSReporter) RouteSelected(best domain.ScoredCandidate) {
	r.publish(SubjectRouteSelected, r.candidate(best))
}

func (r *NATSReporter) VehicleMoved(step domain.SimulationStep) {
	run := r.run(step.DecisionID)
	r.publish(VehicleSubject(run, "position"), positionEvent{
		RunID:       run,
		Step:        step.Step,
		Lat:         step.Position.Lat,
		Lon:         step.Position.Lon,
		RemainingKm: step.DistanceRemainingKm,
		At:          r.now().UnixMilli(),
	})
}

// SimulationFinished publishes on the "arrived" subject for every outcome;
// the payload's outcome field tells them apart.
func (r *NATSReporter) SimulationFinished(res domain.SimulationResult) {
	run := r.run(res.DecisionID)
	r.publish(VehicleSubject(run, "arrived"), finishedEvent{
		RunID:       run,
		Outcome:     string(res.Outcome),
		Steps:       res.Steps,
		Lat:         res.Position.Lat,
		Lon:         res.Position.Lon,
		RemainingKm: res.DistanceRemainingKm,
		At:          r.now().UnixMilli(),
	})
}

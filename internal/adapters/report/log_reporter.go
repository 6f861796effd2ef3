package report

import (
	"dispatch-route-service/internal/domain"

	"go.uber.org/zap"
)

// LogReporter writes progress as structured log entries. Vehicle steps are
// logged at debug level.
type LogReporter struct {
	Logger *zap.Logger
}

func NewLogReporter(logger *zap.Logger) *LogReporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogReporter{Logger: logger}
}

func candidateFields(sc domain.ScoredCandidate) []zap.Field {
	return []zap.Field{
		zap.Int("index", sc.Index),
		zap.Float64("distance_km", sc.DistanceKm()),
		zap.Float64("time_min", sc.TimeMinutes),
		zap.Float64("fuel_cost", sc.FuelCost),
		zap.Float64("revenue", sc.Revenue),
		zap.Float64("score", sc.Score),
	}
}

func (l *LogReporter) CandidateScored(sc domain.ScoredCandidate) {
	l.Logger.Info("candidate scored", candidateFields(sc)...)
}

func (l *LogReporter) RouteSelected(best domain.ScoredCandidate) {
	l.Logger.Info("best route selected", candidateFields(best)...)
}

func (l *LogReporter) VehicleMoved(step domain.SimulationStep) {
	l.Logger.Debug("vehicle moved",
		zap.Int("step", step.Step),
		zap.Float64("lat", step.Position.Lat),
		zap.Float64("lon", step.Position.Lon),
		zap.Float64("remaining_km", step.DistanceRemainingKm),
	)
}

func (l *LogReporter) SimulationFinished(res domain.SimulationResult) {
	l.Logger.Info("simulation finished",
		zap.String("outcome", string(res.Outcome)),
		zap.Int("steps", res.Steps),
		zap.Float64("remaining_km", res.DistanceRemainingKm),
	)
}

package ports

import "dispatch-route-service/internal/domain"

// Reporter is the human/event facing sink for scoring and simulation progress.
// Implementations must not fail the caller; delivery problems are theirs to log.
type Reporter interface {
	CandidateScored(c domain.ScoredCandidate)
	RouteSelected(best domain.ScoredCandidate)
	VehicleMoved(step domain.SimulationStep)
	SimulationFinished(res domain.SimulationResult)
}

package report

import (
	"dispatch-route-service/internal/domain"
	"dispatch-route-service/internal/ports"
)

// Multi fans every event out to each non-nil reporter in order.
type Multi []ports.Reporter

func NewMulti(reporters ...ports.Reporter) Multi {
	out := make(Multi, 0, len(reporters))
	for _, r := range reporters {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

func (m Multi) CandidateScored(sc domain.ScoredCandidate) {
	for _, r := range m {
		r.CandidateScored(sc)
	}
}

func (m Multi) RouteSelected(best domain.ScoredCandidate) {
	for _, r := range m {
		r.RouteSelected(best)
	}
}

func (m Multi) VehicleMoved(step domain.SimulationStep) {
	for _, r := range m {
		r.VehicleMoved(step)
	}
}

func (m Multi) SimulationFinished(res domain.SimulationResult) {
	for _, r := range m {
		r.SimulationFinished(res)
	}
}

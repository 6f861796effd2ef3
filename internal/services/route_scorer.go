package services

import (
	"dispatch-route-service/internal/domain"
	"dispatch-route-service/internal/ports"
	"fmt"
)

// Score computes the model's fuel cost, revenue and score for a candidate.
func (m EconomicModel) Score(index int, c domain.RouteCandidate) domain.ScoredCandidate {
	timeMinutes := c.DurationSeconds / 60
	fuelCost := (c.DistanceMeters / m.MetersPerLitre) * m.FuelPricePerLitre
	revenue := m.BaseFare + timeMinutes*m.PricePerMinute + (c.DistanceMeters/1000)*m.PricePerKm

	return domain.ScoredCandidate{
		RouteCandidate: c,
		Index:          index,
		TimeMinutes:    timeMinutes,
		FuelCost:       fuelCost,
		Revenue:        revenue,
		Score:          fuelCost*m.FuelWeight + timeMinutes*m.TimeWeight - revenue*m.RevenueWeight,
	}
}

// RouteScorer ranks route candidates under an EconomicModel.
// It is stateless apart from its configuration and safe for concurrent use
// as long as the Reporter is.
type RouteScorer struct {
	Model    EconomicModel
	Reporter ports.Reporter
}

func NewRouteScorer(model EconomicModel, reporter ports.Reporter) *RouteScorer {
	return &RouteScorer{Model: model, Reporter: reporter}
}

// ScoreAll scores every candidate in input order, passing each to the
// Reporter as it is computed.
func (s *RouteScorer) ScoreAll(candidates []domain.RouteCandidate) []domain.ScoredCandidate {
	scored := make([]domain.ScoredCandidate, 0, len(candidates))
	for i, c := range candidates {
		sc := s.Model.Score(i, c)
		if s.Reporter != nil {
			s.Reporter.CandidateScored(sc)
		}
		scored = append(scored, sc)
	}
	return scored
}

// Select scores all candidates and returns the one with the lowest score
// together with the full scored list. Ties keep the earliest candidate.
func (s *RouteScorer) Select(
	candidates []domain.RouteCandidate,
) (best domain.ScoredCandidate, scored []domain.ScoredCandidate, err error) {
	if len(candidates) == 0 {
		return domain.ScoredCandidate{}, nil, fmt.Errorf("choose best route: %w", domain.ErrEmptyInput)
	}

	scored = s.ScoreAll(candidates)
	best = scored[0]
	for _, sc := range scored[1:] {
		if sc.Score < best.Score {
			best = sc
		}
	}

	return best, scored, nil
}

// ChooseBest returns the lowest-scoring candidate.
// It fails with domain.ErrEmptyInput when candidates is empty.
func (s *RouteScorer) ChooseBest(candidates []domain.RouteCandidate) (domain.ScoredCandidate, error) {
	best, _, err := s.Select(candidates)
	return best, err
}

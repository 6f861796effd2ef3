package services

import (
	"dispatch-route-service/internal/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingReporter struct {
	scored   []domain.ScoredCandidate
	selected []domain.ScoredCandidate
	steps    []domain.SimulationStep
	finished []domain.SimulationResult
}

func (r *recordingReporter) CandidateScored(c domain.ScoredCandidate) { r.scored = append(r.scored, c) }
func (r *recordingReporter) RouteSelected(c domain.ScoredCandidate) { r.selected = append(r.selected, c) }
func (r *recordingReporter) VehicleMoved(s domain.SimulationStep) { r.steps = append(r.steps, s) }
func (r *recordingReporter) SimulationFinished(res domain.SimulationResult) { r.finished = append(r.finished, res) }

func TestChooseBestWorkedExample(t *testing.T) {
	rep := &recordingReporter{}
	scorer := NewRouteScorer(DefaultEconomicModel(), rep)

	best, scored, err := scorer.Select([]domain.RouteCandidate{
		{DistanceMeters: 60000, DurationSeconds: 4800},
		{DistanceMeters: 80000, DurationSeconds: 3600},
	})
	require.NoError(t, err)
	require.Len(t, scored, 2)
	assert.Equal(t, 1, best.Index)

	first := scored[0]
	assert.InDelta(t, 22.2857, first.FuelCost, 1e-3)
	assert.Equal(t, 80.0, first.TimeMinutes)
	assert.Equal(t, 170.0, first.Revenue)
	assert.InDelta(t, -107.714, first.Score, 1e-3)

	assert.InDelta(t, 29.7143, best.FuelCost, 1e-3)
	assert.Equal(t, 60.0, best.TimeMinutes)
	assert.Equal(t, 200.0, best.Revenue)
	assert.InDelta(t, -140.286, best.Score, 1e-3)

	require.Len(t, rep.scored, 2)
	assert.Equal(t, 0, rep.scored[0].Index)
	assert.Equal(t, 1, rep.scored[1].Index)
}

func TestChooseBestSingleCandidate(t *testing.T) {
	scorer := NewRouteScorer(DefaultEconomicModel(), nil)

	best, err := scorer.ChooseBest([]domain.RouteCandidate{{DistanceMeters: 1000, DurationSeconds: 60}})
	require.NoError(t, err)
	assert.Equal(t, 0, best.Index)
}

func TestChooseBestEmpty(t *testing.T) {
	scorer := NewRouteScorer(DefaultEconomicModel(), nil)

	_, err := scorer.ChooseBest(nil)
	assert.ErrorIs(t, err, domain.ErrEmptyInput)
}

func TestChooseBestTieKeepsFirst(t *testing.T) {
	same := domain.RouteCandidate{DistanceMeters: 5000, DurationSeconds: 600}
	scorer := NewRouteScorer(DefaultEconomicModel(), nil)

	best, err := scorer.ChooseBest([]domain.RouteCandidate{same, same, same})
	require.NoError(t, err)
	assert.Equal(t, 0, best.Index)

	// All weights zero: every score is 0.
	flat := DefaultEconomicModel()
	flat.FuelWeight, flat.TimeWeight, flat.RevenueWeight = 0, 0, 0
	best, err = NewRouteScorer(flat, nil).ChooseBest([]domain.RouteCandidate{
		{DistanceMeters: 1, DurationSeconds: 1},
		{DistanceMeters: 99999, DurationSeconds: 99999},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, best.Index)
	assert.Zero(t, best.Score)
}

func TestChooseBestDoesNotMutateInput(t *testing.T) {
	in := []domain.RouteCandidate{
		{DistanceMeters: 60000, DurationSeconds: 4800},
		{DistanceMeters: 80000, DurationSeconds: 3600},
	}
	orig := append([]domain.RouteCandidate(nil), in...)

	_, err := NewRouteScorer(DefaultEconomicModel(), nil).ChooseBest(in)
	require.NoError(t, err)
	assert.Equal(t, orig, in)
}

func TestScoreAllKeepsOrder(t *testing.T) {
	scorer := NewRouteScorer(DefaultEconomicModel(), nil)

	scored := scorer.ScoreAll([]domain.RouteCandidate{
		{DistanceMeters: 80000, DurationSeconds: 3600},
		{DistanceMeters: 60000, DurationSeconds: 4800},
	})
	require.Len(t, scored, 2)
	assert.Equal(t, 0, scored[0].Index)
	assert.Equal(t, 80000.0, scored[0].DistanceMeters)

	assert.Empty(t, scorer.ScoreAll(nil))
}

package services

import (
	"context"
	"dispatch-route-service/internal/adapters/routing"
	"dispatch-route-service/internal/domain"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memDecisionRepo struct {
	mu      sync.Mutex
	saved   []*domain.DispatchDecision
	saveErr error
}

func (m *memDecisionRepo) SaveDecision(_ context.Context, d *domain.DispatchDecision) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, d)
	return nil
}

func (m *memDecisionRepo) ListDecisions(_ context.Context, limit int) ([]*domain.DispatchDecision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.DispatchDecision, 0, len(m.saved))
	for i := len(m.saved) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.saved[i])
	}
	return out, nil
}

type failingRoutes struct{ err error }

func (f failingRoutes) GetRoutes(context.Context, domain.Coordinates, domain.Coordinates) ([]domain.RouteCandidate, error) {
	return nil, f.err
}

var (
	phoenix = domain.Coordinates{Lon: 0, Lat: 0}
	mesa    = domain.Coordinates{Lon: 0.01, Lat: 0.01}
)

func testProvider(routes []domain.RouteCandidate) *routing.MockProvider {
	return routing.NewMockProvider(
		[]routing.MockPlace{{Name: "Phoenix", At: phoenix}, {Name: "Mesa", At: mesa}},
		[]routing.MockRoute{{From: "Phoenix", To: "Mesa", Routes: routes}},
	)
}

func newTestDispatcher(t *testing.T, p *routing.MockProvider, rep *recordingReporter, opts ...DispatcherOption) *Dispatcher {
	t.Helper()
	d, err := NewDispatcher(p, p, DefaultEconomicModel(), NewMovementSimulator(), rep, nil, opts...)
	require.NoError(t, err)
	return d
}

func TestDispatcherPlan(t *testing.T) {
	rep := &recordingReporter{}
	repo := &memDecisionRepo{}
	fixed := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)

	d := newTestDispatcher(t, testProvider([]domain.RouteCandidate{
		{DistanceMeters: 60000, DurationSeconds: 4800},
		{DistanceMeters: 80000, DurationSeconds: 3600},
	}), rep, WithDecisionRepository(repo), WithClock(func() time.Time { return fixed }))

	dec, err := d.Plan(context.Background(), " Phoenix ", "Mesa")
	require.NoError(t, err)

	assert.Equal(t, 1, dec.Best.Index)
	assert.False(t, dec.UsedFallback)
	assert.Equal(t, "Phoenix", dec.Origin)
	assert.Equal(t, phoenix, dec.From)
	assert.Equal(t, mesa, dec.To)
	assert.True(t, dec.DecidedAt.Equal(fixed))

	require.Len(t, rep.scored, 2)
	require.Len(t, rep.selected, 1)
	assert.Equal(t, 1, rep.selected[0].Index)

	require.Len(t, repo.saved, 1)
	assert.Equal(t, dec.ID, repo.saved[0].ID)

	recent, err := d.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, recent, 1)
}

func TestDispatcherEventsCarryDecisionID(t *testing.T) {
	rep := &recordingReporter{}
	d := newTestDispatcher(t, testProvider([]domain.RouteCandidate{{DistanceMeters: 1000, DurationSeconds: 60}}), rep)
	ctx := context.Background()

	first, err := d.Plan(ctx, "Phoenix", "Mesa")
	require.NoError(t, err)
	second, err := d.Plan(ctx, "Phoenix", "Mesa")
	require.NoError(t, err)
	require.NotEqual(t, first.ID, second.ID)

	require.Len(t, rep.scored, 2)
	assert.Equal(t, first.ID, rep.scored[0].DecisionID)
	assert.Equal(t, second.ID, rep.scored[1].DecisionID)
	require.Len(t, rep.selected, 2)
	assert.Equal(t, first.ID, rep.selected[0].DecisionID)
	assert.Equal(t, second.ID, rep.selected[1].DecisionID)

	// Stored candidates stay free of reporter bookkeeping.
	assert.Equal(t, uuid.Nil, first.Best.DecisionID)

	res, err := d.Drive(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, second.ID, res.DecisionID)
	for _, s := range rep.steps {
		assert.Equal(t, second.ID, s.DecisionID)
	}
	require.Len(t, rep.finished, 1)
	assert.Equal(t, second.ID, rep.finished[0].DecisionID)
}

func TestDispatcherPlanFallback(t *testing.T) {
	d := newTestDispatcher(t, testProvider(nil), &recordingReporter{})

	dec, err := d.Plan(context.Background(), "Phoenix", "Mesa")
	require.NoError(t, err)
	assert.True(t, dec.UsedFallback)
	assert.Len(t, dec.Candidates, 2)
	assert.Equal(t, 1, dec.Best.Index)
}

func TestDispatcherPlanNoFallbackIsEmptyInput(t *testing.T) {
	d := newTestDispatcher(t, testProvider(nil), &recordingReporter{}, WithFallbackRoutes(nil))

	_, err := d.Plan(context.Background(), "Phoenix", "Mesa")
	assert.ErrorIs(t, err, domain.ErrEmptyInput)
}

func TestDispatcherPlanGeocodeFailure(t *testing.T) {
	d := newTestDispatcher(t, testProvider(nil), &recordingReporter{})

	_, err := d.Plan(context.Background(), "Atlantis", "Mesa")
	var ue *domain.UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "geocode", ue.Op)
	assert.Equal(t, "Atlantis", ue.Input)
}

func TestDispatcherPlanRouteFailure(t *testing.T) {
	p := testProvider(nil)
	boom := errors.New("directions unavailable")

	d, err := NewDispatcher(p, failingRoutes{err: boom}, DefaultEconomicModel(), NewMovementSimulator(), nil, nil)
	require.NoError(t, err)

	_, err = d.Plan(context.Background(), "Phoenix", "Mesa")
	var ue *domain.UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "get routes", ue.Op)
	assert.ErrorIs(t, err, boom)
}

func TestDispatcherPlanSaveFailureIsNotFatal(t *testing.T) {
	repo := &memDecisionRepo{saveErr: errors.New("db down")}
	d := newTestDispatcher(t, testProvider([]domain.RouteCandidate{{DistanceMeters: 1000, DurationSeconds: 60}}),
		&recordingReporter{}, WithDecisionRepository(repo))

	_, err := d.Plan(context.Background(), "Phoenix", "Mesa")
	assert.NoError(t, err)
}

func TestDispatcherPlanRejectsBlankInput(t *testing.T) {
	d := newTestDispatcher(t, testProvider(nil), &recordingReporter{})

	_, err := d.Plan(context.Background(), "  ", "Mesa")
	assert.Error(t, err)
}

func TestDispatcherDrive(t *testing.T) {
	rep := &recordingReporter{}
	d := newTestDispatcher(t, testProvider([]domain.RouteCandidate{{DistanceMeters: 1000, DurationSeconds: 60}}), rep)

	dec, err := d.Plan(context.Background(), "Phoenix", "Mesa")
	require.NoError(t, err)

	res, err := d.Drive(context.Background(), dec)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeArrived, res.Outcome)
	assert.Equal(t, 20, res.Steps)
	assert.Len(t, rep.steps, 20)
	assert.Len(t, rep.finished, 1)
}

func TestDispatcherRecentWithoutStore(t *testing.T) {
	d := newTestDispatcher(t, testProvider(nil), &recordingReporter{})

	_, err := d.Recent(context.Background(), 5)
	assert.ErrorIs(t, err, ErrNoDecisionStore)
}

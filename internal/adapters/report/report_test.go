package report

import (
	"bytes"
	"dispatch-route-service/internal/domain"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var sample = domain.ScoredCandidate{
	RouteCandidate: domain.RouteCandidate{DistanceMeters: 80000, DurationSeconds: 3600},
	Index:          1,
	TimeMinutes:    60,
	FuelCost:       29.714285,
	Revenue:        200,
	Score:          -140.285714,
}

func TestConsoleReporterLines(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleReporter(&buf)

	c.CandidateScored(sample)
	c.RouteSelected(sample)
	c.VehicleMoved(domain.SimulationStep{
		Step:                1,
		Position:            domain.Coordinates{Lon: -112.0735, Lat: 33.44890},
		DistanceRemainingKm: 22.567,
	})
	c.SimulationFinished(domain.SimulationResult{Outcome: domain.OutcomeArrived, Steps: 20})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Route 2: 80.0 km, 60.0 min, Fuel Cost: 29.71, Revenue: 200.00, Score: -140.29", lines[0])
	assert.Equal(t, "Best Route Selected: Route 2 (80.0 km, 60.0 min, Score: -140.29)", lines[1])
	assert.Equal(t, "Driver at (33.44890, -112.07350) - Distance to target: 22.57 km", lines[2])
	assert.Equal(t, "Driver reached the destination!", lines[3])
}

func TestConsoleReporterEarlyEnd(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleReporter(&buf)

	c.SimulationFinished(domain.SimulationResult{Outcome: domain.OutcomeCancelled, Steps: 3})
	c.SimulationFinished(domain.SimulationResult{Outcome: domain.OutcomeStepLimit, Steps: 5, DistanceRemainingKm: 157.2})

	assert.Equal(t,
		"Simulation cancelled after 3 steps.\nStep limit reached after 5 steps, 157.20 km from the destination.\n",
		buf.String())
}

func TestLogReporter(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := NewLogReporter(zap.New(core))

	r.CandidateScored(sample)
	r.VehicleMoved(domain.SimulationStep{Step: 2})
	r.SimulationFinished(domain.SimulationResult{Outcome: domain.OutcomeStepLimit, Steps: 2})

	require.Equal(t, 3, logs.Len())
	entries := logs.All()
	assert.Equal(t, "candidate scored", entries[0].Message)
	assert.Equal(t, int64(1), entries[0].ContextMap()["index"])
	assert.Equal(t, zapcore.DebugLevel, entries[1].Level)
	assert.Equal(t, "step_limit", entries[2].ContextMap()["outcome"])
}

func TestMultiFansOut(t *testing.T) {
	var a, b bytes.Buffer
	m := NewMulti(NewConsoleReporter(&a), nil, NewConsoleReporter(&b))
	require.Len(t, m, 2)

	m.RouteSelected(sample)
	assert.Equal(t, a.String(), b.String())
	assert.NotEmpty(t, a.String())
}

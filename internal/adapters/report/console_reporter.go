package report

import (
	"dispatch-route-service/internal/domain"
	"fmt"
	"io"
	"sync"
)

// ConsoleReporter prints human-readable progress lines to W.
type ConsoleReporter struct {
	mu sync.Mutex
	W  io.Writer
}

func NewConsoleReporter(w io.Writer) *ConsoleReporter {
	return &ConsoleReporter{W: w}
}

func (c *ConsoleReporter) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	// Write errors on a terminal are not actionable.
	_, _ = fmt.Fprintf(c.W, format+"\n", args...)
}

func (c *ConsoleReporter) CandidateScored(sc domain.ScoredCandidate) {
	c.printf("Route %d: %.1f km, %.1f min, Fuel Cost: %.2f, Revenue: %.2f, Score: %.2f",
		sc.Index+1, sc.DistanceKm(), sc.TimeMinutes, sc.FuelCost, sc.Revenue, sc.Score)
}

func (c *ConsoleReporter) RouteSelected(best domain.ScoredCandidate) {
	c.printf("Best Route Selected: Route %d (%.1f km, %.1f min, Score: %.2f)",
		best.Index+1, best.DistanceKm(), best.TimeMinutes, best.Score)
}

func (c *ConsoleReporter) VehicleMoved(step domain.SimulationStep) {
	c.printf("Driver at (%.5f, %.5f) - Distance to target: %.2f km",
		step.Position.Lat, step.Position.Lon, step.DistanceRemainingKm)
}

func (c *ConsoleReporter) SimulationFinished(res domain.SimulationResult) {
	switch res.Outcome {
	case domain.OutcomeArrived:
		c.printf("Driver reached the destination!")
	case domain.OutcomeStepLimit:
		c.printf("Step limit reached after %d steps, %.2f km from the destination.", res.Steps, res.DistanceRemainingKm)
	default:
		c.printf("Simulation cancelled after %d steps.", res.Steps)
	}
}

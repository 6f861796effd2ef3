package domain

import "github.com/google/uuid"

// Outcome describes why a movement simulation stopped.
type Outcome string

const (
	OutcomeArrived   Outcome = "arrived"
	OutcomeCancelled Outcome = "cancelled"
	OutcomeStepLimit Outcome = "step_limit"
)

// One advance of the simulated vehicle. DecisionID links the step to the
// dispatch being driven, if any.
type SimulationStep struct {
	Step                int         `json:"step"`
	Position            Coordinates `json:"position"`
	DistanceRemainingKm float64     `json:"distance_remaining_km"`
	DecisionID          uuid.UUID   `json:"-"`
}

// Summary of a finished simulation run.
type SimulationResult struct {
	Outcome             Outcome     `json:"outcome"`
	Steps               int         `json:"steps"`
	Position            Coordinates `json:"position"`
	DistanceRemainingKm float64     `json:"distance_remaining_km"`
	DecisionID          uuid.UUID   `json:"-"`
}

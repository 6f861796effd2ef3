package services

import (
	"context"
	"dispatch-route-service/internal/domain"
	"dispatch-route-service/internal/geo"
	"errors"
	"math"
)

const (
	DefaultStepDegrees        = 0.0005
	DefaultArrivalThresholdKm = 0.05
)

// MovementSimulator advances a vehicle toward a target in fixed diagonal
// increments until it is within ArrivalThresholdKm of it.
//
// Each step adds StepDegrees to both latitude and longitude. This is a crude
// linear stepper, not a navigation model: a target that is not north-east
// of the start is never reached, which is what MaxSteps is for.
type MovementSimulator struct {
	StepDegrees        float64
	ArrivalThresholdKm float64
	// MaxSteps bounds a run; 0 means unlimited.
	MaxSteps int
	// Pacer is called between steps; nil runs without delay.
	Pacer Pacer
}

func NewMovementSimulator() MovementSimulator {
	return MovementSimulator{
		StepDegrees:        DefaultStepDegrees,
		ArrivalThresholdKm: DefaultArrivalThresholdKm,
	}
}

// Next is the pure step function: the position after one step from pos,
// and its distance to target in kilometers.
func (s MovementSimulator) Next(pos, target domain.Coordinates) (domain.Coordinates, float64) {
	next := domain.Coordinates{
		Lon: pos.Lon + s.StepDegrees,
		Lat: pos.Lat + s.StepDegrees,
	}
	return next, geo.Between(next, target)
}

// Run drives a vehicle from start toward target, calling onStep after every
// advance. The arrival check happens before each step, so a start already
// within the threshold performs no steps.
//
// Cancellation of ctx and reaching MaxSteps end the run early with the
// corresponding outcome; neither is reported as an error.
func (s MovementSimulator) Run(
	ctx context.Context,
	start domain.Coordinates,
	target domain.Coordinates,
	onStep func(domain.SimulationStep),
) (domain.SimulationResult, error) {
	if err := s.validate(); err != nil {
		return domain.SimulationResult{}, err
	}

	vehicle := domain.NewVehicle("", start)
	remaining := geo.Between(start, target)

	result := func(o domain.Outcome) domain.SimulationResult {
		return domain.SimulationResult{
			Outcome:             o,
			Steps:               vehicle.Steps,
			Position:            vehicle.Position,
			DistanceRemainingKm: remaining,
		}
	}

	for remaining > s.ArrivalThresholdKm {
		if ctx.Err() != nil {
			return result(domain.OutcomeCancelled), nil
		}
		if s.MaxSteps > 0 && vehicle.Steps >= s.MaxSteps {
			return result(domain.OutcomeStepLimit), nil
		}

		var next domain.Coordinates
		next, remaining = s.Next(vehicle.Position, target)
		vehicle.MoveTo(next)

		if onStep != nil {
			onStep(domain.SimulationStep{
				Step:                vehicle.Steps,
				Position:            next,
				DistanceRemainingKm: remaining,
			})
		}

		if remaining > s.ArrivalThresholdKm && s.Pacer != nil {
			if err := s.Pacer.Wait(ctx); err != nil {
				return result(domain.OutcomeCancelled), nil
			}
		}
	}

	return result(domain.OutcomeArrived), nil
}

func (s MovementSimulator) validate() error {
	if s.StepDegrees == 0 || math.IsNaN(s.StepDegrees) || math.IsInf(s.StepDegrees, 0) {
		return errors.New("simulate movement: step size must be a non-zero finite number")
	}
	if s.ArrivalThresholdKm < 0 || math.IsNaN(s.ArrivalThresholdKm) {
		return errors.New("simulate movement: arrival threshold must be non-negative")
	}
	if s.MaxSteps < 0 {
		return errors.New("simulate movement: max steps must be non-negative")
	}
	return nil
}

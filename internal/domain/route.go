package domain

import "github.com/google/uuid"

// A single proposed route between two points, characterized only by
// total driving distance and duration. Candidates are produced by a
// route provider and never mutated by scoring.
type RouteCandidate struct {
	DistanceMeters  float64 `json:"distance_meters" mapstructure:"distance_meters"`
	DurationSeconds float64 `json:"duration_seconds" mapstructure:"duration_seconds"`
}

// DistanceKm returns the candidate distance in kilometers.
func (r RouteCandidate) DistanceKm() float64 { return r.DistanceMeters / 1000 }

// DurationMinutes returns the candidate duration in minutes.
func (r RouteCandidate) DurationMinutes() float64 { return r.DurationSeconds / 60 }

// A RouteCandidate annotated with the economic model's derived figures.
// Index is the candidate's position in the scored input. DecisionID is set
// only on copies handed to reporters while a decision is being made.
type ScoredCandidate struct {
	RouteCandidate
	Index       int       `json:"index"`
	TimeMinutes float64   `json:"time_minutes"`
	FuelCost    float64   `json:"fuel_cost"`
	Revenue     float64   `json:"revenue"`
	Score       float64   `json:"score"`
	DecisionID  uuid.UUID `json:"-"`
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

// Represents the outcome of one dispatch request.
// A DispatchDecision records both resolved endpoints, every scored
// candidate in provider order, and the candidate the scorer selected.
// UsedFallback is set when the provider returned no routes and the
// configured fallback list was scored instead.
type DispatchDecision struct {
	ID           uuid.UUID         `json:"id"`
	Origin       string            `json:"origin"`
	Destination  string            `json:"destination"`
	From         Coordinates       `json:"from"`
	To           Coordinates       `json:"to"`
	Candidates   []ScoredCandidate `json:"candidates"`
	Best         ScoredCandidate   `json:"best"`
	UsedFallback bool              `json:"used_fallback"`
	DecidedAt    time.Time         `json:"decided_at"`
}

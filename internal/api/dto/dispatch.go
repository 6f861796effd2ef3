package dto

import "time"

type DispatchRequest struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
}

type CoordinatesResponse struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type CandidateResponse struct {
	Route           int     `json:"route"`
	DistanceKm      float64 `json:"distance_km"`
	DurationMinutes float64 `json:"duration_minutes"`
	FuelCost        float64 `json:"fuel_cost"`
	Revenue         float64 `json:"revenue"`
	Score           float64 `json:"score"`
}

type DecisionResponse struct {
	ID           string              `json:"id"`
	Origin       string              `json:"origin"`
	Destination  string              `json:"destination"`
	From         CoordinatesResponse `json:"from"`
	To           CoordinatesResponse `json:"to"`
	Candidates   []CandidateResponse `json:"candidates"`
	Best         CandidateResponse   `json:"best"`
	UsedFallback bool                `json:"used_fallback"`
	DecidedAt    time.Time           `json:"decided_at"`
}

type ListDecisionsResponse struct {
	Decisions []DecisionResponse `json:"decisions"`
}

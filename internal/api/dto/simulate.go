package dto

type CoordinatesRequest struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

type SimulateRequest struct {
	Start    CoordinatesRequest `json:"start"`
	Target   CoordinatesRequest `json:"target"`
	MaxSteps int                `json:"max_steps"`
}

type StepResponse struct {
	Step        int     `json:"step"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	RemainingKm float64 `json:"remaining_km"`
}

type SimulateResponse struct {
	Outcome     string              `json:"outcome"`
	Steps       int                 `json:"steps"`
	Position    CoordinatesResponse `json:"position"`
	RemainingKm float64             `json:"remaining_km"`
	Path        []StepResponse      `json:"path"`
}

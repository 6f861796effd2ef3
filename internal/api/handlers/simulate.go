package handlers

import (
	"dispatch-route-service/internal/api/dto"
	"dispatch-route-service/internal/domain"
	"dispatch-route-service/internal/services"
	"math"
	"net/http"

	"go.uber.org/zap"
)

// MaxSimulationSteps bounds a single /simulate request.
const MaxSimulationSteps = 10000

type SimulateHandler struct {
	Simulator services.MovementSimulator
}

// Simulate runs the movement simulator without pacing and returns every step.
func (h *SimulateHandler) Simulate(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.SimulateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	start, ok := toCoordinates(req.Start)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "start must have finite lat and lon")
		return
	}
	target, ok := toCoordinates(req.Target)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "target must have finite lat and lon")
		return
	}
	if req.MaxSteps < 0 || req.MaxSteps > MaxSimulationSteps {
		writeError(w, r, http.StatusBadRequest, "max_steps must be between 0 and 10000")
		return
	}

	sim := h.Simulator
	sim.Pacer = nil
	sim.MaxSteps = req.MaxSteps
	if sim.MaxSteps == 0 {
		sim.MaxSteps = MaxSimulationSteps
	}

	path := make([]dto.StepResponse, 0, 64)
	res, err := sim.Run(r.Context(), start, target, func(s domain.SimulationStep) {
		path = append(path, dto.StepResponse{
			Step:        s.Step,
			Lat:         s.Position.Lat,
			Lon:         s.Position.Lon,
			RemainingKm: s.DistanceRemainingKm,
		})
	})
	if err != nil {
		requestLogger(r).Error("simulate failed", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.SimulateResponse{
		Outcome:     string(res.Outcome),
		Steps:       res.Steps,
		Position:    toCoordinatesResponse(res.Position),
		RemainingKm: res.DistanceRemainingKm,
		Path:        path,
	})
}

// toCoordinates accepts any finite pair; the simulator steps past the poles
// and the antimeridian without wrapping.
func toCoordinates(c dto.CoordinatesRequest) (domain.Coordinates, bool) {
	if c.Lat == nil || c.Lon == nil || !finite(*c.Lat) || !finite(*c.Lon) {
		return domain.Coordinates{}, false
	}
	return domain.Coordinates{Lat: *c.Lat, Lon: *c.Lon}, true
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

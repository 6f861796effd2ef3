package handlers

import (
	"context"
	"dispatch-route-service/internal/api/dto"
	"dispatch-route-service/internal/domain"
	"dispatch-route-service/internal/services"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// DispatchService is the part of services.Dispatcher the handlers use.
type DispatchService interface {
	Plan(ctx context.Context, origin, destination string) (*domain.DispatchDecision, error)
	Recent(ctx context.Context, limit int) ([]*domain.DispatchDecision, error)
}

type DispatchHandler struct {
	Service DispatchService
}

// Dispatch geocodes the request's endpoints and returns the scored routes
// and the selected one.
func (h *DispatchHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.DispatchRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	origin := strings.TrimSpace(req.Origin)
	destination := strings.TrimSpace(req.Destination)
	if origin == "" || destination == "" {
		writeError(w, r, http.StatusBadRequest, "origin and destination are required")
		return
	}

	decision, err := h.Service.Plan(r.Context(), origin, destination)
	if err != nil {
		var upstream *domain.UpstreamError
		switch {
		case errors.Is(err, domain.ErrEmptyInput):
			writeError(w, r, http.StatusUnprocessableEntity, "no candidate routes to score")
		case errors.As(err, &upstream):
			requestLogger(r).Warn("dispatch upstream failure", zap.Error(err))
			writeError(w, r, http.StatusBadGateway, upstream.Op+" failed for "+strconv.Quote(upstream.Input))
		default:
			requestLogger(r).Error("dispatch failed", zap.Error(err))
			writeError(w, r, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	writeJSON(w, r, http.StatusOK, toDecisionResponse(decision))
}

// List returns recently persisted decisions, newest first.
func (h *DispatchHandler) List(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 500 {
			writeError(w, r, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	decisions, err := h.Service.Recent(r.Context(), limit)
	if errors.Is(err, services.ErrNoDecisionStore) {
		writeError(w, r, http.StatusServiceUnavailable, "decision history is not enabled")
		return
	}
	if err != nil {
		requestLogger(r).Error("list decisions failed", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListDecisionsResponse{Decisions: make([]dto.DecisionResponse, 0, len(decisions))}
	for _, d := range decisions {
		res.Decisions = append(res.Decisions, toDecisionResponse(d))
	}

	writeJSON(w, r, http.StatusOK, res)
}

func toCandidateResponse(sc domain.ScoredCandidate) dto.CandidateResponse {
	return dto.CandidateResponse{
		Route:           sc.Index + 1,
		DistanceKm:      sc.DistanceKm(),
		DurationMinutes: sc.TimeMinutes,
		FuelCost:        sc.FuelCost,
		Revenue:         sc.Revenue,
		Score:           sc.Score,
	}
}

func toCoordinatesResponse(c domain.Coordinates) dto.CoordinatesResponse {
	return dto.CoordinatesResponse{Lat: c.Lat, Lon: c.Lon}
}

func toDecisionResponse(d *domain.DispatchDecision) dto.DecisionResponse {
	cands := make([]dto.CandidateResponse, 0, len(d.Candidates))
	for _, c := range d.Candidates {
		cands = append(cands, toCandidateResponse(c))
	}

	return dto.DecisionResponse{
		ID:           d.ID.String(),
		Origin:       d.Origin,
		Destination:  d.Destination,
		From:         toCoordinatesResponse(d.From),
		To:           toCoordinatesResponse(d.To),
		Candidates:   cands,
		Best:         toCandidateResponse(d.Best),
		UsedFallback: d.UsedFallback,
		DecidedAt:    d.DecidedAt,
	}
}

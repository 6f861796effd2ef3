package api

import (
	"dispatch-route-service/internal/api/handlers"
	"dispatch-route-service/internal/platform/metrics"
	"dispatch-route-service/internal/services"
	"net/http"

	"go.uber.org/zap"
)

// Deps are the services the HTTP API is composed from.
type Deps struct {
	Dispatcher handlers.DispatchService
	Simulator  services.MovementSimulator
	Logger     *zap.Logger
}

// routes are the registered paths; anything else is labelled "other" in metrics.
var routes = map[string]struct{}{
	"/health":    {},
	"/dispatch":  {},
	"/decisions": {},
	"/simulate":  {},
	"/metrics":   {},
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
func NewRouter(deps Deps) http.Handler {
	mux := http.NewServeMux()

	dispatch := &handlers.DispatchHandler{Service: deps.Dispatcher}
	simulate := &handlers.SimulateHandler{Simulator: deps.Simulator}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/dispatch", dispatch.Dispatch)
	mux.HandleFunc("/decisions", dispatch.List)
	mux.HandleFunc("/simulate", simulate.Simulate)
	mux.Handle("/metrics", metrics.Handler())

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return loggingMiddleware(logger, mux)
}

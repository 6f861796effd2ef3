package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dispatch",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "dispatch",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"method", "path"})

	// Operation timing recorded by obs.Time
	OpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "dispatch",
		Subsystem: "op",
		Name:      "duration_seconds",
		Help:      "Duration of instrumented operations",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"op", "result"})

	// Dispatch metrics
	DecisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dispatch",
		Subsystem: "routes",
		Name:      "decisions_total",
		Help:      "Total route selections, labelled by whether fallback routes were used",
	}, []string{"fallback"})

	CandidatesScored = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "dispatch",
		Subsystem: "routes",
		Name:      "candidates_scored_total",
		Help:      "Total route candidates scored",
	})

	UpstreamErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dispatch",
		Subsystem: "upstream",
		Name:      "errors_total",
		Help:      "Total failed calls to geocoding and routing collaborators",
	}, []string{"op"})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dispatch",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"cache"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dispatch",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"cache"})

	// Simulation metrics
	SimulationSteps = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "dispatch",
		Subsystem: "simulation",
		Name:      "steps_total",
		Help:      "Total simulated vehicle steps",
	})

	SimulationRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dispatch",
		Subsystem: "simulation",
		Name:      "runs_total",
		Help:      "Total finished simulation runs by outcome",
	}, []string{"outcome"})
)

// Handler serves the Prometheus /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

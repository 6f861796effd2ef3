package routing

import (
	"bytes"
	"context"
	"dispatch-route-service/internal/domain"
	"encoding/json"
	"fmt"
	"net/http"
)

type alternativeRoutes struct {
	TargetCount  int     `json:"target_count"`
	WeightFactor float64 `json:"weight_factor"`
	ShareFactor  float64 `json:"share_factor"`
}

type directionsRequest struct {
	Coordinates       [][]float64        `json:"coordinates"`
	AlternativeRoutes *alternativeRoutes `json:"alternative_routes,omitempty"`
}

type routeMetrics struct {
	Distance float64 `json:"distance"`
	Duration float64 `json:"duration"`
}

type directionsResponse struct {
	Features []struct {
		Properties struct {
			Segments []routeMetrics `json:"segments"`
			Summary  routeMetrics   `json:"summary"`
		} `json:"properties"`
	} `json:"features"`
}

// fetchDirections requests alternative driving routes from start to end via
// the OpenRouteService directions endpoint (GeoJSON response).
// Each feature's first segment supplies the candidate's distance and duration.
func (o *ORSClient) fetchDirections(
	ctx context.Context,
	start domain.Coordinates,
	end domain.Coordinates,
) ([]domain.RouteCandidate, error) {
	endpoint := fmt.Sprintf("%s/v2/directions/%s/geojson", o.baseURL, o.profile)

	bodyObj := directionsRequest{
		Coordinates: [][]float64{start.CoordsToList(), end.CoordsToList()},
	}
	if o.alternatives > 1 {
		bodyObj.AlternativeRoutes = &alternativeRoutes{
			TargetCount:  o.alternatives,
			WeightFactor: 1.4,
			ShareFactor:  0.6,
		}
	}

	payload, err := json.Marshal(bodyObj)
	if err != nil {
		return nil, fmt.Errorf("marshal directions request: %w", err)
	}

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		return o.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	})
	if err != nil {
		return nil, fmt.Errorf("directions request failed: %w", err)
	}
	defer resp.Body.Close()

	var dr directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return nil, fmt.Errorf("decode directions response: %w", err)
	}

	routes := make([]domain.RouteCandidate, 0, len(dr.Features))
	for i, f := range dr.Features {
		m := f.Properties.Summary
		if len(f.Properties.Segments) > 0 {
			m = f.Properties.Segments[0]
		}
		if m.Distance < 0 || m.Duration < 0 {
			return nil, fmt.Errorf("directions returned negative metrics for route %d", i+1)
		}
		routes = append(routes, domain.RouteCandidate{
			DistanceMeters:  m.Distance,
			DurationSeconds: m.Duration,
		})
	}

	return routes, nil
}

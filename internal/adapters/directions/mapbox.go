package directions

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/aitorfdez/flyover/internal/core/domain"
)

// MapboxProvider implements ports.DirectionsProvider against the Mapbox
// Directions API. Each FetchRoute issues exactly one request; retry
// policy belongs to the caller (in practice: none — a newer selection
// supersedes a stuck request via the generation token, not a timeout).
type MapboxProvider struct {
	client  *http.Client
	baseURL string
	token   string
}

// NewMapboxProvider creates a provider. baseURL normally is
// "https://api.mapbox.com"; the client timeout is the only wall-clock
// bound imposed on a request.
func NewMapboxProvider(baseURL, token string, timeout time.Duration) *MapboxProvider {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &MapboxProvider{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		token:   token,
	}
}

// mapboxResponse is the subset of the Directions response the engine uses.
type mapboxResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Routes  []struct {
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"routes"`
}

func (p *MapboxProvider) FetchRoute(ctx context.Context, origin, destination domain.Coordinate, profile domain.TravelProfile) (*domain.Route, error) {
	reqURL := fmt.Sprintf(
		"%s/directions/v5/mapbox/%s/%f,%f;%f,%f?%s",
		p.baseURL, mapboxProfile(profile),
		origin.Lon, origin.Lat, destination.Lon, destination.Lat,
		url.Values{
			"geometries":   {"geojson"},
			"overview":     {"full"},
			"access_token": {p.token},
		}.Encode(),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &domain.NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &domain.NetworkError{
			Err: fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body)),
		}
	}

	var mr mapboxResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return nil, &domain.NetworkError{Err: fmt.Errorf("decode response: %w", err)}
	}

	if mr.Code == "NoRoute" || (mr.Code == "Ok" && len(mr.Routes) == 0) {
		return nil, domain.ErrNoRouteFound
	}
	if mr.Code != "Ok" {
		return nil, &domain.NetworkError{
			Err: fmt.Errorf("provider code %s: %s", mr.Code, mr.Message),
		}
	}

	best := mr.Routes[0]
	geometry := make([]domain.Coordinate, 0, len(best.Geometry.Coordinates))
	for _, c := range best.Geometry.Coordinates {
		if len(c) < 2 {
			continue
		}
		geometry = append(geometry, domain.Coordinate{Lon: c[0], Lat: c[1]})
	}
	if len(geometry) < 2 {
		return nil, domain.ErrNoRouteFound
	}

	return &domain.Route{
		Geometry: geometry,
		Distance: best.Distance,
		Duration: best.Duration,
	}, nil
}

// mapboxProfile maps the engine's travel profile onto Mapbox profile slugs.
func mapboxProfile(p domain.TravelProfile) string {
	switch p {
	case domain.ProfileWalking:
		return "walking"
	case domain.ProfileCycling:
		return "cycling"
	default:
		return "driving"
	}
}

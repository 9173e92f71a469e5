package maps

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"codrive/internal/types"
)

// OSRMRouter performs route lookups against an OSRM HTTP server.
type OSRMRouter struct {
	Endpoint string
	Profile  string
	Client   *http.Client
}

func NewOSRMRouter(endpoint string) *OSRMRouter {
	return &OSRMRouter{
		Endpoint: strings.TrimRight(endpoint, "/"),
		Profile:  "driving",
		Client:   &http.Client{Timeout: 10 * time.Second},
	}
}

type osrmResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Routes  []osrmRoute `json:"routes"`
}

type osrmRoute struct {
	Distance float64 `json:"distance"`
	Duration float64 `json:"duration"`
	Geometry struct {
		Type        string       `json:"type"`
		Coordinates [][2]float64 `json:"coordinates"`
	} `json:"geometry"`
	Legs []struct {
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
	} `json:"legs"`
}

func (o *OSRMRouter) Directions(ctx context.Context, waypoints []types.Point) (Route, error) {
	if len(waypoints) < 2 {
		return Route{}, fmt.Errorf("maps.OSRMRouter: need at least 2 waypoints, got %d", len(waypoints))
	}
	coords := make([]string, 0, len(waypoints))
	for _, w := range waypoints {
		coords = append(coords, fmt.Sprintf("%.6f,%.6f", w.Lng, w.Lat))
	}
	url := fmt.Sprintf("%s/route/v1/%s/%s?overview=full&geometries=geojson&steps=false",
		o.Endpoint, o.Profile, strings.Join(coords, ";"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Route{}, fmt.Errorf("maps.OSRMRouter: %w", err)
	}
	resp, err := o.Client.Do(req)
	if err != nil {
		return Route{}, fmt.Errorf("maps.OSRMRouter: %w", err)
	}
	defer resp.Body.Close()

	var out osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Route{}, fmt.Errorf("maps.OSRMRouter: decode (status %d): %w", resp.StatusCode, err)
	}
	switch out.Code {
	case "Ok":
	case "NoRoute", "NoSegment":
		return Route{}, ErrNoRoute
	default:
		return Route{}, fmt.Errorf("maps.OSRMRouter: %s: %s", out.Code, out.Message)
	}
	if len(out.Routes) == 0 {
		return Route{}, ErrNoRoute
	}
	return out.Routes[0].normalize(), nil
}

func (r osrmRoute) normalize() Route {
	route := Route{
		DistanceMeters:  int(math.Round(r.Distance)),
		DurationSeconds: int(math.Round(r.Duration)),
		Geometry:        make(types.Polyline, 0, len(r.Geometry.Coordinates)),
		Legs:            make([]Leg, 0, len(r.Legs)),
	}
	for _, c := range r.Geometry.Coordinates {
		route.Geometry = append(route.Geometry, types.Point{Lng: c[0], Lat: c[1]})
	}
	for _, l := range r.Legs {
		route.Legs = append(route.Legs, Leg{
			DistanceMeters:  int(math.Round(l.Distance)),
			DurationSeconds: int(math.Round(l.Duration)),
		})
	}
	return route
}

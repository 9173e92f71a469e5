package maps

import (
	"context"
	"fmt"
	"strings"

	gmaps "googlemaps.github.io/maps"

	"codrive/internal/types"
)

// GoogleRouter queries the Directions API with fixed waypoint order.
type GoogleRouter struct {
	client *gmaps.Client
}

// NewGoogleClient creates a Maps client shared by the router and the geocoder.
func NewGoogleClient(apiKey string) (*gmaps.Client, error) {
	client, err := gmaps.NewClient(gmaps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return client, nil
}

// NewGoogleRouter creates a Directions-backed router.
func NewGoogleRouter(client *gmaps.Client) *GoogleRouter {
	return &GoogleRouter{client: client}
}

// Directions routes through the waypoints in order with optimize disabled. An empty answer is ErrNoRoute.
func (s *GoogleRouter) Directions(ctx context.Context, waypoints []types.Point) (Route, error) {
	if len(waypoints) < 2 {
		return Route{}, fmt.Errorf("maps.GoogleRouter: need at least 2 waypoints, got %d", len(waypoints))
	}
	r := &gmaps.DirectionsRequest{
		Origin:      latLng(waypoints[0]),
		Destination: latLng(waypoints[len(waypoints)-1]),
		Mode:        gmaps.TravelModeDriving,
		Optimize:    false,
	}
	for _, w := range waypoints[1 : len(waypoints)-1] {
		r.Waypoints = append(r.Waypoints, latLng(w))
	}

	routes, _, err := s.client.Directions(ctx, r)
	if err != nil {
		if isZeroResults(err) {
			return Route{}, ErrNoRoute
		}
		return Route{}, fmt.Errorf("maps api error: %w", err)
	}
	if len(routes) == 0 {
		return Route{}, ErrNoRoute
	}
	best := routes[0]

	path, err := best.OverviewPolyline.Decode()
	if err != nil {
		return Route{}, fmt.Errorf("maps.GoogleRouter: decode polyline: %w", err)
	}
	out := Route{Geometry: make(types.Polyline, 0, len(path))}
	for _, p := range path {
		out.Geometry = append(out.Geometry, types.Point{Lat: p.Lat, Lng: p.Lng})
	}
	for _, leg := range best.Legs {
		l := Leg{DistanceMeters: leg.Distance.Meters, DurationSeconds: int(leg.Duration.Seconds())}
		out.Legs = append(out.Legs, l)
		out.DistanceMeters += l.DistanceMeters
		out.DurationSeconds += l.DurationSeconds
	}
	return out, nil
}

// GoogleGeocoder resolves postal addresses to the first-best coordinate.
type GoogleGeocoder struct {
	client *gmaps.Client
}

func NewGoogleGeocoder(client *gmaps.Client) *GoogleGeocoder {
	return &GoogleGeocoder{client: client}
}

func (g *GoogleGeocoder) Geocode(ctx context.Context, address string) (types.Point, error) {
	results, err := g.client.Geocode(ctx, &gmaps.GeocodingRequest{Address: address})
	if err != nil {
		if isZeroResults(err) {
			return types.Point{}, ErrNoMatch
		}
		return types.Point{}, fmt.Errorf("geocoding api error: %w", err)
	}
	if len(results) == 0 {
		return types.Point{}, ErrNoMatch
	}
	loc := results[0].Geometry.Location
	return types.Point{Lat: loc.Lat, Lng: loc.Lng}, nil
}

func latLng(p types.Point) string {
	return fmt.Sprintf("%.6f,%.6f", p.Lat, p.Lng)
}

func isZeroResults(err error) bool {
	return strings.Contains(err.Error(), "ZERO_RESULTS") || strings.Contains(err.Error(), "NOT_FOUND")
}

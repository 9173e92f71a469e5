// Package maps adapts external routing and geocoding providers to the route engine.
package maps

import (
	"context"
	"errors"

	"codrive/internal/types"
)

// ErrNoRoute is returned when the provider answers but has no drivable path.
var ErrNoRoute = errors.New("no route between waypoints")

// ErrNoMatch is returned when an address geocodes to nothing.
var ErrNoMatch = errors.New("address has no geocoding match")

// Leg covers waypoint[i] -> waypoint[i+1].
type Leg struct {
	DistanceMeters  int `json:"distance_m"`
	DurationSeconds int `json:"duration_s"`
}

type Route struct {
	DistanceMeters  int            `json:"distance_m"`
	DurationSeconds int            `json:"duration_s"`
	Geometry        types.Polyline `json:"geometry"`
	Legs            []Leg          `json:"legs"`
}

// Router returns a drivable path visiting waypoints in the given order, never reordering them.
type Router interface {
	Directions(ctx context.Context, waypoints []types.Point) (Route, error)
}

type Geocoder interface {
	Geocode(ctx context.Context, address string) (types.Point, error)
}

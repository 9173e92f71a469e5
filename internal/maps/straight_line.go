package maps

import (
	"context"
	"fmt"
	"math"

	"codrive/internal/types"
)

// StraightLineRouter connects waypoints with great-circle legs at a constant speed.
// Meant for local development and tests where no routing provider is reachable.
type StraightLineRouter struct {
	SpeedMps float64
}

func NewStraightLineRouter(speedMps float64) *StraightLineRouter {
	return &StraightLineRouter{SpeedMps: speedMps}
}

func (r *StraightLineRouter) Directions(ctx context.Context, waypoints []types.Point) (Route, error) {
	if err := ctx.Err(); err != nil {
		return Route{}, err
	}
	if len(waypoints) < 2 {
		return Route{}, fmt.Errorf("maps.StraightLineRouter: need at least 2 waypoints, got %d", len(waypoints))
	}
	if r.SpeedMps <= 0 {
		return Route{}, fmt.Errorf("maps.StraightLineRouter: speed must be positive")
	}
	route := Route{
		Geometry: append(types.Polyline(nil), waypoints...),
		Legs:     make([]Leg, 0, len(waypoints)-1),
	}
	for i := 0; i+1 < len(waypoints); i++ {
		d := HaversineMeters(waypoints[i], waypoints[i+1])
		leg := Leg{
			DistanceMeters:  int(math.Round(d)),
			DurationSeconds: int(math.Round(d / r.SpeedMps)),
		}
		route.Legs = append(route.Legs, leg)
		route.DistanceMeters += leg.DistanceMeters
		route.DurationSeconds += leg.DurationSeconds
	}
	return route, nil
}

// README: Route pipeline (project, recalculate, schedule) over a ride's stop set.
package route

import (
	"context"
	"fmt"
	"time"

	"codrive/internal/maps"
	"codrive/internal/types"
)

// Pickup is one rider's boarding point.
type Pickup struct {
	RiderID types.ID
	Point   types.Point
}

// PlanInput is the stop set of one ride plus its target arrival.
type PlanInput struct {
	Origin      types.Point
	Destination types.Point
	Pickups     []Pickup
	// Reference is the geometry pickups are ordered along; origin->destination when empty.
	Reference types.Polyline
	Anchor    time.Time
}

// Plan is the routed stop set: pickups in visiting order, per-rider arrivals and the departure.
type Plan struct {
	Route     maps.Route
	Ordered   []Pickup
	Arrivals  map[types.ID]time.Time
	Departure time.Time
}

// Planner runs projection, routing and scheduling in that order.
type Planner struct {
	recalc *Recalculator
}

// NewPlanner creates a planner that routes through recalc.
func NewPlanner(recalc *Recalculator) *Planner {
	return &Planner{recalc: recalc}
}

// Plan orders the pickups along the reference geometry, routes origin -> pickups -> destination
// and schedules the result backwards from Anchor.
func (p *Planner) Plan(ctx context.Context, in PlanInput) (Plan, error) {
	ref := in.Reference
	if len(ref) < 2 {
		ref = types.Polyline{in.Origin, in.Destination}
	}
	ordered := OrderByProjection(in.Pickups, ref, func(pk Pickup) types.Point { return pk.Point })

	waypoints := make([]types.Point, 0, len(ordered)+2)
	waypoints = append(waypoints, in.Origin)
	for _, pk := range ordered {
		waypoints = append(waypoints, pk.Point)
	}
	waypoints = append(waypoints, in.Destination)

	r, err := p.recalc.Recalculate(ctx, waypoints)
	if err != nil {
		return Plan{}, fmt.Errorf("route.Planner.Plan: %w", err)
	}

	sched := NewSchedule(in.Anchor, r.Legs)
	arrivals := make(map[types.ID]time.Time, len(ordered))
	for i, at := range sched.Intermediate() {
		arrivals[ordered[i].RiderID] = at
	}
	return Plan{Route: r, Ordered: ordered, Arrivals: arrivals, Departure: sched.Departure}, nil
}

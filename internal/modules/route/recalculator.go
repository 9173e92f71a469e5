// README: Routing collaborator wrapper with timeout, response validation and error normalisation.
package route

import (
	"context"
	"errors"
	"fmt"
	"time"

	"codrive/internal/maps"
	"codrive/internal/observability"
	"codrive/internal/types"
)

var errMalformedRoute = errors.New("malformed routing response")

type Recalculator struct {
	router   maps.Router
	timeout  time.Duration
	provider string
}

func NewRecalculator(router maps.Router, timeout time.Duration, provider string) *Recalculator {
	return &Recalculator{router: router, timeout: timeout, provider: provider}
}

// Recalculate routes through waypoints in order. Every failure, timeouts included, wraps
// types.ErrRouteUnavailable. Totals are rewritten as leg sums so schedules close on the anchor.
func (r *Recalculator) Recalculate(ctx context.Context, waypoints []types.Point) (maps.Route, error) {
	if len(waypoints) < 2 {
		return maps.Route{}, fmt.Errorf("route.Recalculator.Recalculate: %w: need at least 2 waypoints", types.ErrRouteUnavailable)
	}
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	res, err := r.router.Directions(ctx, waypoints)
	observability.RoutingLatency.WithLabelValues(r.provider).Observe(time.Since(start).Seconds())
	if err == nil {
		err = validate(res, len(waypoints))
	}
	if err != nil {
		observability.RoutingRequests.WithLabelValues(r.provider, outcome(err)).Inc()
		return maps.Route{}, fmt.Errorf("route.Recalculator.Recalculate: %w: %w", types.ErrRouteUnavailable, err)
	}
	observability.RoutingRequests.WithLabelValues(r.provider, "ok").Inc()

	res.DistanceMeters, res.DurationSeconds = 0, 0
	for _, l := range res.Legs {
		res.DistanceMeters += l.DistanceMeters
		res.DurationSeconds += l.DurationSeconds
	}
	return res, nil
}

func validate(r maps.Route, waypoints int) error {
	if len(r.Legs) != waypoints-1 {
		return fmt.Errorf("%w: %d legs for %d waypoints", errMalformedRoute, len(r.Legs), waypoints)
	}
	if len(r.Geometry) < 2 {
		return fmt.Errorf("%w: geometry has %d points", errMalformedRoute, len(r.Geometry))
	}
	for i, l := range r.Legs {
		if l.DistanceMeters < 0 || l.DurationSeconds < 0 {
			return fmt.Errorf("%w: leg %d is negative", errMalformedRoute, i)
		}
	}
	return nil
}

func outcome(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, maps.ErrNoRoute):
		return "no_route"
	case errors.Is(err, errMalformedRoute):
		return "malformed"
	default:
		return "error"
	}
}

package route

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codrive/internal/maps"
	"codrive/internal/types"
)

// fakeRouter is a hand-written test double for maps.Router.
type fakeRouter struct {
	directions func(ctx context.Context, waypoints []types.Point) (maps.Route, error)
	calls      [][]types.Point
}

func (f *fakeRouter) Directions(ctx context.Context, waypoints []types.Point) (maps.Route, error) {
	f.calls = append(f.calls, append([]types.Point(nil), waypoints...))
	return f.directions(ctx, waypoints)
}

var _ maps.Router = (*fakeRouter)(nil)

// legsRouter returns one leg per hop with the given durations and 1000m each.
func legsRouter(durations ...int) *fakeRouter {
	return &fakeRouter{directions: func(_ context.Context, w []types.Point) (maps.Route, error) {
		r := maps.Route{Geometry: append(types.Polyline(nil), w...)}
		for i := 0; i+1 < len(w); i++ {
			r.Legs = append(r.Legs, maps.Leg{DistanceMeters: 1000, DurationSeconds: durations[i]})
		}
		r.DistanceMeters, r.DurationSeconds = 99999, 99999
		return r, nil
	}}
}

func TestRecalculator_NormalisesTotalsToLegSums(t *testing.T) {
	rc := NewRecalculator(legsRouter(60, 120), time.Second, "fake")

	r, err := rc.Recalculate(context.Background(), []types.Point{pt(0, 0), pt(1, 0), pt(2, 0)})
	require.NoError(t, err)

	assert.Equal(t, 2000, r.DistanceMeters)
	assert.Equal(t, 180, r.DurationSeconds)
}

func TestRecalculator_LegCountMismatchIsRouteUnavailable(t *testing.T) {
	router := &fakeRouter{directions: func(_ context.Context, w []types.Point) (maps.Route, error) {
		return maps.Route{Geometry: types.Polyline(w), Legs: []maps.Leg{{DistanceMeters: 5, DurationSeconds: 5}}}, nil
	}}
	rc := NewRecalculator(router, time.Second, "fake")

	_, err := rc.Recalculate(context.Background(), []types.Point{pt(0, 0), pt(1, 0), pt(2, 0)})
	require.ErrorIs(t, err, types.ErrRouteUnavailable)
	assert.ErrorIs(t, err, errMalformedRoute)
}

func TestRecalculator_NoRoute(t *testing.T) {
	router := &fakeRouter{directions: func(context.Context, []types.Point) (maps.Route, error) {
		return maps.Route{}, maps.ErrNoRoute
	}}
	rc := NewRecalculator(router, time.Second, "fake")

	_, err := rc.Recalculate(context.Background(), []types.Point{pt(0, 0), pt(1, 0)})
	require.ErrorIs(t, err, types.ErrRouteUnavailable)
	assert.ErrorIs(t, err, maps.ErrNoRoute)
	assert.Len(t, router.calls, 1, "no retry")
}

func TestRecalculator_TimeoutIsRouteUnavailable(t *testing.T) {
	router := &fakeRouter{directions: func(ctx context.Context, _ []types.Point) (maps.Route, error) {
		<-ctx.Done()
		return maps.Route{}, ctx.Err()
	}}
	rc := NewRecalculator(router, 10*time.Millisecond, "fake")

	_, err := rc.Recalculate(context.Background(), []types.Point{pt(0, 0), pt(1, 0)})
	require.ErrorIs(t, err, types.ErrRouteUnavailable)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestRecalculator_RejectsTooFewWaypoints(t *testing.T) {
	router := legsRouter()
	_, err := NewRecalculator(router, time.Second, "fake").Recalculate(context.Background(), []types.Point{pt(0, 0)})
	require.ErrorIs(t, err, types.ErrRouteUnavailable)
	assert.Empty(t, router.calls)
}

package route

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codrive/internal/types"
)

func TestPlanner_OrdersPickupsAlongReferenceAndSchedules(t *testing.T) {
	router := legsRouter(100, 200, 300)
	p := NewPlanner(NewRecalculator(router, time.Second, "fake"))
	anchor := time.Date(2026, 11, 2, 9, 0, 0, 0, time.UTC)

	plan, err := p.Plan(context.Background(), PlanInput{
		Origin:      pt(0, 0),
		Destination: pt(1000, 0),
		Pickups: []Pickup{
			{RiderID: "late", Point: pt(700, 10)},
			{RiderID: "early", Point: pt(200, -10)},
		},
		Reference: types.Polyline{pt(0, 0), pt(1000, 0)},
		Anchor:    anchor,
	})
	require.NoError(t, err)

	require.Len(t, router.calls, 1)
	assert.Equal(t, []types.Point{pt(0, 0), pt(200, -10), pt(700, 10), pt(1000, 0)}, router.calls[0])
	assert.Equal(t, types.ID("early"), plan.Ordered[0].RiderID)
	assert.Equal(t, anchor.Add(-600*time.Second), plan.Departure)
	assert.Equal(t, anchor.Add(-500*time.Second), plan.Arrivals["early"])
	assert.Equal(t, anchor.Add(-300*time.Second), plan.Arrivals["late"])
	assert.Equal(t, 3000, plan.Route.DistanceMeters)
}

func TestPlanner_NoPickupsRoutesOriginToDestination(t *testing.T) {
	router := legsRouter(900)
	p := NewPlanner(NewRecalculator(router, time.Second, "fake"))
	anchor := time.Date(2026, 11, 2, 9, 0, 0, 0, time.UTC)

	plan, err := p.Plan(context.Background(), PlanInput{Origin: pt(0, 0), Destination: pt(5, 5), Anchor: anchor})
	require.NoError(t, err)

	assert.Equal(t, []types.Point{pt(0, 0), pt(5, 5)}, router.calls[0])
	assert.Empty(t, plan.Arrivals)
	assert.Equal(t, anchor.Add(-15*time.Minute), plan.Departure)
}

package codrive

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codrive/internal/infra"
	"codrive/internal/modules/ledger"
	"codrive/internal/modules/location"
	"codrive/internal/modules/ride"
	"codrive/internal/modules/route"
	"codrive/internal/testutil"
	"codrive/internal/types"
)

func seedLocation(t *testing.T, store *location.Store, city string, p types.Point) *location.Location {
	t.Helper()
	l, err := store.Insert(context.Background(), &location.Location{
		ID:        types.NewID(),
		Address:   location.Address{Country: "Germany", PostalCode: "14467", City: city, Street: "Hauptstr.", HouseNumber: "1"},
		Point:     p,
		CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	return l
}

func TestStore_TransitionsAndProposal(t *testing.T) {
	pool := testutil.NewPool(t)
	ctx := context.Background()
	locations := location.NewStore(pool)
	rides := ride.NewStore(pool)
	store := NewStore(pool)

	start := seedLocation(t, locations, "Potsdam", potsdam)
	end := seedLocation(t, locations, "Teltow", teltow)
	pickup := seedLocation(t, locations, "Kleinmachnow", types.Point{Lat: 52.3960, Lng: 13.1000})

	arrival := time.Now().Add(3 * time.Hour).UTC().Truncate(time.Second)
	r := &ride.Ride{
		ID: types.NewID(), DriverID: "driver",
		StartLocationID: start.ID, EndLocationID: end.ID, Start: potsdam, End: teltow,
		MaxPassengers: 2, Geometry: types.Polyline{potsdam, teltow},
		DistanceMeters: 10000, DurationSeconds: 1000,
		DepartureAt: arrival.Add(-1000 * time.Second), ArrivalAt: arrival, CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, rides.Create(ctx, r))

	now := time.Now().UTC().Truncate(time.Second)
	req := &JoinRequest{
		ID: types.NewID(), RideID: r.ID, RequesterID: "alice",
		PickupLocationID: pickup.ID, Pickup: pickup.Point, Passengers: 1,
		Status: StatusPending, CreatedAt: now, UpdatedAt: now,
		Proposal: &RouteProposal{
			Geometry:    types.Polyline{potsdam, pickup.Point, teltow},
			Arrivals:    map[types.ID]time.Time{"alice": arrival.Add(-500 * time.Second)},
			DepartureAt: arrival.Add(-1030 * time.Second),
		},
	}
	require.NoError(t, store.Create(ctx, req))

	dup := *req
	dup.ID = types.NewID()
	require.ErrorIs(t, store.Create(ctx, &dup), types.ErrDuplicateRequest)

	got, err := store.Get(ctx, req.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Proposal)
	assert.Len(t, got.Proposal.Geometry, 3)
	assert.True(t, got.Proposal.Arrivals["alice"].Equal(arrival.Add(-500*time.Second)))

	p := *got.Proposal
	p.BaseVersion = 1
	require.NoError(t, store.SaveProposal(ctx, req.ID, 0, &p))
	require.ErrorIs(t, store.SaveProposal(ctx, req.ID, 0, &p), types.ErrConflict)

	at := arrival.Add(-400 * time.Second)
	require.ErrorIs(t, store.Transition(ctx, req.ID, StatusPending, StatusAccepted, 0, &at), types.ErrConflict)
	require.NoError(t, store.Transition(ctx, req.ID, StatusPending, StatusAccepted, 1, &at))

	got, err = store.Get(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, got.Status)
	assert.Nil(t, got.Proposal)
	require.NotNil(t, got.ArrivalAt)
	assert.True(t, got.ArrivalAt.Equal(at))

	accepted, err := store.ListByRide(ctx, r.ID, StatusAccepted)
	require.NoError(t, err)
	assert.Len(t, accepted, 1)
	all, err := store.ListByRide(ctx, r.ID)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, store.AppendEvent(ctx, &Event{RequestID: req.ID, FromStatus: StatusPending, ToStatus: StatusAccepted, ActorType: "driver", CreatedAt: now}))

	// deleting the ride takes its requests along
	require.NoError(t, rides.Delete(ctx, r.ID))
	_, err = store.Get(ctx, req.ID)
	require.ErrorIs(t, err, types.ErrNotFound)
}

func TestService_AcceptInTransaction(t *testing.T) {
	pool := testutil.NewPool(t)
	ctx := context.Background()
	locations := location.NewStore(pool)
	rides := ride.NewStore(pool)
	router := &stepRouter{base: 10000, perStop: 300}

	start := seedLocation(t, locations, "Potsdam", potsdam)
	end := seedLocation(t, locations, "Teltow", teltow)
	seedLocation(t, locations, "Kleinmachnow", types.Point{Lat: 52.3960, Lng: 13.1000})

	now := time.Now().UTC()
	arrival := now.Add(3 * time.Hour).Truncate(time.Second)
	r := &ride.Ride{
		ID: types.NewID(), DriverID: "driver",
		StartLocationID: start.ID, EndLocationID: end.ID, Start: potsdam, End: teltow,
		MaxPassengers: 2, Geometry: types.Polyline{potsdam, teltow},
		DistanceMeters: 10000, DurationSeconds: 1000,
		DepartureAt: arrival.Add(-1000 * time.Second), ArrivalAt: arrival, CreatedAt: now,
	}
	require.NoError(t, rides.Create(ctx, r))

	svc := NewService(Deps{
		Requests:  NewStore(pool),
		Rides:     rides,
		Locations: location.NewService(locations, nil),
		Planner:   route.NewPlanner(route.NewRecalculator(router, time.Second, "test")),
		Ledger:    ledger.NewService(ledger.NewStore(pool)),
		Tx:        infra.NewTxManager(pool),
	})

	req, err := svc.Create(ctx, RequestCommand{
		RideID: r.ID, RequesterID: "alice", Passengers: 1,
		Pickup: location.Address{Country: "Germany", PostalCode: "14467", City: "Kleinmachnow", Street: "Hauptstr.", HouseNumber: "1"},
	})
	require.NoError(t, err)

	_, err = svc.Accept(ctx, ActorCommand{RequestID: req.ID, ActorID: "driver"})
	require.NoError(t, err)

	stored, err := rides.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.CurrentPassengers)
	assert.Equal(t, 3, stored.TotalPoints)
	assert.Equal(t, 1, stored.Version)
	assert.Len(t, stored.Geometry, 3)
}

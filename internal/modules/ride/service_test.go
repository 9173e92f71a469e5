// README: Ride service tests (create timing rules, completion credit, deletion guards).
package ride

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codrive/internal/maps"
	"codrive/internal/modules/ledger"
	"codrive/internal/modules/location"
	"codrive/internal/modules/route"
	"codrive/internal/types"
)

// cityResolver resolves addresses by city name only.
type cityResolver map[string]types.Point

func (c cityResolver) Resolve(_ context.Context, a location.Address) (*location.Location, error) {
	p, ok := c[a.City]
	if !ok {
		return nil, types.ErrAddressUnresolvable
	}
	return &location.Location{ID: types.ID("loc-" + a.City), Address: a, Point: p}, nil
}

var _ LocationResolver = cityResolver(nil)

var testNow = time.Date(2026, 11, 2, 6, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *MemoryStore, *ledger.Service) {
	t.Helper()
	store := NewMemoryStore()
	points := ledger.NewService(ledger.NewMemoryStore())
	// Potsdam to Teltow is about 10km, roughly 17 minutes at 10 m/s
	planner := route.NewPlanner(route.NewRecalculator(maps.NewStraightLineRouter(10), time.Second, "test"))
	svc := NewService(Deps{
		Store: store,
		Locations: cityResolver{
			"Potsdam": {Lat: 52.3906, Lng: 13.0645},
			"Teltow":  {Lat: 52.4022, Lng: 13.2137},
		},
		Planner:  planner,
		Ledger:   points,
		TimeZone: time.UTC,
		Now:      func() time.Time { return testNow },
	})
	return svc, store, points
}

func createCmd(date, clock string) CreateCommand {
	return CreateCommand{
		DriverID:      "driver",
		Start:         location.Address{Country: "Germany", City: "Potsdam", Street: "Am Kanal", HouseNumber: "1"},
		End:           location.Address{Country: "Germany", City: "Teltow", Street: "Ruhlsdorfer Str.", HouseNumber: "2"},
		ArrivalDate:   date,
		ArrivalTime:   clock,
		MaxPassengers: 3,
	}
}

func TestCreate_DerivesDepartureFromAnchor(t *testing.T) {
	svc, store, _ := newTestService(t)

	r, err := svc.Create(context.Background(), createCmd("2026-11-02", "09:00"))
	require.NoError(t, err)

	anchor := time.Date(2026, 11, 2, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, anchor, r.ArrivalAt)
	assert.Equal(t, anchor.Add(-time.Duration(r.DurationSeconds)*time.Second), r.DepartureAt)
	assert.Greater(t, r.DistanceMeters, 9000)
	assert.Equal(t, 0, r.CurrentPassengers)
	assert.Equal(t, 0, r.Version)
	assert.Len(t, r.Geometry, 2)

	stored, err := store.Get(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.DepartureAt, stored.DepartureAt)
}

func TestCreate_PastDeparture(t *testing.T) {
	svc, store, _ := newTestService(t)

	// anchor 5 minutes ahead but the drive takes longer
	_, err := svc.Create(context.Background(), createCmd("2026-11-02", "06:05"))

	require.ErrorIs(t, err, types.ErrPastDeparture)
	rides, _ := store.ListByDriver(context.Background(), "driver")
	assert.Empty(t, rides)
}

func TestCreate_PastArrival(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Create(context.Background(), createCmd("2026-11-01", "09:00"))
	require.ErrorIs(t, err, types.ErrPastArrival)
}

func TestCreate_Validation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	bad := createCmd("2026-11-02", "09:00")
	bad.MaxPassengers = 0
	_, err := svc.Create(ctx, bad)
	require.ErrorIs(t, err, types.ErrBadRequest)

	_, err = svc.Create(ctx, createCmd("02.11.2026", "9 Uhr"))
	require.ErrorIs(t, err, types.ErrBadRequest)

	unknown := createCmd("2026-11-02", "09:00")
	unknown.End.City = "Atlantis"
	_, err = svc.Create(ctx, unknown)
	require.ErrorIs(t, err, types.ErrAddressUnresolvable)
}

func TestCreate_AnchorUsesConfiguredTimeZone(t *testing.T) {
	svc, _, _ := newTestService(t)
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	svc.tz = berlin

	r, err := svc.Create(context.Background(), createCmd("2026-11-02", "09:00"))
	require.NoError(t, err)
	assert.True(t, r.ArrivalAt.Equal(time.Date(2026, 11, 2, 8, 0, 0, 0, time.UTC)))
}

func TestComplete_CreditsDriverAfterAnchor(t *testing.T) {
	svc, store, points := newTestService(t)
	ctx := context.Background()
	r, err := svc.Create(ctx, createCmd("2026-11-02", "09:00"))
	require.NoError(t, err)
	require.NoError(t, store.CommitRoute(ctx, RouteCommit{
		RideID: r.ID, BaseVersion: 0, Geometry: r.Geometry,
		DistanceMeters: r.DistanceMeters + 700, DurationSeconds: r.DurationSeconds + 60,
		DepartureAt: r.DepartureAt.Add(-time.Minute), PassengerDelta: 1, PointsDelta: 7,
	}))

	_, err = svc.Complete(ctx, DriverCommand{RideID: r.ID, ActorID: "driver"})
	require.ErrorIs(t, err, types.ErrInvalidState, "anchor not reached yet")

	svc.now = func() time.Time { return r.ArrivalAt.Add(time.Minute) }

	_, err = svc.Complete(ctx, DriverCommand{RideID: r.ID, ActorID: "rider"})
	require.ErrorIs(t, err, types.ErrUnauthorized)

	done, err := svc.Complete(ctx, DriverCommand{RideID: r.ID, ActorID: "driver"})
	require.NoError(t, err)
	assert.True(t, done.Completed)

	acc, err := points.Balance(ctx, "driver")
	require.NoError(t, err)
	assert.Equal(t, int64(7), acc.Balance)

	_, err = svc.Complete(ctx, DriverCommand{RideID: r.ID, ActorID: "driver"})
	require.ErrorIs(t, err, types.ErrInvalidState)
	acc, _ = points.Balance(ctx, "driver")
	assert.Equal(t, int64(7), acc.Balance, "no double credit")
}

func TestDelete_DriverOnlyAndNotCompleted(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	r, err := svc.Create(ctx, createCmd("2026-11-02", "09:00"))
	require.NoError(t, err)

	require.ErrorIs(t, svc.Delete(ctx, DriverCommand{RideID: r.ID, ActorID: "someone"}), types.ErrUnauthorized)
	require.NoError(t, svc.Delete(ctx, DriverCommand{RideID: r.ID, ActorID: "driver"}))

	_, err = svc.Get(ctx, r.ID)
	require.ErrorIs(t, err, types.ErrNotFound)

	done, err := svc.Create(ctx, createCmd("2026-11-02", "09:00"))
	require.NoError(t, err)
	svc.now = func() time.Time { return done.ArrivalAt.Add(time.Hour) }
	_, err = svc.Complete(ctx, DriverCommand{RideID: done.ID, ActorID: "driver"})
	require.NoError(t, err)
	require.ErrorIs(t, svc.Delete(ctx, DriverCommand{RideID: done.ID, ActorID: "driver"}), types.ErrInvalidState)
}

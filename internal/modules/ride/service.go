// README: Ride service: creation from addresses, completion with point transfer, deletion.
package ride

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"codrive/internal/infra"
	"codrive/internal/modules/location"
	"codrive/internal/modules/route"
	"codrive/internal/observability"
	"codrive/internal/types"
)

type Repository interface {
	Create(ctx context.Context, r *Ride) error
	Get(ctx context.Context, id types.ID) (*Ride, error)
	CommitRoute(ctx context.Context, c RouteCommit) error
	MarkCompleted(ctx context.Context, id types.ID, version int) error
	Delete(ctx context.Context, id types.ID) error
	ListByDriver(ctx context.Context, driverID types.ID) ([]Ride, error)
}

type LocationResolver interface {
	Resolve(ctx context.Context, a location.Address) (*location.Location, error)
}

type RoutePlanner interface {
	Plan(ctx context.Context, in route.PlanInput) (route.Plan, error)
}

type PointsCreditor interface {
	Credit(ctx context.Context, userID types.ID, amount int64) error
}

type Deps struct {
	Store     Repository
	Locations LocationResolver
	Planner   RoutePlanner
	Ledger    PointsCreditor
	Tx        infra.Transactor
	Locker    infra.Locker
	Logger    *slog.Logger
	TimeZone  *time.Location
	Now       func() time.Time
}

type Service struct {
	store     Repository
	locations LocationResolver
	planner   RoutePlanner
	ledger    PointsCreditor
	tx        infra.Transactor
	locker    infra.Locker
	logger    *slog.Logger
	tz        *time.Location
	now       func() time.Time
}

func NewService(d Deps) *Service {
	s := &Service{
		store:     d.Store,
		locations: d.Locations,
		planner:   d.Planner,
		ledger:    d.Ledger,
		tx:        d.Tx,
		locker:    d.Locker,
		logger:    d.Logger,
		tz:        d.TimeZone,
		now:       d.Now,
	}
	if s.tx == nil {
		s.tx = infra.NoTx{}
	}
	if s.locker == nil {
		s.locker = infra.NewLocalLocker()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.tz == nil {
		s.tz = time.UTC
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

type CreateCommand struct {
	DriverID           types.ID
	VehicleID          string
	Start              location.Address
	End                location.Address
	ArrivalDate        string // 2006-01-02, ride time zone
	ArrivalTime        string // 15:04, ride time zone
	MaxPassengers      int
	MaxRequestDistance *int
}

type DriverCommand struct {
	RideID  types.ID
	ActorID types.ID
}

// ParseAnchor interprets a local date and time in the ride time zone.
func (s *Service) ParseAnchor(date, clock string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02 15:04", date+" "+clock, s.tz)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: arrival date/time: %v", types.ErrBadRequest, err)
	}
	return t, nil
}

func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*Ride, error) {
	if cmd.DriverID == "" || cmd.MaxPassengers < 1 {
		return nil, fmt.Errorf("ride.Service.Create: %w: driver and at least one seat required", types.ErrBadRequest)
	}
	if cmd.MaxRequestDistance != nil && *cmd.MaxRequestDistance < 0 {
		return nil, fmt.Errorf("ride.Service.Create: %w: negative max request distance", types.ErrBadRequest)
	}
	anchor, err := s.ParseAnchor(cmd.ArrivalDate, cmd.ArrivalTime)
	if err != nil {
		return nil, fmt.Errorf("ride.Service.Create: %w", err)
	}
	now := s.now()
	if !anchor.After(now) {
		return nil, fmt.Errorf("ride.Service.Create: %w", types.ErrPastArrival)
	}

	start, err := s.locations.Resolve(ctx, cmd.Start)
	if err != nil {
		return nil, fmt.Errorf("ride.Service.Create: start: %w", err)
	}
	end, err := s.locations.Resolve(ctx, cmd.End)
	if err != nil {
		return nil, fmt.Errorf("ride.Service.Create: end: %w", err)
	}

	plan, err := s.planner.Plan(ctx, route.PlanInput{Origin: start.Point, Destination: end.Point, Anchor: anchor})
	if err != nil {
		return nil, fmt.Errorf("ride.Service.Create: %w", err)
	}
	if !plan.Departure.After(now) {
		return nil, fmt.Errorf("ride.Service.Create: %w: departure %s", types.ErrPastDeparture, plan.Departure.In(s.tz).Format(time.RFC3339))
	}

	r := &Ride{
		ID:                 types.NewID(),
		DriverID:           cmd.DriverID,
		VehicleID:          cmd.VehicleID,
		StartLocationID:    start.ID,
		EndLocationID:      end.ID,
		Start:              start.Point,
		End:                end.Point,
		MaxPassengers:      cmd.MaxPassengers,
		MaxRequestDistance: cmd.MaxRequestDistance,
		Geometry:           plan.Route.Geometry,
		DistanceMeters:     plan.Route.DistanceMeters,
		DurationSeconds:    plan.Route.DurationSeconds,
		DepartureAt:        plan.Departure,
		ArrivalAt:          anchor,
		CreatedAt:          now.UTC(),
	}
	if err := s.store.Create(ctx, r); err != nil {
		return nil, err
	}
	s.logger.Info("ride created", "ride_id", r.ID, "driver_id", r.DriverID, "distance_m", r.DistanceMeters, "departure_at", r.DepartureAt)
	return r, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Ride, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) ListByDriver(ctx context.Context, driverID types.ID) ([]Ride, error) {
	return s.store.ListByDriver(ctx, driverID)
}

// Complete is driver-only and allowed once the anchor has passed. The driver is credited
// the ride's total points in the same transaction that marks it completed.
func (s *Service) Complete(ctx context.Context, cmd DriverCommand) (*Ride, error) {
	unlock, err := s.locker.Lock(ctx, LockKey(cmd.RideID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	r, err := s.store.Get(ctx, cmd.RideID)
	if err != nil {
		return nil, err
	}
	if r.DriverID != cmd.ActorID {
		return nil, types.ErrUnauthorized
	}
	if r.Completed {
		return nil, fmt.Errorf("ride.Service.Complete: %w: already completed", types.ErrInvalidState)
	}
	if s.now().Before(r.ArrivalAt) {
		return nil, fmt.Errorf("ride.Service.Complete: %w: ride has not arrived yet", types.ErrInvalidState)
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.store.MarkCompleted(ctx, r.ID, r.Version); err != nil {
			return err
		}
		return s.ledger.Credit(ctx, r.DriverID, int64(r.TotalPoints))
	})
	if err != nil {
		return nil, err
	}
	r.Completed = true
	r.Version++
	observability.RouteCommits.WithLabelValues("complete").Inc()
	s.logger.Info("ride completed", "ride_id", r.ID, "driver_id", r.DriverID, "points", r.TotalPoints)
	return r, nil
}

// Delete is driver-only and refused once the ride is completed.
func (s *Service) Delete(ctx context.Context, cmd DriverCommand) error {
	unlock, err := s.locker.Lock(ctx, LockKey(cmd.RideID))
	if err != nil {
		return err
	}
	defer unlock()

	r, err := s.store.Get(ctx, cmd.RideID)
	if err != nil {
		return err
	}
	if r.DriverID != cmd.ActorID {
		return types.ErrUnauthorized
	}
	if r.Completed {
		return fmt.Errorf("ride.Service.Delete: %w: completed rides are kept", types.ErrInvalidState)
	}
	if err := s.store.Delete(ctx, r.ID); err != nil {
		return err
	}
	s.logger.Info("ride deleted", "ride_id", r.ID)
	return nil
}

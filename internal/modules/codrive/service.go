// README: Join request service: proposal pipeline, state transitions, route commits and cascade.
package codrive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"codrive/internal/infra"
	"codrive/internal/modules/ledger"
	"codrive/internal/modules/location"
	"codrive/internal/modules/pricing"
	"codrive/internal/modules/ride"
	"codrive/internal/modules/route"
	"codrive/internal/observability"
	"codrive/internal/types"
)

type Repository interface {
	Create(ctx context.Context, r *JoinRequest) error
	Get(ctx context.Context, id types.ID) (*JoinRequest, error)
	ListByRide(ctx context.Context, rideID types.ID, statuses ...Status) ([]JoinRequest, error)
	ListByRequester(ctx context.Context, requesterID types.ID) ([]JoinRequest, error)
	HasActive(ctx context.Context, rideID, requesterID types.ID) (bool, error)
	Transition(ctx context.Context, id types.ID, from, to Status, version int, arrival *time.Time) error
	SaveProposal(ctx context.Context, id types.ID, version int, p *RouteProposal) error
	SetArrival(ctx context.Context, id types.ID, arrival time.Time) error
	MarkPaid(ctx context.Context, id types.ID, ratingGiven bool) error
	AppendEvent(ctx context.Context, e *Event) error
}

type Rides interface {
	Get(ctx context.Context, id types.ID) (*ride.Ride, error)
	CommitRoute(ctx context.Context, c ride.RouteCommit) error
}

type LocationResolver interface {
	Resolve(ctx context.Context, a location.Address) (*location.Location, error)
}

type RoutePlanner interface {
	Plan(ctx context.Context, in route.PlanInput) (route.Plan, error)
}

type Ledger interface {
	Debit(ctx context.Context, userID types.ID, amount int64) error
	Rate(ctx context.Context, driverID types.ID, value int) (ledger.Rating, error)
}

type Deps struct {
	Requests  Repository
	Rides     Rides
	Locations LocationResolver
	Planner   RoutePlanner
	Estimator *pricing.Estimator
	Ledger    Ledger
	Tx        infra.Transactor
	Locker    infra.Locker
	Logger    *slog.Logger
	Now       func() time.Time
}

type Service struct {
	requests  Repository
	rides     Rides
	locations LocationResolver
	planner   RoutePlanner
	estimator *pricing.Estimator
	ledger    Ledger
	tx        infra.Transactor
	locker    infra.Locker
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(d Deps) *Service {
	s := &Service{
		requests:  d.Requests,
		rides:     d.Rides,
		locations: d.Locations,
		planner:   d.Planner,
		estimator: d.Estimator,
		ledger:    d.Ledger,
		tx:        d.Tx,
		locker:    d.Locker,
		logger:    d.Logger,
		now:       d.Now,
	}
	if s.estimator == nil {
		s.estimator = pricing.NewEstimator(pricing.DefaultMetersPerPoint)
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
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

type RequestCommand struct {
	RideID      types.ID
	RequesterID types.ID
	Pickup      location.Address
	Passengers  int
	Message     string
}

type ActorCommand struct {
	RequestID types.ID
	ActorID   types.ID
}

type PayCommand struct {
	RequestID types.ID
	ActorID   types.ID
	Rating    *int
}

const (
	actorDriver    = "driver"
	actorRequester = "requester"
)

// Preview runs the proposal pipeline for a prospective request without persisting it.
func (s *Service) Preview(ctx context.Context, cmd RequestCommand) (CostPreview, error) {
	r, err := s.rides.Get(ctx, cmd.RideID)
	if err != nil {
		return CostPreview{}, err
	}
	if err := s.checkJoin(r, cmd.RequesterID, cmd.Passengers); err != nil {
		return CostPreview{}, fmt.Errorf("codrive.Service.Preview: %w", err)
	}
	pickup, err := s.locations.Resolve(ctx, cmd.Pickup)
	if err != nil {
		return CostPreview{}, fmt.Errorf("codrive.Service.Preview: %w", err)
	}
	accepted, err := s.requests.ListByRide(ctx, r.ID, StatusAccepted)
	if err != nil {
		return CostPreview{}, err
	}
	candidate := JoinRequest{RequesterID: cmd.RequesterID, Pickup: pickup.Point}
	p, err := s.propose(ctx, r, accepted, candidate)
	if err != nil {
		return CostPreview{}, fmt.Errorf("codrive.Service.Preview: %w", err)
	}
	return CostPreview{
		PointContribution:   p.PointContribution,
		AddedDistanceMeters: p.AddedDistanceMeters,
		ArrivalAt:           p.Arrivals[cmd.RequesterID],
		DepartureAt:         p.DepartureAt,
	}, nil
}

// Create validates the join against the ride, computes a proposal against the committed
// stops plus the new pickup and stores the request as pending.
func (s *Service) Create(ctx context.Context, cmd RequestCommand) (*JoinRequest, error) {
	unlock, err := s.locker.Lock(ctx, ride.LockKey(cmd.RideID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	r, err := s.rides.Get(ctx, cmd.RideID)
	if err != nil {
		return nil, err
	}
	if err := s.checkJoin(r, cmd.RequesterID, cmd.Passengers); err != nil {
		return nil, fmt.Errorf("codrive.Service.Create: %w", err)
	}
	active, err := s.requests.HasActive(ctx, r.ID, cmd.RequesterID)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, fmt.Errorf("codrive.Service.Create: %w", types.ErrDuplicateRequest)
	}

	pickup, err := s.locations.Resolve(ctx, cmd.Pickup)
	if err != nil {
		return nil, fmt.Errorf("codrive.Service.Create: %w", err)
	}
	accepted, err := s.requests.ListByRide(ctx, r.ID, StatusAccepted)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	req := &JoinRequest{
		ID:               types.NewID(),
		RideID:           r.ID,
		RequesterID:      cmd.RequesterID,
		PickupLocationID: pickup.ID,
		Pickup:           pickup.Point,
		Passengers:       cmd.Passengers,
		Message:          cmd.Message,
		Status:           StatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	p, err := s.propose(ctx, r, accepted, *req)
	if err != nil {
		return nil, fmt.Errorf("codrive.Service.Create: %w", err)
	}
	req.Proposal = p
	req.PointContribution = p.PointContribution
	req.AddedDistanceMeters = p.AddedDistanceMeters

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.requests.Create(ctx, req); err != nil {
			return err
		}
		return s.requests.AppendEvent(ctx, s.event(req.ID, StatusNone, StatusPending, actorRequester, cmd.RequesterID))
	})
	if err != nil {
		return nil, err
	}
	observability.JoinRequestTransitions.WithLabelValues(string(StatusNone), string(StatusPending)).Inc()
	return req, nil
}

// Accept commits the request's proposal into the ride, then recomputes every other
// pending request against the new route.
func (s *Service) Accept(ctx context.Context, cmd ActorCommand) (*JoinRequest, error) {
	req, r, unlock, err := s.lockRequest(ctx, cmd.RequestID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if r.DriverID != cmd.ActorID {
		return nil, types.ErrUnauthorized
	}
	if !CanTransition(req.Status, StatusAccepted) {
		return nil, fmt.Errorf("codrive.Service.Accept: %w: request is %s", types.ErrInvalidState, req.Status)
	}
	if r.Completed {
		return nil, fmt.Errorf("codrive.Service.Accept: %w: ride completed", types.ErrInvalidState)
	}
	if r.CurrentPassengers+req.Passengers > r.MaxPassengers {
		return nil, fmt.Errorf("codrive.Service.Accept: %w: %d seats left, %d requested", types.ErrCapacityExceeded, r.SeatsLeft(), req.Passengers)
	}
	if req.Stale(r.Version) {
		return nil, fmt.Errorf("codrive.Service.Accept: %w", types.ErrStaleProposal)
	}
	now := s.now()
	if !r.ArrivalAt.After(now) {
		return nil, fmt.Errorf("codrive.Service.Accept: %w", types.ErrPastArrival)
	}
	p := req.Proposal
	if !p.DepartureAt.After(now) {
		return nil, fmt.Errorf("codrive.Service.Accept: %w", types.ErrPastDeparture)
	}

	accepted, err := s.requests.ListByRide(ctx, r.ID, StatusAccepted)
	if err != nil {
		return nil, err
	}
	arrival, ok := p.Arrivals[req.RequesterID]
	if !ok {
		return nil, fmt.Errorf("codrive.Service.Accept: %w: proposal has no arrival for requester", types.ErrStaleProposal)
	}

	commit := ride.RouteCommit{
		RideID:          r.ID,
		BaseVersion:     r.Version,
		Geometry:        p.Geometry,
		DistanceMeters:  p.DistanceMeters,
		DurationSeconds: p.DurationSeconds,
		DepartureAt:     p.DepartureAt,
		PassengerDelta:  req.Passengers,
		PointsDelta:     req.PointContribution,
	}
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.rides.CommitRoute(ctx, commit); err != nil {
			return err
		}
		if err := s.requests.Transition(ctx, req.ID, StatusPending, StatusAccepted, req.StatusVersion, &arrival); err != nil {
			return err
		}
		for _, a := range accepted {
			if at, ok := p.Arrivals[a.RequesterID]; ok {
				if err := s.requests.SetArrival(ctx, a.ID, at); err != nil {
					return err
				}
			}
		}
		return s.requests.AppendEvent(ctx, s.event(req.ID, StatusPending, StatusAccepted, actorDriver, cmd.ActorID))
	})
	if err != nil {
		return nil, err
	}
	observability.JoinRequestTransitions.WithLabelValues(string(StatusPending), string(StatusAccepted)).Inc()
	observability.RouteCommits.WithLabelValues("accept").Inc()
	s.logger.Info("join request accepted",
		"ride_id", r.ID, "request_id", req.ID,
		"passengers", r.CurrentPassengers+req.Passengers, "points", r.TotalPoints+req.PointContribution)

	s.cascade(ctx, r.ID, req.ID)
	return s.requests.Get(ctx, req.ID)
}

// Refuse is driver-only and only for pending requests.
func (s *Service) Refuse(ctx context.Context, cmd ActorCommand) (*JoinRequest, error) {
	req, r, unlock, err := s.lockRequest(ctx, cmd.RequestID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if r.DriverID != cmd.ActorID {
		return nil, types.ErrUnauthorized
	}
	return s.terminate(ctx, "Refuse", req, StatusRefused, actorDriver, cmd.ActorID)
}

// Withdraw is requester-only and only for pending requests.
func (s *Service) Withdraw(ctx context.Context, cmd ActorCommand) (*JoinRequest, error) {
	req, _, unlock, err := s.lockRequest(ctx, cmd.RequestID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if req.RequesterID != cmd.ActorID {
		return nil, types.ErrUnauthorized
	}
	return s.terminate(ctx, "Withdraw", req, StatusWithdrawn, actorRequester, cmd.ActorID)
}

func (s *Service) terminate(ctx context.Context, op string, req *JoinRequest, to Status, actorType string, actor types.ID) (*JoinRequest, error) {
	if req.Status != StatusPending || !CanTransition(req.Status, to) {
		return nil, fmt.Errorf("codrive.Service.%s: %w: request is %s", op, types.ErrInvalidState, req.Status)
	}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.requests.Transition(ctx, req.ID, req.Status, to, req.StatusVersion, nil); err != nil {
			return err
		}
		return s.requests.AppendEvent(ctx, s.event(req.ID, req.Status, to, actorType, actor))
	})
	if err != nil {
		return nil, err
	}
	observability.JoinRequestTransitions.WithLabelValues(string(req.Status), string(to)).Inc()
	return s.requests.Get(ctx, req.ID)
}

// Leave removes an accepted rider, reroutes over the remaining accepted stops and cascades.
func (s *Service) Leave(ctx context.Context, cmd ActorCommand) (*JoinRequest, error) {
	req, r, unlock, err := s.lockRequest(ctx, cmd.RequestID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if req.RequesterID != cmd.ActorID {
		return nil, types.ErrUnauthorized
	}
	if req.Status != StatusAccepted {
		return nil, fmt.Errorf("codrive.Service.Leave: %w: request is %s", types.ErrInvalidState, req.Status)
	}
	if r.Completed {
		return nil, fmt.Errorf("codrive.Service.Leave: %w: ride completed", types.ErrInvalidState)
	}
	if !r.ArrivalAt.After(s.now()) {
		return nil, fmt.Errorf("codrive.Service.Leave: %w", types.ErrPastArrival)
	}

	accepted, err := s.requests.ListByRide(ctx, r.ID, StatusAccepted)
	if err != nil {
		return nil, err
	}
	remaining := make([]JoinRequest, 0, len(accepted))
	for _, a := range accepted {
		if a.ID != req.ID {
			remaining = append(remaining, a)
		}
	}

	plan, err := s.planner.Plan(ctx, route.PlanInput{
		Origin:      r.Start,
		Destination: r.End,
		Pickups:     pickups(remaining),
		Reference:   r.Geometry,
		Anchor:      r.ArrivalAt,
	})
	if err != nil {
		return nil, fmt.Errorf("codrive.Service.Leave: %w", err)
	}

	commit := ride.RouteCommit{
		RideID:          r.ID,
		BaseVersion:     r.Version,
		Geometry:        plan.Route.Geometry,
		DistanceMeters:  plan.Route.DistanceMeters,
		DurationSeconds: plan.Route.DurationSeconds,
		DepartureAt:     plan.Departure,
		PassengerDelta:  -req.Passengers,
		PointsDelta:     -req.PointContribution,
	}
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.rides.CommitRoute(ctx, commit); err != nil {
			return err
		}
		if err := s.requests.Transition(ctx, req.ID, StatusAccepted, StatusWithdrawn, req.StatusVersion, nil); err != nil {
			return err
		}
		for _, a := range remaining {
			if err := s.requests.SetArrival(ctx, a.ID, plan.Arrivals[a.RequesterID]); err != nil {
				return err
			}
		}
		return s.requests.AppendEvent(ctx, s.event(req.ID, StatusAccepted, StatusWithdrawn, actorRequester, cmd.ActorID))
	})
	if err != nil {
		return nil, err
	}
	observability.JoinRequestTransitions.WithLabelValues(string(StatusAccepted), string(StatusWithdrawn)).Inc()
	observability.RouteCommits.WithLabelValues("leave").Inc()
	s.logger.Info("rider left ride", "ride_id", r.ID, "request_id", req.ID, "remaining", len(remaining))

	s.cascade(ctx, r.ID, req.ID)
	return s.requests.Get(ctx, req.ID)
}

// Refresh recomputes the proposal of a pending request against the current committed route.
// It is how a stale request becomes acceptable again.
func (s *Service) Refresh(ctx context.Context, cmd ActorCommand) (*JoinRequest, error) {
	req, r, unlock, err := s.lockRequest(ctx, cmd.RequestID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if req.RequesterID != cmd.ActorID && r.DriverID != cmd.ActorID {
		return nil, types.ErrUnauthorized
	}
	if req.Status != StatusPending {
		return nil, fmt.Errorf("codrive.Service.Refresh: %w: request is %s", types.ErrInvalidState, req.Status)
	}
	if r.Completed {
		return nil, fmt.Errorf("codrive.Service.Refresh: %w: ride completed", types.ErrInvalidState)
	}
	if !r.ArrivalAt.After(s.now()) {
		return nil, fmt.Errorf("codrive.Service.Refresh: %w", types.ErrPastArrival)
	}
	accepted, err := s.requests.ListByRide(ctx, r.ID, StatusAccepted)
	if err != nil {
		return nil, err
	}
	p, err := s.propose(ctx, r, accepted, *req)
	if err != nil {
		return nil, fmt.Errorf("codrive.Service.Refresh: %w", err)
	}
	if err := s.requests.SaveProposal(ctx, req.ID, req.StatusVersion, p); err != nil {
		return nil, err
	}
	return s.requests.Get(ctx, req.ID)
}

// Pay settles an accepted request on a completed ride and optionally rates the driver.
func (s *Service) Pay(ctx context.Context, cmd PayCommand) (*JoinRequest, error) {
	if cmd.Rating != nil && (*cmd.Rating < ledger.MinRating || *cmd.Rating > ledger.MaxRating) {
		return nil, fmt.Errorf("codrive.Service.Pay: %w: rating must be between %d and %d", types.ErrBadRequest, ledger.MinRating, ledger.MaxRating)
	}
	req, r, unlock, err := s.lockRequest(ctx, cmd.RequestID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if req.RequesterID != cmd.ActorID {
		return nil, types.ErrUnauthorized
	}
	if req.Status != StatusAccepted {
		return nil, fmt.Errorf("codrive.Service.Pay: %w: request is %s", types.ErrInvalidState, req.Status)
	}
	if !r.Completed {
		return nil, fmt.Errorf("codrive.Service.Pay: %w: ride not completed", types.ErrInvalidState)
	}
	if req.Paid {
		return nil, fmt.Errorf("codrive.Service.Pay: %w: already paid", types.ErrInvalidState)
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.ledger.Debit(ctx, req.RequesterID, int64(req.PointContribution)); err != nil {
			return err
		}
		if err := s.requests.MarkPaid(ctx, req.ID, cmd.Rating != nil); err != nil {
			return err
		}
		if cmd.Rating != nil {
			if _, err := s.ledger.Rate(ctx, r.DriverID, *cmd.Rating); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.requests.Get(ctx, req.ID)
}

// Get is visible to the requester and the ride's driver.
func (s *Service) Get(ctx context.Context, id, viewer types.ID) (*JoinRequest, error) {
	req, err := s.requests.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.RequesterID == viewer {
		return req, nil
	}
	r, err := s.rides.Get(ctx, req.RideID)
	if err != nil {
		return nil, err
	}
	if r.DriverID != viewer {
		return nil, types.ErrUnauthorized
	}
	return req, nil
}

func (s *Service) ListMine(ctx context.Context, requesterID types.ID) ([]JoinRequest, error) {
	return s.requests.ListByRequester(ctx, requesterID)
}

// lockRequest resolves the request's ride, takes the ride lock and reloads both under it.
func (s *Service) lockRequest(ctx context.Context, requestID types.ID) (*JoinRequest, *ride.Ride, func(), error) {
	peek, err := s.requests.Get(ctx, requestID)
	if err != nil {
		return nil, nil, nil, err
	}
	unlock, err := s.locker.Lock(ctx, ride.LockKey(peek.RideID))
	if err != nil {
		return nil, nil, nil, err
	}
	req, err := s.requests.Get(ctx, requestID)
	if err != nil {
		unlock()
		return nil, nil, nil, err
	}
	r, err := s.rides.Get(ctx, req.RideID)
	if err != nil {
		unlock()
		return nil, nil, nil, err
	}
	return req, r, unlock, nil
}

func (s *Service) checkJoin(r *ride.Ride, requesterID types.ID, passengers int) error {
	if requesterID == "" || passengers < 1 {
		return fmt.Errorf("%w: requester and at least one passenger required", types.ErrBadRequest)
	}
	if r.Completed {
		return fmt.Errorf("%w: ride completed", types.ErrInvalidState)
	}
	if r.DriverID == requesterID {
		return fmt.Errorf("%w: drivers cannot join their own ride", types.ErrUnauthorized)
	}
	if !r.ArrivalAt.After(s.now()) {
		return types.ErrPastArrival
	}
	if r.CurrentPassengers+passengers > r.MaxPassengers {
		return fmt.Errorf("%w: %d seats left, %d requested", types.ErrCapacityExceeded, r.SeatsLeft(), passengers)
	}
	return nil
}

// propose routes the ride through its accepted pickups plus candidate, ordered along the
// committed geometry, and prices the added distance.
func (s *Service) propose(ctx context.Context, r *ride.Ride, accepted []JoinRequest, candidate JoinRequest) (*RouteProposal, error) {
	stops := append(append(make([]JoinRequest, 0, len(accepted)+1), accepted...), candidate)

	plan, err := s.planner.Plan(ctx, route.PlanInput{
		Origin:      r.Start,
		Destination: r.End,
		Pickups:     pickups(stops),
		Reference:   r.Geometry,
		Anchor:      r.ArrivalAt,
	})
	if err != nil {
		return nil, err
	}
	quote, err := s.estimator.Quote(plan.Route.DistanceMeters, r.DistanceMeters, r.MaxRequestDistance)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if !plan.Departure.After(now) {
		return nil, fmt.Errorf("%w: proposed departure %s", types.ErrPastDeparture, plan.Departure.UTC().Format(time.RFC3339))
	}
	return &RouteProposal{
		Geometry:            plan.Route.Geometry,
		DistanceMeters:      plan.Route.DistanceMeters,
		DurationSeconds:     plan.Route.DurationSeconds,
		Arrivals:            plan.Arrivals,
		DepartureAt:         plan.Departure,
		AddedDistanceMeters: quote.AddedDistanceMeters,
		PointContribution:   quote.Points,
		BaseVersion:         r.Version,
		ComputedAt:          now.UTC(),
	}, nil
}

// cascade recomputes every pending request of the ride except skip. Failures are logged
// and leave that request's proposal stale; they never undo the commit that triggered them.
func (s *Service) cascade(ctx context.Context, rideID, skip types.ID) {
	ctx = context.WithoutCancel(ctx)

	r, err := s.rides.Get(ctx, rideID)
	if err != nil {
		s.logger.Warn("cascade aborted", "ride_id", rideID, "error", err)
		return
	}
	pending, err := s.requests.ListByRide(ctx, rideID, StatusPending)
	if err != nil {
		s.logger.Warn("cascade aborted", "ride_id", rideID, "error", err)
		return
	}
	if len(pending) == 0 {
		return
	}
	accepted, err := s.requests.ListByRide(ctx, rideID, StatusAccepted)
	if err != nil {
		s.logger.Warn("cascade aborted", "ride_id", rideID, "error", err)
		return
	}

	for _, p := range pending {
		if p.ID == skip {
			continue
		}
		proposal, err := s.propose(ctx, r, accepted, p)
		if err == nil {
			err = s.requests.SaveProposal(ctx, p.ID, p.StatusVersion, proposal)
		}
		if err != nil {
			observability.CascadeRecomputations.WithLabelValues(cascadeOutcome(err)).Inc()
			s.logger.Warn("cascade recompute failed; proposal left stale",
				"ride_id", rideID, "request_id", p.ID, "error", err)
			continue
		}
		observability.CascadeRecomputations.WithLabelValues("ok").Inc()
	}
}

func cascadeOutcome(err error) string {
	switch {
	case errors.Is(err, types.ErrDetourTooLarge):
		return "detour_too_large"
	case errors.Is(err, types.ErrRouteUnavailable):
		return "route_unavailable"
	case errors.Is(err, types.ErrPastDeparture):
		return "past_departure"
	case errors.Is(err, types.ErrConflict):
		return "conflict"
	default:
		return "error"
	}
}

func pickups(rs []JoinRequest) []route.Pickup {
	out := make([]route.Pickup, 0, len(rs))
	for _, r := range rs {
		out = append(out, route.Pickup{RiderID: r.RequesterID, Point: r.Pickup})
	}
	return out
}

func (s *Service) event(id types.ID, from, to Status, actorType string, actor types.ID) *Event {
	return &Event{
		RequestID:  id,
		FromStatus: from,
		ToStatus:   to,
		ActorType:  actorType,
		ActorID:    &actor,
		CreatedAt:  s.now().UTC(),
	}
}

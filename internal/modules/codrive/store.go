// README: Join request store backed by PostgreSQL (proposal as nullable JSONB).
package codrive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"codrive/internal/infra"
	"codrive/internal/types"
)

const uniqueViolation = "23505"

type Store struct {
	db infra.DB
}

func NewStore(db infra.DB) *Store {
	return &Store{db: db}
}

const requestColumns = `
	id, ride_id, requester_id, pickup_location_id, pickup_lat, pickup_lng,
	passengers, message, status, status_version, proposal, arrival_at,
	point_contribution, added_distance_meters, paid, rating_given, created_at, updated_at`

func (s *Store) Create(ctx context.Context, r *JoinRequest) error {
	proposal, err := marshalProposal(r.Proposal)
	if err != nil {
		return fmt.Errorf("codrive.Store.Create: %w", err)
	}
	_, err = infra.Conn(ctx, s.db).Exec(ctx, `
		INSERT INTO join_requests (`+requestColumns+`)
		VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17, $18
		)`,
		string(r.ID), string(r.RideID), string(r.RequesterID), string(r.PickupLocationID), r.Pickup.Lat, r.Pickup.Lng,
		r.Passengers, r.Message, string(r.Status), r.StatusVersion, proposal, r.ArrivalAt,
		r.PointContribution, r.AddedDistanceMeters, r.Paid, r.RatingGiven, r.CreatedAt, r.UpdatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("codrive.Store.Create: %w", types.ErrDuplicateRequest)
	}
	if err != nil {
		return fmt.Errorf("codrive.Store.Create: %w", err)
	}
	return nil
}

func scanRequest(row pgx.Row) (*JoinRequest, error) {
	var r JoinRequest
	var proposal []byte
	err := row.Scan(
		&r.ID, &r.RideID, &r.RequesterID, &r.PickupLocationID, &r.Pickup.Lat, &r.Pickup.Lng,
		&r.Passengers, &r.Message, &r.Status, &r.StatusVersion, &proposal, &r.ArrivalAt,
		&r.PointContribution, &r.AddedDistanceMeters, &r.Paid, &r.RatingGiven, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(proposal) > 0 {
		var p RouteProposal
		if err := json.Unmarshal(proposal, &p); err != nil {
			return nil, fmt.Errorf("proposal: %w", err)
		}
		r.Proposal = &p
	}
	return &r, nil
}

func (s *Store) Get(ctx context.Context, id types.ID) (*JoinRequest, error) {
	row := infra.Conn(ctx, s.db).QueryRow(ctx, `SELECT `+requestColumns+` FROM join_requests WHERE id = $1`, string(id))
	r, err := scanRequest(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("codrive.Store.Get: %w", err)
	}
	return r, nil
}

// ListByRide returns requests in creation order, optionally filtered by status.
func (s *Store) ListByRide(ctx context.Context, rideID types.ID, statuses ...Status) ([]JoinRequest, error) {
	filter := make([]string, 0, len(statuses))
	for _, st := range statuses {
		filter = append(filter, string(st))
	}
	rows, err := infra.Conn(ctx, s.db).Query(ctx, `
		SELECT `+requestColumns+`
		FROM join_requests
		WHERE ride_id = $1 AND (cardinality($2::text[]) = 0 OR status = ANY($2))
		ORDER BY created_at, id`,
		string(rideID), filter,
	)
	if err != nil {
		return nil, fmt.Errorf("codrive.Store.ListByRide: %w", err)
	}
	defer rows.Close()

	var out []JoinRequest
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("codrive.Store.ListByRide: %w", err)
		}
		out = append(out, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("codrive.Store.ListByRide: %w", err)
	}
	return out, nil
}

func (s *Store) ListByRequester(ctx context.Context, requesterID types.ID) ([]JoinRequest, error) {
	rows, err := infra.Conn(ctx, s.db).Query(ctx, `
		SELECT `+requestColumns+` FROM join_requests WHERE requester_id = $1 ORDER BY created_at DESC`,
		string(requesterID),
	)
	if err != nil {
		return nil, fmt.Errorf("codrive.Store.ListByRequester: %w", err)
	}
	defer rows.Close()

	var out []JoinRequest
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("codrive.Store.ListByRequester: %w", err)
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func (s *Store) HasActive(ctx context.Context, rideID, requesterID types.ID) (bool, error) {
	var exists bool
	err := infra.Conn(ctx, s.db).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM join_requests
			WHERE ride_id = $1 AND requester_id = $2 AND status IN ('pending', 'accepted')
		)`, string(rideID), string(requesterID),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("codrive.Store.HasActive: %w", err)
	}
	return exists, nil
}

// Transition moves a request between states. The proposal is always cleared; arrival is
// overwritten with the given value (nil clears it).
func (s *Store) Transition(ctx context.Context, id types.ID, from, to Status, version int, arrival *time.Time) error {
	tag, err := infra.Conn(ctx, s.db).Exec(ctx, `
		UPDATE join_requests
		SET status = $1,
			status_version = status_version + 1,
			proposal = NULL,
			arrival_at = $2,
			updated_at = NOW()
		WHERE id = $3 AND status = $4 AND status_version = $5`,
		string(to), arrival, string(id), string(from), version,
	)
	if err != nil {
		return fmt.Errorf("codrive.Store.Transition: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("codrive.Store.Transition: %w", types.ErrConflict)
	}
	return nil
}

// SaveProposal replaces the proposal of a still-pending request.
func (s *Store) SaveProposal(ctx context.Context, id types.ID, version int, p *RouteProposal) error {
	payload, err := marshalProposal(p)
	if err != nil {
		return fmt.Errorf("codrive.Store.SaveProposal: %w", err)
	}
	tag, err := infra.Conn(ctx, s.db).Exec(ctx, `
		UPDATE join_requests
		SET proposal = $1,
			point_contribution = $2,
			added_distance_meters = $3,
			status_version = status_version + 1,
			updated_at = NOW()
		WHERE id = $4 AND status = 'pending' AND status_version = $5`,
		payload, p.PointContribution, p.AddedDistanceMeters, string(id), version,
	)
	if err != nil {
		return fmt.Errorf("codrive.Store.SaveProposal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("codrive.Store.SaveProposal: %w", types.ErrConflict)
	}
	return nil
}

// SetArrival updates the committed arrival of an accepted request.
func (s *Store) SetArrival(ctx context.Context, id types.ID, arrival time.Time) error {
	_, err := infra.Conn(ctx, s.db).Exec(ctx, `
		UPDATE join_requests SET arrival_at = $1, updated_at = NOW()
		WHERE id = $2 AND status = 'accepted'`,
		arrival, string(id),
	)
	if err != nil {
		return fmt.Errorf("codrive.Store.SetArrival: %w", err)
	}
	return nil
}

func (s *Store) MarkPaid(ctx context.Context, id types.ID, ratingGiven bool) error {
	tag, err := infra.Conn(ctx, s.db).Exec(ctx, `
		UPDATE join_requests
		SET paid = TRUE, rating_given = rating_given OR $1, updated_at = NOW()
		WHERE id = $2 AND status = 'accepted' AND paid = FALSE`,
		ratingGiven, string(id),
	)
	if err != nil {
		return fmt.Errorf("codrive.Store.MarkPaid: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("codrive.Store.MarkPaid: %w", types.ErrConflict)
	}
	return nil
}

func (s *Store) AppendEvent(ctx context.Context, e *Event) error {
	var actor *string
	if e.ActorID != nil {
		v := string(*e.ActorID)
		actor = &v
	}
	_, err := infra.Conn(ctx, s.db).Exec(ctx, `
		INSERT INTO join_request_events (request_id, from_status, to_status, actor_type, actor_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		string(e.RequestID), string(e.FromStatus), string(e.ToStatus), e.ActorType, actor, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("codrive.Store.AppendEvent: %w", err)
	}
	return nil
}

func marshalProposal(p *RouteProposal) ([]byte, error) {
	if p == nil {
		return nil, nil
	}
	return json.Marshal(p)
}

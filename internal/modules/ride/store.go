// README: Ride store backed by PostgreSQL; route commits use an optimistic version check.
package ride

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"codrive/internal/infra"
	"codrive/internal/types"
)

type Store struct {
	db infra.DB
}

func NewStore(db infra.DB) *Store {
	return &Store{db: db}
}

const rideColumns = `
	id, driver_id, vehicle_id, start_location_id, end_location_id,
	start_lat, start_lng, end_lat, end_lng,
	max_passengers, current_passengers, total_points, max_request_distance,
	geometry, distance_meters, duration_seconds, departure_at, arrival_at,
	completed, version, created_at`

func (s *Store) Create(ctx context.Context, r *Ride) error {
	geom, err := json.Marshal(r.Geometry)
	if err != nil {
		return fmt.Errorf("ride.Store.Create: %w", err)
	}
	_, err = infra.Conn(ctx, s.db).Exec(ctx, `
		INSERT INTO rides (`+rideColumns+`)
		VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9,
			$10, $11, $12, $13,
			$14, $15, $16, $17, $18,
			$19, $20, $21
		)`,
		string(r.ID), string(r.DriverID), r.VehicleID, string(r.StartLocationID), string(r.EndLocationID),
		r.Start.Lat, r.Start.Lng, r.End.Lat, r.End.Lng,
		r.MaxPassengers, r.CurrentPassengers, r.TotalPoints, r.MaxRequestDistance,
		geom, r.DistanceMeters, r.DurationSeconds, r.DepartureAt, r.ArrivalAt,
		r.Completed, r.Version, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("ride.Store.Create: %w", err)
	}
	return nil
}

func scanRide(row pgx.Row) (*Ride, error) {
	var r Ride
	var geom []byte
	err := row.Scan(
		&r.ID, &r.DriverID, &r.VehicleID, &r.StartLocationID, &r.EndLocationID,
		&r.Start.Lat, &r.Start.Lng, &r.End.Lat, &r.End.Lng,
		&r.MaxPassengers, &r.CurrentPassengers, &r.TotalPoints, &r.MaxRequestDistance,
		&geom, &r.DistanceMeters, &r.DurationSeconds, &r.DepartureAt, &r.ArrivalAt,
		&r.Completed, &r.Version, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(geom, &r.Geometry); err != nil {
		return nil, fmt.Errorf("geometry: %w", err)
	}
	return &r, nil
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Ride, error) {
	row := infra.Conn(ctx, s.db).QueryRow(ctx, `SELECT `+rideColumns+` FROM rides WHERE id = $1`, string(id))
	r, err := scanRide(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ride.Store.Get: %w", err)
	}
	return r, nil
}

// CommitRoute fails with ErrConflict when the version moved, the ride completed, or the
// new passenger count would exceed capacity.
func (s *Store) CommitRoute(ctx context.Context, c RouteCommit) error {
	geom, err := json.Marshal(c.Geometry)
	if err != nil {
		return fmt.Errorf("ride.Store.CommitRoute: %w", err)
	}
	tag, err := infra.Conn(ctx, s.db).Exec(ctx, `
		UPDATE rides
		SET geometry = @geometry,
			distance_meters = @distance,
			duration_seconds = @duration,
			departure_at = @departure,
			current_passengers = current_passengers + @passengers,
			total_points = total_points + @points,
			version = version + 1
		WHERE id = @id
		  AND version = @version
		  AND completed = FALSE
		  AND current_passengers + @passengers BETWEEN 0 AND max_passengers`,
		pgx.NamedArgs{
			"geometry":   geom,
			"distance":   c.DistanceMeters,
			"duration":   c.DurationSeconds,
			"departure":  c.DepartureAt,
			"passengers": c.PassengerDelta,
			"points":     c.PointsDelta,
			"id":         string(c.RideID),
			"version":    c.BaseVersion,
		},
	)
	if err != nil {
		return fmt.Errorf("ride.Store.CommitRoute: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("ride.Store.CommitRoute: %w", types.ErrConflict)
	}
	return nil
}

func (s *Store) MarkCompleted(ctx context.Context, id types.ID, version int) error {
	tag, err := infra.Conn(ctx, s.db).Exec(ctx, `
		UPDATE rides
		SET completed = TRUE, version = version + 1
		WHERE id = $1 AND version = $2 AND completed = FALSE`,
		string(id), version,
	)
	if err != nil {
		return fmt.Errorf("ride.Store.MarkCompleted: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("ride.Store.MarkCompleted: %w", types.ErrConflict)
	}
	return nil
}

// Delete removes the ride; join requests and their events go with it through ON DELETE CASCADE.
func (s *Store) Delete(ctx context.Context, id types.ID) error {
	tag, err := infra.Conn(ctx, s.db).Exec(ctx, `DELETE FROM rides WHERE id = $1 AND completed = FALSE`, string(id))
	if err != nil {
		return fmt.Errorf("ride.Store.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("ride.Store.Delete: %w", types.ErrConflict)
	}
	return nil
}

func (s *Store) ListByDriver(ctx context.Context, driverID types.ID) ([]Ride, error) {
	rows, err := infra.Conn(ctx, s.db).Query(ctx, `
		SELECT `+rideColumns+` FROM rides WHERE driver_id = $1 ORDER BY arrival_at DESC`, string(driverID))
	if err != nil {
		return nil, fmt.Errorf("ride.Store.ListByDriver: %w", err)
	}
	defer rows.Close()

	var out []Ride
	for rows.Next() {
		r, err := scanRide(rows)
		if err != nil {
			return nil, fmt.Errorf("ride.Store.ListByDriver: %w", err)
		}
		out = append(out, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ride.Store.ListByDriver: %w", err)
	}
	return out, nil
}

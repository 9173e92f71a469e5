// README: Ride aggregate: committed route, capacity counters and point total.
package ride

import (
	"time"

	"codrive/internal/types"
)

type Ride struct {
	ID                 types.ID       `json:"id"`
	DriverID           types.ID       `json:"driver_id"`
	VehicleID          string         `json:"vehicle_id,omitempty"`
	StartLocationID    types.ID       `json:"start_location_id"`
	EndLocationID      types.ID       `json:"end_location_id"`
	Start              types.Point    `json:"start"`
	End                types.Point    `json:"end"`
	MaxPassengers      int            `json:"max_passengers"`
	CurrentPassengers  int            `json:"current_passengers"`
	TotalPoints        int            `json:"total_points"`
	MaxRequestDistance *int           `json:"max_request_distance,omitempty"`
	Geometry           types.Polyline `json:"geometry"`
	DistanceMeters     int            `json:"distance_meters"`
	DurationSeconds    int            `json:"duration_seconds"`
	DepartureAt        time.Time      `json:"departure_at"`
	ArrivalAt          time.Time      `json:"arrival_at"`
	Completed          bool           `json:"completed"`
	Version            int            `json:"version"`
	CreatedAt          time.Time      `json:"created_at"`
}

// RouteCommit replaces the committed route and shifts the counters by the given deltas.
// It applies only if the ride is still at BaseVersion.
type RouteCommit struct {
	RideID          types.ID
	BaseVersion     int
	Geometry        types.Polyline
	DistanceMeters  int
	DurationSeconds int
	DepartureAt     time.Time
	PassengerDelta  int
	PointsDelta     int
}

func (r *Ride) SeatsLeft() int {
	return r.MaxPassengers - r.CurrentPassengers
}

// Apply mirrors a successful commit on an in-memory copy.
func (r *Ride) Apply(c RouteCommit) {
	r.Geometry = c.Geometry
	r.DistanceMeters = c.DistanceMeters
	r.DurationSeconds = c.DurationSeconds
	r.DepartureAt = c.DepartureAt
	r.CurrentPassengers += c.PassengerDelta
	r.TotalPoints += c.PointsDelta
	r.Version++
}

// LockKey names the per-ride critical section.
func LockKey(id types.ID) string {
	return "ride:" + string(id)
}

// README: Join request aggregate, its route proposal and the request state flow.
package codrive

import (
	"time"

	"codrive/internal/types"
)

type Status string

const (
	StatusNone      Status = "none"
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusRefused   Status = "refused"
	StatusWithdrawn Status = "withdrawn"
)

// RouteProposal is the candidate ride route computed for a pending request.
// BaseVersion is the ride version the proposal was computed against.
type RouteProposal struct {
	Geometry            types.Polyline         `json:"geometry"`
	DistanceMeters      int                    `json:"distance_meters"`
	DurationSeconds     int                    `json:"duration_seconds"`
	Arrivals            map[types.ID]time.Time `json:"arrivals"`
	DepartureAt         time.Time              `json:"departure_at"`
	AddedDistanceMeters int                    `json:"added_distance_meters"`
	PointContribution   int                    `json:"point_contribution"`
	BaseVersion         int                    `json:"base_version"`
	ComputedAt          time.Time              `json:"computed_at"`
}

type JoinRequest struct {
	ID                  types.ID       `json:"id"`
	RideID              types.ID       `json:"ride_id"`
	RequesterID         types.ID       `json:"requester_id"`
	PickupLocationID    types.ID       `json:"pickup_location_id"`
	Pickup              types.Point    `json:"pickup"`
	Passengers          int            `json:"passengers"`
	Message             string         `json:"message,omitempty"`
	Status              Status         `json:"status"`
	StatusVersion       int            `json:"status_version"`
	Proposal            *RouteProposal `json:"proposal,omitempty"`
	ArrivalAt           *time.Time     `json:"arrival_at,omitempty"`
	PointContribution   int            `json:"point_contribution"`
	AddedDistanceMeters int            `json:"added_distance_meters"`
	Paid                bool           `json:"paid"`
	RatingGiven         bool           `json:"rating_given"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
}

// Stale reports whether the proposal no longer matches the ride's committed route.
func (r *JoinRequest) Stale(rideVersion int) bool {
	return r.Proposal == nil || r.Proposal.BaseVersion != rideVersion
}

type Event struct {
	ID         int64
	RequestID  types.ID
	FromStatus Status
	ToStatus   Status
	ActorType  string
	ActorID    *types.ID
	CreatedAt  time.Time
}

// CostPreview is what a prospective rider would pay for joining.
type CostPreview struct {
	PointContribution   int       `json:"point_contribution"`
	AddedDistanceMeters int       `json:"added_distance_meters"`
	ArrivalAt           time.Time `json:"arrival_at"`
	DepartureAt         time.Time `json:"departure_at"`
}

// AllowedTransitions represents the join request state flow as code.
// Leave is accepted -> withdrawn.
var AllowedTransitions = map[Status][]Status{
	StatusNone:     {StatusPending},
	StatusPending:  {StatusAccepted, StatusRefused, StatusWithdrawn},
	StatusAccepted: {StatusWithdrawn},
}

func CanTransition(from, to Status) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

// Active statuses count against the one-open-request-per-ride rule.
func (s Status) Active() bool {
	return s == StatusPending || s == StatusAccepted
}

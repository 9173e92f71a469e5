package codrive

import (
	"context"
	"sort"
	"time"

	"codrive/internal/modules/ride"
	"codrive/internal/types"
)

type Stop struct {
	RequestID   types.ID    `json:"request_id"`
	RequesterID types.ID    `json:"requester_id"`
	Pickup      types.Point `json:"pickup"`
	Passengers  int         `json:"passengers"`
	ArrivalAt   *time.Time  `json:"arrival_at,omitempty"`
}

type RideView struct {
	Ride    *ride.Ride    `json:"ride"`
	Stops   []Stop        `json:"stops"`
	Pending []JoinRequest `json:"pending,omitempty"`
}

// RideView lists the committed stops in pickup order. Pending requests are only shown to the driver.
func (s *Service) RideView(ctx context.Context, rideID, viewer types.ID) (*RideView, error) {
	r, err := s.rides.Get(ctx, rideID)
	if err != nil {
		return nil, err
	}
	accepted, err := s.requests.ListByRide(ctx, rideID, StatusAccepted)
	if err != nil {
		return nil, err
	}
	v := &RideView{Ride: r, Stops: make([]Stop, 0, len(accepted))}
	for _, a := range accepted {
		v.Stops = append(v.Stops, Stop{
			RequestID:   a.ID,
			RequesterID: a.RequesterID,
			Pickup:      a.Pickup,
			Passengers:  a.Passengers,
			ArrivalAt:   a.ArrivalAt,
		})
	}
	sort.SliceStable(v.Stops, func(i, j int) bool {
		ai, aj := v.Stops[i].ArrivalAt, v.Stops[j].ArrivalAt
		if ai == nil || aj == nil {
			return aj == nil && ai != nil
		}
		return ai.Before(*aj)
	})
	if r.DriverID == viewer {
		if v.Pending, err = s.requests.ListByRide(ctx, rideID, StatusPending); err != nil {
			return nil, err
		}
	}
	return v, nil
}

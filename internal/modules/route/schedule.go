// README: Arrival-anchored scheduling from per-leg durations.
package route

import (
	"time"

	"codrive/internal/maps"
)

// Schedule holds one time per waypoint: Stops[0] is the departure and the last entry is the anchor.
type Schedule struct {
	Departure time.Time
	Stops     []time.Time
}

// NewSchedule derives departure = anchor - total duration and each later stop as departure
// plus the cumulative duration of the legs before it. Times are truncated to whole seconds.
func NewSchedule(anchor time.Time, legs []maps.Leg) Schedule {
	anchor = anchor.Truncate(time.Second)
	total := 0
	for _, l := range legs {
		total += l.DurationSeconds
	}
	departure := anchor.Add(-time.Duration(total) * time.Second)

	stops := make([]time.Time, 0, len(legs)+1)
	stops = append(stops, departure)
	elapsed := 0
	for _, l := range legs {
		elapsed += l.DurationSeconds
		stops = append(stops, departure.Add(time.Duration(elapsed)*time.Second))
	}
	return Schedule{Departure: departure, Stops: stops}
}

// Intermediate returns the arrival times of stops strictly between origin and destination.
func (s Schedule) Intermediate() []time.Time {
	if len(s.Stops) < 3 {
		return nil
	}
	return s.Stops[1 : len(s.Stops)-1]
}

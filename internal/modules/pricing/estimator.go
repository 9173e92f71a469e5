// README: Converts added route distance into integer points and enforces the detour limit.
package pricing

import "math"

const DefaultMetersPerPoint = 100.0

type Estimator struct {
	MetersPerPoint float64
}

func NewEstimator(metersPerPoint float64) *Estimator {
	if metersPerPoint <= 0 {
		metersPerPoint = DefaultMetersPerPoint
	}
	return &Estimator{MetersPerPoint: metersPerPoint}
}

// Points rounds half to even: 49 -> 0, 50 -> 0, 150 -> 2, 250 -> 2. Never negative.
func (e *Estimator) Points(addedMeters int) int {
	if addedMeters <= 0 {
		return 0
	}
	return int(math.RoundToEven(float64(addedMeters) / e.MetersPerPoint))
}

// Check fails with *DetourError when a limit is set and addedMeters exceeds it.
func (e *Estimator) Check(addedMeters int, limitMeters *int) error {
	if limitMeters == nil {
		return nil
	}
	if addedMeters > *limitMeters {
		return &DetourError{DetourMeters: addedMeters, LimitMeters: *limitMeters}
	}
	return nil
}

// Quote prices the candidate route against the committed one.
func (e *Estimator) Quote(candidateMeters, committedMeters int, limitMeters *int) (Quote, error) {
	added := candidateMeters - committedMeters
	if err := e.Check(added, limitMeters); err != nil {
		return Quote{}, err
	}
	return Quote{AddedDistanceMeters: added, Points: e.Points(added)}, nil
}

// README: Detour pricing results and the detour policy error.
package pricing

import (
	"fmt"

	"codrive/internal/types"
)

type Quote struct {
	AddedDistanceMeters int `json:"added_distance_meters"`
	Points              int `json:"point_contribution"`
}

// DetourError reports both the computed detour and the ride's configured limit.
type DetourError struct {
	DetourMeters int
	LimitMeters  int
}

func (e *DetourError) Error() string {
	return fmt.Sprintf("detour of %dm exceeds ride limit of %dm", e.DetourMeters, e.LimitMeters)
}

func (e *DetourError) Unwrap() error {
	return types.ErrDetourTooLarge
}

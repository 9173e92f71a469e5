package maps

import (
	"context"

	"codrive/internal/types"
)

// DisabledGeocoder is used when no geocoding provider is configured. Only addresses
// already stored as locations resolve.
type DisabledGeocoder struct{}

func (DisabledGeocoder) Geocode(context.Context, string) (types.Point, error) {
	return types.Point{}, ErrNoMatch
}

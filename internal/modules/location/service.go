// README: Location service resolves addresses to stored locations, geocoding on first sight.
package location

import (
	"context"
	"errors"
	"fmt"
	"time"

	"codrive/internal/maps"
	"codrive/internal/types"
)

type Repository interface {
	Get(ctx context.Context, id types.ID) (*Location, error)
	FindByAddress(ctx context.Context, a Address) (*Location, error)
	Insert(ctx context.Context, l *Location) (*Location, error)
}

type Service struct {
	store    Repository
	geocoder maps.Geocoder
}

func NewService(store Repository, geocoder maps.Geocoder) *Service {
	return &Service{store: store, geocoder: geocoder}
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Location, error) {
	return s.store.Get(ctx, id)
}

// Resolve looks the address up and geocodes it only when it is not stored yet.
func (s *Service) Resolve(ctx context.Context, a Address) (*Location, error) {
	a = a.Normalize()
	if !a.Valid() {
		return nil, fmt.Errorf("location.Service.Resolve: %w: incomplete address", types.ErrBadRequest)
	}
	existing, err := s.store.FindByAddress(ctx, a)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, types.ErrNotFound) {
		return nil, err
	}

	p, err := s.geocoder.Geocode(ctx, a.Query())
	if err != nil {
		if errors.Is(err, maps.ErrNoMatch) {
			return nil, fmt.Errorf("location.Service.Resolve: %w: %s", types.ErrAddressUnresolvable, a.Query())
		}
		return nil, fmt.Errorf("location.Service.Resolve: %w: %w", types.ErrAddressUnresolvable, err)
	}
	return s.store.Insert(ctx, &Location{
		ID:        types.NewID(),
		Address:   a,
		Point:     p,
		CreatedAt: time.Now().UTC(),
	})
}

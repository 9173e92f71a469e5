// README: Ledger service moves ride points between riders and drivers.
package ledger

import (
	"context"
	"fmt"

	"codrive/internal/types"
)

type Repository interface {
	Credit(ctx context.Context, userID types.ID, amount int64) error
	Debit(ctx context.Context, userID types.ID, amount int64) error
	Balance(ctx context.Context, userID types.ID) (int64, error)
	AddRating(ctx context.Context, driverID types.ID, value int) (Rating, error)
}

type Service struct {
	store Repository
}

func NewService(store Repository) *Service {
	return &Service{store: store}
}

func (s *Service) Credit(ctx context.Context, userID types.ID, amount int64) error {
	if amount < 0 {
		return fmt.Errorf("ledger.Service.Credit: %w: negative amount", types.ErrBadRequest)
	}
	if amount == 0 {
		return nil
	}
	return s.store.Credit(ctx, userID, amount)
}

func (s *Service) Debit(ctx context.Context, userID types.ID, amount int64) error {
	if amount < 0 {
		return fmt.Errorf("ledger.Service.Debit: %w: negative amount", types.ErrBadRequest)
	}
	if amount == 0 {
		return nil
	}
	return s.store.Debit(ctx, userID, amount)
}

func (s *Service) Balance(ctx context.Context, userID types.ID) (Account, error) {
	b, err := s.store.Balance(ctx, userID)
	if err != nil {
		return Account{}, err
	}
	return Account{UserID: userID, Balance: b}, nil
}

func (s *Service) Rate(ctx context.Context, driverID types.ID, value int) (Rating, error) {
	if value < MinRating || value > MaxRating {
		return Rating{}, fmt.Errorf("ledger.Service.Rate: %w: rating must be between %d and %d", types.ErrBadRequest, MinRating, MaxRating)
	}
	return s.store.AddRating(ctx, driverID, value)
}

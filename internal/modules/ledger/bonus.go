// README: Bonus catalogue and point redemption.
package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"codrive/internal/infra"
	"codrive/internal/types"
)

type BonusRepository interface {
	CreateBonus(ctx context.Context, b *Bonus) error
	GetBonus(ctx context.Context, id types.ID) (*Bonus, error)
	ListBonuses(ctx context.Context) ([]Bonus, error)
	DeleteBonus(ctx context.Context, id types.ID) error
	AddRedemption(ctx context.Context, r *Redemption) error
	ListRedemptions(ctx context.Context, userID types.ID) ([]Redemption, error)
}

// Debiter takes points from an account. *Service satisfies it.
type Debiter interface {
	Debit(ctx context.Context, userID types.ID, amount int64) error
}

type CreateBonusCommand struct {
	ActorID types.ID
	Name    string
	Cost    int64
}

type BonusService struct {
	store  BonusRepository
	points Debiter
	tx     infra.Transactor
	admins map[types.ID]struct{}
	now    func() time.Time
}

// NewBonusService builds the service. Only the given admins may change the catalogue.
func NewBonusService(store BonusRepository, points Debiter, tx infra.Transactor, admins []types.ID) *BonusService {
	if tx == nil {
		tx = infra.NoTx{}
	}
	set := make(map[types.ID]struct{}, len(admins))
	for _, a := range admins {
		set[a] = struct{}{}
	}
	return &BonusService{store: store, points: points, tx: tx, admins: set, now: time.Now}
}

func (s *BonusService) List(ctx context.Context) ([]Bonus, error) {
	return s.store.ListBonuses(ctx)
}

func (s *BonusService) Create(ctx context.Context, cmd CreateBonusCommand) (*Bonus, error) {
	if !s.isAdmin(cmd.ActorID) {
		return nil, types.ErrUnauthorized
	}
	name := strings.TrimSpace(cmd.Name)
	if name == "" || utf8.RuneCountInString(name) > MaxBonusNameLength {
		return nil, fmt.Errorf("ledger.BonusService.Create: %w: name must be 1 to %d characters", types.ErrBadRequest, MaxBonusNameLength)
	}
	if cmd.Cost < 0 {
		return nil, fmt.Errorf("ledger.BonusService.Create: %w: negative cost", types.ErrBadRequest)
	}
	b := &Bonus{ID: types.NewID(), Name: name, Cost: cmd.Cost, CreatedAt: s.now().UTC()}
	if err := s.store.CreateBonus(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *BonusService) Delete(ctx context.Context, actorID, bonusID types.ID) error {
	if !s.isAdmin(actorID) {
		return types.ErrUnauthorized
	}
	return s.store.DeleteBonus(ctx, bonusID)
}

// Redeem debits the bonus cost and records the redemption in one transaction.
func (s *BonusService) Redeem(ctx context.Context, userID, bonusID types.ID) (*Redemption, error) {
	var out *Redemption
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		b, err := s.store.GetBonus(ctx, bonusID)
		if err != nil {
			return err
		}
		if err := s.points.Debit(ctx, userID, b.Cost); err != nil {
			return fmt.Errorf("ledger.BonusService.Redeem: %w", err)
		}
		id := b.ID
		r := &Redemption{UserID: userID, BonusID: &id, Name: b.Name, Cost: b.Cost, RedeemedAt: s.now().UTC()}
		if err := s.store.AddRedemption(ctx, r); err != nil {
			return err
		}
		out = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *BonusService) Redemptions(ctx context.Context, userID types.ID) ([]Redemption, error) {
	return s.store.ListRedemptions(ctx, userID)
}

func (s *BonusService) isAdmin(id types.ID) bool {
	_, ok := s.admins[id]
	return ok
}

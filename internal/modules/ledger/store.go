// README: Ledger store backed by PostgreSQL with atomic balance updates.
package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"codrive/internal/infra"
	"codrive/internal/types"
)

type Store struct {
	db infra.DB
}

func NewStore(db infra.DB) *Store {
	return &Store{db: db}
}

// Credit adds amount, creating the account on first use.
func (s *Store) Credit(ctx context.Context, userID types.ID, amount int64) error {
	_, err := infra.Conn(ctx, s.db).Exec(ctx, `
		INSERT INTO point_accounts (user_id, balance, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			balance = point_accounts.balance + EXCLUDED.balance,
			updated_at = NOW()
	`, string(userID), amount)
	if err != nil {
		return fmt.Errorf("ledger.Store.Credit: %w", err)
	}
	return nil
}

// Debit subtracts amount only if the balance covers it.
func (s *Store) Debit(ctx context.Context, userID types.ID, amount int64) error {
	tag, err := infra.Conn(ctx, s.db).Exec(ctx, `
		UPDATE point_accounts
		SET balance = balance - $2, updated_at = NOW()
		WHERE user_id = $1 AND balance >= $2
	`, string(userID), amount)
	if err != nil {
		return fmt.Errorf("ledger.Store.Debit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrInsufficientPoints
	}
	return nil
}

func (s *Store) Balance(ctx context.Context, userID types.ID) (int64, error) {
	var balance int64
	err := infra.Conn(ctx, s.db).QueryRow(ctx, `SELECT balance FROM point_accounts WHERE user_id = $1`, string(userID)).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("ledger.Store.Balance: %w", err)
	}
	return balance, nil
}

// AddRating folds one rating into the driver's running sum and count.
func (s *Store) AddRating(ctx context.Context, driverID types.ID, value int) (Rating, error) {
	r := Rating{DriverID: driverID}
	var sum int64
	err := infra.Conn(ctx, s.db).QueryRow(ctx, `
		INSERT INTO driver_ratings (driver_id, rating_sum, rating_count)
		VALUES ($1, $2, 1)
		ON CONFLICT (driver_id) DO UPDATE SET
			rating_sum = driver_ratings.rating_sum + EXCLUDED.rating_sum,
			rating_count = driver_ratings.rating_count + 1
		RETURNING rating_sum, rating_count
	`, string(driverID), value).Scan(&sum, &r.Count)
	if err != nil {
		return Rating{}, fmt.Errorf("ledger.Store.AddRating: %w", err)
	}
	r.Average = float64(sum) / float64(r.Count)
	return r, nil
}

func (s *Store) CreateBonus(ctx context.Context, b *Bonus) error {
	_, err := infra.Conn(ctx, s.db).Exec(ctx, `
		INSERT INTO bonuses (id, name, cost, created_at) VALUES ($1, $2, $3, $4)`,
		string(b.ID), b.Name, b.Cost, b.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("ledger.Store.CreateBonus: %w", err)
	}
	return nil
}

func (s *Store) GetBonus(ctx context.Context, id types.ID) (*Bonus, error) {
	var b Bonus
	err := infra.Conn(ctx, s.db).QueryRow(ctx, `
		SELECT id, name, cost, created_at FROM bonuses WHERE id = $1`, string(id),
	).Scan(&b.ID, &b.Name, &b.Cost, &b.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ledger.Store.GetBonus: %w", err)
	}
	return &b, nil
}

func (s *Store) ListBonuses(ctx context.Context) ([]Bonus, error) {
	rows, err := infra.Conn(ctx, s.db).Query(ctx, `
		SELECT id, name, cost, created_at FROM bonuses ORDER BY cost, name`)
	if err != nil {
		return nil, fmt.Errorf("ledger.Store.ListBonuses: %w", err)
	}
	defer rows.Close()

	var out []Bonus
	for rows.Next() {
		var b Bonus
		if err := rows.Scan(&b.ID, &b.Name, &b.Cost, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("ledger.Store.ListBonuses: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// DeleteBonus removes a catalogue entry. Past redemptions keep their snapshot.
func (s *Store) DeleteBonus(ctx context.Context, id types.ID) error {
	tag, err := infra.Conn(ctx, s.db).Exec(ctx, `DELETE FROM bonuses WHERE id = $1`, string(id))
	if err != nil {
		return fmt.Errorf("ledger.Store.DeleteBonus: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}
	return nil
}

func (s *Store) AddRedemption(ctx context.Context, r *Redemption) error {
	var bonusID *string
	if r.BonusID != nil {
		v := string(*r.BonusID)
		bonusID = &v
	}
	err := infra.Conn(ctx, s.db).QueryRow(ctx, `
		INSERT INTO bonus_redemptions (user_id, bonus_id, name, cost, redeemed_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		string(r.UserID), bonusID, r.Name, r.Cost, r.RedeemedAt,
	).Scan(&r.ID)
	if err != nil {
		return fmt.Errorf("ledger.Store.AddRedemption: %w", err)
	}
	return nil
}

func (s *Store) ListRedemptions(ctx context.Context, userID types.ID) ([]Redemption, error) {
	rows, err := infra.Conn(ctx, s.db).Query(ctx, `
		SELECT id, user_id, bonus_id, name, cost, redeemed_at
		FROM bonus_redemptions
		WHERE user_id = $1
		ORDER BY redeemed_at DESC, id DESC`, string(userID))
	if err != nil {
		return nil, fmt.Errorf("ledger.Store.ListRedemptions: %w", err)
	}
	defer rows.Close()

	var out []Redemption
	for rows.Next() {
		var r Redemption
		var bonusID *string
		if err := rows.Scan(&r.ID, &r.UserID, &bonusID, &r.Name, &r.Cost, &r.RedeemedAt); err != nil {
			return nil, fmt.Errorf("ledger.Store.ListRedemptions: %w", err)
		}
		if bonusID != nil {
			id := types.ID(*bonusID)
			r.BonusID = &id
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

var (
	_ Repository      = (*Store)(nil)
	_ BonusRepository = (*Store)(nil)
)

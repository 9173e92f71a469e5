// README: Point accounts, driver ratings and the bonus catalogue.
package ledger

import (
	"errors"
	"time"

	"codrive/internal/types"
)

// ErrInsufficientPoints is returned when a debit would take a balance below zero.
var ErrInsufficientPoints = errors.New("insufficient points")

type Account struct {
	UserID  types.ID `json:"user_id"`
	Balance int64    `json:"balance"`
}

type Rating struct {
	DriverID types.ID `json:"driver_id"`
	Average  float64  `json:"average"`
	Count    int      `json:"count"`
}

const (
	MinRating = 1
	MaxRating = 5
)

// Bonus is a reward in the catalogue that users buy with points.
type Bonus struct {
	ID        types.ID  `json:"id"`
	Name      string    `json:"name"`
	Cost      int64     `json:"cost"`
	CreatedAt time.Time `json:"created_at"`
}

// Redemption keeps the name and cost paid, so it survives the bonus being removed.
type Redemption struct {
	ID         int64     `json:"id"`
	UserID     types.ID  `json:"user_id"`
	BonusID    *types.ID `json:"bonus_id,omitempty"`
	Name       string    `json:"name"`
	Cost       int64     `json:"cost"`
	RedeemedAt time.Time `json:"redeemed_at"`
}

const MaxBonusNameLength = 255

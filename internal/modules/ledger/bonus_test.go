package ledger

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codrive/internal/infra"
	"codrive/internal/testutil"
	"codrive/internal/types"
)

func newBonusFixture(t *testing.T) (*BonusService, *Service) {
	t.Helper()
	store := NewMemoryStore()
	points := NewService(store)
	return NewBonusService(store, points, infra.NoTx{}, []types.ID{"admin"}), points
}

func TestBonus_CatalogueNeedsAdmin(t *testing.T) {
	bonuses, _ := newBonusFixture(t)
	ctx := context.Background()

	_, err := bonuses.Create(ctx, CreateBonusCommand{ActorID: "rider", Name: "Coffee", Cost: 5})
	require.ErrorIs(t, err, types.ErrUnauthorized)

	b, err := bonuses.Create(ctx, CreateBonusCommand{ActorID: "admin", Name: "  Coffee ", Cost: 5})
	require.NoError(t, err)
	assert.Equal(t, "Coffee", b.Name)

	require.ErrorIs(t, bonuses.Delete(ctx, "rider", b.ID), types.ErrUnauthorized)
	require.NoError(t, bonuses.Delete(ctx, "admin", b.ID))
	require.ErrorIs(t, bonuses.Delete(ctx, "admin", b.ID), types.ErrNotFound)
}

func TestBonus_CreateValidates(t *testing.T) {
	bonuses, _ := newBonusFixture(t)

	tests := []struct {
		name string
		cmd  CreateBonusCommand
	}{
		{"empty name", CreateBonusCommand{ActorID: "admin", Name: "   ", Cost: 1}},
		{"long name", CreateBonusCommand{ActorID: "admin", Name: strings.Repeat("x", MaxBonusNameLength+1), Cost: 1}},
		{"negative cost", CreateBonusCommand{ActorID: "admin", Name: "Cake", Cost: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := bonuses.Create(context.Background(), tt.cmd)
			require.ErrorIs(t, err, types.ErrBadRequest)
		})
	}
}

func TestBonus_ListOrdersByCost(t *testing.T) {
	bonuses, _ := newBonusFixture(t)
	ctx := context.Background()
	for _, c := range []CreateBonusCommand{
		{ActorID: "admin", Name: "Cinema", Cost: 40},
		{ActorID: "admin", Name: "Coffee", Cost: 5},
		{ActorID: "admin", Name: "Cake", Cost: 5},
	} {
		_, err := bonuses.Create(ctx, c)
		require.NoError(t, err)
	}

	list, err := bonuses.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"Cake", "Coffee", "Cinema"}, []string{list[0].Name, list[1].Name, list[2].Name})
}

func TestBonus_RedeemDebitsPoints(t *testing.T) {
	bonuses, points := newBonusFixture(t)
	ctx := context.Background()
	b, err := bonuses.Create(ctx, CreateBonusCommand{ActorID: "admin", Name: "Coffee", Cost: 5})
	require.NoError(t, err)
	require.NoError(t, points.Credit(ctx, "rider", 7))

	r, err := bonuses.Redeem(ctx, "rider", b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), r.Cost)
	require.NotNil(t, r.BonusID)
	assert.Equal(t, b.ID, *r.BonusID)

	acct, err := points.Balance(ctx, "rider")
	require.NoError(t, err)
	assert.Equal(t, int64(2), acct.Balance)

	_, err = bonuses.Redeem(ctx, "rider", b.ID)
	require.ErrorIs(t, err, ErrInsufficientPoints)

	mine, err := bonuses.Redemptions(ctx, "rider")
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestBonus_RedeemUnknown(t *testing.T) {
	bonuses, _ := newBonusFixture(t)
	_, err := bonuses.Redeem(context.Background(), "rider", types.NewID())
	require.ErrorIs(t, err, types.ErrNotFound)
}

func TestBonus_DeleteKeepsRedemption(t *testing.T) {
	bonuses, points := newBonusFixture(t)
	ctx := context.Background()
	b, err := bonuses.Create(ctx, CreateBonusCommand{ActorID: "admin", Name: "Free car wash", Cost: 3})
	require.NoError(t, err)
	require.NoError(t, points.Credit(ctx, "rider", 3))
	_, err = bonuses.Redeem(ctx, "rider", b.ID)
	require.NoError(t, err)

	require.NoError(t, bonuses.Delete(ctx, "admin", b.ID))

	mine, err := bonuses.Redemptions(ctx, "rider")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Nil(t, mine[0].BonusID)
	assert.Equal(t, "Free car wash", mine[0].Name)
}

func TestBonusStore_RedeemRollsBackOnShortBalance(t *testing.T) {
	pool := testutil.NewPool(t)
	ctx := context.Background()
	store := NewStore(pool)
	points := NewService(store)
	bonuses := NewBonusService(store, points, infra.NewTxManager(pool), []types.ID{"admin"})

	b, err := bonuses.Create(ctx, CreateBonusCommand{ActorID: "admin", Name: "Coffee", Cost: 3})
	require.NoError(t, err)
	require.NoError(t, points.Credit(ctx, "rider", 5))

	r, err := bonuses.Redeem(ctx, "rider", b.ID)
	require.NoError(t, err)
	assert.NotZero(t, r.ID)

	_, err = bonuses.Redeem(ctx, "rider", b.ID)
	require.ErrorIs(t, err, ErrInsufficientPoints)

	acct, err := points.Balance(ctx, "rider")
	require.NoError(t, err)
	assert.Equal(t, int64(2), acct.Balance)
	mine, err := bonuses.Redemptions(ctx, "rider")
	require.NoError(t, err)
	require.Len(t, mine, 1)

	require.NoError(t, bonuses.Delete(ctx, "admin", b.ID))
	mine, err = bonuses.Redemptions(ctx, "rider")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Nil(t, mine[0].BonusID)
	assert.Equal(t, int64(3), mine[0].Cost)
}

package ledger

import (
	"context"
	"sort"
	"sync"

	"codrive/internal/types"
)

// MemoryStore keeps accounts in process memory. Used when no database is configured and in tests.
type MemoryStore struct {
	mu       sync.Mutex
	balances map[types.ID]int64
	sums     map[types.ID]int64
	counts   map[types.ID]int
	bonuses  map[types.ID]Bonus
	redeemed []Redemption
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		balances: map[types.ID]int64{},
		sums:     map[types.ID]int64{},
		counts:   map[types.ID]int{},
		bonuses:  map[types.ID]Bonus{},
	}
}

func (m *MemoryStore) Credit(_ context.Context, userID types.ID, amount int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[userID] += amount
	return nil
}

func (m *MemoryStore) Debit(_ context.Context, userID types.ID, amount int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.balances[userID] < amount {
		return ErrInsufficientPoints
	}
	m.balances[userID] -= amount
	return nil
}

func (m *MemoryStore) Balance(_ context.Context, userID types.ID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[userID], nil
}

func (m *MemoryStore) AddRating(_ context.Context, driverID types.ID, value int) (Rating, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sums[driverID] += int64(value)
	m.counts[driverID]++
	return Rating{
		DriverID: driverID,
		Average:  float64(m.sums[driverID]) / float64(m.counts[driverID]),
		Count:    m.counts[driverID],
	}, nil
}

func (m *MemoryStore) CreateBonus(_ context.Context, b *Bonus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bonuses[b.ID]; ok {
		return types.ErrConflict
	}
	m.bonuses[b.ID] = *b
	return nil
}

func (m *MemoryStore) GetBonus(_ context.Context, id types.ID) (*Bonus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bonuses[id]
	if !ok {
		return nil, types.ErrNotFound
	}
	return &b, nil
}

func (m *MemoryStore) ListBonuses(_ context.Context) ([]Bonus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Bonus, 0, len(m.bonuses))
	for _, b := range m.bonuses {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Cost != out[j].Cost {
			return out[i].Cost < out[j].Cost
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (m *MemoryStore) DeleteBonus(_ context.Context, id types.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bonuses[id]; !ok {
		return types.ErrNotFound
	}
	delete(m.bonuses, id)
	for i := range m.redeemed {
		if b := m.redeemed[i].BonusID; b != nil && *b == id {
			m.redeemed[i].BonusID = nil
		}
	}
	return nil
}

func (m *MemoryStore) AddRedemption(_ context.Context, r *Redemption) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.ID = int64(len(m.redeemed) + 1)
	m.redeemed = append(m.redeemed, *r)
	return nil
}

func (m *MemoryStore) ListRedemptions(_ context.Context, userID types.ID) ([]Redemption, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Redemption
	for i := len(m.redeemed) - 1; i >= 0; i-- {
		if m.redeemed[i].UserID == userID {
			out = append(out, m.redeemed[i])
		}
	}
	return out, nil
}

var (
	_ Repository      = (*MemoryStore)(nil)
	_ BonusRepository = (*MemoryStore)(nil)
)

package ride

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"codrive/internal/types"
)

// MemoryStore mirrors Store semantics in process memory, including the version check.
type MemoryStore struct {
	mu    sync.Mutex
	rides map[types.ID]Ride
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rides: map[types.ID]Ride{}}
}

func (m *MemoryStore) Create(_ context.Context, r *Ride) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rides[r.ID]; ok {
		return fmt.Errorf("ride.MemoryStore.Create: %w", types.ErrConflict)
	}
	m.rides[r.ID] = clone(*r)
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id types.ID) (*Ride, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rides[id]
	if !ok {
		return nil, types.ErrNotFound
	}
	out := clone(r)
	return &out, nil
}

func (m *MemoryStore) CommitRoute(_ context.Context, c RouteCommit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rides[c.RideID]
	next := r.CurrentPassengers + c.PassengerDelta
	if !ok || r.Version != c.BaseVersion || r.Completed || next < 0 || next > r.MaxPassengers {
		return fmt.Errorf("ride.MemoryStore.CommitRoute: %w", types.ErrConflict)
	}
	r.Apply(c)
	m.rides[c.RideID] = clone(r)
	return nil
}

func (m *MemoryStore) MarkCompleted(_ context.Context, id types.ID, version int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rides[id]
	if !ok || r.Version != version || r.Completed {
		return fmt.Errorf("ride.MemoryStore.MarkCompleted: %w", types.ErrConflict)
	}
	r.Completed = true
	r.Version++
	m.rides[id] = r
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id types.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rides[id]
	if !ok || r.Completed {
		return fmt.Errorf("ride.MemoryStore.Delete: %w", types.ErrConflict)
	}
	delete(m.rides, id)
	return nil
}

func (m *MemoryStore) ListByDriver(_ context.Context, driverID types.ID) ([]Ride, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Ride
	for _, r := range m.rides {
		if r.DriverID == driverID {
			out = append(out, clone(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ArrivalAt.After(out[j].ArrivalAt) })
	return out, nil
}

func clone(r Ride) Ride {
	r.Geometry = append(r.Geometry[:0:0], r.Geometry...)
	if r.MaxRequestDistance != nil {
		v := *r.MaxRequestDistance
		r.MaxRequestDistance = &v
	}
	return r
}

var _ Repository = (*MemoryStore)(nil)
var _ Repository = (*Store)(nil)

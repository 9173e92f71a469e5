package codrive

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"codrive/internal/types"
)

// MemoryStore mirrors Store semantics in process memory.
type MemoryStore struct {
	mu       sync.Mutex
	requests map[types.ID]JoinRequest
	events   []Event
	seq      int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{requests: map[types.ID]JoinRequest{}}
}

func (m *MemoryStore) Create(_ context.Context, r *JoinRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, other := range m.requests {
		if other.RideID == r.RideID && other.RequesterID == r.RequesterID && other.Status.Active() {
			return fmt.Errorf("codrive.MemoryStore.Create: %w", types.ErrDuplicateRequest)
		}
	}
	m.requests[r.ID] = cloneRequest(*r)
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id types.ID) (*JoinRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[id]
	if !ok {
		return nil, types.ErrNotFound
	}
	out := cloneRequest(r)
	return &out, nil
}

func (m *MemoryStore) ListByRide(_ context.Context, rideID types.ID, statuses ...Status) ([]JoinRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []JoinRequest
	for _, r := range m.requests {
		if r.RideID == rideID && matches(r.Status, statuses) {
			out = append(out, cloneRequest(r))
		}
	}
	sortByCreation(out)
	return out, nil
}

func (m *MemoryStore) ListByRequester(_ context.Context, requesterID types.ID) ([]JoinRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []JoinRequest
	for _, r := range m.requests {
		if r.RequesterID == requesterID {
			out = append(out, cloneRequest(r))
		}
	}
	sortByCreation(out)
	return out, nil
}

func (m *MemoryStore) HasActive(_ context.Context, rideID, requesterID types.ID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.requests {
		if r.RideID == rideID && r.RequesterID == requesterID && r.Status.Active() {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryStore) Transition(_ context.Context, id types.ID, from, to Status, version int, arrival *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[id]
	if !ok || r.Status != from || r.StatusVersion != version {
		return fmt.Errorf("codrive.MemoryStore.Transition: %w", types.ErrConflict)
	}
	r.Status = to
	r.StatusVersion++
	r.Proposal = nil
	r.ArrivalAt = copyTime(arrival)
	r.UpdatedAt = time.Now().UTC()
	m.requests[id] = r
	return nil
}

func (m *MemoryStore) SaveProposal(_ context.Context, id types.ID, version int, p *RouteProposal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[id]
	if !ok || r.Status != StatusPending || r.StatusVersion != version {
		return fmt.Errorf("codrive.MemoryStore.SaveProposal: %w", types.ErrConflict)
	}
	r.Proposal = cloneProposal(p)
	r.PointContribution = p.PointContribution
	r.AddedDistanceMeters = p.AddedDistanceMeters
	r.StatusVersion++
	r.UpdatedAt = time.Now().UTC()
	m.requests[id] = r
	return nil
}

func (m *MemoryStore) SetArrival(_ context.Context, id types.ID, arrival time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[id]
	if !ok || r.Status != StatusAccepted {
		return nil
	}
	r.ArrivalAt = &arrival
	m.requests[id] = r
	return nil
}

func (m *MemoryStore) MarkPaid(_ context.Context, id types.ID, ratingGiven bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[id]
	if !ok || r.Status != StatusAccepted || r.Paid {
		return fmt.Errorf("codrive.MemoryStore.MarkPaid: %w", types.ErrConflict)
	}
	r.Paid = true
	r.RatingGiven = r.RatingGiven || ratingGiven
	m.requests[id] = r
	return nil
}

func (m *MemoryStore) AppendEvent(_ context.Context, e *Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	ev := *e
	ev.ID = m.seq
	m.events = append(m.events, ev)
	return nil
}

// Events returns the audit trail of one request.
func (m *MemoryStore) Events(id types.ID) []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Event
	for _, e := range m.events {
		if e.RequestID == id {
			out = append(out, e)
		}
	}
	return out
}

func matches(s Status, statuses []Status) bool {
	if len(statuses) == 0 {
		return true
	}
	for _, want := range statuses {
		if s == want {
			return true
		}
	}
	return false
}

func sortByCreation(rs []JoinRequest) {
	sort.SliceStable(rs, func(i, j int) bool {
		if rs[i].CreatedAt.Equal(rs[j].CreatedAt) {
			return rs[i].ID < rs[j].ID
		}
		return rs[i].CreatedAt.Before(rs[j].CreatedAt)
	})
}

func cloneRequest(r JoinRequest) JoinRequest {
	r.Proposal = cloneProposal(r.Proposal)
	r.ArrivalAt = copyTime(r.ArrivalAt)
	return r
}

func cloneProposal(p *RouteProposal) *RouteProposal {
	if p == nil {
		return nil
	}
	out := *p
	out.Geometry = append(types.Polyline(nil), p.Geometry...)
	out.Arrivals = make(map[types.ID]time.Time, len(p.Arrivals))
	for k, v := range p.Arrivals {
		out.Arrivals[k] = v
	}
	return &out
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

var (
	_ Repository = (*MemoryStore)(nil)
	_ Repository = (*Store)(nil)
)

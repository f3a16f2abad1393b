package requests

import (
	"context"
	"sort"
	"sync"

	"github.com/attendly/server/internal/domain/events"
	"github.com/attendly/server/internal/domain/users"
)

// MockStore implements Store in memory. WithTx serializes callers on a
// single mutex, which stands in for the per-event row lock the real store
// takes, and runs fn against the same store.
type MockStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	events       map[int64]*events.Event
	requests     map[int64]*Request
	nextID       int64
	missingUsers map[int64]bool

	busy bool
}

func NewMockStore() *MockStore {
	return &MockStore{
		events:       make(map[int64]*events.Event),
		requests:     make(map[int64]*Request),
		missingUsers: make(map[int64]bool),
	}
}

func (m *MockStore) AddEvent(event *events.Event) *events.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *event
	m.events[event.ID] = &clone
	return event
}

func (m *MockStore) AddRequest(request *Request) *Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	request.ID = m.nextID
	clone := *request
	m.requests[request.ID] = &clone
	return request
}

func (m *MockStore) Events() events.Repository { return &mockEventRepo{store: m} }
func (m *MockStore) Requests() Repository      { return &mockRequestRepo{store: m} }
func (m *MockStore) Users() UserDirectory      { return &mockUserDirectory{store: m} }

func (m *MockStore) WithTx(ctx context.Context, fn func(context.Context, Store) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	return fn(ctx, m)
}

type mockUserDirectory struct {
	store *MockStore
}

func (d *mockUserDirectory) Ensure(ctx context.Context, userID int64) error {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()
	if d.store.missingUsers[userID] {
		return users.ErrNotFound
	}
	return nil
}

type mockEventRepo struct {
	store *MockStore
}

func (r *mockEventRepo) Get(ctx context.Context, id int64) (*events.Event, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	event, ok := r.store.events[id]
	if !ok {
		return nil, events.ErrNotFound
	}
	clone := *event
	return &clone, nil
}

func (r *mockEventRepo) GetForUpdate(ctx context.Context, id int64) (*events.Event, error) {
	if r.store.busy {
		return nil, events.ErrBusy
	}
	return r.Get(ctx, id)
}

func (r *mockEventRepo) Create(ctx context.Context, event *events.Event) (*events.Event, error) {
	return nil, events.ErrConflict
}

func (r *mockEventRepo) Save(ctx context.Context, event *events.Event) (*events.Event, error) {
	return nil, events.ErrNotFound
}

func (r *mockEventRepo) FindByIDs(ctx context.Context, ids []int64) ([]events.Event, error) {
	return nil, nil
}

func (r *mockEventRepo) GetByIDAndInitiator(ctx context.Context, id, initiatorID int64) (*events.Event, error) {
	return nil, events.ErrNotFound
}

func (r *mockEventRepo) ListByInitiator(ctx context.Context, initiatorID int64, from, size int) ([]events.Event, error) {
	return nil, nil
}

func (r *mockEventRepo) ListAdmin(ctx context.Context, filters events.AdminFilters, from, size int) ([]events.Event, error) {
	return nil, nil
}

func (r *mockEventRepo) ListPublic(ctx context.Context, filters events.PublicFilters, from, size int) ([]events.Event, error) {
	return nil, nil
}

type mockRequestRepo struct {
	store *MockStore
}

func (r *mockRequestRepo) Create(ctx context.Context, request *Request) (*Request, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.requests {
		if existing.EventID == request.EventID &&
			existing.RequesterID == request.RequesterID &&
			existing.Status != StatusCanceled {
			return nil, ErrConflict
		}
	}
	r.store.nextID++
	request.ID = r.store.nextID
	clone := *request
	r.store.requests[request.ID] = &clone
	return request, nil
}

func (r *mockRequestRepo) Get(ctx context.Context, id int64) (*Request, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	request, ok := r.store.requests[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *request
	return &clone, nil
}

func (r *mockRequestRepo) FindByIDs(ctx context.Context, ids []int64) ([]Request, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var batch []Request
	for _, id := range ids {
		if request, ok := r.store.requests[id]; ok {
			batch = append(batch, *request)
		}
	}
	return batch, nil
}

func (r *mockRequestRepo) ListByRequester(ctx context.Context, requesterID int64) ([]Request, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var list []Request
	for _, request := range r.store.requests {
		if request.RequesterID == requesterID {
			list = append(list, *request)
		}
	}
	sortRequests(list)
	return list, nil
}

func (r *mockRequestRepo) ListByEventAndInitiator(ctx context.Context, eventID, initiatorID int64) ([]Request, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	event, ok := r.store.events[eventID]
	if !ok || event.InitiatorID != initiatorID {
		return nil, nil
	}
	var list []Request
	for _, request := range r.store.requests {
		if request.EventID == eventID {
			list = append(list, *request)
		}
	}
	sortRequests(list)
	return list, nil
}

func (r *mockRequestRepo) ActiveExists(ctx context.Context, eventID, requesterID int64) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, request := range r.store.requests {
		if request.EventID == eventID && request.RequesterID == requesterID && request.Status != StatusCanceled {
			return true, nil
		}
	}
	return false, nil
}

func (r *mockRequestRepo) CountByEventAndStatus(ctx context.Context, eventID int64, status Status) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var count int64
	for _, request := range r.store.requests {
		if request.EventID == eventID && request.Status == status {
			count++
		}
	}
	return count, nil
}

func (r *mockRequestRepo) CountByEventsAndStatus(ctx context.Context, eventIDs []int64, status Status) (map[int64]int64, error) {
	counts := make(map[int64]int64)
	for _, id := range eventIDs {
		count, err := r.CountByEventAndStatus(ctx, id, status)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			counts[id] = count
		}
	}
	return counts, nil
}

func (r *mockRequestRepo) Save(ctx context.Context, request *Request) (*Request, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.requests[request.ID]; !ok {
		return nil, ErrNotFound
	}
	clone := *request
	r.store.requests[request.ID] = &clone
	return request, nil
}

func (r *mockRequestRepo) SaveAll(ctx context.Context, batch []Request) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, request := range batch {
		if _, ok := r.store.requests[request.ID]; !ok {
			return ErrNotFound
		}
		clone := request
		r.store.requests[request.ID] = &clone
	}
	return nil
}

func sortRequests(list []Request) {
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
}

package events

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MockRepository implements Repository for testing
type MockRepository struct {
	mu sync.Mutex

	events map[int64]*Event
	nextID int64

	shouldFailCreate bool
	shouldFailSave   bool
}

func NewMockRepository() *MockRepository {
	return &MockRepository{events: make(map[int64]*Event)}
}

func (m *MockRepository) Create(ctx context.Context, event *Event) (*Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shouldFailCreate {
		return nil, ErrConflict
	}
	m.nextID++
	event.ID = m.nextID
	clone := *event
	m.events[event.ID] = &clone
	return event, nil
}

func (m *MockRepository) Get(ctx context.Context, id int64) (*Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	event, ok := m.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *event
	return &clone, nil
}

func (m *MockRepository) GetForUpdate(ctx context.Context, id int64) (*Event, error) {
	return m.Get(ctx, id)
}

func (m *MockRepository) Save(ctx context.Context, event *Event) (*Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shouldFailSave {
		return nil, ErrConflict
	}
	if _, ok := m.events[event.ID]; !ok {
		return nil, ErrNotFound
	}
	clone := *event
	m.events[event.ID] = &clone
	return event, nil
}

func (m *MockRepository) FindByIDs(ctx context.Context, ids []int64) ([]Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var list []Event
	for _, id := range ids {
		if event, ok := m.events[id]; ok {
			list = append(list, *event)
		}
	}
	sortByID(list)
	return list, nil
}

func (m *MockRepository) GetByIDAndInitiator(ctx context.Context, id, initiatorID int64) (*Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	event, ok := m.events[id]
	if !ok || event.InitiatorID != initiatorID {
		return nil, ErrNotFound
	}
	clone := *event
	return &clone, nil
}

func (m *MockRepository) ListByInitiator(ctx context.Context, initiatorID int64, from, size int) ([]Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var list []Event
	for _, event := range m.events {
		if event.InitiatorID == initiatorID {
			list = append(list, *event)
		}
	}
	sortByID(list)
	return paginate(list, from, size), nil
}

func (m *MockRepository) ListAdmin(ctx context.Context, filters AdminFilters, from, size int) ([]Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var list []Event
	for _, event := range m.events {
		if len(filters.UserIDs) > 0 && !containsID(filters.UserIDs, event.InitiatorID) {
			continue
		}
		if len(filters.CategoryIDs) > 0 && !containsID(filters.CategoryIDs, event.CategoryID) {
			continue
		}
		if len(filters.States) > 0 && !containsState(filters.States, event.State) {
			continue
		}
		if filters.RangeStart != nil && event.EventDate.Before(*filters.RangeStart) {
			continue
		}
		if filters.RangeEnd != nil && !event.EventDate.Before(*filters.RangeEnd) {
			continue
		}
		list = append(list, *event)
	}
	sortByID(list)
	return paginate(list, from, size), nil
}

func (m *MockRepository) ListPublic(ctx context.Context, filters PublicFilters, from, size int) ([]Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var list []Event
	for _, event := range m.events {
		if event.State != StatePublished {
			continue
		}
		if len(filters.CategoryIDs) > 0 && !containsID(filters.CategoryIDs, event.CategoryID) {
			continue
		}
		if filters.Paid != nil && event.Paid != *filters.Paid {
			continue
		}
		if filters.RangeStart != nil && event.EventDate.Before(*filters.RangeStart) {
			continue
		}
		if filters.RangeEnd != nil && !event.EventDate.Before(*filters.RangeEnd) {
			continue
		}
		list = append(list, *event)
	}
	sortByID(list)
	return paginate(list, from, size), nil
}

func sortByID(list []Event) {
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
}

func paginate(list []Event, from, size int) []Event {
	if from >= len(list) {
		return nil
	}
	end := from + size
	if end > len(list) {
		end = len(list)
	}
	return list[from:end]
}

func containsID(ids []int64, id int64) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

func containsState(states []State, state State) bool {
	for _, candidate := range states {
		if candidate == state {
			return true
		}
	}
	return false
}

// stubLocations hands out sequential location ids per distinct coordinate.
type stubLocations struct {
	mu     sync.Mutex
	known  map[[2]float64]Location
	nextID int64
}

func newStubLocations() *stubLocations {
	return &stubLocations{known: make(map[[2]float64]Location)}
}

func (s *stubLocations) GetOrCreate(ctx context.Context, lat, lon float64) (Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := [2]float64{lat, lon}
	if location, ok := s.known[key]; ok {
		return location, nil
	}
	s.nextID++
	location := Location{ID: s.nextID, Lat: lat, Lon: lon}
	s.known[key] = location
	return location, nil
}

// stubDirectory fails Ensure for ids in missing.
type stubDirectory struct {
	missing map[int64]bool
	err     error
}

func (s *stubDirectory) Ensure(ctx context.Context, id int64) error {
	if s.missing[id] {
		return s.err
	}
	return nil
}

type stubCapacity struct {
	counts map[int64]int64
}

func (s *stubCapacity) ConfirmedCount(ctx context.Context, eventID int64) (int64, error) {
	return s.counts[eventID], nil
}

func (s *stubCapacity) ConfirmedCounts(ctx context.Context, eventIDs []int64) (map[int64]int64, error) {
	counts := make(map[int64]int64)
	for _, id := range eventIDs {
		if hits, ok := s.counts[id]; ok {
			counts[id] = hits
		}
	}
	return counts, nil
}

type recordedHit struct {
	URI string
	IP  string
}

type stubViews struct {
	mu    sync.Mutex
	hits  []recordedHit
	byURI map[string]int64
	err   error

	lastStart  time.Time
	lastEnd    time.Time
	lastURIs   []string
	lastUnique bool
}

func (s *stubViews) RecordHit(ctx context.Context, uri, ip string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hits = append(s.hits, recordedHit{URI: uri, IP: ip})
}

func (s *stubViews) Views(ctx context.Context, start, end time.Time, uris []string, uniqueByIP bool) (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastStart, s.lastEnd, s.lastURIs, s.lastUnique = start, end, uris, uniqueByIP
	if s.err != nil {
		return nil, s.err
	}
	return s.byURI, nil
}

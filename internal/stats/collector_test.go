package stats

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// MockRepository counts hits in memory the way the SQL repository does:
// grouped by app and uri, windowed, optionally deduplicated by IP.
type MockRepository struct {
	mu         sync.Mutex
	hits       []EndpointHit
	nextID     int64
	shouldFail bool
}

func NewMockRepository() *MockRepository {
	return &MockRepository{}
}

var errMockRepo = ValidationError{Field: "repository", Message: "forced failure"}

func (m *MockRepository) SaveHit(ctx context.Context, hit EndpointHit) (EndpointHit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shouldFail {
		return EndpointHit{}, errMockRepo
	}
	m.nextID++
	hit.ID = m.nextID
	m.hits = append(m.hits, hit)
	return hit, nil
}

func (m *MockRepository) ViewStats(ctx context.Context, start, end time.Time, uris []string, uniqueByIP bool) ([]ViewStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shouldFail {
		return nil, errMockRepo
	}
	type key struct{ app, uri string }
	raw := make(map[key]map[string]int64)
	for _, hit := range m.hits {
		if hit.Timestamp.Before(start) || hit.Timestamp.After(end) {
			continue
		}
		if len(uris) > 0 && !containsURI(uris, hit.URI) {
			continue
		}
		k := key{app: hit.App, uri: hit.URI}
		if raw[k] == nil {
			raw[k] = make(map[string]int64)
		}
		raw[k][hit.IP]++
	}
	var list []ViewStats
	for k, byIP := range raw {
		var hits int64
		for _, count := range byIP {
			if uniqueByIP {
				hits++
			} else {
				hits += count
			}
		}
		list = append(list, ViewStats{App: k.app, URI: k.uri, Hits: hits})
	}
	return list, nil
}

func containsURI(uris []string, uri string) bool {
	for _, candidate := range uris {
		if candidate == uri {
			return true
		}
	}
	return false
}

func TestService_RecordHit(t *testing.T) {
	repo := NewMockRepository()
	service := NewService(repo, zerolog.Nop())

	saved, err := service.RecordHit(context.Background(), EndpointHit{
		App:       "attendly-server",
		URI:       "/events/1",
		IP:        "203.0.113.9",
		Timestamp: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), saved.ID)
}

func TestService_Stats_WindowAndUnique(t *testing.T) {
	repo := NewMockRepository()
	service := NewService(repo, zerolog.Nop())
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	record := func(uri, ip string, at time.Time) {
		_, err := service.RecordHit(context.Background(), EndpointHit{App: "attendly-server", URI: uri, IP: ip, Timestamp: at})
		require.NoError(t, err)
	}
	record("/events/1", "203.0.113.9", base)
	record("/events/1", "203.0.113.9", base.Add(time.Minute))
	record("/events/1", "203.0.113.10", base.Add(2*time.Minute))
	record("/events/2", "203.0.113.9", base)
	record("/events/1", "203.0.113.9", base.Add(-time.Hour)) // outside the window

	raw, err := service.Stats(context.Background(), base, base.Add(time.Hour), []string{"/events/1"}, false)
	require.NoError(t, err)
	require.Len(t, raw, 1)
	require.Equal(t, int64(3), raw[0].Hits)

	unique, err := service.Stats(context.Background(), base, base.Add(time.Hour), []string{"/events/1"}, true)
	require.NoError(t, err)
	require.Len(t, unique, 1)
	require.Equal(t, int64(2), unique[0].Hits)
}

func TestService_Stats_InvertedWindow(t *testing.T) {
	service := NewService(NewMockRepository(), zerolog.Nop())
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	_, err := service.Stats(context.Background(), base, base.Add(-time.Minute), nil, false)
	var validation ValidationError
	require.ErrorAs(t, err, &validation)
	require.Equal(t, "start", validation.Field)
}

func TestLocalCollector_RoundTrip(t *testing.T) {
	repo := NewMockRepository()
	service := NewService(repo, zerolog.Nop())
	collector := NewLocalCollector(service, "attendly-server", zerolog.Nop())
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	collector.now = func() time.Time { return base }

	collector.RecordHit(context.Background(), "/events/1", "203.0.113.9")
	collector.RecordHit(context.Background(), "/events/1", "203.0.113.10")

	views, err := collector.Views(context.Background(), base.Add(-time.Minute), base.Add(time.Minute), []string{"/events/1"}, true)
	require.NoError(t, err)
	require.Equal(t, map[string]int64{"/events/1": 2}, views)
}

func TestLocalCollector_SwallowsRecordFailure(t *testing.T) {
	repo := NewMockRepository()
	repo.shouldFail = true
	service := NewService(repo, zerolog.Nop())
	collector := NewLocalCollector(service, "attendly-server", zerolog.Nop())

	collector.RecordHit(context.Background(), "/events/1", "203.0.113.9")

	repo.shouldFail = false
	views, err := collector.Views(context.Background(), time.Time{}, time.Now(), nil, false)
	require.NoError(t, err)
	require.Empty(t, views)
}

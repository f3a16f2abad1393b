package users

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mu     sync.Mutex
	users  map[int64]*User
	emails map[string]bool
	nextID int64
}

func NewMockRepository() *MockRepository {
	return &MockRepository{users: make(map[int64]*User), emails: make(map[string]bool)}
}

func (m *MockRepository) Create(ctx context.Context, user *User) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.emails[user.Email] {
		return nil, ErrEmailTaken
	}
	m.nextID++
	user.ID = m.nextID
	clone := *user
	m.users[user.ID] = &clone
	m.emails[user.Email] = true
	return user, nil
}

func (m *MockRepository) List(ctx context.Context, ids []int64, from, size int) ([]User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var list []User
	for id := int64(1); id <= m.nextID; id++ {
		user, ok := m.users[id]
		if !ok {
			continue
		}
		if len(ids) > 0 && !contains(ids, id) {
			continue
		}
		list = append(list, *user)
	}
	if from >= len(list) {
		return nil, nil
	}
	end := from + size
	if end > len(list) {
		end = len(list)
	}
	return list[from:end], nil
}

func (m *MockRepository) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	delete(m.emails, user.Email)
	delete(m.users, id)
	return nil
}

func (m *MockRepository) Ensure(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return ErrNotFound
	}
	return nil
}

func contains(ids []int64, id int64) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

func TestCreate(t *testing.T) {
	service := NewService(NewMockRepository(), zerolog.Nop())

	user, err := service.Create(context.Background(), "Ada", "ada@example.com")
	require.NoError(t, err)
	require.Equal(t, int64(1), user.ID)
	require.Equal(t, "Ada", user.Name)
}

func TestCreate_DuplicateEmail(t *testing.T) {
	service := NewService(NewMockRepository(), zerolog.Nop())

	_, err := service.Create(context.Background(), "Ada", "ada@example.com")
	require.NoError(t, err)

	_, err = service.Create(context.Background(), "Grace", "ada@example.com")
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestList_FiltersAndPages(t *testing.T) {
	service := NewService(NewMockRepository(), zerolog.Nop())
	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		_, err := service.Create(context.Background(), "user", email)
		require.NoError(t, err)
	}

	all, err := service.List(context.Background(), nil, 0, 10)
	require.NoError(t, err)
	require.Len(t, all, 3)

	filtered, err := service.List(context.Background(), []int64{2}, 0, 10)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	require.Equal(t, int64(2), filtered[0].ID)

	page, err := service.List(context.Background(), nil, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	require.Equal(t, int64(2), page[0].ID)
}

func TestDelete(t *testing.T) {
	service := NewService(NewMockRepository(), zerolog.Nop())
	user, err := service.Create(context.Background(), "Ada", "ada@example.com")
	require.NoError(t, err)

	require.NoError(t, service.Delete(context.Background(), user.ID))
	require.ErrorIs(t, service.Delete(context.Background(), user.ID), ErrNotFound)
}

package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"sick-fits/internal/domain"
)

// memUsers is an in-memory UserRepository that hands out copies, the way a
// database would.
type memUsers struct {
	mu   sync.Mutex
	byID map[string]domain.User
}

func newMemUsers() *memUsers { return &memUsers{byID: map[string]domain.User{}} }

func (m *memUsers) Create(_ context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, other := range m.byID {
		if other.Email == u.Email {
			return domain.ErrDuplicateEmail
		}
	}
	m.byID[u.ID] = *u
	return nil
}

func (m *memUsers) FindByID(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (m *memUsers) FindByResetToken(_ context.Context, token string, notBefore time.Time) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.HasResetToken() && *u.ResetToken == token && !u.ResetTokenExpiry.Before(notBefore) {
			return &u, nil
		}
	}
	return nil, nil
}

func (m *memUsers) List(_ context.Context, _ domain.UserFilter) ([]domain.User, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.User, 0, len(m.byID))
	for _, u := range m.byID {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, int64(len(out)), nil
}

func (m *memUsers) Update(_ context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[u.ID] = *u
	return nil
}

type memItems struct {
	mu   sync.Mutex
	byID map[string]domain.Item
	// users resolves the owner like a Preload would
	users *memUsers
}

func newMemItems(users *memUsers) *memItems {
	return &memItems{byID: map[string]domain.Item{}, users: users}
}

func (m *memItems) Create(_ context.Context, it *domain.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *it
	cp.User = nil
	m.byID[it.ID] = cp
	return nil
}

func (m *memItems) FindByID(ctx context.Context, id string) (*domain.Item, error) {
	m.mu.Lock()
	it, ok := m.byID[id]
	m.mu.Unlock()
	if !ok {
		return nil, nil
	}
	it.User, _ = m.users.FindByID(ctx, it.UserID)
	return &it, nil
}

func (m *memItems) List(_ context.Context, f domain.ItemFilter) ([]domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Item, 0, len(m.byID))
	for _, it := range m.byID {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	if f.Skip >= len(out) {
		return nil, nil
	}
	out = out[f.Skip:]
	if f.First > 0 && f.First < len(out) {
		out = out[:f.First]
	}
	return out, nil
}

func (m *memItems) Count(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.byID)), nil
}

func (m *memItems) Update(_ context.Context, id string, p domain.ItemPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	it := m.byID[id]
	if p.Title != nil {
		it.Title = *p.Title
	}
	if p.Description != nil {
		it.Description = *p.Description
	}
	if p.Price != nil {
		it.Price = *p.Price
	}
	if p.Image != nil {
		it.Image = *p.Image
	}
	if p.LargeImage != nil {
		it.LargeImage = *p.LargeImage
	}
	m.byID[id] = it
	return nil
}

func (m *memItems) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byID, id)
	return nil
}

// MockSender is a testify mock of mail.Sender.
type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, to, subject, html string) error {
	args := m.Called(ctx, to, subject, html)
	return args.Error(0)
}

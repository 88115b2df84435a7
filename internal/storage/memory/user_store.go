package memory

import (
	"context"
	"strings"
	"sync"

	"inara-impact/internal/domain"
	"inara-impact/internal/storage"
)

// UserStore is an in-memory implementation of storage.UserStore.
type UserStore struct {
	mu      sync.RWMutex
	data    map[string]*domain.User // keyed by id
	byEmail map[string]string       // lower-cased email -> id
}

// NewUserStore creates a new in-memory user store.
func NewUserStore() *UserStore {
	return &UserStore{
		data:    make(map[string]*domain.User),
		byEmail: make(map[string]string),
	}
}

// Insert adds a new user. Returns ErrDuplicateKey if id or email exists.
func (s *UserStore) Insert(_ context.Context, u *domain.User) error {
	if u == nil || u.ID == "" || u.Email == "" {
		return storage.ErrInvalidInput
	}

	email := strings.ToLower(u.Email)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[u.ID]; exists {
		return storage.ErrDuplicateKey
	}
	if _, exists := s.byEmail[email]; exists {
		return storage.ErrDuplicateKey
	}

	userCopy := *u
	s.data[u.ID] = &userCopy
	s.byEmail[email] = u.ID
	return nil
}

// GetByID retrieves a user by id. Returns ErrNotFound if not exists.
func (s *UserStore) GetByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, exists := s.data[id]
	if !exists {
		return nil, storage.ErrNotFound
	}

	userCopy := *u
	return &userCopy, nil
}

// GetByEmail retrieves a user by email (case-insensitive). Returns ErrNotFound if not exists.
func (s *UserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, exists := s.byEmail[strings.ToLower(email)]
	if !exists {
		return nil, storage.ErrNotFound
	}

	userCopy := *s.data[id]
	return &userCopy, nil
}

// Verify interface compliance at compile time.
var _ storage.UserStore = (*UserStore)(nil)

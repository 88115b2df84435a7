package memory

import (
	"context"
	"sync"
	"time"

	"inara-impact/internal/domain"
	"inara-impact/internal/storage"
)

// FeaturedRotationStore is an in-memory implementation of storage.FeaturedRotationStore.
type FeaturedRotationStore struct {
	mu   sync.RWMutex
	data map[string]*domain.FeaturedRotation // keyed by id
}

// NewFeaturedRotationStore creates a new in-memory featured rotation store.
func NewFeaturedRotationStore() *FeaturedRotationStore {
	return &FeaturedRotationStore{
		data: make(map[string]*domain.FeaturedRotation),
	}
}

// Insert adds a new rotation. Returns ErrDuplicateKey if id exists.
func (s *FeaturedRotationStore) Insert(_ context.Context, r *domain.FeaturedRotation) error {
	if r == nil || r.ID == "" || r.TechnologyID == "" || r.EndDate.Before(r.StartDate) {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[r.ID]; exists {
		return storage.ErrDuplicateKey
	}

	rotationCopy := *r
	s.data[r.ID] = &rotationCopy
	return nil
}

// ActiveAt retrieves the rotation covering t. Earliest start wins. Returns ErrNotFound if none.
func (s *FeaturedRotationStore) ActiveAt(_ context.Context, t time.Time) (*domain.FeaturedRotation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var active *domain.FeaturedRotation
	for _, r := range s.data {
		if !r.Covers(t) {
			continue
		}
		if active == nil || r.StartDate.Before(active.StartDate) ||
			(r.StartDate.Equal(active.StartDate) && r.ID < active.ID) {
			active = r
		}
	}
	if active == nil {
		return nil, storage.ErrNotFound
	}

	rotationCopy := *active
	return &rotationCopy, nil
}

// Verify interface compliance at compile time.
var _ storage.FeaturedRotationStore = (*FeaturedRotationStore)(nil)

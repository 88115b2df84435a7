package memory

import (
	"context"
	"sort"
	"sync"

	"inara-impact/internal/domain"
	"inara-impact/internal/storage"
)

// SimulationStore is an in-memory implementation of storage.SimulationStore.
type SimulationStore struct {
	mu   sync.RWMutex
	data map[string]*domain.SimulationRecord // keyed by id
}

// NewSimulationStore creates a new in-memory simulation store.
func NewSimulationStore() *SimulationStore {
	return &SimulationStore{
		data: make(map[string]*domain.SimulationRecord),
	}
}

// Insert adds a new simulation record. Returns ErrDuplicateKey if id exists.
func (s *SimulationStore) Insert(_ context.Context, r *domain.SimulationRecord) error {
	if r == nil || r.ID == "" || r.ProjectID == "" || r.TechnologyID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[r.ID]; exists {
		return storage.ErrDuplicateKey
	}

	s.data[r.ID] = copyRecord(r)
	return nil
}

// GetByID retrieves a simulation by id. Returns ErrNotFound if not exists.
func (s *SimulationStore) GetByID(_ context.Context, id string) (*domain.SimulationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, exists := s.data[id]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return copyRecord(r), nil
}

// GetByProjectID retrieves all simulations of a project, ordered by created_at ASC.
func (s *SimulationStore) GetByProjectID(_ context.Context, projectID string) ([]*domain.SimulationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.SimulationRecord
	for _, r := range s.data {
		if r.ProjectID == projectID {
			result = append(result, copyRecord(r))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	return result, nil
}

func copyRecord(r *domain.SimulationRecord) *domain.SimulationRecord {
	recordCopy := *r
	recordCopy.Baseline = copyBaseline(r.Baseline)
	recordCopy.PaybackYears = copyFloat(r.PaybackYears)
	return &recordCopy
}

// Verify interface compliance at compile time.
var _ storage.SimulationStore = (*SimulationStore)(nil)

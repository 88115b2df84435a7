package memory

import (
	"context"
	"sort"
	"sync"

	"inara-impact/internal/domain"
	"inara-impact/internal/storage"
)

// ProjectStore is an in-memory implementation of storage.ProjectStore.
type ProjectStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Project // keyed by id
}

// NewProjectStore creates a new in-memory project store.
func NewProjectStore() *ProjectStore {
	return &ProjectStore{
		data: make(map[string]*domain.Project),
	}
}

// Insert adds a new project. Returns ErrDuplicateKey if id exists.
func (s *ProjectStore) Insert(_ context.Context, p *domain.Project) error {
	if p == nil || p.ID == "" || p.UserID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[p.ID]; exists {
		return storage.ErrDuplicateKey
	}

	s.data[p.ID] = copyProject(p)
	return nil
}

// GetByID retrieves a project by id. Returns ErrNotFound if not exists.
func (s *ProjectStore) GetByID(_ context.Context, id string) (*domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.data[id]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return copyProject(p), nil
}

// GetByOwner retrieves all projects of a user, ordered by created_at ASC.
func (s *ProjectStore) GetByOwner(_ context.Context, userID string) ([]*domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Project
	for _, p := range s.data {
		if p.UserID == userID {
			result = append(result, copyProject(p))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	return result, nil
}

// copyProject detaches the stored value from caller-owned pointers.
// Simulations are never stored with the project.
func copyProject(p *domain.Project) *domain.Project {
	projectCopy := *p
	projectCopy.Baseline = copyBaseline(p.Baseline)
	projectCopy.Simulations = nil
	return &projectCopy
}

func copyBaseline(b domain.Baseline) domain.Baseline {
	return domain.Baseline{
		EnergyKwh: copyFloat(b.EnergyKwh),
		WaterM3:   copyFloat(b.WaterM3),
		WasteTpy:  copyFloat(b.WasteTpy),
		BudgetUSD: copyFloat(b.BudgetUSD),
	}
}

func copyFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Verify interface compliance at compile time.
var _ storage.ProjectStore = (*ProjectStore)(nil)

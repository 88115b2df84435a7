package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"inara-impact/internal/domain"
	"inara-impact/internal/storage"
)

// TechnologyStore is an in-memory implementation of storage.TechnologyStore.
type TechnologyStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Technology // keyed by id
}

// NewTechnologyStore creates a new in-memory technology store.
func NewTechnologyStore() *TechnologyStore {
	return &TechnologyStore{
		data: make(map[string]*domain.Technology),
	}
}

// Insert adds a new technology. Returns ErrDuplicateKey if id exists.
func (s *TechnologyStore) Insert(_ context.Context, t *domain.Technology) error {
	if t == nil || t.ID == "" || t.Name == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[t.ID]; exists {
		return storage.ErrDuplicateKey
	}

	s.data[t.ID] = copyTechnology(t)
	return nil
}

// GetByID retrieves a technology by id. Returns ErrNotFound if not exists.
func (s *TechnologyStore) GetByID(_ context.Context, id string) (*domain.Technology, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, exists := s.data[id]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return copyTechnology(t), nil
}

// List retrieves technologies matching the filter, ordered by created_at DESC.
func (s *TechnologyStore) List(_ context.Context, filter domain.TechnologyFilter) ([]*domain.Technology, error) {
	q := strings.ToLower(filter.Query)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Technology
	for _, t := range s.data {
		if filter.ApprovedOnly && !t.Approved {
			continue
		}
		if filter.Category != "" && t.Category != filter.Category {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(t.Name), q) && !strings.Contains(strings.ToLower(t.Tags), q) {
			continue
		}
		result = append(result, copyTechnology(t))
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}

// SetApproved updates the approval flag. Returns ErrNotFound if not exists.
func (s *TechnologyStore) SetApproved(_ context.Context, id string, approved bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, exists := s.data[id]
	if !exists {
		return storage.ErrNotFound
	}
	t.Approved = approved
	return nil
}

// FirstApproved retrieves the oldest approved technology. Returns ErrNotFound if none.
func (s *TechnologyStore) FirstApproved(_ context.Context) (*domain.Technology, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var first *domain.Technology
	for _, t := range s.data {
		if !t.Approved {
			continue
		}
		if first == nil || t.CreatedAt.Before(first.CreatedAt) ||
			(t.CreatedAt.Equal(first.CreatedAt) && t.ID < first.ID) {
			first = t
		}
	}
	if first == nil {
		return nil, storage.ErrNotFound
	}
	return copyTechnology(first), nil
}

func copyTechnology(t *domain.Technology) *domain.Technology {
	techCopy := *t
	techCopy.OpexMin = copyFloat(t.OpexMin)
	techCopy.OpexMax = copyFloat(t.OpexMax)
	techCopy.PaybackYears = copyFloat(t.PaybackYears)
	techCopy.TechnologyCoefficients = domain.TechnologyCoefficients{
		CapexMin:         copyFloat(t.CapexMin),
		CapexMax:         copyFloat(t.CapexMax),
		BenefitEnergyPct: copyFloat(t.BenefitEnergyPct),
		BenefitWaterPct:  copyFloat(t.BenefitWaterPct),
		BenefitWastePct:  copyFloat(t.BenefitWastePct),
		CO2Tpy:           copyFloat(t.CO2Tpy),
	}
	if t.VendorIDs != nil {
		techCopy.VendorIDs = append([]string(nil), t.VendorIDs...)
	}
	// Vendor details are resolved by the catalog, not stored.
	techCopy.Vendors = nil
	return &techCopy
}

// Verify interface compliance at compile time.
var _ storage.TechnologyStore = (*TechnologyStore)(nil)

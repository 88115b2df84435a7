package memory

import (
	"context"
	"sort"
	"sync"

	"inara-impact/internal/domain"
	"inara-impact/internal/storage"
)

// VendorStore is an in-memory implementation of storage.VendorStore.
type VendorStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Vendor // keyed by id
}

// NewVendorStore creates a new in-memory vendor store.
func NewVendorStore() *VendorStore {
	return &VendorStore{
		data: make(map[string]*domain.Vendor),
	}
}

// Insert adds a new vendor. Returns ErrDuplicateKey if id exists.
func (s *VendorStore) Insert(_ context.Context, v *domain.Vendor) error {
	if v == nil || v.ID == "" || v.Name == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[v.ID]; exists {
		return storage.ErrDuplicateKey
	}

	vendorCopy := *v
	s.data[v.ID] = &vendorCopy
	return nil
}

// GetByID retrieves a vendor by id. Returns ErrNotFound if not exists.
func (s *VendorStore) GetByID(_ context.Context, id string) (*domain.Vendor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, exists := s.data[id]
	if !exists {
		return nil, storage.ErrNotFound
	}

	vendorCopy := *v
	return &vendorCopy, nil
}

// GetByIDs retrieves the vendors with the given ids, ordered by name ASC.
func (s *VendorStore) GetByIDs(_ context.Context, ids []string) ([]*domain.Vendor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool, len(ids))
	var result []*domain.Vendor
	for _, id := range ids {
		v, exists := s.data[id]
		if !exists || seen[id] {
			continue
		}
		seen[id] = true
		vendorCopy := *v
		result = append(result, &vendorCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})

	return result, nil
}

// Verify interface compliance at compile time.
var _ storage.VendorStore = (*VendorStore)(nil)

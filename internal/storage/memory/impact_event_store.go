package memory

import (
	"context"
	"sync"

	"inara-impact/internal/domain"
	"inara-impact/internal/storage"
)

// ImpactEventStore is an in-memory implementation of storage.ImpactEventStore.
type ImpactEventStore struct {
	mu     sync.RWMutex
	events map[string][]domain.SimulationRecord // keyed by technology id
	ids    map[string]struct{}
}

// NewImpactEventStore creates a new in-memory impact event store.
func NewImpactEventStore() *ImpactEventStore {
	return &ImpactEventStore{
		events: make(map[string][]domain.SimulationRecord),
		ids:    make(map[string]struct{}),
	}
}

// Insert appends a simulation outcome. Returns ErrDuplicateKey if the simulation id exists.
func (s *ImpactEventStore) Insert(_ context.Context, r *domain.SimulationRecord) error {
	if r == nil || r.ID == "" || r.TechnologyID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.ids[r.ID]; exists {
		return storage.ErrDuplicateKey
	}

	s.ids[r.ID] = struct{}{}
	s.events[r.TechnologyID] = append(s.events[r.TechnologyID], *copyRecord(r))
	return nil
}

// SummaryByTechnology aggregates all outcomes for a technology.
func (s *ImpactEventStore) SummaryByTechnology(_ context.Context, technologyID string) (*domain.TechnologyImpactSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary := &domain.TechnologyImpactSummary{TechnologyID: technologyID}
	events := s.events[technologyID]
	if len(events) == 0 {
		return summary, nil
	}

	var roiSum, confSum float64
	for _, e := range events {
		roiSum += e.ROIPct
		confSum += float64(e.ConfidencePct)
		summary.TotalAnnualSavingsUSD += e.AnnualSavingsUSD
		summary.TotalCO2ReductionTpy += e.CO2ReductionTpy
		if e.PaybackYears != nil {
			summary.WithPayback++
		}
	}
	summary.Simulations = len(events)
	summary.MeanROIPct = roiSum / float64(len(events))
	summary.MeanConfidencePct = confSum / float64(len(events))

	return summary, nil
}

// Verify interface compliance at compile time.
var _ storage.ImpactEventStore = (*ImpactEventStore)(nil)

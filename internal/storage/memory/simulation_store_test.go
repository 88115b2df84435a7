package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inara-impact/internal/domain"
	"inara-impact/internal/storage"
)

func TestSimulationStore_InsertAndQuery(t *testing.T) {
	store := NewSimulationStore()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	r1 := &domain.SimulationRecord{
		ID: "s1", ProjectID: "p1", TechnologyID: "t1", CreatedAt: base.Add(time.Minute),
		SimulationResult: domain.SimulationResult{AnnualSavingsUSD: 200, PaybackYears: domain.Float(150), ConfidencePct: 70},
	}
	r2 := &domain.SimulationRecord{ID: "s2", ProjectID: "p1", TechnologyID: "t2", CreatedAt: base}
	r3 := &domain.SimulationRecord{ID: "s3", ProjectID: "p2", TechnologyID: "t1", CreatedAt: base}

	for _, r := range []*domain.SimulationRecord{r1, r2, r3} {
		require.NoError(t, store.Insert(ctx, r))
	}
	assert.ErrorIs(t, store.Insert(ctx, r1), storage.ErrDuplicateKey)

	got, err := store.GetByID(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got.PaybackYears)
	assert.Equal(t, 150.0, *got.PaybackYears)
	assert.Equal(t, 70, got.ConfidencePct)

	list, err := store.GetByProjectID(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "s2", list[0].ID)
	assert.Equal(t, "s1", list[1].ID)

	_, err = store.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestFeaturedRotationStore_ActiveAt(t *testing.T) {
	store := NewFeaturedRotationStore()
	ctx := context.Background()
	jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Insert(ctx, &domain.FeaturedRotation{ID: "r1", TechnologyID: "t1", StartDate: jan, EndDate: jan.AddDate(0, 1, 0)}))
	require.NoError(t, store.Insert(ctx, &domain.FeaturedRotation{ID: "r2", TechnologyID: "t2", StartDate: jan.AddDate(0, 0, 10), EndDate: jan.AddDate(0, 2, 0)}))
	assert.ErrorIs(t, store.Insert(ctx, &domain.FeaturedRotation{ID: "bad", TechnologyID: "t1", StartDate: jan, EndDate: jan.Add(-time.Hour)}), storage.ErrInvalidInput)

	got, err := store.ActiveAt(ctx, jan.AddDate(0, 0, 15))
	require.NoError(t, err)
	assert.Equal(t, "r1", got.ID, "earliest start wins on overlap")

	got, err = store.ActiveAt(ctx, jan.AddDate(0, 1, 15))
	require.NoError(t, err)
	assert.Equal(t, "r2", got.ID)

	// End date is inclusive
	got, err = store.ActiveAt(ctx, jan.AddDate(0, 2, 0))
	require.NoError(t, err)
	assert.Equal(t, "r2", got.ID)

	_, err = store.ActiveAt(ctx, jan.AddDate(1, 0, 0))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestImpactEventStore_Summary(t *testing.T) {
	store := NewImpactEventStore()
	ctx := context.Background()

	empty, err := store.SummaryByTechnology(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Simulations)

	require.NoError(t, store.Insert(ctx, &domain.SimulationRecord{ID: "s1", TechnologyID: "t1",
		SimulationResult: domain.SimulationResult{ROIPct: 10, ConfidencePct: 60, AnnualSavingsUSD: 100, CO2ReductionTpy: 2, PaybackYears: domain.Float(10)}}))
	require.NoError(t, store.Insert(ctx, &domain.SimulationRecord{ID: "s2", TechnologyID: "t1",
		SimulationResult: domain.SimulationResult{ROIPct: -4, ConfidencePct: 80, AnnualSavingsUSD: -20, CO2ReductionTpy: 2}}))
	require.NoError(t, store.Insert(ctx, &domain.SimulationRecord{ID: "s3", TechnologyID: "t2"}))
	assert.ErrorIs(t, store.Insert(ctx, &domain.SimulationRecord{ID: "s1", TechnologyID: "t1"}), storage.ErrDuplicateKey)

	got, err := store.SummaryByTechnology(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Simulations)
	assert.InDelta(t, 3.0, got.MeanROIPct, 1e-9)
	assert.InDelta(t, 70.0, got.MeanConfidencePct, 1e-9)
	assert.InDelta(t, 80.0, got.TotalAnnualSavingsUSD, 1e-9)
	assert.InDelta(t, 4.0, got.TotalCO2ReductionTpy, 1e-9)
	assert.Equal(t, 1, got.WithPayback)
}

func TestVendorStore_GetByIDs(t *testing.T) {
	store := NewVendorStore()
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, &domain.Vendor{ID: "v1", Name: "Zeta"}))
	require.NoError(t, store.Insert(ctx, &domain.Vendor{ID: "v2", Name: "Alpha"}))
	assert.ErrorIs(t, store.Insert(ctx, &domain.Vendor{ID: "v1", Name: "Zeta"}), storage.ErrDuplicateKey)

	got, err := store.GetByIDs(ctx, []string{"v1", "missing", "v2", "v1"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Alpha", got[0].Name)
	assert.Equal(t, "Zeta", got[1].Name)
}

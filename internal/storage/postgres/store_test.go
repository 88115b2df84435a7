package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inara-impact/internal/domain"
	"inara-impact/internal/storage"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestUserStore_InsertAndGet(t *testing.T) {
	pool := startPostgres(t)

	store := NewUserStore(pool)
	ctx := context.Background()

	u := &domain.User{ID: "u1", Email: "Owner@Example.com", Name: "Owner", Role: domain.RoleProvider, PasswordHash: "h"}
	require.NoError(t, store.Insert(ctx, u))

	got, err := store.GetByEmail(ctx, "owner@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)
	assert.Equal(t, domain.RoleProvider, got.Role)
	assert.NotZero(t, got.CreatedAt)

	err = store.Insert(ctx, &domain.User{ID: "u2", Email: "OWNER@example.com", Role: domain.RoleConsumer, PasswordHash: "h"})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	_, err = store.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCatalogStores(t *testing.T) {
	pool := startPostgres(t)

	vendors := NewVendorStore(pool)
	techs := NewTechnologyStore(pool)
	rotations := NewFeaturedRotationStore(pool)
	ctx := context.Background()

	require.NoError(t, vendors.Insert(ctx, &domain.Vendor{ID: "v1", Name: "Zeta Systems", Verified: true}))
	require.NoError(t, vendors.Insert(ctx, &domain.Vendor{ID: "v2", Name: "Acme Water"}))

	solar := &domain.Technology{
		ID: "t1", Name: "Solar Inverter", Category: "Energy", Tags: "solar,pv_100%",
		TechnologyCoefficients: domain.TechnologyCoefficients{
			CapexMin:         ptr(20000.0),
			CapexMax:         ptr(40000.0),
			BenefitEnergyPct: ptr(0.2),
		},
		Approved:  true,
		VendorIDs: []string{"v2", "v1"},
		CreatedAt: epoch,
	}
	require.NoError(t, techs.Insert(ctx, solar))
	require.NoError(t, techs.Insert(ctx, &domain.Technology{ID: "t2", Name: "Greywater Loop", Category: "Water", Approved: true, CreatedAt: epoch.Add(time.Hour)}))
	require.NoError(t, techs.Insert(ctx, &domain.Technology{ID: "t3", Name: "Solar Dryer", Category: "Energy", CreatedAt: epoch.Add(2 * time.Hour)}))
	assert.ErrorIs(t, techs.Insert(ctx, solar), storage.ErrDuplicateKey)

	got, err := techs.GetByID(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, []string{"v1", "v2"}, got.VendorIDs)
	require.NotNil(t, got.BenefitEnergyPct)
	assert.Equal(t, 0.2, *got.BenefitEnergyPct)
	assert.Nil(t, got.BenefitWaterPct)

	list, err := techs.List(ctx, domain.TechnologyFilter{ApprovedOnly: true})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "t2", list[0].ID)

	list, err = techs.List(ctx, domain.TechnologyFilter{Query: "SOLAR"})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	// Wildcards in the query match literally
	list, err = techs.List(ctx, domain.TechnologyFilter{Query: "_100%"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "t1", list[0].ID)

	first, err := techs.FirstApproved(ctx)
	require.NoError(t, err)
	assert.Equal(t, "t1", first.ID)

	require.NoError(t, techs.SetApproved(ctx, "t3", true))
	assert.ErrorIs(t, techs.SetApproved(ctx, "missing", true), storage.ErrNotFound)

	vs, err := vendors.GetByIDs(ctx, got.VendorIDs)
	require.NoError(t, err)
	require.Len(t, vs, 2)
	assert.Equal(t, "Acme Water", vs[0].Name)

	require.NoError(t, rotations.Insert(ctx, &domain.FeaturedRotation{ID: "r1", TechnologyID: "t2", StartDate: epoch, EndDate: epoch.AddDate(0, 1, 0)}))
	active, err := rotations.ActiveAt(ctx, epoch.AddDate(0, 0, 3))
	require.NoError(t, err)
	assert.Equal(t, "t2", active.TechnologyID)

	_, err = rotations.ActiveAt(ctx, epoch.AddDate(0, 2, 0))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestProjectAndSimulationStores(t *testing.T) {
	pool := startPostgres(t)

	ctx := context.Background()
	users := NewUserStore(pool)
	projects := NewProjectStore(pool)
	techs := NewTechnologyStore(pool)
	sims := NewSimulationStore(pool)

	require.NoError(t, users.Insert(ctx, &domain.User{ID: "u1", Email: "c@x.io", Role: domain.RoleConsumer, PasswordHash: "h"}))
	require.NoError(t, techs.Insert(ctx, &domain.Technology{ID: "t1", Name: "Solar", Category: "Energy", Approved: true}))

	p := &domain.Project{
		ID: "p1", UserID: "u1", Name: "Plant",
		Baseline:  domain.Baseline{EnergyKwh: ptr(10000.0), WaterM3: ptr(0.0)},
		CreatedAt: epoch,
	}
	require.NoError(t, projects.Insert(ctx, p))
	assert.ErrorIs(t, projects.Insert(ctx, &domain.Project{ID: "p2", UserID: "ghost", Name: "x"}), storage.ErrInvalidInput)

	gotProject, err := projects.GetByID(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, gotProject.WaterM3)
	assert.Equal(t, 0.0, *gotProject.WaterM3)
	assert.Nil(t, gotProject.WasteTpy)

	owned, err := projects.GetByOwner(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, owned, 1)

	withPayback := &domain.SimulationRecord{
		ID: "s1", UserID: "u1", ProjectID: "p1", TechnologyID: "t1",
		Baseline:     p.Baseline,
		Tariffs:      domain.Tariffs{KWh: 0.1, M3: 1},
		DeltaOpexUSD: 5,
		Fingerprint:  "fp",
		SimulationResult: domain.SimulationResult{
			EnergySavingKwh:  2000,
			AnnualSavingsUSD: 200,
			ROIPct:           2.0 / 3.0,
			PaybackYears:     ptr(150.0),
			ConfidencePct:    70,
		},
		CreatedAt: epoch.Add(time.Minute),
	}
	noPayback := &domain.SimulationRecord{ID: "s0", UserID: "u1", ProjectID: "p1", TechnologyID: "t1", Fingerprint: "fp0",
		SimulationResult: domain.SimulationResult{ConfidencePct: 60}, CreatedAt: epoch}
	require.NoError(t, sims.Insert(ctx, withPayback))
	require.NoError(t, sims.Insert(ctx, noPayback))
	assert.ErrorIs(t, sims.Insert(ctx, withPayback), storage.ErrDuplicateKey)

	got, err := sims.GetByID(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.Tariffs{KWh: 0.1, M3: 1}, got.Tariffs)
	assert.Equal(t, 5.0, got.DeltaOpexUSD)
	require.NotNil(t, got.Baseline.EnergyKwh)
	assert.Equal(t, 10000.0, *got.Baseline.EnergyKwh)
	require.NotNil(t, got.PaybackYears)
	assert.Equal(t, 150.0, *got.PaybackYears)

	list, err := sims.GetByProjectID(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "s0", list[0].ID)
	assert.Nil(t, list[0].PaybackYears)
}

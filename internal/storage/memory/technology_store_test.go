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

func seedTechnologies(t *testing.T, store *TechnologyStore) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	techs := []*domain.Technology{
		{ID: "t1", Name: "Solar Inverter", Category: "Energy", Tags: "solar,pv", Approved: true, CreatedAt: base},
		{ID: "t2", Name: "Greywater Loop", Category: "Water", Tags: "reuse", Approved: true, CreatedAt: base.Add(time.Hour)},
		{ID: "t3", Name: "Heat Pump", Category: "Energy", Tags: "hvac,SOLAR-assist", Approved: true, CreatedAt: base.Add(2 * time.Hour)},
		{ID: "t4", Name: "Draft Compactor", Category: "Waste", Approved: false, CreatedAt: base.Add(3 * time.Hour)},
	}
	for _, tech := range techs {
		require.NoError(t, store.Insert(ctx, tech))
	}
}

func TestTechnologyStore_List(t *testing.T) {
	store := NewTechnologyStore()
	seedTechnologies(t, store)
	ctx := context.Background()

	tests := []struct {
		name   string
		filter domain.TechnologyFilter
		want   []string
	}{
		{"all", domain.TechnologyFilter{}, []string{"t4", "t3", "t2", "t1"}},
		{"approved only newest first", domain.TechnologyFilter{ApprovedOnly: true}, []string{"t3", "t2", "t1"}},
		{"category", domain.TechnologyFilter{ApprovedOnly: true, Category: "Energy"}, []string{"t3", "t1"}},
		{"query matches name or tags case-insensitively", domain.TechnologyFilter{ApprovedOnly: true, Query: "Solar"}, []string{"t3", "t1"}},
		{"query and category", domain.TechnologyFilter{ApprovedOnly: true, Category: "Water", Query: "solar"}, nil},
		{"unapproved hidden", domain.TechnologyFilter{ApprovedOnly: true, Category: "Waste"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.List(ctx, tt.filter)
			require.NoError(t, err)
			var ids []string
			for _, tech := range got {
				ids = append(ids, tech.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestTechnologyStore_ApproveAndFirstApproved(t *testing.T) {
	store := NewTechnologyStore()
	ctx := context.Background()

	_, err := store.FirstApproved(ctx)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	seedTechnologies(t, store)

	first, err := store.FirstApproved(ctx)
	require.NoError(t, err)
	assert.Equal(t, "t1", first.ID)

	require.NoError(t, store.SetApproved(ctx, "t4", true))
	got, err := store.GetByID(ctx, "t4")
	require.NoError(t, err)
	assert.True(t, got.Approved)

	assert.ErrorIs(t, store.SetApproved(ctx, "missing", true), storage.ErrNotFound)
}

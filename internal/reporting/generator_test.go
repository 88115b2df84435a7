package reporting

import (
	"context"
	"encoding/csv"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inara-impact/internal/decision"
	"inara-impact/internal/domain"
	"inara-impact/internal/storage/memory"
)

var fixedNow = time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)

func pf(v float64) *float64 { return &v }

func setupTestData(t *testing.T) *Generator {
	t.Helper()
	ctx := context.Background()

	projects := memory.NewProjectStore()
	sims := memory.NewSimulationStore()
	techs := memory.NewTechnologyStore()

	require.NoError(t, projects.Insert(ctx, &domain.Project{
		ID: "p1", UserID: "u1", Name: "Plant A", Industry: "Food",
		Baseline: domain.Baseline{EnergyKwh: pf(100000), WaterM3: pf(5000)},
	}))
	require.NoError(t, techs.Insert(ctx, &domain.Technology{ID: "t-led", Name: "LED Retrofit", Approved: true}))
	require.NoError(t, techs.Insert(ctx, &domain.Technology{ID: "t-loop", Name: "Greywater Loop", Approved: true}))

	records := []*domain.SimulationRecord{
		{
			ID: "s2", ProjectID: "p1", TechnologyID: "t-led", CreatedAt: fixedNow.Add(-time.Hour),
			SimulationResult: domain.SimulationResult{
				EnergySavingKwh: 20000, AnnualSavingsUSD: 2000.125, ROIPct: 40, PaybackYears: pf(2.5),
				CO2ReductionTpy: 3, ConfidencePct: 80,
			},
		},
		{
			ID: "s1", ProjectID: "p1", TechnologyID: "t-loop", CreatedAt: fixedNow.Add(-2 * time.Hour),
			SimulationResult: domain.SimulationResult{
				WaterSavingM3: 500, AnnualSavingsUSD: 0, ROIPct: 0, CO2ReductionTpy: 1, ConfidencePct: 60,
			},
		},
		{
			ID: "s3", ProjectID: "p1", TechnologyID: "t-led", CreatedAt: fixedNow.Add(-time.Hour),
			SimulationResult: domain.SimulationResult{
				EnergySavingKwh: 10000, AnnualSavingsUSD: 1000, ROIPct: 20, PaybackYears: pf(5),
				CO2ReductionTpy: 3, ConfidencePct: 80,
			},
		},
	}
	for _, r := range records {
		require.NoError(t, sims.Insert(ctx, r))
	}

	return NewGenerator(projects, sims, techs, decision.NewEvaluator(decision.DefaultThresholds())).
		WithClock(func() time.Time { return fixedNow })
}

func TestGenerator_Generate(t *testing.T) {
	gen := setupTestData(t)

	report, err := gen.Generate(context.Background(), "p1")
	require.NoError(t, err)

	assert.Equal(t, fixedNow, report.GeneratedAt)
	assert.Equal(t, "Plant A", report.Project.Name)

	// Sorted by created_at, then id
	require.Len(t, report.Simulations, 3)
	assert.Equal(t, "s1", report.Simulations[0].SimulationID)
	assert.Equal(t, "s2", report.Simulations[1].SimulationID)
	assert.Equal(t, "s3", report.Simulations[2].SimulationID)
	assert.Equal(t, "Greywater Loop", report.Simulations[0].TechnologyName)

	assert.Equal(t, decision.DecisionNOGO, report.Simulations[0].Decision)
	assert.Equal(t, decision.DecisionGO, report.Simulations[1].Decision)
	assert.Equal(t, decision.DecisionGO, report.Simulations[2].Decision)

	s := report.Summary
	assert.Equal(t, 3, s.SimulationCount)
	assert.Equal(t, 2, s.TechnologyCount)
	assert.Equal(t, 2, s.GOCount)
	assert.InDelta(t, 3000.125, s.TotalAnnualSavingsUSD, 1e-9)
	assert.InDelta(t, 7.0, s.TotalCO2ReductionTpy, 1e-9)
	assert.InDelta(t, 20.0, s.MeanROIPct, 1e-9)
	assert.Equal(t, "s2", s.BestSimulationID)

	require.Len(t, report.Technologies, 2)
	led := report.Technologies[0]
	assert.Equal(t, "t-led", led.TechnologyID)
	assert.Equal(t, 2, led.Simulations)
	assert.InDelta(t, 30.0, led.MeanROIPct, 1e-9)
	require.NotNil(t, led.ShortestPaybackYrs)
	assert.Equal(t, 2.5, *led.ShortestPaybackYrs)
	assert.Nil(t, report.Technologies[1].ShortestPaybackYrs)

	require.Len(t, report.Decisions, 3)
	assert.Equal(t, "s1", report.Decisions[0].SimulationID)
}

func TestGenerator_Generate_UnknownProject(t *testing.T) {
	gen := setupTestData(t)

	_, err := gen.Generate(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestRenderMarkdown(t *testing.T) {
	gen := setupTestData(t)
	report, err := gen.Generate(context.Background(), "p1")
	require.NoError(t, err)

	md := RenderMarkdown(report)

	for _, section := range []string{
		"# Impact Report: Plant A",
		"## Baseline",
		"## Summary",
		"## Simulations",
		"## Technology Comparison",
		"## Decisions",
		"### Decision: GO",
		"### Decision: NO-GO",
	} {
		assert.Contains(t, md, section)
	}
	assert.Contains(t, md, "| Total annual savings (USD) | 3000.13 |")
	assert.Contains(t, md, "| Waste (t/yr) | - |")
	assert.Contains(t, md, "| never |")
}

func TestRenderMarkdown_Empty(t *testing.T) {
	md := RenderMarkdown(&Report{Project: ProjectSummary{Name: "Empty"}, GeneratedAt: fixedNow})

	assert.Contains(t, md, "No simulations yet.")
	assert.Contains(t, md, "No technology comparison available.")
	assert.Contains(t, md, "No decisions to report.")
}

func TestRenderCSV(t *testing.T) {
	gen := setupTestData(t)
	report, err := gen.Generate(context.Background(), "p1")
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(RenderCSV(report.Simulations))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Equal(t, "simulation_id", records[0][0])
	assert.Equal(t, "decision", records[0][12])

	// No payback renders as an empty cell
	assert.Equal(t, "s1", records[1][0])
	assert.Equal(t, "", records[1][9])
	assert.Equal(t, "NO-GO", records[1][12])

	assert.Equal(t, "2000.13", records[2][7])
	assert.Equal(t, "2.50", records[2][9])
	assert.Equal(t, "2024-07-01T11:00:00Z", records[2][3])
}

func TestFormatUSD(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.00"},
		{1.005, "1.01"},
		{2.675, "2.68"},
		{-1.005, "-1.01"},
		{1234567.891, "1234567.89"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatUSD(tt.in), "FormatUSD(%v)", tt.in)
	}
	assert.Equal(t, "never", FormatPayback(nil))

	// Non-finite values are spelled out rather than crashing the report.
	assert.Equal(t, "+Inf", FormatUSD(math.Inf(1)))
	assert.Equal(t, "NaN", FormatUSD(math.NaN()))
	inf := math.Inf(1)
	assert.Equal(t, "+Inf", FormatPayback(&inf))
}

func TestRenderSimulation(t *testing.T) {
	res := domain.SimulationResult{AnnualSavingsUSD: 10, ROIPct: 1, ConfidencePct: 60}
	d := decision.NewEvaluator(decision.DefaultThresholds()).Evaluate(decision.InputFromResult(res))

	out := RenderSimulation("LED Retrofit", res, d)
	assert.Contains(t, out, "## Simulation: LED Retrofit")
	assert.Contains(t, out, "| Payback (years) | never |")
	assert.Contains(t, out, "### Decision: NO-GO")
}

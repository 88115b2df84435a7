package reporting

import (
	"time"

	"inara-impact/internal/decision"
	"inara-impact/internal/domain"
)

// Report is the impact report of one project.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	Project     ProjectSummary
	Thresholds  decision.Thresholds

	// Portfolio totals across all simulations
	Summary Summary

	// Simulation rows (sorted by created_at, simulation_id)
	Simulations []SimulationRow

	// Per-technology comparison (sorted by mean ROI desc, technology_id)
	Technologies []TechnologyComparisonRow

	// Decision gate outcome per simulation, same order as Simulations
	Decisions []DecisionSection
}

// ProjectSummary describes the project the report is for.
type ProjectSummary struct {
	ID       string
	Name     string
	Industry string
	Location string
	Baseline domain.Baseline
}

// Summary aggregates all simulations of the project.
type Summary struct {
	SimulationCount       int
	TechnologyCount       int
	GOCount               int
	TotalAnnualSavingsUSD float64
	TotalCO2ReductionTpy  float64
	MeanROIPct            float64
	MeanConfidencePct     float64
	BestSimulationID      string // highest ROI, empty if none
}

// SimulationRow represents one row in the simulations table.
type SimulationRow struct {
	SimulationID     string
	TechnologyID     string
	TechnologyName   string
	CreatedAt        time.Time
	EnergySavingKwh  float64
	WaterSavingM3    float64
	WasteSavingTpy   float64
	AnnualSavingsUSD float64
	ROIPct           float64
	PaybackYears     *float64 // nil: never pays back
	CO2ReductionTpy  float64
	ConfidencePct    int
	Decision         decision.Decision
}

// TechnologyComparisonRow compares the technologies simulated for the project.
type TechnologyComparisonRow struct {
	TechnologyID       string
	TechnologyName     string
	Simulations        int
	MeanROIPct         float64
	MeanAnnualSavings  float64
	ShortestPaybackYrs *float64 // nil if no simulation pays back
}

// DecisionSection holds the gate outcome for one simulation.
type DecisionSection struct {
	SimulationID   string
	TechnologyName string
	Result         *decision.DecisionResult
}

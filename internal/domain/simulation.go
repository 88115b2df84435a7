package domain

import "time"

// Tariffs are caller-supplied prices per unit of each tracked resource.
// Zero or negative tariffs are accepted and propagate linearly.
type Tariffs struct {
	KWh float64 `json:"kwh"` // USD per kWh
	M3  float64 `json:"m3"`  // USD per m3
}

// SimulationResult is the engine output for one (baseline, technology, tariffs) triple.
type SimulationResult struct {
	EnergySavingKwh  float64  `json:"energySavingKwh"`
	WaterSavingM3    float64  `json:"waterSavingM3"`
	WasteSavingTpy   float64  `json:"wasteSavingTpy"`
	AnnualSavingsUSD float64  `json:"annualSavingsUsd"`
	ROIPct           float64  `json:"roiPct"`
	PaybackYears     *float64 `json:"paybackYears"` // nil: investment never pays back
	CO2ReductionTpy  float64  `json:"co2ReductionTpy"`
	ConfidencePct    int      `json:"confidencePct"` // 60..95
}

// HasPayback reports whether the result carries a finite payback period.
func (r SimulationResult) HasPayback() bool {
	return r.PaybackYears != nil
}

// SimulationRecord is a persisted simulation attached to a project and technology.
type SimulationRecord struct {
	ID           string   `json:"id"`
	UserID       string   `json:"userId"`
	ProjectID    string   `json:"projectId"`
	TechnologyID string   `json:"technologyId"`
	Baseline     Baseline `json:"baseline"`
	Tariffs      Tariffs  `json:"tariffs"`
	DeltaOpexUSD float64  `json:"deltaOpexUsd"`
	Fingerprint  string   `json:"fingerprint"` // base58 SHA-256 of the engine inputs

	SimulationResult

	CreatedAt time.Time `json:"createdAt"`
}

// TechnologyImpactSummary aggregates simulation outcomes for one technology.
type TechnologyImpactSummary struct {
	TechnologyID          string  `json:"technologyId"`
	Simulations           int     `json:"simulations"`
	MeanROIPct            float64 `json:"meanRoiPct"`
	MeanConfidencePct     float64 `json:"meanConfidencePct"`
	TotalAnnualSavingsUSD float64 `json:"totalAnnualSavingsUsd"`
	TotalCO2ReductionTpy  float64 `json:"totalCo2ReductionTpy"`
	WithPayback           int     `json:"withPayback"`
}

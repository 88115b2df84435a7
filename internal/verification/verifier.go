// Package verification replays stored simulations through the engine
// and reports any field that no longer matches the persisted result.
package verification

import (
	"context"
	"math"

	"inara-impact/internal/domain"
)

// FloatTolerance is the tolerance for float64 comparisons.
const FloatTolerance = 1e-7

// Status classifies the outcome of verifying one simulation.
type Status string

const (
	StatusMatch         Status = "MATCH"          // replay reproduced the stored result
	StatusDivergent     Status = "DIVERGENT"      // same inputs, different result
	StatusInputsChanged Status = "INPUTS_CHANGED" // technology coefficients changed since the run
	StatusError         Status = "ERROR"          // replay could not run
)

// FieldDivergence represents a mismatch between stored and replayed values.
type FieldDivergence struct {
	Field    string `json:"field"`
	Expected any    `json:"expected"` // stored value
	Actual   any    `json:"actual"`   // replayed value
}

// VerificationResult contains the result of verifying a single simulation.
type VerificationResult struct {
	SimulationID string            `json:"simulationId"`
	TechnologyID string            `json:"technologyId"`
	Status       Status            `json:"status"`
	Divergences  []FieldDivergence `json:"divergences,omitempty"`
}

// Match reports whether the replay reproduced the stored result.
func (r VerificationResult) Match() bool {
	return r.Status == StatusMatch
}

// VerificationReport contains results for batch verification.
type VerificationReport struct {
	ProjectID            string               `json:"projectId"`
	TotalSimulations     int                  `json:"totalSimulations"`
	MatchedSimulations   int                  `json:"matchedSimulations"`
	DivergentSimulations int                  `json:"divergentSimulations"`
	InputsChanged        int                  `json:"inputsChanged"`
	Errors               int                  `json:"errors"`
	Results              []VerificationResult `json:"results"`
}

// Verifier interface for simulation replay verification.
type Verifier interface {
	// VerifySimulation loads the stored simulation, re-runs the engine
	// with the same inputs and compares all result fields.
	VerifySimulation(ctx context.Context, simulationID string) (*VerificationResult, error)

	// VerifyProject verifies every stored simulation of a project.
	VerifyProject(ctx context.Context, projectID string) (*VerificationReport, error)
}

// CompareResults compares two engine results and returns divergences.
// Uses FloatTolerance for float64 comparisons.
func CompareResults(stored, replayed domain.SimulationResult) []FieldDivergence {
	var divergences []FieldDivergence

	floats := []struct {
		field            string
		expected, actual float64
	}{
		{"EnergySavingKwh", stored.EnergySavingKwh, replayed.EnergySavingKwh},
		{"WaterSavingM3", stored.WaterSavingM3, replayed.WaterSavingM3},
		{"WasteSavingTpy", stored.WasteSavingTpy, replayed.WasteSavingTpy},
		{"AnnualSavingsUSD", stored.AnnualSavingsUSD, replayed.AnnualSavingsUSD},
		{"ROIPct", stored.ROIPct, replayed.ROIPct},
		{"CO2ReductionTpy", stored.CO2ReductionTpy, replayed.CO2ReductionTpy},
	}
	for _, f := range floats {
		if !floatEquals(f.expected, f.actual) {
			divergences = append(divergences, FieldDivergence{
				Field:    f.field,
				Expected: f.expected,
				Actual:   f.actual,
			})
		}
	}

	// Absent payback must stay absent
	if !floatPtrEquals(stored.PaybackYears, replayed.PaybackYears) {
		divergences = append(divergences, FieldDivergence{
			Field:    "PaybackYears",
			Expected: stored.PaybackYears,
			Actual:   replayed.PaybackYears,
		})
	}

	// ConfidencePct must match exactly
	if stored.ConfidencePct != replayed.ConfidencePct {
		divergences = append(divergences, FieldDivergence{
			Field:    "ConfidencePct",
			Expected: stored.ConfidencePct,
			Actual:   replayed.ConfidencePct,
		})
	}

	return divergences
}

// floatEquals compares two float64 values within FloatTolerance.
func floatEquals(a, b float64) bool {
	return math.Abs(a-b) <= FloatTolerance
}

// floatPtrEquals compares two *float64 values within FloatTolerance.
// Returns true if both are nil, or both are non-nil and equal.
func floatPtrEquals(a, b *float64) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return floatEquals(*a, *b)
}

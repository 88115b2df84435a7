package decision

import "inara-impact/internal/domain"

// Decision represents the final GO/NO-GO result.
type Decision string

const (
	DecisionGO   Decision = "GO"
	DecisionNOGO Decision = "NO-GO"
)

// Thresholds are the investment policy a result is judged against.
type Thresholds struct {
	MinROIPct        float64 // ROI must reach this percentage
	MaxPaybackYears  float64 // payback must not exceed this many years
	MinConfidencePct int     // confidence must reach this score
}

// DefaultThresholds returns the policy used when none is configured.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinROIPct:        10,
		MaxPaybackYears:  10,
		MinConfidencePct: 70,
	}
}

// DecisionInput is the numeric view of one simulation used by the gate.
type DecisionInput struct {
	SimulationID     string
	TechnologyID     string
	AnnualSavingsUSD float64
	ROIPct           float64
	PaybackYears     *float64 // nil: never pays back
	ConfidencePct    int
}

// InputFromResult builds DecisionInput from an engine result.
func InputFromResult(r domain.SimulationResult) DecisionInput {
	return DecisionInput{
		AnnualSavingsUSD: r.AnnualSavingsUSD,
		ROIPct:           r.ROIPct,
		PaybackYears:     r.PaybackYears,
		ConfidencePct:    r.ConfidencePct,
	}
}

// InputFromRecord builds DecisionInput from a persisted simulation.
func InputFromRecord(r *domain.SimulationRecord) DecisionInput {
	in := InputFromResult(r.SimulationResult)
	in.SimulationID = r.ID
	in.TechnologyID = r.TechnologyID
	return in
}

// CriterionResult represents pass/fail for one criterion.
type CriterionResult struct {
	Name      string `json:"name"`
	Threshold string `json:"threshold"`
	Actual    string `json:"actual"`
	Pass      bool   `json:"pass"`
}

// DecisionResult contains the final decision with checklist.
type DecisionResult struct {
	Decision   Decision          `json:"decision"`
	GOCriteria []CriterionResult `json:"goCriteria"`
	NOGOChecks []CriterionResult `json:"nogoChecks"` // Pass=false means triggered
}

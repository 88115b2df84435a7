package decision

import "fmt"

// Evaluator evaluates decision criteria against fixed thresholds.
type Evaluator struct {
	thresholds Thresholds
}

// NewEvaluator creates a new decision evaluator.
func NewEvaluator(t Thresholds) *Evaluator {
	return &Evaluator{thresholds: t}
}

// Thresholds returns the policy in use.
func (e *Evaluator) Thresholds() Thresholds {
	return e.thresholds
}

// Evaluate produces DecisionResult from DecisionInput.
// GO if ALL criteria pass and NO NO-GO triggers.
// NO-GO if ANY criterion fails or ANY trigger fires.
func (e *Evaluator) Evaluate(input DecisionInput) *DecisionResult {
	goCriteria := e.evaluateGOCriteria(input)
	nogoChecks := e.evaluateNOGOTriggers(input)

	decision := DecisionGO
	for _, c := range append(append([]CriterionResult(nil), goCriteria...), nogoChecks...) {
		if !c.Pass {
			decision = DecisionNOGO
			break
		}
	}

	return &DecisionResult{
		Decision:   decision,
		GOCriteria: goCriteria,
		NOGOChecks: nogoChecks,
	}
}

// evaluateGOCriteria evaluates the 3 GO criteria.
func (e *Evaluator) evaluateGOCriteria(input DecisionInput) []CriterionResult {
	t := e.thresholds
	criteria := make([]CriterionResult, 3)

	// 1. ROI >= MinROIPct
	criteria[0] = CriterionResult{
		Name:      "Return on investment",
		Threshold: fmt.Sprintf(">= %.2f%%", t.MinROIPct),
		Actual:    fmt.Sprintf("%.2f%%", input.ROIPct),
		Pass:      input.ROIPct >= t.MinROIPct,
	}

	// 2. Payback exists and <= MaxPaybackYears
	paybackActual := "never"
	paybackPass := false
	if input.PaybackYears != nil {
		paybackActual = fmt.Sprintf("%.2f years", *input.PaybackYears)
		paybackPass = *input.PaybackYears <= t.MaxPaybackYears
	}
	criteria[1] = CriterionResult{
		Name:      "Payback period",
		Threshold: fmt.Sprintf("<= %.2f years", t.MaxPaybackYears),
		Actual:    paybackActual,
		Pass:      paybackPass,
	}

	// 3. Confidence >= MinConfidencePct
	criteria[2] = CriterionResult{
		Name:      "Estimate confidence",
		Threshold: fmt.Sprintf(">= %d%%", t.MinConfidencePct),
		Actual:    fmt.Sprintf("%d%%", input.ConfidencePct),
		Pass:      input.ConfidencePct >= t.MinConfidencePct,
	}

	return criteria
}

// evaluateNOGOTriggers evaluates the 2 NO-GO triggers.
// Pass=true means NOT triggered, Pass=false means triggered.
func (e *Evaluator) evaluateNOGOTriggers(input DecisionInput) []CriterionResult {
	checks := make([]CriterionResult, 2)

	// 1. Non-positive annual savings: the investment never pays back
	checks[0] = CriterionResult{
		Name:      "No annual savings",
		Threshold: "<= 0 USD",
		Actual:    fmt.Sprintf("%.2f USD", input.AnnualSavingsUSD),
		Pass:      input.AnnualSavingsUSD > 0,
	}

	// 2. Only the confidence base was earned: no baseline field was supplied
	checks[1] = CriterionResult{
		Name:      "Baseline not supplied",
		Threshold: "confidence at base 60%",
		Actual:    fmt.Sprintf("%d%%", input.ConfidencePct),
		Pass:      input.ConfidencePct > 60,
	}

	return checks
}

package decision

import (
	"strings"
	"testing"

	"inara-impact/internal/domain"
)

func ptr(v float64) *float64 { return &v }

func TestEvaluate_GO(t *testing.T) {
	evaluator := NewEvaluator(DefaultThresholds())

	input := DecisionInput{
		AnnualSavingsUSD: 5000,
		ROIPct:           25,     // >= 10
		PaybackYears:     ptr(4), // <= 10
		ConfidencePct:    80,     // >= 70
	}

	result := evaluator.Evaluate(input)

	if result.Decision != DecisionGO {
		t.Errorf("Expected GO, got %s", result.Decision)
	}
	if len(result.GOCriteria) != 3 {
		t.Errorf("Expected 3 GO criteria, got %d", len(result.GOCriteria))
	}
	if len(result.NOGOChecks) != 2 {
		t.Errorf("Expected 2 NO-GO checks, got %d", len(result.NOGOChecks))
	}
	for _, c := range append(result.GOCriteria, result.NOGOChecks...) {
		if !c.Pass {
			t.Errorf("Expected %s to pass, actual %s", c.Name, c.Actual)
		}
	}
}

func TestEvaluate_NOGO(t *testing.T) {
	evaluator := NewEvaluator(DefaultThresholds())

	tests := []struct {
		name       string
		input      DecisionInput
		failedName string
	}{
		{
			name:       "low ROI",
			input:      DecisionInput{AnnualSavingsUSD: 200, ROIPct: 0.667, PaybackYears: ptr(150), ConfidencePct: 70},
			failedName: "Return on investment",
		},
		{
			name:       "no payback",
			input:      DecisionInput{AnnualSavingsUSD: -100, ROIPct: -5, ConfidencePct: 90},
			failedName: "No annual savings",
		},
		{
			name:       "slow payback",
			input:      DecisionInput{AnnualSavingsUSD: 1000, ROIPct: 50, PaybackYears: ptr(12), ConfidencePct: 90},
			failedName: "Payback period",
		},
		{
			name:       "empty baseline",
			input:      DecisionInput{AnnualSavingsUSD: 1000, ROIPct: 50, PaybackYears: ptr(2), ConfidencePct: 60},
			failedName: "Baseline not supplied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := evaluator.Evaluate(tt.input)
			if result.Decision != DecisionNOGO {
				t.Fatalf("Expected NO-GO, got %s", result.Decision)
			}
			found := false
			for _, c := range append(result.GOCriteria, result.NOGOChecks...) {
				if c.Name == tt.failedName && !c.Pass {
					found = true
				}
			}
			if !found {
				t.Errorf("Expected %q to fail", tt.failedName)
			}
		})
	}
}

func TestEvaluate_PaybackBoundaryInclusive(t *testing.T) {
	evaluator := NewEvaluator(Thresholds{MinROIPct: 10, MaxPaybackYears: 10, MinConfidencePct: 70})

	result := evaluator.Evaluate(DecisionInput{AnnualSavingsUSD: 1, ROIPct: 10, PaybackYears: ptr(10), ConfidencePct: 70})
	if result.Decision != DecisionGO {
		t.Errorf("Expected GO at exact thresholds, got %s", result.Decision)
	}
}

func TestInputFromRecord(t *testing.T) {
	rec := &domain.SimulationRecord{
		ID:           "s1",
		TechnologyID: "t1",
		SimulationResult: domain.SimulationResult{
			AnnualSavingsUSD: 200,
			ROIPct:           2,
			PaybackYears:     ptr(150),
			ConfidencePct:    70,
		},
	}

	in := InputFromRecord(rec)
	if in.SimulationID != "s1" || in.TechnologyID != "t1" {
		t.Errorf("expected ids s1/t1, got %s/%s", in.SimulationID, in.TechnologyID)
	}
	if in.PaybackYears == nil || *in.PaybackYears != 150 {
		t.Errorf("expected payback 150, got %v", in.PaybackYears)
	}
}

func TestRenderMarkdown(t *testing.T) {
	evaluator := NewEvaluator(DefaultThresholds())
	md := RenderMarkdown(evaluator.Evaluate(DecisionInput{AnnualSavingsUSD: 0, ConfidencePct: 60}))

	for _, want := range []string{
		"### Decision: NO-GO",
		"| Payback period | criterion | <= 10.00 years | never | fail |",
		"| No annual savings | trigger | <= 0 USD | 0.00 USD | triggered |",
		"- No annual savings (actual: 0.00 USD)",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("expected markdown to contain %q\n%s", want, md)
		}
	}
}

func TestRenderMarkdown_GO(t *testing.T) {
	payback := 2.0
	evaluator := NewEvaluator(DefaultThresholds())
	md := RenderMarkdown(evaluator.Evaluate(DecisionInput{AnnualSavingsUSD: 1000, ROIPct: 50, PaybackYears: &payback, ConfidencePct: 70}))

	if !strings.Contains(md, "Meets every investment threshold.") {
		t.Errorf("expected GO summary\n%s", md)
	}
	if strings.Contains(md, "Blocked by:") {
		t.Errorf("unexpected blockers\n%s", md)
	}
}

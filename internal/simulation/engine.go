package simulation

import (
	"math"

	"inara-impact/internal/domain"
)

// Confidence scoring bounds.
const (
	BaseConfidencePct  = 60
	FieldConfidencePct = 10
	MaxConfidencePct   = 95
)

// Input is everything the engine needs for one estimate.
type Input struct {
	Baseline   domain.Baseline
	Technology domain.TechnologyCoefficients
	Tariffs    domain.Tariffs

	// DeltaOpexUSD is the recurring operating cost change (USD/yr)
	// subtracted from gross savings. Zero when not supplied.
	DeltaOpexUSD float64
}

// Simulate computes a single-year steady-state impact estimate.
// It never fails: absent inputs count as zero and tariffs propagate linearly
// whatever their sign.
func Simulate(in Input) domain.SimulationResult {
	b, t := in.Baseline, in.Technology

	energySaving := value(b.EnergyKwh) * value(t.BenefitEnergyPct)
	waterSaving := value(b.WaterM3) * value(t.BenefitWaterPct)
	wasteSaving := value(b.WasteTpy) * value(t.BenefitWastePct)

	// No waste tariff is modeled; waste savings stay out of the USD figure.
	annual := energySaving*in.Tariffs.KWh + waterSaving*in.Tariffs.M3 - in.DeltaOpexUSD

	avgCapex := (value(t.CapexMin) + value(t.CapexMax)) / 2

	roi := 0.0
	if avgCapex > 0 {
		roi = annual / avgCapex * 100
	}

	var payback *float64
	if annual > 0 {
		p := avgCapex / annual
		payback = &p
	}

	return domain.SimulationResult{
		EnergySavingKwh:  energySaving,
		WaterSavingM3:    waterSaving,
		WasteSavingTpy:   wasteSaving,
		AnnualSavingsUSD: annual,
		ROIPct:           roi,
		PaybackYears:     payback,
		CO2ReductionTpy:  value(t.CO2Tpy),
		ConfidencePct:    Confidence(b),
	}
}

// Confidence scores how much of the baseline was supplied.
// Each of energy, water and waste adds FieldConfidencePct when present and
// non-zero. The annual budget never contributes.
func Confidence(b domain.Baseline) int {
	c := BaseConfidencePct
	for _, f := range []*float64{b.EnergyKwh, b.WaterM3, b.WasteTpy} {
		if truthy(f) {
			c += FieldConfidencePct
		}
	}
	if c > MaxConfidencePct {
		c = MaxConfidencePct
	}
	return c
}

// truthy is false for absent, zero and NaN values.
func truthy(p *float64) bool {
	return p != nil && *p != 0 && !math.IsNaN(*p)
}

func value(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

package idhash

import (
	"crypto/sha256"
	"strconv"
	"strings"

	"github.com/mr-tron/base58"

	"inara-impact/internal/domain"
)

// ComputeInputFingerprint computes a deterministic fingerprint of the engine inputs.
// Formula: SHA256(energy|water|waste|budget|capexMin|capexMax|ePct|wPct|wastePct|co2|kwh|m3|deltaOpex)
// Absent fields encode as the empty string so that absent and zero differ.
// Returns base58-encoded hash.
func ComputeInputFingerprint(
	baseline domain.Baseline,
	tech domain.TechnologyCoefficients,
	tariffs domain.Tariffs,
	deltaOpex float64,
) string {
	parts := []string{
		optional(baseline.EnergyKwh),
		optional(baseline.WaterM3),
		optional(baseline.WasteTpy),
		optional(baseline.BudgetUSD),
		optional(tech.CapexMin),
		optional(tech.CapexMax),
		optional(tech.BenefitEnergyPct),
		optional(tech.BenefitWaterPct),
		optional(tech.BenefitWastePct),
		optional(tech.CO2Tpy),
		format(tariffs.KWh),
		format(tariffs.M3),
		format(deltaOpex),
	}

	hash := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return base58.Encode(hash[:])
}

func optional(p *float64) string {
	if p == nil {
		return ""
	}
	return format(*p)
}

func format(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

package idhash

import (
	"testing"

	"inara-impact/internal/domain"
)

func TestComputeInputFingerprint_Determinism(t *testing.T) {
	baseline := domain.Baseline{EnergyKwh: domain.Float(10000), WaterM3: domain.Float(0)}
	tech := domain.TechnologyCoefficients{
		CapexMin:         domain.Float(20000),
		CapexMax:         domain.Float(40000),
		BenefitEnergyPct: domain.Float(0.2),
	}
	tariffs := domain.Tariffs{KWh: 0.1, M3: 1}

	results := make([]string, 10)
	for i := 0; i < 10; i++ {
		results[i] = ComputeInputFingerprint(baseline, tech, tariffs, 0)
	}

	for i := 1; i < len(results); i++ {
		if results[i] != results[0] {
			t.Errorf("Determinism failed: results[%d]=%s != results[0]=%s", i, results[i], results[0])
		}
	}
	if results[0] == "" {
		t.Error("expected non-empty fingerprint")
	}
}

func TestComputeInputFingerprint_DifferentInputs(t *testing.T) {
	tech := domain.TechnologyCoefficients{BenefitEnergyPct: domain.Float(0.3)}
	tariffs := domain.Tariffs{KWh: 0.1, M3: 1}
	base := ComputeInputFingerprint(domain.Baseline{}, tech, tariffs, 0)

	// Explicit zero differs from absent
	zero := ComputeInputFingerprint(domain.Baseline{EnergyKwh: domain.Float(0)}, tech, tariffs, 0)
	if base == zero {
		t.Error("Absent and zero energy should produce different hash")
	}

	diffTariff := ComputeInputFingerprint(domain.Baseline{}, tech, domain.Tariffs{KWh: 0.2, M3: 1}, 0)
	if base == diffTariff {
		t.Error("Different tariff should produce different hash")
	}

	diffOpex := ComputeInputFingerprint(domain.Baseline{}, tech, tariffs, 50)
	if base == diffOpex {
		t.Error("Different deltaOpex should produce different hash")
	}

	diffTech := ComputeInputFingerprint(domain.Baseline{}, domain.TechnologyCoefficients{BenefitEnergyPct: domain.Float(0.31)}, tariffs, 0)
	if base == diffTech {
		t.Error("Different coefficient should produce different hash")
	}
}

func TestComputeSeedID(t *testing.T) {
	a := ComputeSeedID("technology", 3, "Heat Pump")
	if len(a) != 32 {
		t.Errorf("expected length 32, got %d", len(a))
	}
	if a != ComputeSeedID("technology", 3, "Heat Pump") {
		t.Error("ComputeSeedID() not deterministic")
	}
	if a == ComputeSeedID("vendor", 3, "Heat Pump") {
		t.Error("Different kind should produce different id")
	}
}

package domain

import (
	"fmt"
	"math"
)

// Baseline holds a project's pre-adoption resource consumption.
// Nil fields mean "unknown"; present values are never negative.
type Baseline struct {
	EnergyKwh *float64 `json:"baselineEnergyKwh,omitempty"` // kWh per year
	WaterM3   *float64 `json:"baselineWaterM3,omitempty"`   // m3 per year
	WasteTpy  *float64 `json:"baselineWasteTpy,omitempty"`  // tonnes per year
	BudgetUSD *float64 `json:"annualBudgetUsd,omitempty"`   // USD per year
}

// IsEmpty reports whether no baseline field is present.
func (b Baseline) IsEmpty() bool {
	return b.EnergyKwh == nil && b.WaterM3 == nil && b.WasteTpy == nil && b.BudgetUSD == nil
}

// Validate checks that every present field is finite and non-negative.
func (b Baseline) Validate() error {
	fields := []struct {
		name string
		v    *float64
	}{
		{"baselineEnergyKwh", b.EnergyKwh},
		{"baselineWaterM3", b.WaterM3},
		{"baselineWasteTpy", b.WasteTpy},
		{"annualBudgetUsd", b.BudgetUSD},
	}
	for _, f := range fields {
		if f.v == nil {
			continue
		}
		if math.IsNaN(*f.v) || math.IsInf(*f.v, 0) {
			return fmt.Errorf("%s must be a finite number", f.name)
		}
		if *f.v < 0 {
			return fmt.Errorf("%s must not be negative, got %g", f.name, *f.v)
		}
	}
	return nil
}

// Float returns a pointer to v. Convenience for building optional fields.
func Float(v float64) *float64 {
	return &v
}

// ValueOr returns *p, or def when p is nil.
func ValueOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

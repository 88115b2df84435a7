package reporting

import (
	"encoding/csv"
	"strconv"
	"strings"
	"time"
)

// RenderCSV renders simulation rows as CSV string.
func RenderCSV(rows []SimulationRow) string {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	// Header
	w.Write([]string{
		"simulation_id", "technology_id", "technology_name", "created_at",
		"energy_saving_kwh", "water_saving_m3", "waste_saving_tpy",
		"annual_savings_usd", "roi_pct", "payback_years",
		"co2_reduction_tpy", "confidence_pct", "decision",
	})

	// Rows
	for _, r := range rows {
		payback := ""
		if r.PaybackYears != nil {
			payback = FormatPayback(r.PaybackYears)
		}
		w.Write([]string{
			r.SimulationID,
			r.TechnologyID,
			r.TechnologyName,
			r.CreatedAt.UTC().Format(time.RFC3339),
			formatQty(r.EnergySavingKwh),
			formatQty(r.WaterSavingM3),
			formatQty(r.WasteSavingTpy),
			FormatUSD(r.AnnualSavingsUSD),
			formatPct(r.ROIPct),
			payback,
			formatQty(r.CO2ReductionTpy),
			strconv.Itoa(r.ConfidencePct),
			string(r.Decision),
		})
	}

	w.Flush()
	return sb.String()
}

package reporting

import (
	"fmt"
	"strings"
	"time"

	"inara-impact/internal/decision"
	"inara-impact/internal/domain"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString(fmt.Sprintf("# Impact Report: %s\n\n", r.Project.Name))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	if r.Project.Industry != "" || r.Project.Location != "" {
		sb.WriteString(fmt.Sprintf("Industry: %s | Location: %s\n\n", orDash(r.Project.Industry), orDash(r.Project.Location)))
	}

	// Baseline
	sb.WriteString("## Baseline\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Energy (kWh/yr) | %s |\n", optional(r.Project.Baseline.EnergyKwh, formatQty)))
	sb.WriteString(fmt.Sprintf("| Water (m3/yr) | %s |\n", optional(r.Project.Baseline.WaterM3, formatQty)))
	sb.WriteString(fmt.Sprintf("| Waste (t/yr) | %s |\n", optional(r.Project.Baseline.WasteTpy, formatQty)))
	sb.WriteString(fmt.Sprintf("| Annual budget (USD) | %s |\n", optional(r.Project.Baseline.BudgetUSD, FormatUSD)))
	sb.WriteString("\n")

	// Summary
	s := r.Summary
	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Simulations | %d |\n", s.SimulationCount))
	sb.WriteString(fmt.Sprintf("| Technologies | %d |\n", s.TechnologyCount))
	sb.WriteString(fmt.Sprintf("| GO decisions | %d |\n", s.GOCount))
	sb.WriteString(fmt.Sprintf("| Total annual savings (USD) | %s |\n", FormatUSD(s.TotalAnnualSavingsUSD)))
	sb.WriteString(fmt.Sprintf("| Total CO2 reduction (t/yr) | %s |\n", formatQty(s.TotalCO2ReductionTpy)))
	sb.WriteString(fmt.Sprintf("| Mean ROI | %s%% |\n", formatPct(s.MeanROIPct)))
	sb.WriteString(fmt.Sprintf("| Mean confidence | %s%% |\n", formatPct(s.MeanConfidencePct)))
	if s.BestSimulationID != "" {
		sb.WriteString(fmt.Sprintf("| Best ROI simulation | %s |\n", s.BestSimulationID))
	}
	sb.WriteString("\n")

	// Simulations
	sb.WriteString("## Simulations\n\n")
	if len(r.Simulations) > 0 {
		sb.WriteString("| Simulation | Technology | Energy kWh | Water m3 | Waste t | Savings USD | ROI % | Payback yrs | CO2 t | Confidence | Decision |\n")
		sb.WriteString("|------------|------------|------------|----------|---------|-------------|-------|-------------|-------|------------|----------|\n")
		for _, row := range r.Simulations {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s | %s | %s | %s | %d%% | %s |\n",
				row.SimulationID, row.TechnologyName,
				formatQty(row.EnergySavingKwh), formatQty(row.WaterSavingM3), formatQty(row.WasteSavingTpy),
				FormatUSD(row.AnnualSavingsUSD), formatPct(row.ROIPct), FormatPayback(row.PaybackYears),
				formatQty(row.CO2ReductionTpy), row.ConfidencePct, row.Decision))
		}
	} else {
		sb.WriteString("No simulations yet.\n")
	}
	sb.WriteString("\n")

	// Technology comparison
	sb.WriteString("## Technology Comparison\n\n")
	if len(r.Technologies) > 0 {
		sb.WriteString("| Technology | Simulations | Mean ROI % | Mean Savings USD | Shortest Payback yrs |\n")
		sb.WriteString("|------------|-------------|------------|------------------|----------------------|\n")
		for _, c := range r.Technologies {
			sb.WriteString(fmt.Sprintf("| %s | %d | %s | %s | %s |\n",
				c.TechnologyName, c.Simulations, formatPct(c.MeanROIPct),
				FormatUSD(c.MeanAnnualSavings), FormatPayback(c.ShortestPaybackYrs)))
		}
	} else {
		sb.WriteString("No technology comparison available.\n")
	}
	sb.WriteString("\n")

	// Decisions
	sb.WriteString("## Decisions\n\n")
	t := r.Thresholds
	sb.WriteString(fmt.Sprintf("Thresholds: ROI >= %s%%, payback <= %s years, confidence >= %d%%\n\n",
		formatPct(t.MinROIPct), formatPct(t.MaxPaybackYears), t.MinConfidencePct))
	if len(r.Decisions) == 0 {
		sb.WriteString("No decisions to report.\n")
	}
	for _, d := range r.Decisions {
		sb.WriteString(fmt.Sprintf("#### %s (%s)\n\n", d.TechnologyName, d.SimulationID))
		sb.WriteString(decision.RenderMarkdown(d.Result))
		sb.WriteString("\n")
	}

	return sb.String()
}

func optional(v *float64, format func(float64) string) string {
	if v == nil {
		return "-"
	}
	return format(*v)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// RenderSimulation renders a single simulation result with its decision,
// as used by the CLI.
func RenderSimulation(technologyName string, res domain.SimulationResult, d *decision.DecisionResult) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("## Simulation: %s\n\n", technologyName))
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Energy saving (kWh/yr) | %s |\n", formatQty(res.EnergySavingKwh)))
	sb.WriteString(fmt.Sprintf("| Water saving (m3/yr) | %s |\n", formatQty(res.WaterSavingM3)))
	sb.WriteString(fmt.Sprintf("| Waste saving (t/yr) | %s |\n", formatQty(res.WasteSavingTpy)))
	sb.WriteString(fmt.Sprintf("| Annual savings (USD) | %s |\n", FormatUSD(res.AnnualSavingsUSD)))
	sb.WriteString(fmt.Sprintf("| ROI | %s%% |\n", formatPct(res.ROIPct)))
	sb.WriteString(fmt.Sprintf("| Payback (years) | %s |\n", FormatPayback(res.PaybackYears)))
	sb.WriteString(fmt.Sprintf("| CO2 reduction (t/yr) | %s |\n", formatQty(res.CO2ReductionTpy)))
	sb.WriteString(fmt.Sprintf("| Confidence | %d%% |\n", res.ConfidencePct))
	sb.WriteString("\n")

	if d != nil {
		sb.WriteString(decision.RenderMarkdown(d))
	}
	return sb.String()
}

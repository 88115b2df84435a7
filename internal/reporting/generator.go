package reporting

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"inara-impact/internal/decision"
	"inara-impact/internal/domain"
	"inara-impact/internal/storage"
)

// ErrProjectNotFound is returned when the requested project does not exist.
var ErrProjectNotFound = errors.New("project not found")

// Generator produces reports from stored data.
type Generator struct {
	projectStore    storage.ProjectStore
	simulationStore storage.SimulationStore
	technologyStore storage.TechnologyStore
	evaluator       *decision.Evaluator
	now             func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(
	projectStore storage.ProjectStore,
	simulationStore storage.SimulationStore,
	technologyStore storage.TechnologyStore,
	evaluator *decision.Evaluator,
) *Generator {
	if evaluator == nil {
		evaluator = decision.NewEvaluator(decision.DefaultThresholds())
	}
	return &Generator{
		projectStore:    projectStore,
		simulationStore: simulationStore,
		technologyStore: technologyStore,
		evaluator:       evaluator,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate produces the impact report of a project.
// Access control is the caller's concern.
func (g *Generator) Generate(ctx context.Context, projectID string) (*Report, error) {
	project, err := g.projectStore.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", projectID, ErrProjectNotFound)
		}
		return nil, fmt.Errorf("load project: %w", err)
	}

	sims, err := g.simulationStore.GetByProjectID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load simulations: %w", err)
	}

	names, err := g.technologyNames(ctx, sims)
	if err != nil {
		return nil, err
	}

	rows, decisions := g.generateSimulationRows(sims, names)

	return &Report{
		GeneratedAt: g.now(),
		Project: ProjectSummary{
			ID:       project.ID,
			Name:     project.Name,
			Industry: project.Industry,
			Location: project.Location,
			Baseline: project.Baseline,
		},
		Thresholds:   g.evaluator.Thresholds(),
		Summary:      generateSummary(rows),
		Simulations:  rows,
		Technologies: generateTechnologyComparison(rows),
		Decisions:    decisions,
	}, nil
}

// technologyNames resolves display names; technologies removed since are shown by id.
func (g *Generator) technologyNames(ctx context.Context, sims []*domain.SimulationRecord) (map[string]string, error) {
	names := make(map[string]string)
	for _, s := range sims {
		if _, ok := names[s.TechnologyID]; ok {
			continue
		}
		t, err := g.technologyStore.GetByID(ctx, s.TechnologyID)
		switch {
		case err == nil:
			names[s.TechnologyID] = t.Name
		case errors.Is(err, storage.ErrNotFound):
			names[s.TechnologyID] = s.TechnologyID
		default:
			return nil, fmt.Errorf("load technology %s: %w", s.TechnologyID, err)
		}
	}
	return names, nil
}

// generateSimulationRows builds sorted rows and evaluates each against the gate.
func (g *Generator) generateSimulationRows(sims []*domain.SimulationRecord, names map[string]string) ([]SimulationRow, []DecisionSection) {
	rows := make([]SimulationRow, len(sims))
	for i, s := range sims {
		rows[i] = SimulationRow{
			SimulationID:     s.ID,
			TechnologyID:     s.TechnologyID,
			TechnologyName:   names[s.TechnologyID],
			CreatedAt:        s.CreatedAt,
			EnergySavingKwh:  s.EnergySavingKwh,
			WaterSavingM3:    s.WaterSavingM3,
			WasteSavingTpy:   s.WasteSavingTpy,
			AnnualSavingsUSD: s.AnnualSavingsUSD,
			ROIPct:           s.ROIPct,
			PaybackYears:     s.PaybackYears,
			CO2ReductionTpy:  s.CO2ReductionTpy,
			ConfidencePct:    s.ConfidencePct,
		}
	}

	// Sort by (created_at, simulation_id)
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.Before(rows[j].CreatedAt)
		}
		return rows[i].SimulationID < rows[j].SimulationID
	})

	decisions := make([]DecisionSection, len(rows))
	for i := range rows {
		result := g.evaluator.Evaluate(decision.DecisionInput{
			SimulationID:     rows[i].SimulationID,
			TechnologyID:     rows[i].TechnologyID,
			AnnualSavingsUSD: rows[i].AnnualSavingsUSD,
			ROIPct:           rows[i].ROIPct,
			PaybackYears:     rows[i].PaybackYears,
			ConfidencePct:    rows[i].ConfidencePct,
		})
		rows[i].Decision = result.Decision
		decisions[i] = DecisionSection{
			SimulationID:   rows[i].SimulationID,
			TechnologyName: rows[i].TechnologyName,
			Result:         result,
		}
	}
	return rows, decisions
}

// generateSummary totals the simulation rows.
func generateSummary(rows []SimulationRow) Summary {
	s := Summary{SimulationCount: len(rows)}
	if len(rows) == 0 {
		return s
	}

	techs := make(map[string]struct{})
	var roiSum, confSum float64
	best := -1
	for i, r := range rows {
		techs[r.TechnologyID] = struct{}{}
		s.TotalAnnualSavingsUSD += r.AnnualSavingsUSD
		s.TotalCO2ReductionTpy += r.CO2ReductionTpy
		roiSum += r.ROIPct
		confSum += float64(r.ConfidencePct)
		if r.Decision == decision.DecisionGO {
			s.GOCount++
		}
		// Ties keep the earliest simulation
		if best < 0 || r.ROIPct > rows[best].ROIPct {
			best = i
		}
	}

	s.TechnologyCount = len(techs)
	s.MeanROIPct = roiSum / float64(len(rows))
	s.MeanConfidencePct = confSum / float64(len(rows))
	s.BestSimulationID = rows[best].SimulationID
	return s
}

// generateTechnologyComparison groups rows by technology.
func generateTechnologyComparison(rows []SimulationRow) []TechnologyComparisonRow {
	groups := make(map[string]*TechnologyComparisonRow)
	var order []string
	roiSums := make(map[string]float64)
	savingSums := make(map[string]float64)

	for _, r := range rows {
		g, ok := groups[r.TechnologyID]
		if !ok {
			g = &TechnologyComparisonRow{TechnologyID: r.TechnologyID, TechnologyName: r.TechnologyName}
			groups[r.TechnologyID] = g
			order = append(order, r.TechnologyID)
		}
		g.Simulations++
		roiSums[r.TechnologyID] += r.ROIPct
		savingSums[r.TechnologyID] += r.AnnualSavingsUSD
		if r.PaybackYears != nil && (g.ShortestPaybackYrs == nil || *r.PaybackYears < *g.ShortestPaybackYrs) {
			v := *r.PaybackYears
			g.ShortestPaybackYrs = &v
		}
	}

	result := make([]TechnologyComparisonRow, 0, len(order))
	for _, id := range order {
		g := groups[id]
		g.MeanROIPct = roiSums[id] / float64(g.Simulations)
		g.MeanAnnualSavings = savingSums[id] / float64(g.Simulations)
		result = append(result, *g)
	}

	// Sort by (mean_roi desc, technology_id)
	sort.Slice(result, func(i, j int) bool {
		if result[i].MeanROIPct != result[j].MeanROIPct {
			return result[i].MeanROIPct > result[j].MeanROIPct
		}
		return result[i].TechnologyID < result[j].TechnologyID
	})
	return result
}

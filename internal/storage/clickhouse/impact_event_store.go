package clickhouse

import (
	"context"
	"fmt"

	"inara-impact/internal/domain"
	"inara-impact/internal/storage"
)

// ImpactEventStore implements storage.ImpactEventStore using ClickHouse.
type ImpactEventStore struct {
	conn *Conn
}

// NewImpactEventStore creates a new ImpactEventStore.
func NewImpactEventStore(conn *Conn) *ImpactEventStore {
	return &ImpactEventStore{conn: conn}
}

// Compile-time interface check.
var _ storage.ImpactEventStore = (*ImpactEventStore)(nil)

// Insert appends a simulation outcome. Returns ErrDuplicateKey if the simulation id exists.
func (s *ImpactEventStore) Insert(ctx context.Context, r *domain.SimulationRecord) error {
	if r == nil || r.ID == "" || r.TechnologyID == "" {
		return storage.ErrInvalidInput
	}

	// ReplacingMergeTree would collapse duplicates silently; keep append-only semantics.
	exists, err := s.exists(ctx, r.TechnologyID, r.ID)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return storage.ErrDuplicateKey
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO simulation_events (
			simulation_id, technology_id, project_id, user_id,
			energy_saving_kwh, water_saving_m3, waste_saving_tpy,
			annual_savings_usd, roi_pct, payback_years, co2_reduction_tpy,
			confidence_pct, created_at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	err = batch.Append(
		r.ID, r.TechnologyID, r.ProjectID, r.UserID,
		r.EnergySavingKwh, r.WaterSavingM3, r.WasteSavingTpy,
		r.AnnualSavingsUSD, r.ROIPct, r.PaybackYears, r.CO2ReductionTpy,
		uint8(r.ConfidencePct), r.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("append to batch: %w", err)
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("insert simulation event: %w", err)
	}
	return nil
}

// SummaryByTechnology aggregates all outcomes for a technology.
func (s *ImpactEventStore) SummaryByTechnology(ctx context.Context, technologyID string) (*domain.TechnologyImpactSummary, error) {
	query := `
		SELECT
			count(),
			avg(roi_pct),
			avg(confidence_pct),
			sum(annual_savings_usd),
			sum(co2_reduction_tpy),
			countIf(payback_years IS NOT NULL)
		FROM simulation_events FINAL
		WHERE technology_id = ?
	`

	var (
		count, withPayback      uint64
		meanROI, meanConfidence float64
		totalSavings, totalCO2  float64
	)
	row := s.conn.QueryRow(ctx, query, technologyID)
	if err := row.Scan(&count, &meanROI, &meanConfidence, &totalSavings, &totalCO2, &withPayback); err != nil {
		return nil, fmt.Errorf("summarize technology %s: %w", technologyID, err)
	}

	summary := &domain.TechnologyImpactSummary{TechnologyID: technologyID}
	if count == 0 {
		// avg over no rows is NaN
		return summary, nil
	}
	summary.Simulations = int(count)
	summary.MeanROIPct = meanROI
	summary.MeanConfidencePct = meanConfidence
	summary.TotalAnnualSavingsUSD = totalSavings
	summary.TotalCO2ReductionTpy = totalCO2
	summary.WithPayback = int(withPayback)
	return summary, nil
}

// exists checks whether a simulation id has already been logged.
func (s *ImpactEventStore) exists(ctx context.Context, technologyID, simulationID string) (bool, error) {
	var count uint64
	row := s.conn.QueryRow(ctx,
		`SELECT count() FROM simulation_events WHERE technology_id = ? AND simulation_id = ?`,
		technologyID, simulationID,
	)
	if err := row.Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"inara-impact/internal/domain"
	"inara-impact/internal/storage"
)

// SimulationStore implements storage.SimulationStore using PostgreSQL.
type SimulationStore struct {
	pool *Pool
}

// NewSimulationStore creates a new SimulationStore.
func NewSimulationStore(pool *Pool) *SimulationStore {
	return &SimulationStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SimulationStore = (*SimulationStore)(nil)

// simulationParams is the JSONB shape of the caller-supplied parameters.
type simulationParams struct {
	Tariffs      domain.Tariffs `json:"tariffs"`
	DeltaOpexUSD float64        `json:"deltaOpexUsd"`
}

const simulationColumns = `id, user_id, project_id, technology_id, baseline, params, fingerprint,
	energy_saving_kwh, water_saving_m3, waste_saving_tpy, annual_savings_usd,
	roi_pct, payback_years, co2_reduction_tpy, confidence_pct, created_at`

// Insert adds a new simulation record. Returns ErrDuplicateKey if id exists.
func (s *SimulationStore) Insert(ctx context.Context, r *domain.SimulationRecord) error {
	if r == nil || r.ID == "" || r.ProjectID == "" || r.TechnologyID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO simulations (` + simulationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, COALESCE($16, now()))
	`

	params := simulationParams{Tariffs: r.Tariffs, DeltaOpexUSD: r.DeltaOpexUSD}
	_, err := s.pool.Exec(ctx, query,
		r.ID,
		r.UserID,
		r.ProjectID,
		r.TechnologyID,
		r.Baseline,
		params,
		r.Fingerprint,
		r.EnergySavingKwh,
		r.WaterSavingM3,
		r.WasteSavingTpy,
		r.AnnualSavingsUSD,
		r.ROIPct,
		r.PaybackYears,
		r.CO2ReductionTpy,
		r.ConfidencePct,
		nullTime(r.CreatedAt),
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		if isForeignKeyError(err) {
			return fmt.Errorf("insert simulation: unknown project or technology: %w", storage.ErrInvalidInput)
		}
		return fmt.Errorf("insert simulation: %w", err)
	}
	return nil
}

// GetByID retrieves a simulation by id. Returns ErrNotFound if not exists.
func (s *SimulationStore) GetByID(ctx context.Context, id string) (*domain.SimulationRecord, error) {
	query := `SELECT ` + simulationColumns + ` FROM simulations WHERE id = $1`

	r, err := scanSimulation(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get simulation by id: %w", err)
	}
	return r, nil
}

// GetByProjectID retrieves all simulations of a project, ordered by created_at ASC.
func (s *SimulationStore) GetByProjectID(ctx context.Context, projectID string) ([]*domain.SimulationRecord, error) {
	query := `SELECT ` + simulationColumns + ` FROM simulations WHERE project_id = $1 ORDER BY created_at ASC, id ASC`

	rows, err := s.pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("get simulations by project: %w", err)
	}
	defer rows.Close()

	var result []*domain.SimulationRecord
	for rows.Next() {
		r, err := scanSimulation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan simulation: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate simulations: %w", err)
	}
	return result, nil
}

// scanSimulation scans a single row into a SimulationRecord.
func scanSimulation(row pgx.Row) (*domain.SimulationRecord, error) {
	var r domain.SimulationRecord
	var params simulationParams

	err := row.Scan(
		&r.ID,
		&r.UserID,
		&r.ProjectID,
		&r.TechnologyID,
		&r.Baseline,
		&params,
		&r.Fingerprint,
		&r.EnergySavingKwh,
		&r.WaterSavingM3,
		&r.WasteSavingTpy,
		&r.AnnualSavingsUSD,
		&r.ROIPct,
		&r.PaybackYears,
		&r.CO2ReductionTpy,
		&r.ConfidencePct,
		&r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	r.Tariffs = params.Tariffs
	r.DeltaOpexUSD = params.DeltaOpexUSD
	return &r, nil
}

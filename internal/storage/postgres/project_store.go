package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"inara-impact/internal/domain"
	"inara-impact/internal/storage"
)

// ProjectStore implements storage.ProjectStore using PostgreSQL.
type ProjectStore struct {
	pool *Pool
}

// NewProjectStore creates a new ProjectStore.
func NewProjectStore(pool *Pool) *ProjectStore {
	return &ProjectStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ProjectStore = (*ProjectStore)(nil)

const projectColumns = `id, user_id, name, industry, location,
	baseline_energy_kwh, baseline_water_m3, baseline_waste_tpy, annual_budget_usd, created_at`

// Insert adds a new project. Returns ErrDuplicateKey if id exists.
func (s *ProjectStore) Insert(ctx context.Context, p *domain.Project) error {
	if p == nil || p.ID == "" || p.UserID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO projects (` + projectColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, COALESCE($10, now()))
	`

	_, err := s.pool.Exec(ctx, query,
		p.ID,
		p.UserID,
		p.Name,
		p.Industry,
		p.Location,
		p.EnergyKwh,
		p.WaterM3,
		p.WasteTpy,
		p.BudgetUSD,
		nullTime(p.CreatedAt),
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		if isForeignKeyError(err) {
			return fmt.Errorf("insert project: unknown owner %s: %w", p.UserID, storage.ErrInvalidInput)
		}
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

// GetByID retrieves a project by id. Returns ErrNotFound if not exists.
func (s *ProjectStore) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`

	p, err := scanProject(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get project by id: %w", err)
	}
	return p, nil
}

// GetByOwner retrieves all projects of a user, ordered by created_at ASC.
func (s *ProjectStore) GetByOwner(ctx context.Context, userID string) ([]*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE user_id = $1 ORDER BY created_at ASC, id ASC`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("get projects by owner: %w", err)
	}
	defer rows.Close()

	var result []*domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}
	return result, nil
}

// scanProject scans a single row into a Project.
func scanProject(row pgx.Row) (*domain.Project, error) {
	var p domain.Project
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Name,
		&p.Industry,
		&p.Location,
		&p.EnergyKwh,
		&p.WaterM3,
		&p.WasteTpy,
		&p.BudgetUSD,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

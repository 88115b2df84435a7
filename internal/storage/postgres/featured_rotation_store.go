package postgres

import (
	"context"
	"fmt"
	"time"

	"inara-impact/internal/domain"
	"inara-impact/internal/storage"
)

// FeaturedRotationStore implements storage.FeaturedRotationStore using PostgreSQL.
type FeaturedRotationStore struct {
	pool *Pool
}

// NewFeaturedRotationStore creates a new FeaturedRotationStore.
func NewFeaturedRotationStore(pool *Pool) *FeaturedRotationStore {
	return &FeaturedRotationStore{pool: pool}
}

// Compile-time interface check.
var _ storage.FeaturedRotationStore = (*FeaturedRotationStore)(nil)

// Insert adds a new rotation. Returns ErrDuplicateKey if id exists.
func (s *FeaturedRotationStore) Insert(ctx context.Context, r *domain.FeaturedRotation) error {
	if r == nil || r.ID == "" || r.TechnologyID == "" || r.EndDate.Before(r.StartDate) {
		return storage.ErrInvalidInput
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO featured_rotations (id, technology_id, start_date, end_date) VALUES ($1, $2, $3, $4)`,
		r.ID, r.TechnologyID, r.StartDate, r.EndDate,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		if isForeignKeyError(err) {
			return fmt.Errorf("insert featured rotation: unknown technology %s: %w", r.TechnologyID, storage.ErrInvalidInput)
		}
		return fmt.Errorf("insert featured rotation: %w", err)
	}
	return nil
}

// ActiveAt retrieves the rotation covering t. Earliest start wins. Returns ErrNotFound if none.
func (s *FeaturedRotationStore) ActiveAt(ctx context.Context, t time.Time) (*domain.FeaturedRotation, error) {
	query := `
		SELECT id, technology_id, start_date, end_date
		FROM featured_rotations
		WHERE start_date <= $1 AND end_date >= $1
		ORDER BY start_date ASC, id ASC
		LIMIT 1
	`

	var r domain.FeaturedRotation
	err := s.pool.QueryRow(ctx, query, t).Scan(&r.ID, &r.TechnologyID, &r.StartDate, &r.EndDate)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get active featured rotation: %w", err)
	}
	return &r, nil
}

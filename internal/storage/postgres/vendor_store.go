package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"inara-impact/internal/domain"
	"inara-impact/internal/storage"
)

// VendorStore implements storage.VendorStore using PostgreSQL.
type VendorStore struct {
	pool *Pool
}

// NewVendorStore creates a new VendorStore.
func NewVendorStore(pool *Pool) *VendorStore {
	return &VendorStore{pool: pool}
}

// Compile-time interface check.
var _ storage.VendorStore = (*VendorStore)(nil)

const vendorColumns = `id, name, region, contact_email, website, certification, verified, created_at`

// Insert adds a new vendor. Returns ErrDuplicateKey if id exists.
func (s *VendorStore) Insert(ctx context.Context, v *domain.Vendor) error {
	if v == nil || v.ID == "" || v.Name == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO vendors (` + vendorColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, COALESCE($8, now()))
	`

	_, err := s.pool.Exec(ctx, query,
		v.ID,
		v.Name,
		v.Region,
		v.ContactEmail,
		v.Website,
		v.Certification,
		v.Verified,
		nullTime(v.CreatedAt),
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert vendor: %w", err)
	}
	return nil
}

// GetByID retrieves a vendor by id. Returns ErrNotFound if not exists.
func (s *VendorStore) GetByID(ctx context.Context, id string) (*domain.Vendor, error) {
	query := `SELECT ` + vendorColumns + ` FROM vendors WHERE id = $1`

	v, err := scanVendor(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get vendor by id: %w", err)
	}
	return v, nil
}

// GetByIDs retrieves the vendors with the given ids, ordered by name ASC.
func (s *VendorStore) GetByIDs(ctx context.Context, ids []string) ([]*domain.Vendor, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT ` + vendorColumns + ` FROM vendors WHERE id = ANY($1) ORDER BY name ASC, id ASC`

	rows, err := s.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("get vendors by ids: %w", err)
	}
	defer rows.Close()

	var result []*domain.Vendor
	for rows.Next() {
		v, err := scanVendor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan vendor: %w", err)
		}
		result = append(result, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vendors: %w", err)
	}
	return result, nil
}

// scanVendor scans a single row into a Vendor.
func scanVendor(row pgx.Row) (*domain.Vendor, error) {
	var v domain.Vendor
	err := row.Scan(
		&v.ID,
		&v.Name,
		&v.Region,
		&v.ContactEmail,
		&v.Website,
		&v.Certification,
		&v.Verified,
		&v.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

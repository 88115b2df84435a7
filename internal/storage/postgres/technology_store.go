package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"inara-impact/internal/domain"
	"inara-impact/internal/storage"
)

// TechnologyStore implements storage.TechnologyStore using PostgreSQL.
type TechnologyStore struct {
	pool *Pool
}

// NewTechnologyStore creates a new TechnologyStore.
func NewTechnologyStore(pool *Pool) *TechnologyStore {
	return &TechnologyStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TechnologyStore = (*TechnologyStore)(nil)

// Vendor links are aggregated so a technology round-trips in one row.
const technologySelect = `
	SELECT t.id, t.name, t.category, t.type, t.short_desc, t.long_desc, t.tags,
		t.capex_min, t.capex_max, t.opex_min, t.opex_max, t.payback_years,
		t.benefit_energy_pct, t.benefit_water_pct, t.benefit_waste_pct, t.benefit_co2_tpy,
		t.approved, t.submitted_by, t.created_at,
		COALESCE(ARRAY(SELECT tv.vendor_id FROM technology_vendors tv
			WHERE tv.technology_id = t.id ORDER BY tv.vendor_id), '{}')
	FROM technologies t
`

// Insert adds a new technology with its vendor links. Returns ErrDuplicateKey if id exists.
func (s *TechnologyStore) Insert(ctx context.Context, t *domain.Technology) error {
	if t == nil || t.ID == "" || t.Name == "" {
		return storage.ErrInvalidInput
	}

	return s.pool.inTx(ctx, func(tx pgx.Tx) error {
		query := `
			INSERT INTO technologies (
				id, name, category, type, short_desc, long_desc, tags,
				capex_min, capex_max, opex_min, opex_max, payback_years,
				benefit_energy_pct, benefit_water_pct, benefit_waste_pct, benefit_co2_tpy,
				approved, submitted_by, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, COALESCE($19, now()))
		`

		_, err := tx.Exec(ctx, query,
			t.ID, t.Name, t.Category, t.Type, t.ShortDesc, t.LongDesc, t.Tags,
			t.CapexMin, t.CapexMax, t.OpexMin, t.OpexMax, t.PaybackYears,
			t.BenefitEnergyPct, t.BenefitWaterPct, t.BenefitWastePct, t.CO2Tpy,
			t.Approved, t.SubmittedBy, nullTime(t.CreatedAt),
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert technology: %w", err)
		}

		for _, vendorID := range t.VendorIDs {
			_, err := tx.Exec(ctx,
				`INSERT INTO technology_vendors (technology_id, vendor_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
				t.ID, vendorID,
			)
			if err != nil {
				if isForeignKeyError(err) {
					return fmt.Errorf("link vendor %s: %w", vendorID, storage.ErrInvalidInput)
				}
				return fmt.Errorf("link vendor %s: %w", vendorID, err)
			}
		}
		return nil
	})
}

// GetByID retrieves a technology by id. Returns ErrNotFound if not exists.
func (s *TechnologyStore) GetByID(ctx context.Context, id string) (*domain.Technology, error) {
	t, err := scanTechnology(s.pool.QueryRow(ctx, technologySelect+` WHERE t.id = $1`, id))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get technology by id: %w", err)
	}
	return t, nil
}

// List retrieves technologies matching the filter, ordered by created_at DESC.
func (s *TechnologyStore) List(ctx context.Context, filter domain.TechnologyFilter) ([]*domain.Technology, error) {
	var (
		conds []string
		args  []any
	)
	if filter.ApprovedOnly {
		conds = append(conds, "t.approved")
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		conds = append(conds, fmt.Sprintf("t.category = $%d", len(args)))
	}
	if filter.Query != "" {
		args = append(args, "%"+escapeLike(filter.Query)+"%")
		conds = append(conds, fmt.Sprintf("(t.name ILIKE $%d OR t.tags ILIKE $%d)", len(args), len(args)))
	}

	query := technologySelect
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY t.created_at DESC, t.id ASC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list technologies: %w", err)
	}
	defer rows.Close()

	var result []*domain.Technology
	for rows.Next() {
		t, err := scanTechnology(rows)
		if err != nil {
			return nil, fmt.Errorf("scan technology: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate technologies: %w", err)
	}
	return result, nil
}

// SetApproved updates the approval flag. Returns ErrNotFound if not exists.
func (s *TechnologyStore) SetApproved(ctx context.Context, id string, approved bool) error {
	tag, err := s.pool.Exec(ctx, `UPDATE technologies SET approved = $2 WHERE id = $1`, id, approved)
	if err != nil {
		return fmt.Errorf("set technology approval: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// FirstApproved retrieves the oldest approved technology. Returns ErrNotFound if none.
func (s *TechnologyStore) FirstApproved(ctx context.Context) (*domain.Technology, error) {
	query := technologySelect + ` WHERE t.approved ORDER BY t.created_at ASC, t.id ASC LIMIT 1`

	t, err := scanTechnology(s.pool.QueryRow(ctx, query))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get first approved technology: %w", err)
	}
	return t, nil
}

// scanTechnology scans a single row into a Technology.
func scanTechnology(row pgx.Row) (*domain.Technology, error) {
	var t domain.Technology
	err := row.Scan(
		&t.ID, &t.Name, &t.Category, &t.Type, &t.ShortDesc, &t.LongDesc, &t.Tags,
		&t.CapexMin, &t.CapexMax, &t.OpexMin, &t.OpexMax, &t.PaybackYears,
		&t.BenefitEnergyPct, &t.BenefitWaterPct, &t.BenefitWastePct, &t.CO2Tpy,
		&t.Approved, &t.SubmittedBy, &t.CreatedAt,
		&t.VendorIDs,
	)
	if err != nil {
		return nil, err
	}
	if len(t.VendorIDs) == 0 {
		t.VendorIDs = nil
	}
	return &t, nil
}

// escapeLike escapes LIKE wildcards so user queries match literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

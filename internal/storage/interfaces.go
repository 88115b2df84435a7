package storage

import (
	"context"
	"time"

	"inara-impact/internal/domain"
)

// UserStore provides access to users storage.
type UserStore interface {
	// Insert adds a new user. Returns ErrDuplicateKey if id or email exists.
	Insert(ctx context.Context, u *domain.User) error

	// GetByID retrieves a user by id. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by email (case-insensitive). Returns ErrNotFound if not exists.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// ProjectStore provides access to projects storage.
type ProjectStore interface {
	// Insert adds a new project. Returns ErrDuplicateKey if id exists.
	Insert(ctx context.Context, p *domain.Project) error

	// GetByID retrieves a project by id. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id string) (*domain.Project, error)

	// GetByOwner retrieves all projects of a user, ordered by created_at ASC.
	GetByOwner(ctx context.Context, userID string) ([]*domain.Project, error)
}

// VendorStore provides access to vendors storage.
type VendorStore interface {
	// Insert adds a new vendor. Returns ErrDuplicateKey if id exists.
	Insert(ctx context.Context, v *domain.Vendor) error

	// GetByID retrieves a vendor by id. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id string) (*domain.Vendor, error)

	// GetByIDs retrieves the vendors with the given ids, ordered by name ASC.
	// Unknown ids are skipped.
	GetByIDs(ctx context.Context, ids []string) ([]*domain.Vendor, error)
}

// TechnologyStore provides access to technologies storage.
type TechnologyStore interface {
	// Insert adds a new technology with its vendor links. Returns ErrDuplicateKey if id exists.
	Insert(ctx context.Context, t *domain.Technology) error

	// GetByID retrieves a technology by id regardless of approval. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id string) (*domain.Technology, error)

	// List retrieves technologies matching the filter, ordered by created_at DESC.
	List(ctx context.Context, filter domain.TechnologyFilter) ([]*domain.Technology, error)

	// SetApproved updates the approval flag. Returns ErrNotFound if not exists.
	SetApproved(ctx context.Context, id string, approved bool) error

	// FirstApproved retrieves the oldest approved technology. Returns ErrNotFound if none.
	FirstApproved(ctx context.Context) (*domain.Technology, error)
}

// SimulationStore provides access to simulations storage. Records are append-only.
type SimulationStore interface {
	// Insert adds a new simulation record. Returns ErrDuplicateKey if id exists.
	Insert(ctx context.Context, r *domain.SimulationRecord) error

	// GetByID retrieves a simulation by id. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id string) (*domain.SimulationRecord, error)

	// GetByProjectID retrieves all simulations of a project, ordered by created_at ASC.
	GetByProjectID(ctx context.Context, projectID string) ([]*domain.SimulationRecord, error)
}

// FeaturedRotationStore provides access to featured_rotations storage.
type FeaturedRotationStore interface {
	// Insert adds a new rotation. Returns ErrDuplicateKey if id exists.
	Insert(ctx context.Context, r *domain.FeaturedRotation) error

	// ActiveAt retrieves the rotation covering t (start <= t <= end).
	// The earliest start wins when rotations overlap. Returns ErrNotFound if none.
	ActiveAt(ctx context.Context, t time.Time) (*domain.FeaturedRotation, error)
}

// ImpactEventStore is the analytical log of simulation outcomes.
type ImpactEventStore interface {
	// Insert appends a simulation outcome. Returns ErrDuplicateKey if the simulation id exists.
	Insert(ctx context.Context, r *domain.SimulationRecord) error

	// SummaryByTechnology aggregates all outcomes for a technology.
	// A technology without outcomes yields a zero summary, not an error.
	SummaryByTechnology(ctx context.Context, technologyID string) (*domain.TechnologyImpactSummary, error)
}

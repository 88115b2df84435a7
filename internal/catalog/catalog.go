// Package catalog manages the technology catalog and its approval workflow.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"inara-impact/internal/domain"
	"inara-impact/internal/observability"
	"inara-impact/internal/simulation"
	"inara-impact/internal/storage"
)

// Catalog errors share the boundary sentinels of the simulation runner
// so that callers map them to responses in one place.
var (
	ErrUnknownTechnology = simulation.ErrUnknownTechnology
	ErrUnauthorized      = simulation.ErrUnauthorized
	ErrForbidden         = simulation.ErrForbidden
	ErrInvalidInput      = simulation.ErrInvalidInput
	ErrMissingInput      = simulation.ErrMissingRequiredInput
)

// Service exposes catalog operations.
type Service struct {
	technologies storage.TechnologyStore
	vendors      storage.VendorStore
	rotations    storage.FeaturedRotationStore
	metrics      *observability.Metrics
	logger       zerolog.Logger
	now          func() time.Time
}

// Options configures a Service. Metrics, Logger and Clock are optional.
type Options struct {
	Technologies storage.TechnologyStore
	Vendors      storage.VendorStore
	Rotations    storage.FeaturedRotationStore
	Metrics      *observability.Metrics
	Logger       *zerolog.Logger
	Clock        func() time.Time
}

// NewService creates a catalog service.
func NewService(opts Options) *Service {
	s := &Service{
		technologies: opts.Technologies,
		vendors:      opts.Vendors,
		rotations:    opts.Rotations,
		metrics:      opts.Metrics,
		logger:       zerolog.Nop(),
		now:          opts.Clock,
	}
	if opts.Logger != nil {
		s.logger = opts.Logger.With().Str("component", "catalog").Logger()
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	return s
}

// List returns approved technologies, newest first, with vendor details.
// category matches exactly; q matches name or tags case-insensitively.
func (s *Service) List(ctx context.Context, category, q string) ([]*domain.Technology, error) {
	techs, err := s.technologies.List(ctx, domain.TechnologyFilter{
		ApprovedOnly: true,
		Category:     strings.TrimSpace(category),
		Query:        strings.TrimSpace(q),
	})
	if err != nil {
		return nil, fmt.Errorf("list technologies: %w", err)
	}
	for _, t := range techs {
		if err := s.attachVendors(ctx, t); err != nil {
			return nil, err
		}
	}
	return techs, nil
}

// Get returns an approved technology. Unapproved technologies are reported as unknown.
func (s *Service) Get(ctx context.Context, id string) (*domain.Technology, error) {
	t, err := s.technologies.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("technology %s: %w", id, ErrUnknownTechnology)
		}
		return nil, fmt.Errorf("get technology: %w", err)
	}
	if !t.Approved {
		return nil, fmt.Errorf("technology %s: %w", id, ErrUnknownTechnology)
	}
	if err := s.attachVendors(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Submit stores a provider's technology unapproved, linked to vendorIDs.
// Only PROVIDER principals may submit.
func (s *Service) Submit(ctx context.Context, principal *domain.Principal, t *domain.Technology, vendorIDs []string) (*domain.Technology, error) {
	if principal == nil {
		return nil, ErrUnauthorized
	}
	if principal.Role != domain.RoleProvider {
		return nil, fmt.Errorf("submit technology requires %s: %w", domain.RoleProvider, ErrForbidden)
	}
	if t == nil {
		return nil, fmt.Errorf("technology: %w", ErrMissingInput)
	}
	if err := ValidateTechnology(t); err != nil {
		return nil, err
	}

	vendorIDs = uniq(vendorIDs)
	if len(vendorIDs) > 0 {
		found, err := s.vendors.GetByIDs(ctx, vendorIDs)
		if err != nil {
			return nil, fmt.Errorf("load vendors: %w", err)
		}
		if len(found) != len(vendorIDs) {
			return nil, fmt.Errorf("unknown vendor in %v: %w", vendorIDs, ErrInvalidInput)
		}
	}

	submitted := *t
	if submitted.ID == "" {
		submitted.ID = uuid.NewString()
	}
	submitted.Approved = false
	submitted.SubmittedBy = principal.UserID
	submitted.VendorIDs = vendorIDs
	submitted.Vendors = nil
	submitted.CreatedAt = s.now()

	if err := s.technologies.Insert(ctx, &submitted); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			return nil, fmt.Errorf("technology %s already exists: %w", submitted.ID, ErrInvalidInput)
		}
		return nil, fmt.Errorf("insert technology: %w", err)
	}

	s.metrics.RecordTechnologySubmitted()
	s.logger.Info().Str("technology_id", submitted.ID).Str("provider", principal.UserID).Msg("technology submitted")
	return &submitted, nil
}

// Approve marks a technology as approved. Only ADMIN principals may approve.
func (s *Service) Approve(ctx context.Context, principal *domain.Principal, id string) (*domain.Technology, error) {
	if principal == nil {
		return nil, ErrUnauthorized
	}
	if !principal.IsAdmin() {
		return nil, fmt.Errorf("approve technology requires %s: %w", domain.RoleAdmin, ErrForbidden)
	}
	if id == "" {
		return nil, fmt.Errorf("technologyId: %w", ErrMissingInput)
	}

	if err := s.technologies.SetApproved(ctx, id, true); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("technology %s: %w", id, ErrUnknownTechnology)
		}
		return nil, fmt.Errorf("approve technology: %w", err)
	}

	t, err := s.technologies.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reload technology: %w", err)
	}

	s.metrics.RecordTechnologyApproved()
	s.logger.Info().Str("technology_id", id).Str("admin", principal.UserID).Msg("technology approved")
	return t, nil
}

// ScheduleFeatured features a technology for [start, end]. Only ADMIN principals may schedule.
func (s *Service) ScheduleFeatured(ctx context.Context, principal *domain.Principal, technologyID string, start, end time.Time) (*domain.FeaturedRotation, error) {
	if principal == nil {
		return nil, ErrUnauthorized
	}
	if !principal.IsAdmin() {
		return nil, fmt.Errorf("schedule featured requires %s: %w", domain.RoleAdmin, ErrForbidden)
	}
	if technologyID == "" {
		return nil, fmt.Errorf("technologyId: %w", ErrMissingInput)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("endDate before startDate: %w", ErrInvalidInput)
	}
	if _, err := s.technologies.GetByID(ctx, technologyID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("technology %s: %w", technologyID, ErrUnknownTechnology)
		}
		return nil, fmt.Errorf("get technology: %w", err)
	}

	r := &domain.FeaturedRotation{
		ID:           uuid.NewString(),
		TechnologyID: technologyID,
		StartDate:    start.UTC(),
		EndDate:      end.UTC(),
	}
	if err := s.rotations.Insert(ctx, r); err != nil {
		return nil, fmt.Errorf("insert featured rotation: %w", err)
	}
	return r, nil
}

// Featured returns the technology of the rotation covering now if it is approved,
// otherwise the oldest approved technology. Returns storage.ErrNotFound if none is approved.
func (s *Service) Featured(ctx context.Context, now time.Time) (*domain.Technology, error) {
	rotation, err := s.rotations.ActiveAt(ctx, now)
	switch {
	case err == nil:
		t, err := s.technologies.GetByID(ctx, rotation.TechnologyID)
		if err == nil && t.Approved {
			if err := s.attachVendors(ctx, t); err != nil {
				return nil, err
			}
			return t, nil
		}
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("get featured technology: %w", err)
		}
	case !errors.Is(err, storage.ErrNotFound):
		return nil, fmt.Errorf("get active rotation: %w", err)
	}

	t, err := s.technologies.FirstApproved(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("no approved technology: %w", storage.ErrNotFound)
		}
		return nil, fmt.Errorf("get first approved technology: %w", err)
	}
	if err := s.attachVendors(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) attachVendors(ctx context.Context, t *domain.Technology) error {
	if len(t.VendorIDs) == 0 || s.vendors == nil {
		return nil
	}
	vendors, err := s.vendors.GetByIDs(ctx, t.VendorIDs)
	if err != nil {
		return fmt.Errorf("load vendors of %s: %w", t.ID, err)
	}
	t.Vendors = make([]domain.Vendor, 0, len(vendors))
	for _, v := range vendors {
		t.Vendors = append(t.Vendors, *v)
	}
	return nil
}

// ValidateTechnology checks the fields a submission must carry and that
// every coefficient is finite, benefit fractions lie in [0,1] and costs are non-negative.
func ValidateTechnology(t *domain.Technology) error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("name: %w", ErrMissingInput)
	}
	if strings.TrimSpace(t.Category) == "" {
		return fmt.Errorf("category: %w", ErrMissingInput)
	}

	fractions := map[string]*float64{
		"benefitEnergyPct": t.BenefitEnergyPct,
		"benefitWaterPct":  t.BenefitWaterPct,
		"benefitWastePct":  t.BenefitWastePct,
	}
	for _, name := range []string{"benefitEnergyPct", "benefitWaterPct", "benefitWastePct"} {
		v := fractions[name]
		if v == nil {
			continue
		}
		if math.IsNaN(*v) || *v < 0 || *v > 1 {
			return fmt.Errorf("%s must be within [0,1], got %g: %w", name, *v, ErrInvalidInput)
		}
	}

	amounts := []struct {
		name string
		v    *float64
	}{
		{"capexMin", t.CapexMin},
		{"capexMax", t.CapexMax},
		{"opexMin", t.OpexMin},
		{"opexMax", t.OpexMax},
		{"paybackYears", t.PaybackYears},
		{"benefitCo2Tpy", t.CO2Tpy},
	}
	for _, a := range amounts {
		if a.v == nil {
			continue
		}
		if math.IsNaN(*a.v) || math.IsInf(*a.v, 0) || *a.v < 0 {
			return fmt.Errorf("%s must be a non-negative number, got %g: %w", a.name, *a.v, ErrInvalidInput)
		}
	}

	if t.CapexMin != nil && t.CapexMax != nil && *t.CapexMin > *t.CapexMax {
		return fmt.Errorf("capexMin %g exceeds capexMax %g: %w", *t.CapexMin, *t.CapexMax, ErrInvalidInput)
	}
	return nil
}

func uniq(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// Package projects manages consumer projects and their simulation history.
package projects

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"inara-impact/internal/domain"
	"inara-impact/internal/simulation"
	"inara-impact/internal/storage"
)

var (
	ErrUnknownProject = simulation.ErrUnknownProject
	ErrUnauthorized   = simulation.ErrUnauthorized
	ErrForbidden      = simulation.ErrForbidden
	ErrMissingInput   = simulation.ErrMissingRequiredInput
	ErrInvalidInput   = simulation.ErrInvalidInput
)

// CreateRequest holds the fields of a new project.
type CreateRequest struct {
	Name     string `json:"name"`
	Industry string `json:"industry,omitempty"`
	Location string `json:"location,omitempty"`

	domain.Baseline
}

// Service exposes project operations.
type Service struct {
	projects    storage.ProjectStore
	simulations storage.SimulationStore
	logger      zerolog.Logger
	now         func() time.Time
}

// NewService creates a project service. logger may be nil.
func NewService(projects storage.ProjectStore, simulations storage.SimulationStore, logger *zerolog.Logger) *Service {
	s := &Service{
		projects:    projects,
		simulations: simulations,
		logger:      zerolog.Nop(),
		now:         func() time.Time { return time.Now().UTC() },
	}
	if logger != nil {
		s.logger = logger.With().Str("component", "projects").Logger()
	}
	return s
}

// WithClock overrides the creation timestamp source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Create stores a project owned by principal.
func (s *Service) Create(ctx context.Context, principal *domain.Principal, req CreateRequest) (*domain.Project, error) {
	if principal == nil {
		return nil, ErrUnauthorized
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("name: %w", ErrMissingInput)
	}
	if err := req.Baseline.Validate(); err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrInvalidInput)
	}

	p := &domain.Project{
		ID:        uuid.NewString(),
		UserID:    principal.UserID,
		Name:      name,
		Industry:  strings.TrimSpace(req.Industry),
		Location:  strings.TrimSpace(req.Location),
		Baseline:  req.Baseline,
		CreatedAt: s.now(),
	}
	if err := s.projects.Insert(ctx, p); err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}

	s.logger.Info().Str("project_id", p.ID).Str("user_id", p.UserID).Msg("project created")
	return p, nil
}

// Get returns a project with its simulations. Only the owner or an ADMIN may read it.
func (s *Service) Get(ctx context.Context, principal *domain.Principal, id string) (*domain.Project, error) {
	p, err := s.authorized(ctx, principal, id)
	if err != nil {
		return nil, err
	}

	sims, err := s.simulations.GetByProjectID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load simulations: %w", err)
	}
	p.Simulations = make([]domain.SimulationRecord, 0, len(sims))
	for _, r := range sims {
		p.Simulations = append(p.Simulations, *r)
	}
	return p, nil
}

// Simulations returns a project's simulations, oldest first.
func (s *Service) Simulations(ctx context.Context, principal *domain.Principal, id string) ([]*domain.SimulationRecord, error) {
	if _, err := s.authorized(ctx, principal, id); err != nil {
		return nil, err
	}
	sims, err := s.simulations.GetByProjectID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load simulations: %w", err)
	}
	return sims, nil
}

// List returns the principal's own projects, oldest first.
func (s *Service) List(ctx context.Context, principal *domain.Principal) ([]*domain.Project, error) {
	if principal == nil {
		return nil, ErrUnauthorized
	}
	ps, err := s.projects.GetByOwner(ctx, principal.UserID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return ps, nil
}

func (s *Service) authorized(ctx context.Context, principal *domain.Principal, id string) (*domain.Project, error) {
	if principal == nil {
		return nil, ErrUnauthorized
	}
	p, err := s.projects.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("project %s: %w", id, ErrUnknownProject)
		}
		return nil, fmt.Errorf("load project: %w", err)
	}
	if !principal.CanAccessProject(p) {
		return nil, fmt.Errorf("project %s: %w", id, ErrForbidden)
	}
	return p, nil
}

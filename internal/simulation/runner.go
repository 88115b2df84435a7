package simulation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"inara-impact/internal/domain"
	"inara-impact/internal/idhash"
	"inara-impact/internal/observability"
	"inara-impact/internal/storage"
)

// Publisher receives every persisted simulation, e.g. the live feed.
type Publisher interface {
	Publish(r *domain.SimulationRecord)
}

// Request is a caller's ask to simulate a technology against a project.
type Request struct {
	ProjectID    string           `json:"projectId"`
	TechnologyID string           `json:"technologyId"`
	Baseline     *domain.Baseline `json:"baseline,omitempty"` // overrides the project baseline
	Tariffs      *domain.Tariffs  `json:"tariffs"`
	DeltaOpexUSD float64          `json:"deltaOpex,omitempty"`
}

// Runner validates requests, runs the engine and persists the outcome.
type Runner struct {
	technologyStore storage.TechnologyStore
	projectStore    storage.ProjectStore
	simulationStore storage.SimulationStore
	impactStore     storage.ImpactEventStore
	publisher       Publisher
	metrics         *observability.Metrics
	logger          zerolog.Logger
	now             func() time.Time
	newID           func() string
}

// RunnerOptions contains configuration for creating a Runner.
// ImpactStore, Publisher and Metrics are optional.
type RunnerOptions struct {
	TechnologyStore storage.TechnologyStore
	ProjectStore    storage.ProjectStore
	SimulationStore storage.SimulationStore
	ImpactStore     storage.ImpactEventStore
	Publisher       Publisher
	Metrics         *observability.Metrics
	Logger          *zerolog.Logger
	Clock           func() time.Time
	NewID           func() string
}

// NewRunner creates a simulation runner.
func NewRunner(opts RunnerOptions) *Runner {
	r := &Runner{
		technologyStore: opts.TechnologyStore,
		projectStore:    opts.ProjectStore,
		simulationStore: opts.SimulationStore,
		impactStore:     opts.ImpactStore,
		publisher:       opts.Publisher,
		metrics:         opts.Metrics,
		logger:          zerolog.Nop(),
		now:             opts.Clock,
		newID:           opts.NewID,
	}
	if opts.Logger != nil {
		r.logger = opts.Logger.With().Str("component", "runner").Logger()
	}
	if r.now == nil {
		r.now = func() time.Time { return time.Now().UTC() }
	}
	if r.newID == nil {
		r.newID = func() string { return uuid.NewString() }
	}
	return r
}

// Run executes a simulation on behalf of principal.
// Steps:
//  1. Require a principal
//  2. Require project, technology and tariffs
//  3. Load technology, enforce the approval gate
//  4. Load project, enforce ownership
//  5. Resolve and validate the baseline
//  6. Simulate, fingerprint and build the record
//  7. Persist, then log analytics and publish best-effort
func (r *Runner) Run(ctx context.Context, principal *domain.Principal, req Request) (*domain.SimulationRecord, error) {
	rec, err := r.run(ctx, principal, req)
	if err != nil {
		r.metrics.RecordSimulationError(ErrorKind(err))
		return nil, err
	}
	return rec, nil
}

func (r *Runner) run(ctx context.Context, principal *domain.Principal, req Request) (*domain.SimulationRecord, error) {
	// 1. Require a principal
	if principal == nil || principal.UserID == "" {
		return nil, ErrUnauthorized
	}

	// 2. Require project, technology and tariffs
	switch {
	case req.TechnologyID == "":
		return nil, fmt.Errorf("technologyId: %w", ErrMissingRequiredInput)
	case req.ProjectID == "":
		return nil, fmt.Errorf("projectId: %w", ErrMissingRequiredInput)
	case req.Tariffs == nil:
		return nil, fmt.Errorf("tariffs: %w", ErrMissingRequiredInput)
	}
	if err := validateTariffs(*req.Tariffs, req.DeltaOpexUSD); err != nil {
		return nil, err
	}

	// 3. Load technology, enforce the approval gate
	tech, err := r.technologyStore.GetByID(ctx, req.TechnologyID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("technology %s: %w", req.TechnologyID, ErrUnknownTechnology)
		}
		return nil, fmt.Errorf("load technology: %w", err)
	}
	if !tech.Approved {
		return nil, fmt.Errorf("technology %s: %w", req.TechnologyID, ErrNotApproved)
	}

	// 4. Load project, enforce ownership
	project, err := r.projectStore.GetByID(ctx, req.ProjectID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("project %s: %w", req.ProjectID, ErrUnknownProject)
		}
		return nil, fmt.Errorf("load project: %w", err)
	}
	if !principal.CanAccessProject(project) {
		return nil, fmt.Errorf("project %s: %w", req.ProjectID, ErrForbidden)
	}

	// 5. Resolve and validate the baseline
	baseline := project.Baseline
	if req.Baseline != nil {
		baseline = *req.Baseline
	}
	if err := baseline.Validate(); err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrInvalidInput)
	}

	// 6. Simulate, fingerprint and build the record
	in := Input{
		Baseline:     baseline,
		Technology:   tech.TechnologyCoefficients,
		Tariffs:      *req.Tariffs,
		DeltaOpexUSD: req.DeltaOpexUSD,
	}
	result := Simulate(in)
	if err := validateResult(result); err != nil {
		return nil, err
	}
	rec := &domain.SimulationRecord{
		ID:               r.newID(),
		UserID:           principal.UserID,
		ProjectID:        project.ID,
		TechnologyID:     tech.ID,
		Baseline:         baseline,
		Tariffs:          in.Tariffs,
		DeltaOpexUSD:     in.DeltaOpexUSD,
		Fingerprint:      idhash.ComputeInputFingerprint(in.Baseline, in.Technology, in.Tariffs, in.DeltaOpexUSD),
		SimulationResult: result,
		CreatedAt:        r.now(),
	}

	// 7. Persist, then log analytics and publish best-effort
	if err := r.simulationStore.Insert(ctx, rec); err != nil {
		return nil, fmt.Errorf("persist simulation: %w", err)
	}

	if r.impactStore != nil {
		if err := r.impactStore.Insert(ctx, rec); err != nil {
			r.metrics.RecordAnalyticsFailure()
			r.logger.Warn().Err(err).Str("simulation_id", rec.ID).Msg("impact event not recorded")
		}
	}
	if r.publisher != nil {
		r.publisher.Publish(rec)
	}
	r.metrics.RecordSimulation(rec.HasPayback(), rec.ConfidencePct)

	r.logger.Info().
		Str("simulation_id", rec.ID).
		Str("project_id", rec.ProjectID).
		Str("technology_id", rec.TechnologyID).
		Float64("annual_savings_usd", rec.AnnualSavingsUSD).
		Int("confidence_pct", rec.ConfidencePct).
		Msg("simulation completed")

	return rec, nil
}

type namedValue struct {
	name string
	v    float64
}

// firstNonFinite returns the first NaN or infinite value, or nil.
func firstNonFinite(values []namedValue) *namedValue {
	for i := range values {
		if math.IsNaN(values[i].v) || math.IsInf(values[i].v, 0) {
			return &values[i]
		}
	}
	return nil
}

// validateTariffs rejects non-finite prices. Zero and negative prices are allowed.
func validateTariffs(t domain.Tariffs, deltaOpex float64) error {
	bad := firstNonFinite([]namedValue{
		{"tariffs.kwh", t.KWh},
		{"tariffs.m3", t.M3},
		{"deltaOpex", deltaOpex},
	})
	if bad != nil {
		return fmt.Errorf("%s must be a finite number: %w", bad.name, ErrInvalidInput)
	}
	return nil
}

// validateResult rejects results that overflowed to Inf or NaN. Every input
// can be finite while a product such as 1e308 kWh at 10 USD/kWh is not.
func validateResult(res domain.SimulationResult) error {
	values := []namedValue{
		{"energySavingKwh", res.EnergySavingKwh},
		{"waterSavingM3", res.WaterSavingM3},
		{"wasteSavingTpy", res.WasteSavingTpy},
		{"annualSavingsUsd", res.AnnualSavingsUSD},
		{"roiPct", res.ROIPct},
		{"co2ReductionTpy", res.CO2ReductionTpy},
	}
	if res.PaybackYears != nil {
		values = append(values, namedValue{"paybackYears", *res.PaybackYears})
	}
	if bad := firstNonFinite(values); bad != nil {
		return fmt.Errorf("%s is out of range: %w", bad.name, ErrInvalidInput)
	}
	return nil
}

// ErrorKind maps a boundary error to a short label for metrics and logs.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrMissingRequiredInput):
		return "missing_required_input"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrUnknownTechnology):
		return "unknown_technology"
	case errors.Is(err, ErrUnknownProject):
		return "unknown_project"
	case errors.Is(err, ErrNotApproved):
		return "not_approved"
	default:
		return "internal"
	}
}

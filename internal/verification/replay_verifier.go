package verification

import (
	"context"
	"errors"
	"fmt"

	"inara-impact/internal/domain"
	"inara-impact/internal/idhash"
	"inara-impact/internal/simulation"
	"inara-impact/internal/storage"
)

var (
	// ErrSimulationNotFound is returned when the simulation ID doesn't exist.
	ErrSimulationNotFound = errors.New("simulation not found")

	// ErrTechnologyNotFound is returned when the simulated technology is gone.
	ErrTechnologyNotFound = errors.New("technology not found")
)

// ReplayVerifier implements Verifier.
type ReplayVerifier struct {
	simulationStore storage.SimulationStore
	technologyStore storage.TechnologyStore
}

// ReplayVerifierOptions contains configuration for creating a ReplayVerifier.
type ReplayVerifierOptions struct {
	SimulationStore storage.SimulationStore
	TechnologyStore storage.TechnologyStore
}

// NewReplayVerifier creates a new ReplayVerifier.
func NewReplayVerifier(opts ReplayVerifierOptions) *ReplayVerifier {
	return &ReplayVerifier{
		simulationStore: opts.SimulationStore,
		technologyStore: opts.TechnologyStore,
	}
}

// VerifySimulation verifies a single simulation by replaying it.
func (v *ReplayVerifier) VerifySimulation(ctx context.Context, simulationID string) (*VerificationResult, error) {
	// 1. Load stored simulation
	stored, err := v.simulationStore.GetByID(ctx, simulationID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrSimulationNotFound
		}
		return nil, err
	}
	return v.verify(ctx, stored)
}

// VerifyProject verifies all stored simulations of a project.
func (v *ReplayVerifier) VerifyProject(ctx context.Context, projectID string) (*VerificationReport, error) {
	sims, err := v.simulationStore.GetByProjectID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load simulations: %w", err)
	}

	report := &VerificationReport{
		ProjectID:        projectID,
		TotalSimulations: len(sims),
		Results:          make([]VerificationResult, 0, len(sims)),
	}

	for _, sim := range sims {
		result, err := v.verify(ctx, sim)
		if err != nil {
			// Record error as divergence
			result = &VerificationResult{
				SimulationID: sim.ID,
				TechnologyID: sim.TechnologyID,
				Status:       StatusError,
				Divergences: []FieldDivergence{
					{Field: "Error", Expected: nil, Actual: err.Error()},
				},
			}
		}

		report.Results = append(report.Results, *result)
		switch result.Status {
		case StatusMatch:
			report.MatchedSimulations++
		case StatusDivergent:
			report.DivergentSimulations++
		case StatusInputsChanged:
			report.InputsChanged++
		default:
			report.Errors++
		}
	}

	return report, nil
}

// verify re-executes the engine with the stored inputs and the
// technology's current coefficients.
func (v *ReplayVerifier) verify(ctx context.Context, stored *domain.SimulationRecord) (*VerificationResult, error) {
	// 1. Load technology
	tech, err := v.technologyStore.GetByID(ctx, stored.TechnologyID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrTechnologyNotFound
		}
		return nil, err
	}

	in := simulation.Input{
		Baseline:     stored.Baseline,
		Technology:   tech.TechnologyCoefficients,
		Tariffs:      stored.Tariffs,
		DeltaOpexUSD: stored.DeltaOpexUSD,
	}
	result := &VerificationResult{
		SimulationID: stored.ID,
		TechnologyID: stored.TechnologyID,
	}

	// 2. A different fingerprint means the inputs are no longer the same
	fingerprint := idhash.ComputeInputFingerprint(in.Baseline, in.Technology, in.Tariffs, in.DeltaOpexUSD)
	if fingerprint != stored.Fingerprint {
		result.Status = StatusInputsChanged
		result.Divergences = []FieldDivergence{{Field: "Fingerprint", Expected: stored.Fingerprint, Actual: fingerprint}}
		return result, nil
	}

	// 3. Replay and compare
	result.Divergences = CompareResults(stored.SimulationResult, simulation.Simulate(in))
	if len(result.Divergences) == 0 {
		result.Status = StatusMatch
	} else {
		result.Status = StatusDivergent
	}
	return result, nil
}

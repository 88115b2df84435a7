package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"inara-impact/internal/auth"
	"inara-impact/internal/catalog"
	"inara-impact/internal/config"
	"inara-impact/internal/decision"
	"inara-impact/internal/domain"
	"inara-impact/internal/idhash"
	"inara-impact/internal/reporting"
	"inara-impact/internal/simulation"
	"inara-impact/internal/storage/migrations"
	pgstore "inara-impact/internal/storage/postgres"
	"inara-impact/internal/verification"
)

// =============================================================================
// SIMULATE COMMAND
// =============================================================================

func simulateCommand() *cli.Command {
	return &cli.Command{
		Name:  "simulate",
		Usage: "Run the impact engine for one technology against a baseline",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "technology", Aliases: []string{"t"}, Usage: "Load coefficients of this technology ID from PostgreSQL"},
			&cli.StringFlag{Name: "name", Value: "Ad-hoc technology", Usage: "Display name when coefficients come from flags"},

			&cli.Float64Flag{Name: "energy-kwh", Usage: "Baseline energy use (kWh/yr)"},
			&cli.Float64Flag{Name: "water-m3", Usage: "Baseline water use (m3/yr)"},
			&cli.Float64Flag{Name: "waste-tpy", Usage: "Baseline waste (t/yr)"},
			&cli.Float64Flag{Name: "budget-usd", Usage: "Annual budget (USD)"},

			&cli.Float64Flag{Name: "capex-min", Usage: "Minimum capital cost (USD)"},
			&cli.Float64Flag{Name: "capex-max", Usage: "Maximum capital cost (USD)"},
			&cli.Float64Flag{Name: "benefit-energy", Usage: "Fraction of baseline energy eliminated (0..1)"},
			&cli.Float64Flag{Name: "benefit-water", Usage: "Fraction of baseline water eliminated (0..1)"},
			&cli.Float64Flag{Name: "benefit-waste", Usage: "Fraction of baseline waste eliminated (0..1)"},
			&cli.Float64Flag{Name: "co2-tpy", Usage: "CO2 reduction (t/yr)"},

			&cli.Float64Flag{Name: "tariff-kwh", Usage: "Energy price (USD/kWh)", Required: true},
			&cli.Float64Flag{Name: "tariff-m3", Usage: "Water price (USD/m3)", Required: true},
			&cli.Float64Flag{Name: "delta-opex", Usage: "Operating cost change (USD/yr)"},

			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "table", Usage: "Output format (table, json, markdown)"},
		},
		Action: runSimulate,
	}
}

func runSimulate(c *cli.Context) error {
	ctx := c.Context

	tech, err := simulationTechnology(ctx, c)
	if err != nil {
		return err
	}

	baseline := domain.Baseline{
		EnergyKwh: optionalFloat(c, "energy-kwh"),
		WaterM3:   optionalFloat(c, "water-m3"),
		WasteTpy:  optionalFloat(c, "waste-tpy"),
		BudgetUSD: optionalFloat(c, "budget-usd"),
	}
	if err := baseline.Validate(); err != nil {
		return fmt.Errorf("baseline: %w", err)
	}

	in := simulation.Input{
		Baseline:     baseline,
		Technology:   tech.TechnologyCoefficients,
		Tariffs:      domain.Tariffs{KWh: c.Float64("tariff-kwh"), M3: c.Float64("tariff-m3")},
		DeltaOpexUSD: c.Float64("delta-opex"),
	}
	res := simulation.Simulate(in)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	d := decision.NewEvaluator(cfg.Decision).Evaluate(decision.InputFromResult(res))

	out := c.App.Writer
	switch c.String("format") {
	case "json":
		return outputJSON(out, simulateOutput{
			Technology:  tech.Name,
			Fingerprint: idhash.ComputeInputFingerprint(in.Baseline, in.Technology, in.Tariffs, in.DeltaOpexUSD),
			Result:      res,
			Decision:    d,
		})
	case "markdown":
		_, err := io.WriteString(out, reporting.RenderSimulation(tech.Name, res, d))
		return err
	case "table":
		return outputTable(out, tech.Name, res, d)
	default:
		return fmt.Errorf("unknown format %q (table, json, markdown)", c.String("format"))
	}
}

// simulationTechnology loads the technology from PostgreSQL when --technology
// is set, otherwise builds it from the coefficient flags.
func simulationTechnology(ctx context.Context, c *cli.Context) (*domain.Technology, error) {
	if id := c.String("technology"); id != "" {
		pool, err := openPostgres(ctx, c)
		if err != nil {
			return nil, err
		}
		defer pool.Close()

		tech, err := pgstore.NewTechnologyStore(pool).GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load technology %s: %w", id, err)
		}
		return tech, nil
	}

	tech := &domain.Technology{
		Name:     c.String("name"),
		Category: "Ad-hoc",
		TechnologyCoefficients: domain.TechnologyCoefficients{
			CapexMin:         optionalFloat(c, "capex-min"),
			CapexMax:         optionalFloat(c, "capex-max"),
			BenefitEnergyPct: optionalFloat(c, "benefit-energy"),
			BenefitWaterPct:  optionalFloat(c, "benefit-water"),
			BenefitWastePct:  optionalFloat(c, "benefit-waste"),
			CO2Tpy:           optionalFloat(c, "co2-tpy"),
		},
	}
	if err := catalog.ValidateTechnology(tech); err != nil {
		return nil, fmt.Errorf("technology: %w", err)
	}
	return tech, nil
}

// optionalFloat returns nil for flags the caller did not set.
func optionalFloat(c *cli.Context, name string) *float64 {
	if !c.IsSet(name) {
		return nil
	}
	return domain.Float(c.Float64(name))
}

// =============================================================================
// REPORT COMMAND
// =============================================================================

func reportCommand() *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "Render the impact report of a project stored in PostgreSQL",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "project", Aliases: []string{"p"}, Usage: "Project ID", Required: true},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "markdown", Usage: "Output format (markdown, csv)"},
		},
		Action: runReport,
	}
}

func runReport(c *cli.Context) error {
	ctx := c.Context

	pool, err := openPostgres(ctx, c)
	if err != nil {
		return err
	}
	defer pool.Close()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	gen := reporting.NewGenerator(
		pgstore.NewProjectStore(pool),
		pgstore.NewSimulationStore(pool),
		pgstore.NewTechnologyStore(pool),
		decision.NewEvaluator(cfg.Decision),
	)
	report, err := gen.Generate(ctx, c.String("project"))
	if err != nil {
		return err
	}

	switch c.String("format") {
	case "csv":
		_, err = io.WriteString(c.App.Writer, reporting.RenderCSV(report.Simulations))
	case "markdown":
		_, err = io.WriteString(c.App.Writer, reporting.RenderMarkdown(report))
	default:
		err = fmt.Errorf("unknown format %q (markdown, csv)", c.String("format"))
	}
	return err
}

// =============================================================================
// SEED COMMAND
// =============================================================================

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Write the deterministic sample catalog into PostgreSQL",
		Flags: []cli.Flag{
			&cli.Uint64Flag{Name: "seed", Value: 42, Usage: "PRNG seed; the same seed yields the same catalog"},
			&cli.IntFlag{Name: "technologies", Value: 60, Usage: "Number of technologies"},
			&cli.IntFlag{Name: "feature-days", Value: 7, Usage: "Length of the featured rotation in days (0 disables it)"},
			&cli.StringFlag{Name: "admin-email", EnvVars: []string{"ADMIN_EMAIL"}, Usage: "Create this admin account if missing"},
			&cli.StringFlag{Name: "admin-password", EnvVars: []string{"ADMIN_PASSWORD"}, Usage: "Password for --admin-email"},
		},
		Action: runSeed,
	}
}

func runSeed(c *cli.Context) error {
	ctx := c.Context
	logger := newLogger(c)

	pool, err := openPostgres(ctx, c)
	if err != nil {
		return err
	}
	defer pool.Close()

	if _, err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		return fmt.Errorf("postgres migrations: %w", err)
	}

	res, err := catalog.Seed(ctx,
		pgstore.NewVendorStore(pool),
		pgstore.NewTechnologyStore(pool),
		pgstore.NewFeaturedRotationStore(pool),
		catalog.SeedConfig{
			Seed:         c.Uint64("seed"),
			Technologies: c.Int("technologies"),
			FeatureDays:  c.Int("feature-days"),
		},
	)
	if err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	logger.Info().
		Int("vendors", res.Vendors).
		Int("technologies", res.Technologies).
		Int("rotations", res.Rotations).
		Int("skipped", res.Skipped).
		Msg("catalog seeded")

	if email := c.String("admin-email"); email != "" {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		svc := auth.NewService(auth.Options{
			Users:      pgstore.NewUserStore(pool),
			BcryptCost: cfg.BcryptCost,
			Logger:     &logger,
		})
		admin, err := svc.EnsureAdmin(ctx, email, c.String("admin-password"), "Administrator")
		if err != nil {
			return fmt.Errorf("ensure admin: %w", err)
		}
		logger.Info().Str("user_id", admin.ID).Str("email", admin.Email).Msg("admin account ready")
	}
	return nil
}

// =============================================================================
// MIGRATE COMMAND
// =============================================================================

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:   "migrate",
		Usage:  "Apply PostgreSQL and ClickHouse schema migrations",
		Action: runMigrate,
	}
}

func runMigrate(c *cli.Context) error {
	ctx := c.Context
	logger := newLogger(c)

	pool, err := openPostgres(ctx, c)
	if err != nil {
		return err
	}
	defer pool.Close()

	applied, err := migrations.RunPostgresMigrations(ctx, pool)
	if err != nil {
		return fmt.Errorf("postgres migrations: %w", err)
	}
	logger.Info().Strs("applied", applied).Msg("postgres migrations complete")

	dsn := c.String("clickhouse-dsn")
	if dsn == "" {
		logger.Warn().Msg("clickhouse-dsn not set, skipping analytics migrations")
		return nil
	}
	conn, err := migrations.RunClickhouseMigrations(ctx, dsn)
	if err != nil {
		return fmt.Errorf("clickhouse migrations: %w", err)
	}
	logger.Info().Msg("clickhouse migrations complete")
	return conn.Close()
}

// =============================================================================
// VERIFY COMMAND
// =============================================================================

func verifyCommand() *cli.Command {
	return &cli.Command{
		Name:  "verify",
		Usage: "Replay the stored simulations of a project and report divergences",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "project", Aliases: []string{"p"}, Usage: "Project ID", Required: true},
			&cli.BoolFlag{Name: "strict", Usage: "Fail when any simulation does not match"},
		},
		Action: runVerify,
	}
}

func runVerify(c *cli.Context) error {
	ctx := c.Context

	pool, err := openPostgres(ctx, c)
	if err != nil {
		return err
	}
	defer pool.Close()

	verifier := verification.NewReplayVerifier(verification.ReplayVerifierOptions{
		SimulationStore: pgstore.NewSimulationStore(pool),
		TechnologyStore: pgstore.NewTechnologyStore(pool),
	})
	report, err := verifier.VerifyProject(ctx, c.String("project"))
	if err != nil {
		return err
	}

	if err := outputJSON(c.App.Writer, report); err != nil {
		return err
	}
	if c.Bool("strict") && report.MatchedSimulations != report.TotalSimulations {
		return fmt.Errorf("%d of %d simulations did not match", report.TotalSimulations-report.MatchedSimulations, report.TotalSimulations)
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func openPostgres(ctx context.Context, c *cli.Context) (*pgstore.Pool, error) {
	dsn := c.String("postgres-dsn")
	if dsn == "" {
		return nil, errors.New("--postgres-dsn (or POSTGRES_DSN) is required")
	}
	pool, err := pgstore.NewPool(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	return pool, nil
}

func newLogger(c *cli.Context) zerolog.Logger {
	cfg := config.Default()
	cfg.LogLevel = c.String("log-level")
	return cfg.NewLogger().With().Str("command", c.Command.Name).Logger()
}

// =============================================================================
// OUTPUT FORMATTERS
// =============================================================================

type simulateOutput struct {
	Technology  string                   `json:"technology"`
	Fingerprint string                   `json:"fingerprint"`
	Result      domain.SimulationResult  `json:"result"`
	Decision    *decision.DecisionResult `json:"decision"`
}

func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func outputTable(w io.Writer, name string, res domain.SimulationResult, d *decision.DecisionResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "TECHNOLOGY\t%s\n", name)
	fmt.Fprintf(tw, "Energy saving (kWh/yr)\t%.2f\n", res.EnergySavingKwh)
	fmt.Fprintf(tw, "Water saving (m3/yr)\t%.2f\n", res.WaterSavingM3)
	fmt.Fprintf(tw, "Waste saving (t/yr)\t%.2f\n", res.WasteSavingTpy)
	fmt.Fprintf(tw, "Annual savings (USD)\t%s\n", reporting.FormatUSD(res.AnnualSavingsUSD))
	fmt.Fprintf(tw, "ROI (%%)\t%.2f\n", res.ROIPct)
	fmt.Fprintf(tw, "Payback (years)\t%s\n", reporting.FormatPayback(res.PaybackYears))
	fmt.Fprintf(tw, "CO2 reduction (t/yr)\t%.2f\n", res.CO2ReductionTpy)
	fmt.Fprintf(tw, "Confidence (%%)\t%d\n", res.ConfidencePct)
	if d != nil {
		fmt.Fprintf(tw, "Decision\t%s\n", d.Decision)
	}
	return tw.Flush()
}

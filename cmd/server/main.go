// Package main runs the impact API server:
// - HTTP API (simulate, projects, catalog, reports)
// - Live simulation feed over WebSocket
// - Prometheus metrics on /metrics
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"inara-impact/internal/api"
	"inara-impact/internal/auth"
	"inara-impact/internal/catalog"
	"inara-impact/internal/config"
	"inara-impact/internal/decision"
	"inara-impact/internal/feed"
	"inara-impact/internal/observability"
	"inara-impact/internal/projects"
	"inara-impact/internal/reporting"
	"inara-impact/internal/simulation"
	"inara-impact/internal/storage"
	chstore "inara-impact/internal/storage/clickhouse"
	"inara-impact/internal/storage/memory"
	"inara-impact/internal/storage/migrations"
	pgstore "inara-impact/internal/storage/postgres"
)

// allStores holds all storage implementations.
type allStores struct {
	userStore       storage.UserStore
	projectStore    storage.ProjectStore
	vendorStore     storage.VendorStore
	technologyStore storage.TechnologyStore
	simulationStore storage.SimulationStore
	rotationStore   storage.FeaturedRotationStore
	impactStore     storage.ImpactEventStore
}

func main() {
	// Load .env file if exists
	if err := config.LoadEnvFile(".env"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Parse flags (env vars as defaults)
	httpAddr := flag.String("http-addr", cfg.HTTPAddr, "HTTP listen address")
	postgresDSN := flag.String("postgres-dsn", cfg.PostgresDSN, "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", cfg.ClickhouseDSN, "ClickHouse connection string")
	useMemory := flag.Bool("use-memory", cfg.UseMemory, "Use in-memory storage instead of PostgreSQL and ClickHouse")
	logLevel := flag.String("log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	seed := flag.Bool("seed", false, "Seed the sample catalog on startup (always on with --use-memory)")
	seedValue := flag.Uint64("seed-value", 42, "PRNG seed for the sample catalog")
	adminEmail := flag.String("admin-email", os.Getenv("ADMIN_EMAIL"), "Create this admin account on startup if missing")
	adminPassword := flag.String("admin-password", os.Getenv("ADMIN_PASSWORD"), "Password for --admin-email")

	flag.Parse()

	cfg.HTTPAddr = *httpAddr
	cfg.PostgresDSN = *postgresDSN
	cfg.ClickhouseDSN = *clickhouseDSN
	cfg.UseMemory = *useMemory
	cfg.LogLevel = *logLevel

	// Setup logger
	logger := cfg.NewLogger()
	logger = logger.With().Str("service", "inara-impact").Logger()

	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create stores
	stores, cleanup, err := createStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create stores")
	}

	if *seed || cfg.UseMemory {
		res, err := catalog.Seed(ctx, stores.vendorStore, stores.technologyStore, stores.rotationStore, catalog.SeedConfig{
			Seed:        *seedValue,
			FeatureDays: 7,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to seed catalog")
		}
		logger.Info().
			Int("vendors", res.Vendors).
			Int("technologies", res.Technologies).
			Int("rotations", res.Rotations).
			Int("skipped", res.Skipped).
			Msg("catalog seeded")
	}

	metrics := observability.NewMetrics(cfg.MetricsNamespace)
	hub := feed.NewHub(nil, metrics, &logger)
	evaluator := decision.NewEvaluator(cfg.Decision)

	authSvc := auth.NewService(auth.Options{
		Users:      stores.userStore,
		BcryptCost: cfg.BcryptCost,
		Metrics:    metrics,
		Logger:     &logger,
	})
	if *adminEmail != "" {
		if _, err := authSvc.EnsureAdmin(ctx, *adminEmail, *adminPassword, "Administrator"); err != nil {
			logger.Fatal().Err(err).Msg("failed to ensure admin account")
		}
	}

	server := api.NewServer(api.Options{
		Auth: authSvc,
		Catalog: catalog.NewService(catalog.Options{
			Technologies: stores.technologyStore,
			Vendors:      stores.vendorStore,
			Rotations:    stores.rotationStore,
			Metrics:      metrics,
			Logger:       &logger,
		}),
		Projects: projects.NewService(stores.projectStore, stores.simulationStore, &logger),
		Runner: simulation.NewRunner(simulation.RunnerOptions{
			TechnologyStore: stores.technologyStore,
			ProjectStore:    stores.projectStore,
			SimulationStore: stores.simulationStore,
			ImpactStore:     stores.impactStore,
			Publisher:       hub,
			Metrics:         metrics,
			Logger:          &logger,
		}),
		Reports:     reporting.NewGenerator(stores.projectStore, stores.simulationStore, stores.technologyStore, evaluator),
		Evaluator:   evaluator,
		ImpactStore: stores.impactStore,
		Hub:         hub,
		Metrics:     metrics,
		Logger:      &logger,
		CORSOrigins: cfg.CORSOrigins,
	})

	httpServer := &http.Server{
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	ln, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		logger.Fatal().Err(err).Str("addr", cfg.HTTPAddr).Msg("listen")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	logger.Info().
		Str("addr", ln.Addr().String()).
		Bool("memory", cfg.UseMemory).
		Msg("http server listening")

	err = serve(httpServer, ln, sigCh, shutdownTimeout, logger)

	// In-flight requests have drained; stores can go now.
	cancel()
	hub.Close()
	cleanup()

	if err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
	logger.Info().Msg("shutdown complete")
}

const shutdownTimeout = 30 * time.Second

var errForcedShutdown = errors.New("forced shutdown")

// serve runs srv on ln until a signal arrives, then drains in-flight
// requests for up to drain. It returns only once Shutdown has finished.
// A second signal during the drain aborts it with errForcedShutdown.
func serve(srv *http.Server, ln net.Listener, sigCh <-chan os.Signal, drain time.Duration, logger zerolog.Logger) error {
	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(ln) }()

	select {
	case err := <-serveErr:
		return fmt.Errorf("serve: %w", err)
	case sig := <-sigCh:
		logger.Info().Str("signal", sig.String()).Msg("initiating graceful shutdown")
	}

	ctx, cancel := context.WithTimeout(context.Background(), drain)
	defer cancel()
	shutdownErr := make(chan error, 1)
	go func() { shutdownErr <- srv.Shutdown(ctx) }()

	select {
	case err := <-shutdownErr:
		if err != nil {
			return fmt.Errorf("graceful shutdown after %s: %w", drain, err)
		}
	case sig := <-sigCh:
		logger.Warn().Str("signal", sig.String()).Msg("second signal, abandoning drain")
		return fmt.Errorf("%w: %s", errForcedShutdown, sig)
	}

	if err := <-serveErr; !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// createStores creates all required stores. Postgres and ClickHouse
// schemas are migrated before the stores are returned.
func createStores(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*allStores, func(), error) {
	if cfg.UseMemory {
		stores := &allStores{
			userStore:       memory.NewUserStore(),
			projectStore:    memory.NewProjectStore(),
			vendorStore:     memory.NewVendorStore(),
			technologyStore: memory.NewTechnologyStore(),
			simulationStore: memory.NewSimulationStore(),
			rotationStore:   memory.NewFeaturedRotationStore(),
			impactStore:     memory.NewImpactEventStore(),
		}
		return stores, func() {}, nil
	}

	// PostgreSQL
	pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	applied, err := migrations.RunPostgresMigrations(ctx, pool)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("postgres migrations: %w", err)
	}
	logger.Info().Strs("applied", applied).Msg("postgres migrations complete")

	// ClickHouse
	chConn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
	}

	stores := &allStores{
		// PostgreSQL stores (source of truth)
		userStore:       pgstore.NewUserStore(pool),
		projectStore:    pgstore.NewProjectStore(pool),
		vendorStore:     pgstore.NewVendorStore(pool),
		technologyStore: pgstore.NewTechnologyStore(pool),
		simulationStore: pgstore.NewSimulationStore(pool),
		rotationStore:   pgstore.NewFeaturedRotationStore(pool),

		// ClickHouse stores (analytics)
		impactStore: chstore.NewImpactEventStore(chConn),
	}

	cleanup := func() {
		chConn.Close()
		pool.Close()
	}

	return stores, cleanup, nil
}

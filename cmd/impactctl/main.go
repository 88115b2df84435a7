// impactctl - operator CLI for the impact engine
//
// Usage:
//
//	impactctl simulate --tariff-kwh 0.12 --tariff-m3 1.5 --energy-kwh 50000 --capex-min 20000 --capex-max 40000 --benefit-energy 0.2
//	impactctl report --project <id> [--format csv]
//	impactctl seed --seed 42 --admin-email admin@example.com --admin-password secret
//	impactctl migrate
//	impactctl verify --project <id> [--strict]
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"inara-impact/internal/config"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	if err := config.LoadEnvFile(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "impactctl",
		Usage:   "Simulate technology impact, render reports and manage the catalog",
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),

		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "postgres-dsn",
				Usage:   "PostgreSQL connection string",
				EnvVars: []string{"POSTGRES_DSN"},
			},
			&cli.StringFlag{
				Name:    "clickhouse-dsn",
				Usage:   "ClickHouse connection string",
				EnvVars: []string{"CLICKHOUSE_DSN"},
			},
		},

		Commands: []*cli.Command{
			simulateCommand(),
			reportCommand(),
			seedCommand(),
			migrateCommand(),
			verifyCommand(),
		},
	}
}

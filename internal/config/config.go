// Package config loads service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"inara-impact/internal/decision"
)

// Config holds all runtime settings. Every field has an environment key.
type Config struct {
	HTTPAddr         string   // HTTP_ADDR
	PostgresDSN      string   // POSTGRES_DSN
	ClickhouseDSN    string   // CLICKHOUSE_DSN
	UseMemory        bool     // USE_MEMORY
	LogLevel         string   // LOG_LEVEL
	Env              string   // ENV
	CORSOrigins      []string // CORS_ORIGINS, comma separated
	MetricsNamespace string   // METRICS_NAMESPACE
	BcryptCost       int      // BCRYPT_COST

	// DECISION_MIN_ROI_PCT, DECISION_MAX_PAYBACK_YEARS, DECISION_MIN_CONFIDENCE_PCT
	Decision decision.Thresholds
}

// Default returns the configuration used when no environment is set.
func Default() Config {
	return Config{
		HTTPAddr:         ":8080",
		LogLevel:         "info",
		Env:              "production",
		CORSOrigins:      []string{"*"},
		MetricsNamespace: "inara_impact",
		BcryptCost:       10,
		Decision:         decision.DefaultThresholds(),
	}
}

// LoadEnvFile loads variables from path into the process environment
// without overriding variables that are already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load reads the configuration from the environment, applying defaults.
func Load() (Config, error) {
	return FromLookup(os.LookupEnv)
}

// FromLookup reads the configuration through lookup, applying defaults.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	var errs []error

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	float := func(key string, dst *float64) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = f
		}
	}

	str("HTTP_ADDR", &cfg.HTTPAddr)
	str("POSTGRES_DSN", &cfg.PostgresDSN)
	str("CLICKHOUSE_DSN", &cfg.ClickhouseDSN)
	boolean("USE_MEMORY", &cfg.UseMemory)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("ENV", &cfg.Env)
	str("METRICS_NAMESPACE", &cfg.MetricsNamespace)
	integer("BCRYPT_COST", &cfg.BcryptCost)
	float("DECISION_MIN_ROI_PCT", &cfg.Decision.MinROIPct)
	float("DECISION_MAX_PAYBACK_YEARS", &cfg.Decision.MaxPaybackYears)
	integer("DECISION_MIN_CONFIDENCE_PCT", &cfg.Decision.MinConfidencePct)

	if v, ok := lookup("CORS_ORIGINS"); ok && strings.TrimSpace(v) != "" {
		cfg.CORSOrigins = SplitList(v)
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks settings that depend on each other.
func (c Config) Validate() error {
	if !c.UseMemory && (c.PostgresDSN == "" || c.ClickhouseDSN == "") {
		return errors.New("POSTGRES_DSN and CLICKHOUSE_DSN are required (set USE_MEMORY=true for in-memory storage)")
	}
	if c.Decision.MaxPaybackYears < 0 {
		return fmt.Errorf("DECISION_MAX_PAYBACK_YEARS must not be negative, got %g", c.Decision.MaxPaybackYears)
	}
	return nil
}

// IsDevelopment reports whether ENV is "development".
func (c Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// SplitList splits a comma separated value, dropping empty items.
func SplitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

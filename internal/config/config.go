// Package config resolves liftreport's settings from defaults, a YAML file,
// .env files and LIFTREPORT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/liftreport/liftreport/internal/dataset"
	"github.com/liftreport/liftreport/internal/report"
	"github.com/liftreport/liftreport/internal/stats"
)

// ErrInvalidConfig is returned when a setting is out of range.
var ErrInvalidConfig = errors.New("invalid configuration")

// DefaultPath is the config file read when none is given.
const DefaultPath = "liftreport.yaml"

// Dataset sources
const (
	SourceCSV    = "csv"
	SourceSQLite = "sqlite"
)

// ConfidenceLevels are the confidence levels a user may pick.
var ConfidenceLevels = []float64{0.90, 0.95, 0.99}

// Config holds the application configuration.
type Config struct {
	DataPath string `yaml:"data_path"`
	DBPath   string `yaml:"db_path"`
	Source   string `yaml:"source"`

	GroupColumn     string `yaml:"group_column"`
	ConvertedColumn string `yaml:"converted_column"`
	PageViewsColumn string `yaml:"page_views_column"`
	SessionsColumn  string `yaml:"sessions_column"`

	GroupA string `yaml:"group_a"`
	GroupB string `yaml:"group_b"`

	AverageOrderValue float64 `yaml:"average_order_value"`
	ConfidenceLevel   float64 `yaml:"confidence_level"`
	PeriodsPerYear    int     `yaml:"periods_per_year"`

	ExportPath string `yaml:"export_path"`
	Port       int    `yaml:"port"`
}

// Default returns the built-in configuration.
func Default() *Config {
	schema := dataset.DefaultSchema()
	params := stats.DefaultParams()

	return &Config{
		DataPath:          filepath.Join("data", "google_merch_users.csv"),
		DBPath:            "./liftreport.db",
		Source:            SourceCSV,
		GroupColumn:       schema.GroupColumn,
		ConvertedColumn:   schema.ConvertedColumn,
		PageViewsColumn:   schema.PageViewsColumn,
		SessionsColumn:    schema.SessionsColumn,
		GroupA:            "desktop",
		GroupB:            "mobile",
		AverageOrderValue: params.AverageOrderValue,
		ConfidenceLevel:   params.ConfidenceLevel,
		PeriodsPerYear:    params.PeriodsPerYear,
		ExportPath:        filepath.Join("results", "test_results.json"),
		Port:              8080,
	}
}

// Load reads configuration from path (if it exists), .env files and
// environment variables, in increasing order of precedence.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", path, err)
			}
		case !errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	}

	for _, envPath := range getEnvPaths() {
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			break
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes cfg as YAML to path, creating its directory.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := ensureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	envString(&c.DataPath, "LIFTREPORT_DATA")
	envString(&c.DBPath, "LIFTREPORT_DB")
	envString(&c.Source, "LIFTREPORT_SOURCE")
	envString(&c.GroupColumn, "LIFTREPORT_GROUP_COLUMN")
	envString(&c.ConvertedColumn, "LIFTREPORT_CONVERTED_COLUMN")
	envString(&c.GroupA, "LIFTREPORT_GROUP_A")
	envString(&c.GroupB, "LIFTREPORT_GROUP_B")
	envString(&c.ExportPath, "LIFTREPORT_EXPORT_PATH")

	if err := envFloat(&c.AverageOrderValue, "LIFTREPORT_AOV"); err != nil {
		return err
	}
	if err := envFloat(&c.ConfidenceLevel, "LIFTREPORT_CONFIDENCE"); err != nil {
		return err
	}
	if err := envInt(&c.PeriodsPerYear, "LIFTREPORT_PERIODS_PER_YEAR"); err != nil {
		return err
	}
	return envInt(&c.Port, "LIFTREPORT_PORT")
}

// Validate checks the settings a report depends on.
func (c *Config) Validate() error {
	if c.Source != SourceCSV && c.Source != SourceSQLite {
		return fmt.Errorf("%w: source must be %q or %q, got %q", ErrInvalidConfig, SourceCSV, SourceSQLite, c.Source)
	}
	if c.GroupColumn == "" || c.ConvertedColumn == "" {
		return fmt.Errorf("%w: group and converted columns are required", ErrInvalidConfig)
	}
	if c.GroupA == "" || c.GroupB == "" {
		return fmt.Errorf("%w: both group labels are required", ErrInvalidConfig)
	}
	if c.GroupA == c.GroupB {
		return fmt.Errorf("%w: groups must differ, both are %q", ErrInvalidConfig, c.GroupA)
	}
	if !(c.AverageOrderValue > 0) || math.IsInf(c.AverageOrderValue, 0) {
		return fmt.Errorf("%w: average order value must be positive, got %v", ErrInvalidConfig, c.AverageOrderValue)
	}
	if !ValidConfidenceLevel(c.ConfidenceLevel) {
		return fmt.Errorf("%w: confidence level must be one of 0.90, 0.95, 0.99, got %v", ErrInvalidConfig, c.ConfidenceLevel)
	}
	if c.PeriodsPerYear <= 0 {
		return fmt.Errorf("%w: periods per year must be positive, got %d", ErrInvalidConfig, c.PeriodsPerYear)
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("%w: invalid port %d", ErrInvalidConfig, c.Port)
	}
	return nil
}

// ValidConfidenceLevel reports whether level is one of ConfidenceLevels.
func ValidConfidenceLevel(level float64) bool {
	for _, l := range ConfidenceLevels {
		if math.Abs(level-l) < 1e-9 {
			return true
		}
	}
	return false
}

// SourcePath is the location observations are read from.
func (c *Config) SourcePath() string {
	if c.Source == SourceSQLite {
		return c.DBPath
	}
	return c.DataPath
}

// Schema returns the dataset column mapping.
func (c *Config) Schema() dataset.Schema {
	return dataset.Schema{
		GroupColumn:     c.GroupColumn,
		ConvertedColumn: c.ConvertedColumn,
		PageViewsColumn: c.PageViewsColumn,
		SessionsColumn:  c.SessionsColumn,
	}
}

// Params returns the comparison parameters.
func (c *Config) Params() stats.Params {
	return stats.Params{
		AverageOrderValue: c.AverageOrderValue,
		ConfidenceLevel:   c.ConfidenceLevel,
		PeriodsPerYear:    c.PeriodsPerYear,
	}
}

// ReportOptions returns the options a report is built with.
func (c *Config) ReportOptions() report.Options {
	return report.Options{
		GroupA:     c.GroupA,
		GroupB:     c.GroupB,
		Params:     c.Params(),
		SampleRows: report.DefaultSampleRows,
	}
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "liftreport", ".env"))
	}

	return paths
}

func envString(target *string, key string) {
	if value := os.Getenv(key); value != "" {
		*target = value
	}
}

func envFloat(target *float64, key string) error {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("%w: %s=%q is not a number", ErrInvalidConfig, key, value)
	}
	*target = f
	return nil
}

func envInt(target *int, key string) error {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidConfig, key, value)
	}
	*target = n
	return nil
}

// ensureDir creates a directory and all parent directories if they don't exist.
func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o750)
}

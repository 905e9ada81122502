package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/liftreport/liftreport/internal/config"
	"github.com/liftreport/liftreport/internal/dataset"
	"github.com/liftreport/liftreport/internal/report"
	"github.com/liftreport/liftreport/internal/store"
)

// withStore opens the database, executes the function, and handles cleanup.
func withStore(fn func(*store.SQLiteStore) error) error {
	s, err := store.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer s.Close()

	return fn(s)
}

// openSource returns the configured dataset source and a function that
// releases it.
func openSource(c *config.Config) (dataset.Source, func() error, error) {
	if c.Source == config.SourceSQLite {
		s, err := store.Open(c.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		return s, s.Close, nil
	}

	return dataset.CSVFile{Path: c.DataPath, Schema: c.Schema()}, func() error { return nil }, nil
}

// buildReport loads the dataset and builds the report with the configured
// options. Failures carry their user-facing message.
func buildReport(ctx context.Context) (*report.Report, error) {
	source, closeSource, err := openSource(cfg)
	if err != nil {
		return nil, err
	}
	defer closeSource()

	observations, err := source.Load(ctx)
	if err != nil {
		return nil, describe(err)
	}

	rep, err := report.Build(observations, cfg.ReportOptions())
	if err != nil {
		return nil, describe(err)
	}
	return rep, nil
}

// tokenFilePath returns the path to the token file
func tokenFilePath() string {
	// Store token file alongside the database
	return filepath.Join(filepath.Dir(cfg.DBPath), ".liftreport-token")
}

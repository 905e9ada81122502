package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/liftreport/liftreport/internal/config"
	"github.com/liftreport/liftreport/internal/logger"
	"github.com/liftreport/liftreport/internal/report"
)

var (
	configPath string
	verbose    bool

	// cfg is resolved before any command runs.
	cfg *config.Config

	flags struct {
		data            string
		db              string
		source          string
		groupColumn     string
		convertedColumn string
		groupA          string
		groupB          string
		aov             float64
		confidence      float64
		exportPath      string
	}
)

var rootCmd = &cobra.Command{
	Use:   "liftreport",
	Short: "liftreport - conversion rate A/B test reports",
	Long: `liftreport compares the conversion rates of two groups in a dataset,
tests the difference for significance and estimates its business impact.

Running without a subcommand prints the report (same as 'liftreport results').`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
	RunE:              runResults, // Default action is the report
}

// Execute runs the root command and prints any error for the user.
func Execute() error {
	err := rootCmd.ExecuteContext(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, errorMessage(err))
	}
	return err
}

func init() {
	defaults := config.Default()

	// Global flags
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", getEnvOrDefault("LIFTREPORT_CONFIG", config.DefaultPath), "config file path")
	pf.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	pf.StringVar(&flags.data, "data", defaults.DataPath, "CSV dataset path")
	pf.StringVar(&flags.db, "db", defaults.DBPath, "SQLite database path")
	pf.StringVar(&flags.source, "source", defaults.Source, "dataset source (csv or sqlite)")
	pf.StringVar(&flags.groupColumn, "group-column", defaults.GroupColumn, "column holding the group label")
	pf.StringVar(&flags.convertedColumn, "converted-column", defaults.ConvertedColumn, "column holding the conversion flag")
	pf.StringVar(&flags.groupA, "group-a", defaults.GroupA, "group measured against the baseline")
	pf.StringVar(&flags.groupB, "group-b", defaults.GroupB, "baseline group")
	pf.Float64Var(&flags.aov, "aov", defaults.AverageOrderValue, "average order value in dollars")
	pf.Float64Var(&flags.confidence, "confidence", defaults.ConfidenceLevel, "confidence level (0.90, 0.95 or 0.99)")
	pf.StringVar(&flags.exportPath, "export-path", defaults.ExportPath, "JSON export path")
}

// loadConfig resolves the configuration. Flags override the config file and
// environment only when set explicitly.
func loadConfig(cmd *cobra.Command, args []string) error {
	if verbose {
		logger.SetLevel(slog.LevelDebug)
	}

	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}

	set := cmd.Flags().Changed
	if set("data") {
		loaded.DataPath = flags.data
	}
	if set("db") {
		loaded.DBPath = flags.db
	}
	if set("source") {
		loaded.Source = flags.source
	}
	if set("group-column") {
		loaded.GroupColumn = flags.groupColumn
	}
	if set("converted-column") {
		loaded.ConvertedColumn = flags.convertedColumn
	}
	if set("group-a") {
		loaded.GroupA = flags.groupA
	}
	if set("group-b") {
		loaded.GroupB = flags.groupB
	}
	if set("aov") {
		loaded.AverageOrderValue = flags.aov
	}
	if set("confidence") {
		loaded.ConfidenceLevel = flags.confidence
	}
	if set("export-path") {
		loaded.ExportPath = flags.exportPath
	}

	if err := loaded.Validate(); err != nil {
		return err
	}

	cfg = loaded
	logger.Debug("configuration loaded", "config", configPath, "source", cfg.Source, "path", cfg.SourcePath())
	return nil
}

// reportError carries the user-facing message for a report that could not
// be produced.
type reportError struct {
	msg report.Message
	err error
}

func (e *reportError) Error() string { return e.msg.String() }

func (e *reportError) Unwrap() error { return e.err }

func describe(err error) error {
	path := ""
	if cfg != nil {
		path = cfg.SourcePath()
	}
	return &reportError{msg: report.Describe(err, path), err: err}
}

func errorMessage(err error) string {
	var re *reportError
	if errors.As(err, &re) {
		return re.Error()
	}
	return fmt.Sprintf("Error: %v", err)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

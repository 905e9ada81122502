package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/liftreport/liftreport/internal/config"
	"github.com/liftreport/liftreport/internal/dataset"
	"github.com/liftreport/liftreport/internal/logger"
	"github.com/liftreport/liftreport/internal/report"
	"github.com/liftreport/liftreport/internal/stats"
	"github.com/liftreport/liftreport/internal/store"
)

var importCmd = &cobra.Command{
	Use:   "import [csv]",
	Short: "Load a CSV dataset into the SQLite store",
	Long: `Load a CSV dataset into the SQLite database, replacing the observations
stored by a previous import. Defaults to the configured data path.

Examples:
  liftreport import data/google_merch_users.csv
  liftreport import --db ./reports.db
  liftreport results --source sqlite`,
	Args: cobra.MaximumNArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	path := cfg.DataPath
	if len(args) == 1 {
		path = args[0]
	}

	observations, err := dataset.CSVFile{Path: path, Schema: cfg.Schema()}.Load(cmd.Context())
	if err != nil {
		return &reportError{msg: report.Describe(err, path), err: err}
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	return withStore(func(s *store.SQLiteStore) error {
		imp, err := s.ReplaceObservations(cmd.Context(), path, observations)
		if err != nil {
			return err
		}
		logger.Debug("import recorded", "id", imp.ID, "rows", imp.Rows)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Imported %s observations from %s into %s\n", report.Count(imp.Rows), path, cfg.DBPath)
		fmt.Fprintln(out)

		counts, err := s.GroupCounts(cmd.Context())
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "GROUP\tOBSERVATIONS\tCONVERSIONS")
		for _, c := range counts {
			fmt.Fprintf(w, "%s\t%s\t%s\n", c.Group, report.Count(c.N), report.Count(c.Conversions))
		}
		w.Flush()

		// The configured groups must both be present to build a report.
		for _, label := range []string{cfg.GroupA, cfg.GroupB} {
			if _, err := s.GroupSummary(cmd.Context(), label); err != nil {
				if !errors.Is(err, stats.ErrEmptyGroup) {
					return err
				}
				fmt.Fprintf(out, "\nWarning: no observations for group %q\n", label)
			}
		}

		if cfg.Source != config.SourceSQLite {
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Use --source sqlite (or LIFTREPORT_SOURCE=sqlite) to report from the database.")
		}
		return nil
	})
}


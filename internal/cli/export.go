package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/liftreport/liftreport/internal/logger"
	"github.com/liftreport/liftreport/internal/report"
)

var exportStdout bool

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Save the results as JSON",
	Long: `Save the comparison results to the export file, replacing any previous
export.

Examples:
  liftreport export
  liftreport export --export-path out/results.json
  liftreport export --stdout > results.json`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().BoolVar(&exportStdout, "stdout", false, "write JSON to stdout instead of the export file")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	rep, err := buildReport(cmd.Context())
	if err != nil {
		return err
	}

	record := rep.Result.Export()
	if exportStdout {
		return report.EncodeExport(cmd.OutOrStdout(), record)
	}

	if err := report.WriteExport(cfg.ExportPath, record); err != nil {
		return err
	}
	logger.Debug("results exported", "path", cfg.ExportPath)

	fmt.Fprintf(cmd.OutOrStdout(), "Saved to %s\n", cfg.ExportPath)
	return nil
}

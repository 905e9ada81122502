package cli

import (
	"github.com/spf13/cobra"

	"github.com/liftreport/liftreport/internal/report"
)

var (
	resultsWidth int
	resultsTrend bool
)

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Show the A/B test report",
	Long: `Show conversion rates, the significance test, the business impact and a
recommendation for the two configured groups.

Examples:
  liftreport results
  liftreport results --aov 80 --confidence 0.99
  liftreport results --group-a mobile --group-b desktop --trend`,
	Args: cobra.NoArgs,
	RunE: runResults,
}

func init() {
	for _, cmd := range []*cobra.Command{rootCmd, resultsCmd} {
		cmd.Flags().IntVar(&resultsWidth, "width", 60, "bar chart width")
		cmd.Flags().BoolVar(&resultsTrend, "trend", false, "plot the cumulative conversion rate")
	}
	rootCmd.AddCommand(resultsCmd)
}

func runResults(cmd *cobra.Command, args []string) error {
	rep, err := buildReport(cmd.Context())
	if err != nil {
		return err
	}

	return report.RenderText(cmd.OutOrStdout(), rep, report.TextOptions{
		Width: resultsWidth,
		Trend: resultsTrend,
	})
}

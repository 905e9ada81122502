package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/liftreport/liftreport/internal/dataset"
	"github.com/liftreport/liftreport/internal/report"
	"github.com/liftreport/liftreport/internal/store"
)

var summaryRows int

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show per-group statistics and sample rows",
	Long: `Show count, conversions and column means for every group in the dataset,
followed by its first rows.`,
	Args: cobra.NoArgs,
	RunE: runSummary,
}

func init() {
	summaryCmd.Flags().IntVarP(&summaryRows, "rows", "n", 10, "number of sample rows to show")
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, args []string) error {
	source, closeSource, err := openSource(cfg)
	if err != nil {
		return err
	}
	defer closeSource()

	observations, err := source.Load(cmd.Context())
	if err != nil {
		return describe(err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "SOURCE: %s (%s)\n", cfg.SourcePath(), cfg.Source)
	if s, ok := source.(*store.SQLiteStore); ok {
		stored, err := s.Count(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "STORED: %s rows\n", report.Count(stored))

		imp, err := s.LatestImport(cmd.Context())
		switch {
		case err == nil:
			fmt.Fprintf(out, "IMPORTED: %s from %s\n", imp.CreatedAt.Format("2006-01-02 15:04"), imp.Source)
		case !errors.Is(err, store.ErrNotFound):
			return err
		}
	}
	fmt.Fprintf(out, "OBSERVATIONS: %s\n", report.Count(len(observations)))
	fmt.Fprintln(out)

	// Print table
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "GROUP\tCOUNT\tCONVERSIONS\tCONVERSION MEAN\tPAGE VIEWS\tSESSIONS")
	for _, agg := range dataset.Aggregate(observations) {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.4f\t%s\t%s\n",
			agg.Group,
			report.Count(agg.Count),
			report.Count(agg.Conversions),
			agg.ConversionMean,
			report.Mean(agg.PageViewsMean),
			report.Mean(agg.SessionsMean),
		)
	}
	w.Flush()

	sample := dataset.Head(observations, summaryRows)
	if len(sample) == 0 {
		return nil
	}

	fmt.Fprintln(out)
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tGROUP\tCONVERTED\tPAGE VIEWS\tSESSIONS")
	for i, o := range sample {
		fmt.Fprintf(w, "%d\t%s\t%t\t%s\t%s\n",
			i+1,
			o.Group,
			o.Converted,
			optional(o.PageViews, o.HasPageViews),
			optional(o.Sessions, o.HasSessions),
		)
	}
	return w.Flush()
}

func optional(v float64, ok bool) string {
	if !ok {
		return "-"
	}
	return fmt.Sprintf("%g", v)
}

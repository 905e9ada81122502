package report_test

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/liftreport/liftreport/internal/dataset"
	"github.com/liftreport/liftreport/internal/report"
	"github.com/liftreport/liftreport/internal/stats"
	"github.com/liftreport/liftreport/internal/testutil"
)

func defaultOptions() report.Options {
	return report.Options{
		GroupA:     "desktop",
		GroupB:     "mobile",
		Params:     stats.DefaultParams(),
		SampleRows: report.DefaultSampleRows,
	}
}

func TestBuild(t *testing.T) {
	observations := testutil.Groups("desktop", 1000, 80, "mobile", 3000, 150)

	rep, err := report.Build(observations, defaultOptions())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if rep.Observations != 4000 {
		t.Errorf("got %d observations, want 4000", rep.Observations)
	}
	if rep.Title() != "Desktop vs Mobile" {
		t.Errorf("got title %q", rep.Title())
	}
	if len(rep.Rates) != 2 || rep.Rates[0].Label != "Desktop" || rep.Rates[1].Label != "Mobile" {
		t.Fatalf("unexpected rate bars: %+v", rep.Rates)
	}

	// Error bars are 1.96 standard errors regardless of the interval setting
	wantMargin := 1.959964 * math.Sqrt(0.08*0.92/1000)
	if math.Abs(rep.Rates[0].ErrorMargin-wantMargin) > 1e-6 {
		t.Errorf("got error margin %v, want %v", rep.Rates[0].ErrorMargin, wantMargin)
	}
	if rep.Rates[0].WilsonLower >= 0.08 || rep.Rates[0].WilsonUpper <= 0.08 {
		t.Errorf("Wilson interval [%v, %v] does not contain 0.08", rep.Rates[0].WilsonLower, rep.Rates[0].WilsonUpper)
	}

	if len(rep.Revenue) != 3 {
		t.Fatalf("got %d revenue bars, want 3", len(rep.Revenue))
	}
	if rep.Revenue[0].Label != "Current Mobile Revenue" || rep.Revenue[1].Label != "If Mobile = Desktop Revenue" {
		t.Errorf("unexpected revenue labels: %+v", rep.Revenue)
	}
	// 3000 * (0.08 - 0.05) * 50
	if math.Abs(rep.Revenue[2].Value-4500) > 1e-6 {
		t.Errorf("got monthly opportunity %v, want 4500", rep.Revenue[2].Value)
	}

	if rep.Advice.Level != stats.RecommendStrong {
		t.Errorf("got advice level %v, want strong", rep.Advice.Level)
	}
	if !strings.HasPrefix(rep.Advice.Headline, "STRONG RECOMMENDATION") {
		t.Errorf("got headline %q", rep.Advice.Headline)
	}
	if len(rep.Advice.Actions) != 4 {
		t.Errorf("got %d actions, want 4", len(rep.Advice.Actions))
	}

	if len(rep.Aggregates) != 2 {
		t.Errorf("got %d aggregates, want 2", len(rep.Aggregates))
	}
	if len(rep.Sample) != report.DefaultSampleRows {
		t.Errorf("got %d sample rows, want %d", len(rep.Sample), report.DefaultSampleRows)
	}
	if len(rep.TrendA) == 0 || len(rep.TrendA) > 60 || len(rep.TrendB) > 60 {
		t.Errorf("unexpected trend lengths %d/%d", len(rep.TrendA), len(rep.TrendB))
	}
	if last := rep.TrendA[len(rep.TrendA)-1]; math.Abs(last-0.08) > 1e-12 {
		t.Errorf("trend should end at the group rate, got %v", last)
	}
}

func TestBuild_WeakAdvice(t *testing.T) {
	observations := testutil.Groups("desktop", 1000, 50, "mobile", 1000, 40)

	rep, err := report.Build(observations, defaultOptions())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if rep.Advice.Headline != "WEAK RECOMMENDATION: Monitor, gather more data" {
		t.Errorf("got headline %q", rep.Advice.Headline)
	}
	if len(rep.Advice.Actions) != 0 {
		t.Errorf("expected no actions, got %v", rep.Advice.Actions)
	}
}

func TestBuild_NoPartialReport(t *testing.T) {
	tests := []struct {
		name         string
		observations []dataset.Observation
		want         error
	}{
		{"missing baseline group", testutil.Observations("desktop", 100, 5), stats.ErrEmptyGroup},
		{"missing comparison group", testutil.Observations("mobile", 100, 5), stats.ErrEmptyGroup},
		{"baseline never converted", testutil.Groups("desktop", 100, 5, "mobile", 100, 0), stats.ErrDivisionUndefined},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep, err := report.Build(tt.observations, defaultOptions())
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
			if rep != nil {
				t.Error("expected no report")
			}
		})
	}
}

func TestDescribe(t *testing.T) {
	missing := report.Describe(dataset.ErrDatasetMissing, "data/users.csv")
	if !missing.NotFound || missing.Title != "Data file not found!" {
		t.Errorf("unexpected message: %+v", missing)
	}
	if !strings.Contains(missing.Detail, "data/users.csv") {
		t.Errorf("expected path in detail, got %q", missing.Detail)
	}

	generic := report.Describe(stats.ErrEmptyGroup, "data/users.csv")
	if generic.NotFound {
		t.Error("expected generic message")
	}
	if !strings.HasPrefix(generic.Title, "Error: ") || generic.Detail != "Please check your data file and try again." {
		t.Errorf("unexpected message: %+v", generic)
	}
	if !strings.Contains(generic.String(), "\n") {
		t.Errorf("expected two-line message, got %q", generic.String())
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{report.Label("mobile"), "Mobile"},
		{report.Label(""), ""},
		{report.Percent(0.0512), "5.12%"},
		{report.Points(0.01), "1.00pp"},
		{report.Money(1234567.4), "$1,234,567"},
		{report.Money(-2500), "-$2,500"},
		{report.Money(-0.2), "$0"},
		{report.Count(12345), "12,345"},
		{report.Mean(math.NaN()), "-"},
		{report.Mean(2.5), "2.50"},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}

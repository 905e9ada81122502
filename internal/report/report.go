// Package report turns a dataset and the user's settings into everything the
// dashboard shows: key metrics, chart data, the recommendation and the
// export record. Rendering lives in text.go, charts.go and the server.
package report

import (
	"github.com/liftreport/liftreport/internal/dataset"
	"github.com/liftreport/liftreport/internal/stats"
)

const (
	// DefaultSampleRows is the number of raw rows shown with a report.
	DefaultSampleRows = 100

	// errorBarConfidence is fixed so error bars do not move with the
	// interval setting.
	errorBarConfidence = 0.95

	trendPoints = 60
)

// Options select the groups to compare and the comparison parameters.
// GroupA is measured against the baseline GroupB.
type Options struct {
	GroupA     string
	GroupB     string
	Params     stats.Params
	SampleRows int
}

// Report is a complete, rendered-ready comparison.
type Report struct {
	Options      Options
	Result       *stats.ComparisonResult
	Observations int

	Rates   []RateBar
	Revenue []RevenueBar
	Advice  Advice

	Aggregates []dataset.GroupAggregate
	Sample     []dataset.Observation

	// Cumulative conversion rate per group, in dataset order.
	TrendA []float64
	TrendB []float64
}

// RateBar is one bar of the conversion rate chart.
type RateBar struct {
	Label       string
	N           int
	Rate        float64
	ErrorMargin float64 // half-width of the 95% error bar
	WilsonLower float64
	WilsonUpper float64
}

// RevenueBar is one bar of the business impact chart.
type RevenueBar struct {
	Label string
	Value float64
}

// Build computes the full report. Any error from the metrics engine is
// returned unchanged and no report is produced.
func Build(observations []dataset.Observation, opts Options) (*Report, error) {
	a, err := stats.Summarize(observations, opts.GroupA)
	if err != nil {
		return nil, err
	}
	b, err := stats.Summarize(observations, opts.GroupB)
	if err != nil {
		return nil, err
	}

	result, err := stats.Compare(a, b, opts.Params)
	if err != nil {
		return nil, err
	}

	return &Report{
		Options:      opts,
		Result:       result,
		Observations: len(observations),
		Rates: []RateBar{
			rateBar(a, opts.Params.ConfidenceLevel),
			rateBar(b, opts.Params.ConfidenceLevel),
		},
		Revenue:    revenueBars(result),
		Advice:     advise(result),
		Aggregates: dataset.Aggregate(observations),
		Sample:     dataset.Head(observations, opts.SampleRows),
		TrendA:     cumulativeRates(observations, opts.GroupA, trendPoints),
		TrendB:     cumulativeRates(observations, opts.GroupB, trendPoints),
	}, nil
}

// Title is the report heading, e.g. "Desktop vs Mobile".
func (r *Report) Title() string {
	return Label(r.Options.GroupA) + " vs " + Label(r.Options.GroupB)
}

func rateBar(g stats.GroupSummary, confidence float64) RateBar {
	lower, upper := stats.WilsonInterval(g.Conversions, g.N, confidence)
	return RateBar{
		Label:       Label(g.Label),
		N:           g.N,
		Rate:        g.Rate,
		ErrorMargin: stats.ZScore(errorBarConfidence) * g.StandardError(),
		WilsonLower: lower,
		WilsonUpper: upper,
	}
}

func revenueBars(r *stats.ComparisonResult) []RevenueBar {
	a, b := Label(r.GroupA.Label), Label(r.GroupB.Label)
	return []RevenueBar{
		{Label: "Current " + b + " Revenue", Value: r.Impact.CurrentRevenue},
		{Label: "If " + b + " = " + a + " Revenue", Value: r.Impact.PotentialRevenue},
		{Label: "Monthly Opportunity", Value: r.Impact.MonthlyOpportunity},
	}
}

// cumulativeRates traces the running conversion rate of one group,
// reduced to at most points samples.
func cumulativeRates(observations []dataset.Observation, label string, points int) []float64 {
	var rates []float64
	var n, conversions int
	for _, o := range observations {
		if o.Group != label {
			continue
		}
		n++
		if o.Converted {
			conversions++
		}
		rates = append(rates, float64(conversions)/float64(n))
	}

	if points <= 0 || len(rates) <= points {
		return rates
	}

	sampled := make([]float64, points)
	for i := range sampled {
		sampled[i] = rates[(i+1)*len(rates)/points-1]
	}
	return sampled
}

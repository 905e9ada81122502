package report

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/liftreport/liftreport/internal/stats"
)

// Terminal palette
var (
	colorPrimary = lipgloss.Color("63")
	colorSubtle  = lipgloss.Color("240")
	colorSuccess = lipgloss.Color("42")
	colorWarning = lipgloss.Color("220")
	colorInfo    = lipgloss.Color("39")
	colorError   = lipgloss.Color("196")

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	sectionStyle = lipgloss.NewStyle().Bold(true).MarginTop(1)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorSubtle)
	cardStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSubtle).
			Padding(0, 1).
			Width(22)
	adviceStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			PaddingLeft(1)
)

// TextOptions control the terminal rendering.
type TextOptions struct {
	Width int  // bar chart width in cells
	Trend bool // include the cumulative conversion rate plot
}

// RenderText writes the report for a terminal.
func RenderText(w io.Writer, r *Report, opts TextOptions) error {
	if opts.Width <= 0 {
		opts.Width = 60
	}
	res := r.Result

	var b strings.Builder
	b.WriteString(titleStyle.Render("A/B Testing Report: "+r.Title()) + "\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("%s observations, %.0f%% confidence, AOV %s",
		Count(r.Observations), res.Params.ConfidenceLevel*100, Money(res.Params.AverageOrderValue))) + "\n")

	// Key metrics
	b.WriteString(sectionStyle.Render("Key Metrics") + "\n")
	cards := []string{
		card(Label(res.GroupA.Label)+" CR", Percent(res.GroupA.Rate), Count(res.GroupA.N)+" users"),
		card(Label(res.GroupB.Label)+" CR", Percent(res.GroupB.Rate), Count(res.GroupB.N)+" users"),
		card(Label(res.GroupA.Label)+" Lift", fmt.Sprintf("%.1f%%", res.Impact.Lift*100), Points(res.Impact.AbsoluteDifference)),
		card("Annual Opportunity", Money(res.Impact.AnnualOpportunity), fmt.Sprintf("p=%.3f", res.Test.PValue)),
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cards...) + "\n")

	// Conversion rates
	b.WriteString(sectionStyle.Render("Conversion Rate Comparison") + "\n")
	labels := make([]string, len(r.Rates))
	values := make([]float64, len(r.Rates))
	annotations := make([]string, len(r.Rates))
	for i, bar := range r.Rates {
		labels[i] = bar.Label
		values[i] = bar.Rate
		annotations[i] = fmt.Sprintf("%s ± %s", Percent(bar.Rate), Points(bar.ErrorMargin))
	}
	b.WriteString(renderTextBars(values, labels, annotations, opts.Width) + "\n")
	if res.Significant() {
		b.WriteString(lipgloss.NewStyle().Foreground(colorSuccess).Bold(true).
			Render(fmt.Sprintf("★ Statistically Significant (p=%.3f)", res.Test.PValue)) + "\n")
	}

	// Statistical details
	b.WriteString(sectionStyle.Render("Statistical Analysis") + "\n")
	significance := "No"
	if res.Significant() {
		significance = "Yes"
	}
	fmt.Fprintf(&b, "Test Type:            Two-sample Z-test for proportions\n")
	fmt.Fprintf(&b, "Z-statistic:          %.3f\n", res.Test.ZStatistic)
	fmt.Fprintf(&b, "P-value:              %.4f\n", res.Test.PValue)
	fmt.Fprintf(&b, "Significance:         %s (α=%.2f)\n", significance, stats.SignificanceLevel)
	fmt.Fprintf(&b, "Absolute Difference:  %s\n", Points(res.Impact.AbsoluteDifference))
	fmt.Fprintf(&b, "Relative Lift:        %.1f%%\n", res.Impact.Lift*100)
	fmt.Fprintf(&b, "%.0f%% CI:               [%s, %s]\n", res.Params.ConfidenceLevel*100, Points(res.CILower), Points(res.CIUpper))

	// Business impact
	b.WriteString(sectionStyle.Render("Business Impact") + "\n")
	labels = make([]string, len(r.Revenue))
	values = make([]float64, len(r.Revenue))
	annotations = make([]string, len(r.Revenue))
	for i, bar := range r.Revenue {
		labels[i] = bar.Label
		values[i] = bar.Value
		annotations[i] = Money(bar.Value)
	}
	b.WriteString(renderTextBars(values, labels, annotations, opts.Width) + "\n")

	// Recommendation
	b.WriteString(sectionStyle.Render("Recommendations") + "\n")
	b.WriteString(renderAdvice(r.Advice) + "\n")

	if opts.Trend {
		b.WriteString(sectionStyle.Render("Cumulative Conversion Rate") + "\n")
		b.WriteString(renderTrend(r, opts.Width) + "\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func card(title, value, delta string) string {
	return cardStyle.Render(
		mutedStyle.Render(title) + "\n" +
			lipgloss.NewStyle().Bold(true).Render(value) + "\n" +
			mutedStyle.Render(delta),
	)
}

func renderAdvice(a Advice) string {
	color := colorInfo
	switch a.Level {
	case stats.RecommendStrong:
		color = colorSuccess
	case stats.RecommendModerate:
		color = colorWarning
	}

	lines := []string{lipgloss.NewStyle().Bold(true).Foreground(color).Render(a.Headline)}
	if a.Detail != "" {
		lines = append(lines, a.Detail)
	}
	for i, action := range a.Actions {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, action))
	}

	return adviceStyle.BorderForeground(color).Render(strings.Join(lines, "\n"))
}

// renderTextBars draws a horizontal bar chart. Negative values are drawn in red
// with their magnitude.
func renderTextBars(values []float64, labels, annotations []string, width int) string {
	if len(values) == 0 {
		return ""
	}

	maxVal := 0.0
	for _, v := range values {
		maxVal = math.Max(maxVal, math.Abs(v))
	}
	if maxVal == 0 {
		maxVal = 1
	}

	maxLabelLen := 0
	for _, l := range labels {
		maxLabelLen = max(maxLabelLen, lipgloss.Width(l))
	}

	barWidth := max(width-maxLabelLen-4, 10)

	lines := make([]string, len(values))
	for i, v := range values {
		barLen := int(math.Abs(v) / maxVal * float64(barWidth))
		bar := strings.Repeat("█", barLen)
		if v < 0 {
			bar = lipgloss.NewStyle().Foreground(colorError).Render(bar)
		}
		lines[i] = fmt.Sprintf("%*s │%s %s", maxLabelLen, labels[i], bar, annotations[i])
	}

	return strings.Join(lines, "\n")
}

func renderTrend(r *Report, width int) string {
	if len(r.TrendA) == 0 || len(r.TrendB) == 0 {
		return mutedStyle.Render("No data available")
	}

	// asciigraph plots series against their index, so stretch both to the
	// same length.
	n := max(len(r.TrendA), len(r.TrendB))
	series := [][]float64{
		percentSeries(r.TrendA, n),
		percentSeries(r.TrendB, n),
	}

	return asciigraph.PlotMany(series,
		asciigraph.Height(10),
		asciigraph.Width(max(width, 20)),
		asciigraph.Precision(2),
		asciigraph.SeriesColors(asciigraph.Green, asciigraph.Red),
		asciigraph.SeriesLegends(Label(r.Options.GroupA), Label(r.Options.GroupB)),
		asciigraph.Caption("conversion rate (%) as observations accumulate"),
	)
}

func percentSeries(rates []float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = rates[i*len(rates)/n] * 100
	}
	return out
}

package report

import (
	"bytes"
	"fmt"
	"html"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Chart colors, one per bar.
var (
	rateColors    = []string{"2ecc71", "e74c3c"}
	revenueColors = []string{"d3d3d3", "2ecc71", "3498db"}
)

const (
	chartWidth  = 800
	chartHeight = 400
	barWidth    = 100
	barSpacing  = 60
)

// RateChartSVG renders the conversion rate comparison as an SVG document.
func RateChartSVG(r *Report) (string, error) {
	values := make([]chart.Value, len(r.Rates))
	maxRate := 0.0
	for i, bar := range r.Rates {
		values[i] = chart.Value{
			Label: fmt.Sprintf("%s %s ± %s", html.EscapeString(bar.Label), Percent(bar.Rate), Points(bar.ErrorMargin)),
			Value: bar.Rate * 100,
			Style: barStyle(rateColors[i%len(rateColors)]),
		}
		maxRate = math.Max(maxRate, (bar.Rate+bar.ErrorMargin)*100)
	}

	title := "Conversion Rate (%)"
	if r.Result.Significant() {
		title = fmt.Sprintf("Conversion Rate (%%) - Statistically Significant (p=%.3f)", r.Result.Test.PValue)
	}

	return renderBars(title, values, 0, maxRate*1.4, func(v interface{}) string {
		return fmt.Sprintf("%.1f%%", v.(float64))
	})
}

// RevenueChartSVG renders the business impact bars as an SVG document.
func RevenueChartSVG(r *Report) (string, error) {
	values := make([]chart.Value, len(r.Revenue))
	lo, hi := 0.0, 0.0
	for i, bar := range r.Revenue {
		values[i] = chart.Value{
			Label: fmt.Sprintf("%s %s", html.EscapeString(bar.Label), Money(bar.Value)),
			Value: bar.Value,
			Style: barStyle(revenueColors[i%len(revenueColors)]),
		}
		lo = math.Min(lo, bar.Value)
		hi = math.Max(hi, bar.Value)
	}

	return renderBars("Revenue ($)", values, lo*1.2, hi*1.2, func(v interface{}) string {
		return Money(v.(float64))
	})
}

// go-chart writes labels into the SVG verbatim, so callers escape them.
func renderBars(title string, values []chart.Value, lo, hi float64, format chart.ValueFormatter) (string, error) {
	if hi <= lo {
		hi = lo + 1
	}

	graph := chart.BarChart{
		Title:      title,
		Width:      chartWidth,
		Height:     chartHeight,
		BarWidth:   barWidth,
		BarSpacing: barSpacing,
		Background: chart.Style{Padding: chart.Box{Top: 48, Left: 16, Right: 16, Bottom: 16}},
		YAxis: chart.YAxis{
			Range:          &chart.ContinuousRange{Min: lo, Max: hi},
			ValueFormatter: format,
		},
		UseBaseValue: lo < 0,
		BaseValue:    0,
		Bars:         values,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.SVG, &buf); err != nil {
		return "", fmt.Errorf("failed to render chart: %w", err)
	}
	return buf.String(), nil
}

func barStyle(hex string) chart.Style {
	return chart.Style{
		FillColor:   drawing.ColorFromHex(hex),
		StrokeColor: drawing.ColorBlack,
		StrokeWidth: 1.5,
	}
}

package report

import (
	"fmt"

	"github.com/liftreport/liftreport/internal/stats"
)

// Advice is the recommendation shown under a report.
type Advice struct {
	Level    stats.Recommendation
	Headline string
	Detail   string
	Actions  []string
}

func advise(r *stats.ComparisonResult) Advice {
	a, b := r.GroupA.Label, r.GroupB.Label

	switch r.Recommendation {
	case stats.RecommendStrong:
		return Advice{
			Level:    stats.RecommendStrong,
			Headline: fmt.Sprintf("STRONG RECOMMENDATION: Invest in %s optimization", b),
			Detail:   "Priority Actions:",
			Actions: []string{
				fmt.Sprintf("Optimize %s checkout flow (reduce form fields, add %s payments)", b, b),
				fmt.Sprintf("Improve %s page load speed (< 3 seconds)", b),
				fmt.Sprintf("A/B test %s-specific improvements", b),
				fmt.Sprintf("Focus on organic traffic first (highest %s advantage)", a),
			},
		}
	case stats.RecommendModerate:
		return Advice{
			Level:    stats.RecommendModerate,
			Headline: fmt.Sprintf("MODERATE RECOMMENDATION: Consider %s optimization", b),
			Detail:   "Effect size is small but statistically significant. Test specific improvements.",
		}
	default:
		return Advice{
			Level:    stats.RecommendWeak,
			Headline: "WEAK RECOMMENDATION: Monitor, gather more data",
		}
	}
}

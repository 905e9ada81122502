package stats

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// ZScore returns the two-sided critical value of the standard normal
// distribution for a confidence level, e.g. 1.959964 for 0.95.
// Levels outside (0, 1) yield NaN.
func ZScore(confidence float64) float64 {
	if !(confidence > 0 && confidence < 1) {
		return math.NaN()
	}
	return distuv.UnitNormal.Quantile((1 + confidence) / 2)
}

// twoSidedPValue computes 2 * (1 - Φ(|z|)).
func twoSidedPValue(z float64) float64 {
	p := 2 * distuv.UnitNormal.Survival(math.Abs(z))
	return math.Min(p, 1)
}

package stats

import "math"

// WilsonInterval calculates the Wilson score interval for one group's
// conversion rate. The report shows it next to each rate; it stays inside
// [0, 1] even for tiny groups, unlike the Wald interval on the difference.
func WilsonInterval(conversions, n int, confidence float64) (lower, upper float64) {
	if n <= 0 {
		return 0, 0
	}

	z2 := math.Pow(ZScore(confidence), 2)
	trials := float64(n)
	p := float64(conversions) / trials

	scale := 1 / (1 + z2/trials)
	center := scale * (p + z2/(2*trials))
	spread := scale * math.Sqrt(z2*(p*(1-p)/trials+z2/(4*trials*trials)))

	return math.Max(0, center-spread), math.Min(1, center+spread)
}

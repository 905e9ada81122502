package stats

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidParams is returned by Compare when Params fail validation.
var ErrInvalidParams = errors.New("invalid comparison parameters")

// DefaultPeriodsPerYear treats each month as an independent recurring period.
const DefaultPeriodsPerYear = 12

// Params are the external inputs of a comparison
type Params struct {
	AverageOrderValue float64
	ConfidenceLevel   float64 // two-sided, in (0, 1)
	PeriodsPerYear    int
}

// DefaultParams mirrors the dashboard defaults: $50 orders at 95% confidence.
func DefaultParams() Params {
	return Params{
		AverageOrderValue: 50,
		ConfidenceLevel:   0.95,
		PeriodsPerYear:    DefaultPeriodsPerYear,
	}
}

// Validate reports an ErrInvalidParams error for a non-positive order value,
// a confidence level outside (0, 1) or a non-positive period count.
func (p Params) Validate() error {
	if !(p.AverageOrderValue > 0) || math.IsInf(p.AverageOrderValue, 0) {
		return fmt.Errorf("%w: average order value must be positive, got %v", ErrInvalidParams, p.AverageOrderValue)
	}
	if !(p.ConfidenceLevel > 0 && p.ConfidenceLevel < 1) {
		return fmt.Errorf("%w: confidence level must be between 0 and 1, got %v", ErrInvalidParams, p.ConfidenceLevel)
	}
	if p.PeriodsPerYear <= 0 {
		return fmt.Errorf("%w: periods per year must be positive, got %d", ErrInvalidParams, p.PeriodsPerYear)
	}
	return nil
}

// ZTest is the outcome of a two-sided two-proportion z-test
type ZTest struct {
	ZStatistic float64
	PValue     float64
}

// CompareProportions performs a two-proportion z-test of a against b using
// the pooled proportion under the null hypothesis (pA = pB).
// When the pooled proportion is 0 or 1 there is no variance and the result
// is z = 0, p = 1.
func CompareProportions(a, b GroupSummary) ZTest {
	pooledP := float64(a.Conversions+b.Conversions) / float64(a.N+b.N)
	se := math.Sqrt(pooledP * (1 - pooledP) * (1/float64(a.N) + 1/float64(b.N)))

	if se == 0 || math.IsNaN(se) {
		return ZTest{ZStatistic: 0, PValue: 1}
	}

	z := (a.Rate - b.Rate) / se
	return ZTest{ZStatistic: z, PValue: twoSidedPValue(z)}
}

// ConfidenceIntervalDiff returns the Wald interval for rateA - rateB.
// The standard error is unpooled, unlike CompareProportions, and the bounds
// are not clamped to [-1, 1].
func ConfidenceIntervalDiff(a, b GroupSummary, confidence float64) (lower, upper float64) {
	se := math.Sqrt(a.Rate*(1-a.Rate)/float64(a.N) + b.Rate*(1-b.Rate)/float64(b.N))
	margin := ZScore(confidence) * se
	diff := a.Rate - b.Rate

	return diff - margin, diff + margin
}

// ComparisonResult is the full statistical comparison of two groups.
// It is never partially populated: Compare returns either all of it or an error.
type ComparisonResult struct {
	GroupA         GroupSummary
	GroupB         GroupSummary
	Test           ZTest
	CILower        float64
	CIUpper        float64
	Impact         Impact
	Recommendation Recommendation
	Params         Params
}

// Compare runs the test, the interval, the business impact and the
// recommendation for group a measured against baseline b.
func Compare(a, b GroupSummary, params Params) (*ComparisonResult, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if err := a.validate(); err != nil {
		return nil, err
	}
	if err := b.validate(); err != nil {
		return nil, err
	}

	test := CompareProportions(a, b)
	lower, upper := ConfidenceIntervalDiff(a, b, params.ConfidenceLevel)

	impact, err := BusinessImpact(a, b, params.AverageOrderValue, params.PeriodsPerYear)
	if err != nil {
		return nil, err
	}

	return &ComparisonResult{
		GroupA:         a,
		GroupB:         b,
		Test:           test,
		CILower:        lower,
		CIUpper:        upper,
		Impact:         impact,
		Recommendation: Recommend(test.PValue, impact.Lift),
		Params:         params,
	}, nil
}

// Significant reports whether the difference is significant at α = 0.05.
func (r *ComparisonResult) Significant() bool {
	return r.Test.PValue < SignificanceLevel
}

package stats

import (
	"errors"
	"fmt"
	"math"
)

// ErrDivisionUndefined is returned when lift is requested against a
// baseline group that never converted.
var ErrDivisionUndefined = errors.New("lift undefined: baseline conversion rate is zero")

// Impact translates the rate difference into revenue.
// Revenue figures assume every observation in the baseline group is one
// period's worth of traffic.
type Impact struct {
	AbsoluteDifference float64 // rateA - rateB
	Lift               float64 // (rateA - rateB) / rateB, NaN when undefined

	CurrentRevenue     float64 // baseline revenue at its own rate
	PotentialRevenue   float64 // baseline revenue at group A's rate
	MonthlyOpportunity float64
	AnnualOpportunity  float64
}

// BusinessImpact computes lift and the revenue opportunity of bringing
// baseline b up to a's conversion rate.
//
// When b's rate is zero the lift is undefined: the returned Impact still
// carries every revenue figure, Lift is NaN and the error wraps
// ErrDivisionUndefined.
func BusinessImpact(a, b GroupSummary, averageOrderValue float64, periodsPerYear int) (Impact, error) {
	diff := a.Rate - b.Rate
	baseline := float64(b.N)
	monthly := baseline * diff * averageOrderValue

	impact := Impact{
		AbsoluteDifference: diff,
		Lift:               math.NaN(),
		CurrentRevenue:     baseline * b.Rate * averageOrderValue,
		PotentialRevenue:   baseline * a.Rate * averageOrderValue,
		MonthlyOpportunity: monthly,
		AnnualOpportunity:  monthly * float64(periodsPerYear),
	}

	if b.Rate == 0 {
		return impact, fmt.Errorf("%w (group %q)", ErrDivisionUndefined, b.Label)
	}

	impact.Lift = diff / b.Rate
	return impact, nil
}

package stats

import "fmt"

const (
	// SignificanceLevel is the α used for both significance and recommendations.
	SignificanceLevel = 0.05

	// StrongLift is the relative lift above which a significant result
	// becomes a strong recommendation.
	StrongLift = 0.10
)

// Recommendation grades how strongly the data supports acting on the gap
type Recommendation int

const (
	RecommendWeak Recommendation = iota
	RecommendModerate
	RecommendStrong
)

// Recommend classifies a result from its p-value and lift.
func Recommend(pValue, lift float64) Recommendation {
	switch {
	case pValue < SignificanceLevel && lift > StrongLift:
		return RecommendStrong
	case pValue < SignificanceLevel:
		return RecommendModerate
	default:
		return RecommendWeak
	}
}

func (r Recommendation) String() string {
	switch r {
	case RecommendStrong:
		return "strong"
	case RecommendModerate:
		return "moderate"
	case RecommendWeak:
		return "weak"
	default:
		return fmt.Sprintf("Recommendation(%d)", int(r))
	}
}

// MarshalText encodes the recommendation as its name.
func (r Recommendation) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

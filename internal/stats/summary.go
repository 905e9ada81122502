package stats

import (
	"errors"
	"fmt"
	"math"

	"github.com/liftreport/liftreport/internal/dataset"
)

var (
	// ErrEmptyGroup is returned when a group has no observations.
	ErrEmptyGroup = errors.New("group has no observations")

	// ErrInvalidCounts is returned when conversions fall outside [0, n].
	ErrInvalidCounts = errors.New("invalid group counts")
)

// GroupSummary holds the conversion counts of one group
type GroupSummary struct {
	Label       string
	N           int
	Conversions int
	Rate        float64
}

// Summarize counts the observations carrying label and their conversions.
func Summarize(observations []dataset.Observation, label string) (GroupSummary, error) {
	var n, conversions int
	for _, o := range observations {
		if o.Group != label {
			continue
		}
		n++
		if o.Converted {
			conversions++
		}
	}

	return NewGroupSummary(label, n, conversions)
}

// NewGroupSummary builds a summary from counts that were aggregated elsewhere,
// such as a SQL GROUP BY.
func NewGroupSummary(label string, n, conversions int) (GroupSummary, error) {
	if n <= 0 {
		return GroupSummary{}, fmt.Errorf("%w: %q", ErrEmptyGroup, label)
	}
	if conversions < 0 || conversions > n {
		return GroupSummary{}, fmt.Errorf("%w: group %q has %d conversions out of %d observations",
			ErrInvalidCounts, label, conversions, n)
	}

	return GroupSummary{
		Label:       label,
		N:           n,
		Conversions: conversions,
		Rate:        float64(conversions) / float64(n),
	}, nil
}

// StandardError is the unpooled (Wald) standard error of the group's rate.
func (g GroupSummary) StandardError() float64 {
	if g.N == 0 {
		return 0
	}
	return math.Sqrt(g.Rate * (1 - g.Rate) / float64(g.N))
}

func (g GroupSummary) validate() error {
	_, err := NewGroupSummary(g.Label, g.N, g.Conversions)
	return err
}

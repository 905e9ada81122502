package dataset

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// GroupAggregate is the descriptive summary of one group.
// Means of auxiliary columns are NaN when the column is absent.
type GroupAggregate struct {
	Group          string
	Count          int
	Conversions    int
	ConversionMean float64
	PageViewsMean  float64
	SessionsMean   float64
}

// Aggregate summarizes every group present in observations, ordered by label.
func Aggregate(observations []Observation) []GroupAggregate {
	type columns struct {
		converted []float64
		pageViews []float64
		sessions  []float64
	}

	byGroup := make(map[string]*columns)
	for _, o := range observations {
		c, ok := byGroup[o.Group]
		if !ok {
			c = &columns{}
			byGroup[o.Group] = c
		}
		c.converted = append(c.converted, boolToFloat(o.Converted))
		if o.HasPageViews {
			c.pageViews = append(c.pageViews, o.PageViews)
		}
		if o.HasSessions {
			c.sessions = append(c.sessions, o.Sessions)
		}
	}

	aggregates := make([]GroupAggregate, 0, len(byGroup))
	for _, group := range Groups(observations) {
		c := byGroup[group]
		aggregates = append(aggregates, GroupAggregate{
			Group:          group,
			Count:          len(c.converted),
			Conversions:    int(floats.Sum(c.converted)),
			ConversionMean: mean(c.converted),
			PageViewsMean:  mean(c.pageViews),
			SessionsMean:   mean(c.sessions),
		})
	}
	return aggregates
}

// Groups returns the distinct group labels, sorted.
func Groups(observations []Observation) []string {
	seen := make(map[string]struct{})
	var groups []string
	for _, o := range observations {
		if _, ok := seen[o.Group]; ok {
			continue
		}
		seen[o.Group] = struct{}{}
		groups = append(groups, o.Group)
	}
	sort.Strings(groups)
	return groups
}

// Head returns at most n observations from the start of the dataset.
func Head(observations []Observation, n int) []Observation {
	if n < 0 {
		n = 0
	}
	if n > len(observations) {
		n = len(observations)
	}
	return observations[:n]
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	return stat.Mean(values, nil)
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

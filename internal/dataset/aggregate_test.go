package dataset_test

import (
	"math"
	"testing"

	"github.com/liftreport/liftreport/internal/dataset"
	"github.com/liftreport/liftreport/internal/testutil"
)

func TestAggregate(t *testing.T) {
	observations := []dataset.Observation{
		{Group: "mobile", Converted: true, PageViews: 4, HasPageViews: true},
		{Group: "desktop", Converted: true, PageViews: 10, HasPageViews: true, Sessions: 2, HasSessions: true},
		{Group: "mobile", Converted: false, PageViews: 2, HasPageViews: true},
		{Group: "desktop", Converted: false, PageViews: 6, HasPageViews: true, Sessions: 4, HasSessions: true},
		{Group: "desktop", Converted: false},
	}

	aggregates := dataset.Aggregate(observations)
	if len(aggregates) != 2 {
		t.Fatalf("got %d groups, want 2", len(aggregates))
	}

	desktop := aggregates[0]
	if desktop.Group != "desktop" {
		t.Fatalf("expected groups sorted by label, got %q first", desktop.Group)
	}
	if desktop.Count != 3 || desktop.Conversions != 1 {
		t.Errorf("got count=%d conversions=%d, want 3/1", desktop.Count, desktop.Conversions)
	}
	if math.Abs(desktop.ConversionMean-1.0/3) > 1e-12 {
		t.Errorf("got conversion mean %v, want 1/3", desktop.ConversionMean)
	}
	if desktop.PageViewsMean != 8 {
		t.Errorf("got page views mean %v, want 8", desktop.PageViewsMean)
	}
	if desktop.SessionsMean != 3 {
		t.Errorf("got sessions mean %v, want 3", desktop.SessionsMean)
	}

	mobile := aggregates[1]
	if mobile.PageViewsMean != 3 {
		t.Errorf("got page views mean %v, want 3", mobile.PageViewsMean)
	}
	if !math.IsNaN(mobile.SessionsMean) {
		t.Errorf("expected NaN sessions mean, got %v", mobile.SessionsMean)
	}
}

func TestAggregate_Empty(t *testing.T) {
	if got := dataset.Aggregate(nil); len(got) != 0 {
		t.Errorf("expected no aggregates, got %v", got)
	}
}

func TestGroups(t *testing.T) {
	observations := testutil.Groups("mobile", 3, 1, "desktop", 2, 0)
	observations = append(observations, dataset.Observation{Group: "tablet"})

	got := dataset.Groups(observations)
	want := []string{"desktop", "mobile", "tablet"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got %v, want %v", got, want)
		}
	}
}

func TestHead(t *testing.T) {
	observations := testutil.Observations("desktop", 5, 0)

	if got := dataset.Head(observations, 3); len(got) != 3 {
		t.Errorf("got %d rows, want 3", len(got))
	}
	if got := dataset.Head(observations, 10); len(got) != 5 {
		t.Errorf("got %d rows, want 5", len(got))
	}
	if got := dataset.Head(observations, 0); len(got) != 0 {
		t.Errorf("got %d rows, want 0", len(got))
	}
}

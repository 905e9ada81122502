// Package dataset loads the per-user observations that a comparison is
// computed from.
package dataset

import (
	"context"
	"errors"
)

var (
	// ErrDatasetMissing is returned when the dataset cannot be obtained.
	ErrDatasetMissing = errors.New("dataset not found")

	// ErrSchema is returned when required columns are absent or a value
	// in them cannot be parsed.
	ErrSchema = errors.New("dataset schema mismatch")
)

// Observation is one subject of the dataset.
type Observation struct {
	Group     string
	Converted bool

	// Auxiliary columns, shown in summaries only.
	PageViews    float64
	Sessions     float64
	HasPageViews bool
	HasSessions  bool
}

// Source provides a full snapshot of the dataset.
type Source interface {
	Load(ctx context.Context) ([]Observation, error)
}

// Schema names the columns of a tabular dataset.
// PageViewsColumn and SessionsColumn are optional; an empty name disables them.
type Schema struct {
	GroupColumn     string
	ConvertedColumn string
	PageViewsColumn string
	SessionsColumn  string
}

// DefaultSchema matches the merchandise store export.
func DefaultSchema() Schema {
	return Schema{
		GroupColumn:     "device",
		ConvertedColumn: "converted",
		PageViewsColumn: "page_views",
		SessionsColumn:  "num_sessions",
	}
}

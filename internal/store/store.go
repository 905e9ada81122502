package store

import (
	"context"

	"github.com/liftreport/liftreport/internal/dataset"
	"github.com/liftreport/liftreport/internal/stats"
)

// Store defines the interface for observation storage operations
type Store interface {
	// Dataset operations
	ReplaceObservations(ctx context.Context, source string, observations []dataset.Observation) (*Import, error)
	Load(ctx context.Context) ([]dataset.Observation, error)
	Count(ctx context.Context) (int, error)

	// Aggregates
	GroupCounts(ctx context.Context) ([]GroupCounts, error)
	GroupSummary(ctx context.Context, label string) (stats.GroupSummary, error)

	// Import history
	LatestImport(ctx context.Context) (*Import, error)

	// Lifecycle
	Close() error
}

var _ Store = (*SQLiteStore)(nil)
var _ dataset.Source = (*SQLiteStore)(nil)

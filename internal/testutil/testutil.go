// Package testutil holds fixtures shared by the package tests.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/liftreport/liftreport/internal/dataset"
	"github.com/liftreport/liftreport/internal/store"
)

// SetupTestStore creates a test database and returns the store.
// Uses t.TempDir() for automatic cleanup on test completion.
func SetupTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")

	s, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}

	t.Cleanup(func() {
		s.Close()
	})

	return s
}

// Observations returns n observations of group, the first conversions of
// which converted.
func Observations(group string, n, conversions int) []dataset.Observation {
	out := make([]dataset.Observation, n)
	for i := range out {
		out[i] = dataset.Observation{Group: group, Converted: i < conversions}
	}
	return out
}

// Groups concatenates two groups of observations.
func Groups(groupA string, nA, convA int, groupB string, nB, convB int) []dataset.Observation {
	return append(Observations(groupA, nA, convA), Observations(groupB, nB, convB)...)
}

// WriteCSV writes observations as a dataset CSV with the default columns and
// returns its path.
func WriteCSV(t *testing.T, observations []dataset.Observation) string {
	t.Helper()

	var b strings.Builder
	b.WriteString("device,converted,page_views,num_sessions\n")
	for i, o := range observations {
		converted := 0
		if o.Converted {
			converted = 1
		}
		fmt.Fprintf(&b, "%s,%d,%d,%d\n", o.Group, converted, i%7+1, i%3+1)
	}

	return WriteFile(t, "users.csv", b.String())
}

// WriteFile writes content to name in a fresh temp dir and returns its path.
func WriteFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/liftreport/liftreport/internal/dataset"
	"github.com/liftreport/liftreport/internal/stats"
)

var ErrNotFound = errors.New("not found")

type SQLiteStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS observations (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    group_label TEXT NOT NULL,
    converted INTEGER NOT NULL CHECK (converted IN (0, 1)),
    page_views REAL,
    num_sessions REAL
);

CREATE INDEX IF NOT EXISTS idx_observations_group ON observations(group_label);

CREATE TABLE IF NOT EXISTS imports (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    source TEXT NOT NULL,
    rows INTEGER NOT NULL,
    created_at INTEGER NOT NULL DEFAULT (unixepoch())
);
`

func Open(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Apply schema
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ReplaceObservations swaps the stored dataset for observations in a single
// transaction and records the import.
func (s *SQLiteStore) ReplaceObservations(ctx context.Context, source string, observations []dataset.Observation) (*Import, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM observations`); err != nil {
		return nil, fmt.Errorf("failed to clear observations: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO observations (group_label, converted, page_views, num_sessions) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, o := range observations {
		converted := 0
		if o.Converted {
			converted = 1
		}
		_, err := stmt.ExecContext(ctx, o.Group, converted,
			nullableFloat(o.PageViews, o.HasPageViews),
			nullableFloat(o.Sessions, o.HasSessions),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert observation: %w", err)
		}
	}

	now := time.Now().Unix()
	result, err := tx.ExecContext(ctx,
		`INSERT INTO imports (source, rows, created_at) VALUES (?, ?, ?)`,
		source, len(observations), now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to record import: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit import: %w", err)
	}

	return &Import{
		ID:        id,
		Source:    source,
		Rows:      len(observations),
		CreatedAt: time.Unix(now, 0),
	}, nil
}

// Load returns every stored observation in insertion order.
// An empty store is reported as a missing dataset.
func (s *SQLiteStore) Load(ctx context.Context) ([]dataset.Observation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT group_label, converted, page_views, num_sessions FROM observations ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to load observations: %w", err)
	}
	defer rows.Close()

	var observations []dataset.Observation
	for rows.Next() {
		var o dataset.Observation
		var converted int
		var pageViews, sessions sql.NullFloat64
		if err := rows.Scan(&o.Group, &converted, &pageViews, &sessions); err != nil {
			return nil, fmt.Errorf("failed to scan observation: %w", err)
		}
		o.Converted = converted == 1
		o.PageViews, o.HasPageViews = pageViews.Float64, pageViews.Valid
		o.Sessions, o.HasSessions = sessions.Float64, sessions.Valid
		observations = append(observations, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read observations: %w", err)
	}

	if len(observations) == 0 {
		return nil, fmt.Errorf("%w: no observations imported yet", dataset.ErrDatasetMissing)
	}

	return observations, nil
}

func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM observations`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count observations: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) GroupCounts(ctx context.Context) ([]GroupCounts, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			group_label,
			COUNT(*) as n,
			SUM(converted) as conversions
		FROM observations
		GROUP BY group_label
		ORDER BY group_label
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get group counts: %w", err)
	}
	defer rows.Close()

	var counts []GroupCounts
	for rows.Next() {
		var c GroupCounts
		if err := rows.Scan(&c.Group, &c.N, &c.Conversions); err != nil {
			return nil, fmt.Errorf("failed to scan group counts: %w", err)
		}
		counts = append(counts, c)
	}

	return counts, rows.Err()
}

// GroupSummary aggregates one group in SQL.
func (s *SQLiteStore) GroupSummary(ctx context.Context, label string) (stats.GroupSummary, error) {
	var n, conversions int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(converted), 0) FROM observations WHERE group_label = ?`, label,
	).Scan(&n, &conversions)
	if err != nil {
		return stats.GroupSummary{}, fmt.Errorf("failed to summarize group: %w", err)
	}

	return stats.NewGroupSummary(label, n, conversions)
}

func (s *SQLiteStore) LatestImport(ctx context.Context) (*Import, error) {
	var imp Import
	var createdAt int64

	err := s.db.QueryRowContext(ctx,
		`SELECT id, source, rows, created_at FROM imports ORDER BY id DESC LIMIT 1`,
	).Scan(&imp.ID, &imp.Source, &imp.Rows, &createdAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest import: %w", err)
	}

	imp.CreatedAt = time.Unix(createdAt, 0)
	return &imp, nil
}

func nullableFloat(v float64, valid bool) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: valid}
}

// Package store persists audit run history in SQLite so regressions can
// be tracked across scans.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"a11ylint/internal/logging"
	"a11ylint/internal/report"
)

// Store is the run history database. SQLite with a single writer
// connection; WAL keeps readers out of the writer's way.
type Store struct {
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// RunSummary is one persisted audit run.
type RunSummary struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	Sources    int       `json:"sources"`
	Violations int       `json:"violations"`
}

// Open initializes the database at the given path, creating the directory
// and applying migrations as needed.
func Open(path string) (*Store, error) {
	timer := logging.StartTimer(logging.CategoryStore, "store.Open")
	defer timer.Stop()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.StoreDebug("failed to set busy_timeout: %v", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logging.StoreDebug("failed to set journal_mode=WAL: %v", err)
	}

	s := &Store{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	logging.Store("opened run history at %s", path)
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveReport persists a run and its violations in one transaction.
func (s *Store) SaveReport(rep *report.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO runs (run_id, started_at, sources, violations) VALUES (?, ?, ?, ?)`,
		rep.RunID, rep.StartedAt.UTC().Format(time.RFC3339Nano), rep.Totals.Sources, rep.Totals.Violations,
	); err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO violations (run_id, source, rule_id, impact, selector, line, message)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("failed to prepare violation insert: %w", err)
	}
	defer stmt.Close()

	for _, res := range rep.Results {
		for _, v := range res.Violations {
			if _, err := stmt.Exec(rep.RunID, res.Source, v.RuleID, string(v.Impact), v.Selector, v.Line, v.Message); err != nil {
				return fmt.Errorf("failed to insert violation: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	logging.Store("saved run %s (%d violations)", rep.RunID, rep.Totals.Violations)
	return nil
}

// RecentRuns returns the most recent runs, newest first.
func (s *Store) RecentRuns(limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.Query(
		`SELECT run_id, started_at, sources, violations FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var r RunSummary
		var started string
		if err := rows.Scan(&r.RunID, &started, &r.Sources, &r.Violations); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, started); err == nil {
			r.StartedAt = t
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// RuleCounts returns the total violation count per rule across all runs.
func (s *Store) RuleCounts() (map[string]int, error) {
	rows, err := s.db.Query(`SELECT rule_id, COUNT(*) FROM violations GROUP BY rule_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query rule counts: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("failed to scan rule count: %w", err)
		}
		out[id] = n
	}
	return out, rows.Err()
}

// RunViolations returns the persisted violations of one run.
func (s *Store) RunViolations(runID string) ([]StoredViolation, error) {
	rows, err := s.db.Query(
		`SELECT source, rule_id, impact, selector, line, message FROM violations WHERE run_id = ? ORDER BY source, line`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query violations: %w", err)
	}
	defer rows.Close()

	var out []StoredViolation
	for rows.Next() {
		var v StoredViolation
		if err := rows.Scan(&v.Source, &v.RuleID, &v.Impact, &v.Selector, &v.Line, &v.Message); err != nil {
			return nil, fmt.Errorf("failed to scan violation: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// StoredViolation is a violation row read back from the database.
type StoredViolation struct {
	Source   string `json:"source"`
	RuleID   string `json:"rule_id"`
	Impact   string `json:"impact"`
	Selector string `json:"selector"`
	Line     int    `json:"line"`
	Message  string `json:"message"`
}

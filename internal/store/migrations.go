package store

import "fmt"

// migrations run in order; schema_migrations records the applied count.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		run_id     TEXT PRIMARY KEY,
		started_at TEXT NOT NULL,
		sources    INTEGER NOT NULL,
		violations INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS violations (
		id       INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id   TEXT NOT NULL REFERENCES runs(run_id),
		source   TEXT NOT NULL,
		rule_id  TEXT NOT NULL,
		impact   TEXT NOT NULL,
		selector TEXT NOT NULL,
		line     INTEGER NOT NULL DEFAULT 0,
		message  TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_violations_run ON violations(run_id)`,
	`CREATE INDEX IF NOT EXISTS idx_violations_rule ON violations(rule_id)`,
}

func (s *Store) migrate() error {
	if _, err := s.db.Exec(
		`CREATE TABLE IF NOT EXISTS schema_migrations (version INTEGER PRIMARY KEY)`); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	var current int
	if err := s.db.QueryRow(
		`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for i := current; i < len(migrations); i++ {
		if _, err := s.db.Exec(migrations[i]); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
		if _, err := s.db.Exec(`INSERT INTO schema_migrations (version) VALUES (?)`, i+1); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", i+1, err)
		}
	}
	return nil
}

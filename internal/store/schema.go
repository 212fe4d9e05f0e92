package store

import (
	"database/sql"
	"fmt"

	"nadico/internal/logging"
)

// Schema versions:
// v1: runs, norms, observations
// v2: norms.level and runs.strategy for higher-order runs
const CurrentSchemaVersion = 2

const baseSchema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	owner TEXT NOT NULL,
	context TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS norms (
	run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	statement TEXT NOT NULL,
	deontic REAL NOT NULL,
	term TEXT NOT NULL,
	count INTEGER NOT NULL DEFAULT 0,
	inverted INTEGER NOT NULL DEFAULT 0,
	or_else TEXT,
	or_else_deontic REAL,
	PRIMARY KEY (run_id, position)
);

CREATE TABLE IF NOT EXISTS observations (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	owner TEXT NOT NULL,
	position INTEGER NOT NULL,
	chain_yaml TEXT NOT NULL,
	valence REAL NOT NULL,
	UNIQUE (owner, position)
);

CREATE INDEX IF NOT EXISTS idx_runs_owner ON runs(owner);
CREATE INDEX IF NOT EXISTS idx_observations_owner ON observations(owner);
`

// Migration adds a column to an existing table.
type Migration struct {
	Table  string
	Column string
	Def    string
}

// pendingMigrations brings v1 databases up to the current schema.
var pendingMigrations = []Migration{
	{"norms", "level", "INTEGER NOT NULL DEFAULT 0"},
	{"runs", "strategy", "TEXT NOT NULL DEFAULT 'sum'"},
}

// RunMigrations creates missing tables and applies column migrations.
func RunMigrations(db *sql.DB) error {
	timer := logging.StartTimer(logging.CategoryStore, "RunMigrations")
	defer timer.Stop()

	if _, err := db.Exec(baseSchema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	applied := 0
	for _, m := range pendingMigrations {
		if !tableExists(db, m.Table) {
			logging.StoreDebug("Table missing, skipping migration: %s.%s", m.Table, m.Column)
			continue
		}
		if columnExists(db, m.Table, m.Column) {
			continue
		}
		query := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", m.Table, m.Column, m.Def)
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("migration %s.%s: %w", m.Table, m.Column, err)
		}
		logging.Store("Migration applied: added %s.%s", m.Table, m.Column)
		applied++
	}

	if GetSchemaVersion(db) < CurrentSchemaVersion {
		if err := SetSchemaVersion(db, CurrentSchemaVersion); err != nil {
			return err
		}
	}
	logging.StoreDebug("Schema migrations complete: applied=%d", applied)
	return nil
}

// columnExists checks if a column exists in a table using PRAGMA table_info.
func columnExists(db *sql.DB, table, column string) bool {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		logging.StoreDebug("PRAGMA table_info(%s) failed: %v", table, err)
		return false
	}
	defer rows.Close()

	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dfltValue interface{}
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltValue, &pk); err != nil {
			continue
		}
		if name == column {
			return true
		}
	}
	return false
}

func tableExists(db *sql.DB, table string) bool {
	var count int
	query := "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?"
	if err := db.QueryRow(query, table).Scan(&count); err != nil {
		logging.StoreDebug("Table existence check failed for %s: %v", table, err)
		return false
	}
	return count > 0
}

// GetSchemaVersion returns the recorded schema version, 0 when none is
// recorded yet.
func GetSchemaVersion(db *sql.DB) int {
	if !tableExists(db, "schema_versions") {
		return 0
	}
	var version int
	query := "SELECT version FROM schema_versions ORDER BY id DESC LIMIT 1"
	if err := db.QueryRow(query).Scan(&version); err != nil {
		return 0
	}
	return version
}

// SetSchemaVersion records a new schema version in the database.
func SetSchemaVersion(db *sql.DB, version int) error {
	createTable := `
		CREATE TABLE IF NOT EXISTS schema_versions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			version INTEGER NOT NULL,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			description TEXT
		)
	`
	if _, err := db.Exec(createTable); err != nil {
		return fmt.Errorf("failed to create schema_versions table: %w", err)
	}

	desc := fmt.Sprintf("Migrated to schema version %d", version)
	if _, err := db.Exec(
		"INSERT INTO schema_versions (version, description) VALUES (?, ?)",
		version, desc,
	); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}

	logging.Store("Schema version set to %d", version)
	return nil
}

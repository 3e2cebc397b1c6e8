package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection
type DB struct {
	*sql.DB
}

// New creates a new SQLite database connection
func New(dataSourceName string) (*DB, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &DB{db}, nil
}

// RunMigrations creates the schema.
func (db *DB) RunMigrations() error {
	migration := `
-- Timer sessions. end_at and duration are set together, exactly once.
CREATE TABLE IF NOT EXISTS timelogs (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    org_id TEXT NOT NULL,
    task_id TEXT,
    description TEXT NOT NULL DEFAULT '',
    category TEXT NOT NULL DEFAULT '',
    begin_at TIMESTAMP NOT NULL,
    end_at TIMESTAMP,
    duration INTEGER,
    timezone TEXT NOT NULL DEFAULT '',
    clock_skew INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    CHECK (duration IS NULL OR duration >= 0),
    CHECK ((end_at IS NULL) = (duration IS NULL))
);
CREATE INDEX IF NOT EXISTS idx_timelogs_owner ON timelogs(user_id, org_id);
CREATE INDEX IF NOT EXISTS idx_timelogs_org ON timelogs(org_id);
CREATE INDEX IF NOT EXISTS idx_timelogs_begin ON timelogs(begin_at);

-- At most one open timer per (user, org). Concurrent starts lose here and
-- retry as stop-then-insert.
CREATE UNIQUE INDEX IF NOT EXISTS idx_timelogs_one_active
    ON timelogs(user_id, org_id) WHERE end_at IS NULL;

-- Audit log
CREATE TABLE IF NOT EXISTS audit_log (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    org_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    timer_id TEXT,
    event_type TEXT NOT NULL,
    summary TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_audit_org ON audit_log(org_id);
CREATE INDEX IF NOT EXISTS idx_audit_timer ON audit_log(timer_id);
CREATE INDEX IF NOT EXISTS idx_audit_created ON audit_log(created_at);

-- API keys for authentication
CREATE TABLE IF NOT EXISTS api_keys (
    key_hash TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    org_id TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    last_used TIMESTAMP,
    description TEXT
);
CREATE INDEX IF NOT EXISTS idx_api_keys_org ON api_keys(org_id);
`

	_, err := db.Exec(migration)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

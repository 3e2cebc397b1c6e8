package sqlite

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// NewTestDB creates a new in-memory SQLite database for testing
func NewTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(":memory:")
	require.NoError(t, err, "failed to create test database")

	err = db.RunMigrations()
	require.NoError(t, err, "failed to run migrations")

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// TestMigrations verifies that migrations run successfully
func TestMigrations(t *testing.T) {
	db := NewTestDB(t)

	tables := []string{
		"timelogs",
		"audit_log",
		"api_keys",
	}

	for _, table := range tables {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count)
		require.NoError(t, err, "failed to query table %s", table)
		require.Equal(t, 1, count, "table %s not found", table)
	}
}

// TestActiveUniqueIndex verifies the partial index guarding one open timer
// per (user, org) pair
func TestActiveUniqueIndex(t *testing.T) {
	db := NewTestDB(t)

	_, err := db.Exec(
		`INSERT INTO timelogs (id, user_id, org_id, begin_at) VALUES ('t1', 'u1', 'o1', CURRENT_TIMESTAMP)`)
	require.NoError(t, err)

	// Second open row for the same pair must be rejected.
	_, err = db.Exec(
		`INSERT INTO timelogs (id, user_id, org_id, begin_at) VALUES ('t2', 'u1', 'o1', CURRENT_TIMESTAMP)`)
	require.Error(t, err)
	require.True(t, isUniqueViolation(err))

	// A closed row for the same pair is fine.
	_, err = db.Exec(
		`INSERT INTO timelogs (id, user_id, org_id, begin_at, end_at, duration)
		 VALUES ('t3', 'u1', 'o1', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP, 0)`)
	require.NoError(t, err)

	// Same user in another org is a different pair.
	_, err = db.Exec(
		`INSERT INTO timelogs (id, user_id, org_id, begin_at) VALUES ('t4', 'u1', 'o2', CURRENT_TIMESTAMP)`)
	require.NoError(t, err)
}

// TestDurationChecks verifies the end/duration pairing constraint
func TestDurationChecks(t *testing.T) {
	db := NewTestDB(t)

	// duration without end
	_, err := db.Exec(
		`INSERT INTO timelogs (id, user_id, org_id, begin_at, duration)
		 VALUES ('t1', 'u1', 'o1', CURRENT_TIMESTAMP, 10)`)
	require.Error(t, err)
	require.True(t, isCheckViolation(err))

	// negative duration
	_, err = db.Exec(
		`INSERT INTO timelogs (id, user_id, org_id, begin_at, end_at, duration)
		 VALUES ('t2', 'u1', 'o1', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP, -5)`)
	require.Error(t, err)
	require.True(t, isCheckViolation(err))
}

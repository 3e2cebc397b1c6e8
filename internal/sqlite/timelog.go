package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/kstrand/punchclock/internal/domain/report"
	"github.com/kstrand/punchclock/internal/domain/timelog"
	"github.com/kstrand/punchclock/internal/repository"
)

const timelogColumns = `
	id, user_id, org_id, task_id, description, category,
	begin_at, end_at, duration, timezone, clock_skew, created_at
`

// TimeLogRepository is the SQLite store for timer sessions. It backs both
// the engine's and the aggregator's repository interfaces.
type TimeLogRepository struct {
	db *DB
}

var (
	_ timelog.Repository       = (*TimeLogRepository)(nil)
	_ report.TimeLogRepository = (*TimeLogRepository)(nil)
)

// NewTimeLogRepository creates a new TimeLogRepository
func NewTimeLogRepository(db *DB) *TimeLogRepository {
	return &TimeLogRepository{db: db}
}

// StartExclusive closes any open timers for the new log's (user, org) pair
// and inserts the new one, all in a single transaction. The unique index on
// open rows turns a lost race into repository.ErrActiveExists.
func (r *TimeLogRepository) StartExclusive(ctx context.Context, log *timelog.TimeLog, stopAt time.Time) ([]timelog.TimeLog, error) {
	stopAt = stopAt.UTC()
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	open, err := queryTimeLogs(ctx, tx,
		`SELECT `+timelogColumns+` FROM timelogs
		 WHERE user_id = ? AND org_id = ? AND end_at IS NULL
		 ORDER BY begin_at ASC`,
		log.UserID, log.OrgID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find open timers: %w", err)
	}

	for i := range open {
		duration, skewed := timelog.ComputeDuration(open[i].Begin, stopAt)
		_, err := tx.ExecContext(ctx,
			`UPDATE timelogs SET end_at = ?, duration = ?, clock_skew = ?
			 WHERE id = ? AND end_at IS NULL`,
			stopAt, duration, skewed, open[i].ID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to close open timer: %w", err)
		}
		end := stopAt
		open[i].EndAt = &end
		open[i].Duration = &duration
		open[i].ClockSkew = skewed
	}

	if err := insertTimeLog(ctx, tx, log); err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrActiveExists
		}
		return nil, fmt.Errorf("failed to create timer: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return open, nil
}

// Get retrieves a timer by ID within an org
func (r *TimeLogRepository) Get(ctx context.Context, orgID, id string) (*timelog.TimeLog, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+timelogColumns+` FROM timelogs WHERE id = ? AND org_id = ?`,
		id, orgID,
	)

	entry, err := scanTimeLog(row)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get timer: %w", err)
	}

	return entry, nil
}

// GetActive returns all open timers for a (user, org) pair, newest first
func (r *TimeLogRepository) GetActive(ctx context.Context, userID, orgID string) ([]timelog.TimeLog, error) {
	entries, err := queryTimeLogs(ctx, r.db,
		`SELECT `+timelogColumns+` FROM timelogs
		 WHERE user_id = ? AND org_id = ? AND end_at IS NULL
		 ORDER BY begin_at DESC`,
		userID, orgID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get active timers: %w", err)
	}
	return entries, nil
}

// Close sets end and duration together on a still-open timer
func (r *TimeLogRepository) Close(ctx context.Context, orgID, id string, end time.Time, duration int64, clockSkew bool) error {
	end = end.UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE timelogs SET end_at = ?, duration = ?, clock_skew = ?
		 WHERE id = ? AND org_id = ? AND end_at IS NULL`,
		end, duration, clockSkew, id, orgID,
	)
	if err != nil {
		return fmt.Errorf("failed to close timer: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		// Either the row is gone or it is already closed.
		var exists int
		err := r.db.QueryRowContext(ctx,
			`SELECT 1 FROM timelogs WHERE id = ? AND org_id = ?`, id, orgID,
		).Scan(&exists)
		if err == sql.ErrNoRows {
			return repository.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to check timer: %w", err)
		}
		return repository.ErrAlreadyClosed
	}

	return nil
}

// UpdateMeta mutates the mutable metadata fields of a timer. begin_at,
// end_at and duration are never part of the statement.
func (r *TimeLogRepository) UpdateMeta(ctx context.Context, orgID, id string, meta timelog.MetaUpdate) error {
	sets := []string{}
	args := []interface{}{}

	if meta.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *meta.Description)
	}
	if meta.TaskID != nil {
		sets = append(sets, "task_id = ?")
		if *meta.TaskID == "" {
			args = append(args, nil)
		} else {
			args = append(args, *meta.TaskID)
		}
	}
	if meta.Category != nil {
		sets = append(sets, "category = ?")
		args = append(args, *meta.Category)
	}
	if len(sets) == 0 {
		return nil
	}

	query := "UPDATE timelogs SET " + strings.Join(sets, ", ") + " WHERE id = ? AND org_id = ?"
	args = append(args, id, orgID)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update timer: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete hard-removes a timer
func (r *TimeLogRepository) Delete(ctx context.Context, orgID, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM timelogs WHERE id = ? AND org_id = ?`, id, orgID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete timer: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// ListRecent returns a user's timers ordered by begin descending, the open
// one included, bounded by limit
func (r *TimeLogRepository) ListRecent(ctx context.Context, userID, orgID string, limit int) ([]timelog.TimeLog, error) {
	entries, err := queryTimeLogs(ctx, r.db,
		`SELECT `+timelogColumns+` FROM timelogs
		 WHERE user_id = ? AND org_id = ?
		 ORDER BY begin_at DESC
		 LIMIT ?`,
		userID, orgID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent timers: %w", err)
	}
	return entries, nil
}

// SumCompleted counts and sums stopped timers whose begin falls in [from, to)
func (r *TimeLogRepository) SumCompleted(ctx context.Context, userID, orgID string, from, to time.Time) (int64, int64, error) {
	var count int64
	var seconds int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(duration), 0) FROM timelogs
		 WHERE user_id = ? AND org_id = ? AND end_at IS NOT NULL
		   AND begin_at >= ? AND begin_at < ?`,
		userID, orgID, from.UTC(), to.UTC(),
	).Scan(&count, &seconds)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to sum completed timers: %w", err)
	}
	return count, seconds, nil
}

// ListByOrg returns all timers for an org, optionally bounded by begin time
func (r *TimeLogRepository) ListByOrg(ctx context.Context, orgID string, from, to *time.Time) ([]timelog.TimeLog, error) {
	query := `SELECT ` + timelogColumns + ` FROM timelogs WHERE org_id = ?`
	args := []interface{}{orgID}

	if from != nil {
		query += " AND begin_at >= ?"
		args = append(args, from.UTC())
	}
	if to != nil {
		query += " AND begin_at < ?"
		args = append(args, to.UTC())
	}
	query += " ORDER BY begin_at DESC"

	entries, err := queryTimeLogs(ctx, r.db, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list org timers: %w", err)
	}
	return entries, nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func insertTimeLog(ctx context.Context, ex execer, log *timelog.TimeLog) error {
	// Timestamps are stored in UTC so range comparisons never mix offsets.
	var endAt *time.Time
	if log.EndAt != nil {
		u := log.EndAt.UTC()
		endAt = &u
	}
	_, err := ex.ExecContext(ctx,
		`INSERT INTO timelogs (
			id, user_id, org_id, task_id, description, category,
			begin_at, end_at, duration, timezone, clock_skew, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		log.ID,
		log.UserID,
		log.OrgID,
		log.TaskID,
		log.Description,
		log.Category,
		log.Begin.UTC(),
		endAt,
		log.Duration,
		log.Timezone,
		log.ClockSkew,
		log.CreatedAt.UTC(),
	)
	return err
}

func queryTimeLogs(ctx context.Context, q querier, query string, args ...interface{}) ([]timelog.TimeLog, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []timelog.TimeLog
	for rows.Next() {
		entry, err := scanTimeLog(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTimeLog(row rowScanner) (*timelog.TimeLog, error) {
	var entry timelog.TimeLog
	var taskID sql.NullString
	var endAt sql.NullTime
	var duration sql.NullInt64

	err := row.Scan(
		&entry.ID,
		&entry.UserID,
		&entry.OrgID,
		&taskID,
		&entry.Description,
		&entry.Category,
		&entry.Begin,
		&endAt,
		&duration,
		&entry.Timezone,
		&entry.ClockSkew,
		&entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if taskID.Valid {
		entry.TaskID = &taskID.String
	}
	if endAt.Valid {
		entry.EndAt = &endAt.Time
	}
	if duration.Valid {
		entry.Duration = &duration.Int64
	}

	return &entry, nil
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/kstrand/punchclock/internal/domain/audit"
)

// AuditRepository is the SQLite store for audit entries
type AuditRepository struct {
	db *DB
}

var _ audit.Repository = (*AuditRepository)(nil)

// NewAuditRepository creates a new AuditRepository
func NewAuditRepository(db *DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Log inserts a new audit entry
func (r *AuditRepository) Log(ctx context.Context, orgID string, entry *audit.Entry) error {
	createdAt := entry.CreatedAt.UTC()
	if entry.CreatedAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	query := `
		INSERT INTO audit_log (org_id, user_id, timer_id, event_type, summary, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		orgID,
		entry.UserID,
		entry.TimerID,
		entry.EventType,
		entry.Summary,
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to log audit entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err == nil {
		entry.ID = id
	}

	entry.OrgID = orgID
	entry.CreatedAt = createdAt

	return nil
}

// List returns audit entries matching the given filters
func (r *AuditRepository) List(ctx context.Context, orgID string, opts audit.ListOptions) ([]audit.Entry, error) {
	query := `
		SELECT id, org_id, user_id, timer_id, event_type, summary, created_at
		FROM audit_log
		WHERE org_id = ?
	`

	args := []interface{}{orgID}
	conditions := []string{}

	if opts.UserID != "" {
		conditions = append(conditions, "user_id = ?")
		args = append(args, opts.UserID)
	}
	if opts.TimerID != nil {
		conditions = append(conditions, "timer_id = ?")
		args = append(args, *opts.TimerID)
	}
	if opts.EventType != nil {
		conditions = append(conditions, "event_type = ?")
		args = append(args, *opts.EventType)
	}

	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY created_at DESC, id DESC"

	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}
	if opts.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, opts.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []audit.Entry
	for rows.Next() {
		var entry audit.Entry
		var timerID sql.NullString
		if err := rows.Scan(
			&entry.ID,
			&entry.OrgID,
			&entry.UserID,
			&timerID,
			&entry.EventType,
			&entry.Summary,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		if timerID.Valid {
			entry.TimerID = &timerID.String
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit entries: %w", err)
	}

	return entries, nil
}

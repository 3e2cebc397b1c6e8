package timelog

import (
	"context"
	"time"

	"github.com/kstrand/punchclock/internal/domain/audit"
)

// MetaUpdate carries the mutable TimeLog fields. Nil means leave unchanged;
// for TaskID an empty string clears the association.
type MetaUpdate struct {
	Description *string
	TaskID      *string
	Category    *string
}

// Repository provides TimeLog persistence for the engine.
type Repository interface {
	// StartExclusive closes every open timer for the new log's (user, org)
	// pair at stopAt and inserts the new log, all in one transaction. The
	// closed timers are returned with their frozen durations.
	StartExclusive(ctx context.Context, log *TimeLog, stopAt time.Time) ([]TimeLog, error)
	Get(ctx context.Context, orgID, id string) (*TimeLog, error)
	GetActive(ctx context.Context, userID, orgID string) ([]TimeLog, error)
	// Close sets end and duration together on a still-open timer. Returns
	// repository.ErrAlreadyClosed if the row exists but end is already set.
	Close(ctx context.Context, orgID, id string, end time.Time, duration int64, clockSkew bool) error
	UpdateMeta(ctx context.Context, orgID, id string, meta MetaUpdate) error
	Delete(ctx context.Context, orgID, id string) error
}

// AuditRecorder receives timer lifecycle events. Recording is best-effort;
// the engine logs failures and moves on.
type AuditRecorder interface {
	Record(ctx context.Context, orgID string, entry *audit.Entry) error
}

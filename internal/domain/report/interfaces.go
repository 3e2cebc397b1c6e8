package report

import (
	"context"
	"time"

	"github.com/kstrand/punchclock/internal/domain/timelog"
)

// TimeLogRepository provides the read-only queries the aggregator needs.
type TimeLogRepository interface {
	GetActive(ctx context.Context, userID, orgID string) ([]timelog.TimeLog, error)
	ListRecent(ctx context.Context, userID, orgID string, limit int) ([]timelog.TimeLog, error)
	SumCompleted(ctx context.Context, userID, orgID string, from, to time.Time) (count int64, seconds int64, err error)
	ListByOrg(ctx context.Context, orgID string, from, to *time.Time) ([]timelog.TimeLog, error)
}

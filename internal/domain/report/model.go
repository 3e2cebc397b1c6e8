package report

import (
	"time"

	"github.com/kstrand/punchclock/internal/domain/timelog"
)

// PeriodStats aggregates stopped timers over one calendar range.
type PeriodStats struct {
	Entries int64 `json:"entries"`
	Seconds int64 `json:"seconds"`
}

// Stats holds the per-user today/this-week aggregates.
type Stats struct {
	UserID string      `json:"user_id"`
	OrgID  string      `json:"org_id"`
	Today  PeriodStats `json:"today"`
	Week   PeriodStats `json:"week"`
}

// MemberSummary is one user's row in a team activity report. The active
// timer, if any, is separated from the completed entries it is not part of.
type MemberSummary struct {
	UserID       string           `json:"user_id"`
	ActiveTimer  *timelog.TimeLog `json:"active_timer,omitempty"`
	TotalSeconds int64            `json:"total_seconds"`
	TotalEntries int              `json:"total_entries"`
}

// TeamActivity groups an org's timers by user.
type TeamActivity struct {
	OrgID   string          `json:"org_id"`
	Members []MemberSummary `json:"members"`
}

// DateRange bounds a team activity query. Nil ends are unbounded.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

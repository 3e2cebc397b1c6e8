package timelog

import "time"

// Status is derived from the presence of EndAt; it is never stored.
type Status string

const (
	StatusActive  Status = "active"
	StatusStopped Status = "stopped"
)

// TimeLog represents a single timer session. Begin is set at creation and
// never changes; EndAt and Duration are set together exactly once, at stop.
type TimeLog struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	OrgID       string     `json:"org_id"`
	TaskID      *string    `json:"task_id,omitempty"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Begin       time.Time  `json:"begin"`
	EndAt       *time.Time `json:"end,omitempty"`
	Duration    *int64     `json:"duration,omitempty"`
	Timezone    string     `json:"timezone"`
	ClockSkew   bool       `json:"clock_skew,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Status reports whether the timer is still running.
func (t *TimeLog) Status() Status {
	if t.EndAt == nil {
		return StatusActive
	}
	return StatusStopped
}

// Active reports whether the timer has not been stopped yet.
func (t *TimeLog) Active() bool {
	return t.EndAt == nil
}

// Elapsed returns the running duration of an active timer as of now.
// For a stopped timer it returns the frozen duration. The result is never
// persisted.
func (t *TimeLog) Elapsed(now time.Time) time.Duration {
	if t.EndAt != nil && t.Duration != nil {
		return time.Duration(*t.Duration) * time.Second
	}
	d := now.Sub(t.Begin)
	if d < 0 {
		return 0
	}
	return d
}

// Identity names the authenticated caller. It is passed separately from
// request payloads so ownership checks cannot be satisfied by body fields.
type Identity struct {
	UserID string
	OrgID  string
}

package audit

import "time"

// EventType represents the type of audit event
type EventType string

const (
	TypeTimerStarted     EventType = "timer_started"
	TypeTimerStopped     EventType = "timer_stopped"
	TypeTimerAutoStopped EventType = "timer_auto_stopped"
	TypeTimerRestarted   EventType = "timer_restarted"
	TypeTimerUpdated     EventType = "timer_updated"
	TypeTimerDeleted     EventType = "timer_deleted"
	TypeInvariantRepair  EventType = "invariant_repair"
	TypeClockSkewClamped EventType = "clock_skew_clamped"
)

// Entry represents an event in the audit log
type Entry struct {
	ID        int64     `json:"id"`
	OrgID     string    `json:"org_id"`
	UserID    string    `json:"user_id"`
	TimerID   *string   `json:"timer_id,omitempty"`
	EventType EventType `json:"type"`
	Summary   string    `json:"summary"`
	CreatedAt time.Time `json:"created_at"`
}

// ListOptions provides filtering options for listing audit entries
type ListOptions struct {
	UserID    string
	TimerID   *string
	EventType *EventType
	Limit     int
	Offset    int
}

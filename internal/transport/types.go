package transport

import (
	"github.com/kstrand/punchclock/internal/domain/audit"
	"github.com/kstrand/punchclock/internal/domain/report"
	"github.com/kstrand/punchclock/internal/domain/timelog"
)

type startRequest struct {
	TaskID      *string `json:"task_id,omitempty"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Timezone    string  `json:"timezone"`
}

type updateRequest struct {
	Description *string `json:"description,omitempty"`
	TaskID      *string `json:"task_id,omitempty"`
	Category    *string `json:"category,omitempty"`
}

type timerResponse struct {
	Timer          *timelog.TimeLog `json:"timer"`
	Status         timelog.Status   `json:"status"`
	ElapsedSeconds int64            `json:"elapsed_seconds"`
}

type deleteResponse struct {
	Deleted bool             `json:"deleted"`
	Timer   *timelog.TimeLog `json:"timer"`
}

type activeTimersResponse struct {
	Timers       []timelog.TimeLog `json:"timers"`
	TotalSeconds int64             `json:"total_seconds"`
}

type recentEntriesResponse struct {
	Entries []timelog.TimeLog `json:"entries"`
}

type teamActivityResponse struct {
	Activity *report.TeamActivity `json:"activity"`
}

type auditResponse struct {
	Entries []audit.Entry `json:"entries"`
}

type errorResponse struct {
	Error string `json:"error"`
}

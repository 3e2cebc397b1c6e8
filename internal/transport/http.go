package transport

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kstrand/punchclock/internal/clock"
	"github.com/kstrand/punchclock/internal/domain/audit"
	"github.com/kstrand/punchclock/internal/domain/report"
	"github.com/kstrand/punchclock/internal/domain/timelog"
)

// Server wires HTTP handlers over the timer engine and aggregator.
type Server struct {
	engine  *timelog.Service
	reports *report.Service
	audits  *audit.Service
	clock   clock.Clock
	logger  *slog.Logger
}

// NewServer creates an HTTP router with middleware.
func NewServer(
	engine *timelog.Service,
	reports *report.Service,
	audits *audit.Service,
	clk clock.Clock,
	logger *slog.Logger,
	authMiddleware func(http.Handler) http.Handler,
) *chi.Mux {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	srv := &Server{
		engine:  engine,
		reports: reports,
		audits:  audits,
		clock:   clk,
		logger:  logger,
	}

	r := chi.NewRouter()
	r.Get("/health", srv.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		if authMiddleware != nil {
			r.Use(authMiddleware)
		}
		r.Post("/timers", srv.handleStart)
		r.Get("/timers/current", srv.handleCurrent)
		r.Get("/timers/active", srv.handleActive)
		r.Get("/timers/recent", srv.handleRecent)
		r.Post("/timers/{id}/stop", srv.handleStop)
		r.Post("/timers/{id}/restart", srv.handleRestart)
		r.Patch("/timers/{id}", srv.handleUpdate)
		r.Delete("/timers/{id}", srv.handleDelete)
		r.Get("/stats", srv.handleStats)
		r.Get("/org/activity", srv.handleTeamActivity)
		r.Get("/org/audit", srv.handleAudit)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}

	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := s.engine.Start(r.Context(), id, timelog.StartRequest{
		TaskID:      req.TaskID,
		Description: req.Description,
		Category:    req.Category,
		Timezone:    req.Timezone,
	})
	if err != nil {
		s.writeDomainError(w, r, "start", err)
		return
	}

	s.writeTimer(w, http.StatusCreated, entry)
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}

	entry, err := s.engine.Stop(r.Context(), id, chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, r, "stop", err)
		return
	}

	s.writeTimer(w, http.StatusOK, entry)
}

func (s *Server) handleCurrent(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}

	entry, err := s.engine.GetActive(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, r, "current", err)
		return
	}

	s.writeTimer(w, http.StatusOK, entry)
}

func (s *Server) handleActive(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}

	timers, err := s.reports.ActiveTimers(r.Context(), id.UserID, id.OrgID)
	if err != nil {
		s.writeDomainError(w, r, "active", err)
		return
	}
	total, err := s.reports.TotalActiveTime(r.Context(), id.UserID, id.OrgID)
	if err != nil {
		s.writeDomainError(w, r, "active", err)
		return
	}

	writeJSON(w, http.StatusOK, activeTimersResponse{
		Timers:       timers,
		TotalSeconds: int64(total / time.Second),
	})
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := s.engine.Update(r.Context(), id, chi.URLParam(r, "id"), timelog.UpdateRequest{
		Description: req.Description,
		TaskID:      req.TaskID,
		Category:    req.Category,
	})
	if err != nil {
		s.writeDomainError(w, r, "update", err)
		return
	}

	s.writeTimer(w, http.StatusOK, entry)
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}

	entry, err := s.engine.Restart(r.Context(), id, chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, r, "restart", err)
		return
	}

	s.writeTimer(w, http.StatusCreated, entry)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}

	entry, err := s.engine.Delete(r.Context(), id, chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, r, "delete", err)
		return
	}

	writeJSON(w, http.StatusOK, deleteResponse{Deleted: true, Timer: entry})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}

	stats, err := s.reports.Stats(r.Context(), id.UserID, id.OrgID, r.URL.Query().Get("tz"))
	if err != nil {
		s.writeDomainError(w, r, "stats", err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	entries, err := s.reports.RecentEntries(r.Context(), id.UserID, id.OrgID, limit)
	if err != nil {
		s.writeDomainError(w, r, "recent", err)
		return
	}

	writeJSON(w, http.StatusOK, recentEntriesResponse{Entries: entries})
}

func (s *Server) handleTeamActivity(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}

	var rng report.DateRange
	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid from timestamp")
			return
		}
		rng.From = &parsed
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid to timestamp")
			return
		}
		rng.To = &parsed
	}

	activity, err := s.reports.TeamActivity(r.Context(), id.OrgID, rng)
	if err != nil {
		s.writeDomainError(w, r, "team-activity", err)
		return
	}

	writeJSON(w, http.StatusOK, teamActivityResponse{Activity: activity})
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}

	opts := audit.ListOptions{}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		opts.Limit = parsed
	}
	if raw := r.URL.Query().Get("type"); raw != "" {
		eventType := audit.EventType(raw)
		opts.EventType = &eventType
	}

	entries, err := s.audits.Recent(r.Context(), id.OrgID, opts)
	if err != nil {
		s.writeDomainError(w, r, "audit", err)
		return
	}

	writeJSON(w, http.StatusOK, auditResponse{Entries: entries})
}

func (s *Server) writeTimer(w http.ResponseWriter, status int, entry *timelog.TimeLog) {
	writeJSON(w, status, timerResponse{
		Timer:          entry,
		Status:         entry.Status(),
		ElapsedSeconds: int64(entry.Elapsed(s.clock.Now()) / time.Second),
	})
}

// writeDomainError maps engine and aggregator errors to status codes. Store
// failures are logged with operation context and returned as a generic 500.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, timelog.ErrInvalidInput) || errors.Is(err, report.ErrInvalidInput):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, timelog.ErrTimerNotFound):
		s.writeError(w, http.StatusNotFound, timelog.ErrTimerNotFound.Error())
	case errors.Is(err, timelog.ErrNoActiveTimer):
		s.writeError(w, http.StatusNotFound, timelog.ErrNoActiveTimer.Error())
	case errors.Is(err, timelog.ErrAlreadyStopped):
		s.writeError(w, http.StatusConflict, timelog.ErrAlreadyStopped.Error())
	default:
		s.logger.Error("request failed", "op", op, "path", r.URL.Path, "error", err)
		s.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

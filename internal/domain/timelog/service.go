package timelog

import (
	"context"
	"errors"
	"io"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/kstrand/punchclock/internal/clock"
	"github.com/kstrand/punchclock/internal/domain/audit"
	"github.com/kstrand/punchclock/internal/repository"
)

// Service is the timer engine. It owns the single-active-timer invariant:
// at most one TimeLog per (user, org) pair has a null end at any time.
type Service struct {
	timelogs Repository
	audits   AuditRecorder
	clock    clock.Clock
	logger   *slog.Logger
}

// NewService creates a new timer engine.
func NewService(timelogs Repository, audits AuditRecorder, clk clock.Clock, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		timelogs: timelogs,
		audits:   audits,
		clock:    clk,
		logger:   logger,
	}
}

// StartRequest describes a timer start request.
type StartRequest struct {
	TaskID      *string
	Description string
	Category    string
	Timezone    string
}

// Start begins a new timer for the caller. Any timer already running for the
// same (user, org) pair is stopped first, in the same store transaction, with
// its duration computed against the same clock reading used as the new
// timer's begin.
func (s *Service) Start(ctx context.Context, id Identity, req StartRequest) (*TimeLog, error) {
	if err := ValidateStartInput(id, req); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	entry := &TimeLog{
		ID:          uuid.NewString(),
		UserID:      id.UserID,
		OrgID:       id.OrgID,
		TaskID:      req.TaskID,
		Description: req.Description,
		Category:    req.Category,
		Begin:       now,
		Timezone:    req.Timezone,
		CreatedAt:   now,
	}

	stopped, err := s.timelogs.StartExclusive(ctx, entry, now)
	if errors.Is(err, repository.ErrActiveExists) {
		// Lost a race with a concurrent start: the partial unique index
		// rejected the insert. Retry once; the second pass stops the
		// winner's timer and inserts ours.
		stopped, err = s.timelogs.StartExclusive(ctx, entry, s.clock.Now())
	}
	if err != nil {
		return nil, fmt.Errorf("starting timer: %w", err)
	}

	for i := range stopped {
		s.recordEvent(ctx, id.OrgID, id.UserID, audit.TypeTimerAutoStopped, stopped[i].ID,
			fmt.Sprintf("timer stopped by new start %s", entry.ID))
		if stopped[i].ClockSkew {
			s.recordEvent(ctx, id.OrgID, id.UserID, audit.TypeClockSkewClamped, stopped[i].ID,
				"negative duration clamped to 0")
		}
	}
	if len(stopped) > 1 {
		s.logger.Warn("multiple active timers found on start",
			"user_id", id.UserID, "org_id", id.OrgID, "count", len(stopped))
	}
	s.recordEvent(ctx, id.OrgID, id.UserID, audit.TypeTimerStarted, entry.ID, "timer started")

	return entry, nil
}

// Stop ends the referenced timer, freezing its duration. end and duration are
// written together; a timer is never left with one set and not the other.
func (s *Service) Stop(ctx context.Context, id Identity, timerID string) (*TimeLog, error) {
	if err := ValidateIdentity(id); err != nil {
		return nil, err
	}

	entry, err := s.getOwned(ctx, id, timerID)
	if err != nil {
		return nil, err
	}
	if entry.EndAt != nil {
		return nil, ErrAlreadyStopped
	}

	end := s.clock.Now()
	duration, skewed := ComputeDuration(entry.Begin, end)

	if err := s.timelogs.Close(ctx, id.OrgID, timerID, end, duration, skewed); err != nil {
		if errors.Is(err, repository.ErrAlreadyClosed) {
			return nil, ErrAlreadyStopped
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTimerNotFound
		}
		return nil, fmt.Errorf("stopping timer: %w", err)
	}

	entry.EndAt = &end
	entry.Duration = &duration
	entry.ClockSkew = skewed

	s.recordEvent(ctx, id.OrgID, id.UserID, audit.TypeTimerStopped, timerID,
		fmt.Sprintf("timer stopped after %ds", duration))
	if skewed {
		s.logger.Warn("clock skew detected on stop",
			"timer_id", timerID, "begin", entry.Begin, "end", end)
		s.recordEvent(ctx, id.OrgID, id.UserID, audit.TypeClockSkewClamped, timerID,
			"negative duration clamped to 0")
	}

	return entry, nil
}

// GetActive returns the caller's running timer, or ErrNoActiveTimer. If the
// store ever reports more than one active row the engine self-heals by
// stopping all but the most recently started one.
func (s *Service) GetActive(ctx context.Context, id Identity) (*TimeLog, error) {
	if err := ValidateIdentity(id); err != nil {
		return nil, err
	}

	active, err := s.timelogs.GetActive(ctx, id.UserID, id.OrgID)
	if err != nil {
		return nil, fmt.Errorf("loading active timer: %w", err)
	}
	switch len(active) {
	case 0:
		return nil, ErrNoActiveTimer
	case 1:
		return &active[0], nil
	}

	return s.repairActive(ctx, id, active)
}

// UpdateRequest describes a timer metadata update. Only mutable fields are
// represented; begin, end and duration cannot be touched through it.
type UpdateRequest struct {
	Description *string
	TaskID      *string
	Category    *string
}

// Update mutates the metadata of a timer owned by the caller.
func (s *Service) Update(ctx context.Context, id Identity, timerID string, req UpdateRequest) (*TimeLog, error) {
	if err := ValidateIdentity(id); err != nil {
		return nil, err
	}

	entry, err := s.getOwned(ctx, id, timerID)
	if err != nil {
		return nil, err
	}

	meta := MetaUpdate{
		Description: req.Description,
		TaskID:      req.TaskID,
		Category:    req.Category,
	}
	if err := s.timelogs.UpdateMeta(ctx, id.OrgID, timerID, meta); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTimerNotFound
		}
		return nil, fmt.Errorf("updating timer: %w", err)
	}

	if req.Description != nil {
		entry.Description = *req.Description
	}
	if req.TaskID != nil {
		if *req.TaskID == "" {
			entry.TaskID = nil
		} else {
			entry.TaskID = req.TaskID
		}
	}
	if req.Category != nil {
		entry.Category = *req.Category
	}

	s.recordEvent(ctx, id.OrgID, id.UserID, audit.TypeTimerUpdated, timerID, "timer metadata updated")

	return entry, nil
}

// Restart starts a new timer copying the task, description, category and
// timezone of an existing one. The source timer is not modified.
func (s *Service) Restart(ctx context.Context, id Identity, timerID string) (*TimeLog, error) {
	if err := ValidateIdentity(id); err != nil {
		return nil, err
	}

	source, err := s.getOwned(ctx, id, timerID)
	if err != nil {
		return nil, err
	}

	entry, err := s.Start(ctx, id, StartRequest{
		TaskID:      source.TaskID,
		Description: source.Description,
		Category:    source.Category,
		Timezone:    source.Timezone,
	})
	if err != nil {
		return nil, err
	}

	s.recordEvent(ctx, id.OrgID, id.UserID, audit.TypeTimerRestarted, entry.ID,
		fmt.Sprintf("restarted from timer %s", source.ID))

	return entry, nil
}

// Delete hard-removes a timer owned by the caller and returns its last state.
func (s *Service) Delete(ctx context.Context, id Identity, timerID string) (*TimeLog, error) {
	if err := ValidateIdentity(id); err != nil {
		return nil, err
	}

	entry, err := s.getOwned(ctx, id, timerID)
	if err != nil {
		return nil, err
	}

	if err := s.timelogs.Delete(ctx, id.OrgID, timerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTimerNotFound
		}
		return nil, fmt.Errorf("deleting timer: %w", err)
	}

	s.recordEvent(ctx, id.OrgID, id.UserID, audit.TypeTimerDeleted, timerID, "timer deleted")

	return entry, nil
}

// getOwned loads a timer and checks ownership. Missing and foreign records
// produce the same error so callers can't probe other users' timers.
func (s *Service) getOwned(ctx context.Context, id Identity, timerID string) (*TimeLog, error) {
	entry, err := s.timelogs.Get(ctx, id.OrgID, timerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTimerNotFound
		}
		return nil, fmt.Errorf("loading timer: %w", err)
	}
	if entry.UserID != id.UserID {
		return nil, ErrTimerNotFound
	}
	return entry, nil
}

func (s *Service) repairActive(ctx context.Context, id Identity, active []TimeLog) (*TimeLog, error) {
	s.logger.Warn("single-active-timer invariant violated",
		"user_id", id.UserID, "org_id", id.OrgID, "count", len(active))

	sort.Slice(active, func(i, j int) bool {
		return active[i].Begin.After(active[j].Begin)
	})

	now := s.clock.Now()
	for i := 1; i < len(active); i++ {
		duration, skewed := ComputeDuration(active[i].Begin, now)
		if err := s.timelogs.Close(ctx, id.OrgID, active[i].ID, now, duration, skewed); err != nil {
			if errors.Is(err, repository.ErrAlreadyClosed) {
				continue
			}
			return nil, fmt.Errorf("repairing active timers: %w", err)
		}
		s.recordEvent(ctx, id.OrgID, id.UserID, audit.TypeInvariantRepair, active[i].ID,
			"stopped surplus active timer")
	}

	return &active[0], nil
}

func (s *Service) recordEvent(ctx context.Context, orgID, userID string, eventType audit.EventType, timerID, summary string) {
	if s.audits == nil {
		return
	}
	err := s.audits.Record(ctx, orgID, &audit.Entry{
		UserID:    userID,
		TimerID:   &timerID,
		EventType: eventType,
		Summary:   summary,
		CreatedAt: s.clock.Now(),
	})
	if err != nil {
		s.logger.Error("failed to record audit event",
			"type", eventType, "timer_id", timerID, "error", err)
	}
}

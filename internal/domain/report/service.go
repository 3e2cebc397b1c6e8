package report

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/kstrand/punchclock/internal/clock"
	"github.com/kstrand/punchclock/internal/domain/timelog"
)

const defaultRecentLimit = 20

// Service derives read-only statistics from the timelog store. It holds no
// state and enforces no invariants of its own.
type Service struct {
	timelogs TimeLogRepository
	clock    clock.Clock
	logger   *slog.Logger
}

// NewService creates a new report service.
func NewService(timelogs TimeLogRepository, clk clock.Clock, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		timelogs: timelogs,
		clock:    clk,
		logger:   logger,
	}
}

// ActiveTimers returns all running timers for the pair. The engine keeps
// this at most one, but the query reports whatever the store holds.
func (s *Service) ActiveTimers(ctx context.Context, userID, orgID string) ([]timelog.TimeLog, error) {
	if err := validatePair(userID, orgID); err != nil {
		return nil, err
	}
	active, err := s.timelogs.GetActive(ctx, userID, orgID)
	if err != nil {
		return nil, fmt.Errorf("loading active timers: %w", err)
	}
	return active, nil
}

// TotalActiveTime sums the elapsed time of all running timers as of now.
// The value is recomputed on every call and never persisted.
func (s *Service) TotalActiveTime(ctx context.Context, userID, orgID string) (time.Duration, error) {
	active, err := s.ActiveTimers(ctx, userID, orgID)
	if err != nil {
		return 0, err
	}
	now := s.clock.Now()
	var total time.Duration
	for i := range active {
		total += active[i].Elapsed(now)
	}
	return total, nil
}

// Stats aggregates the user's stopped timers for today and the current week.
// Range boundaries are computed in UTC unless tz names a valid IANA zone.
func (s *Service) Stats(ctx context.Context, userID, orgID, tz string) (*Stats, error) {
	if err := validatePair(userID, orgID); err != nil {
		return nil, err
	}

	loc := time.UTC
	if tz != "" {
		parsed, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("%w: unknown timezone %q", ErrInvalidInput, tz)
		}
		loc = parsed
	}

	now := s.clock.Now().In(loc)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	weekStart := startOfWeek(now, loc)

	stats := &Stats{UserID: userID, OrgID: orgID}

	count, seconds, err := s.timelogs.SumCompleted(ctx, userID, orgID, dayStart, now)
	if err != nil {
		return nil, fmt.Errorf("summing today: %w", err)
	}
	stats.Today = PeriodStats{Entries: count, Seconds: seconds}

	count, seconds, err = s.timelogs.SumCompleted(ctx, userID, orgID, weekStart, now)
	if err != nil {
		return nil, fmt.Errorf("summing week: %w", err)
	}
	stats.Week = PeriodStats{Entries: count, Seconds: seconds}

	return stats, nil
}

// RecentEntries returns the user's most recent timers ordered by begin
// descending, the running one included, bounded by limit.
func (s *Service) RecentEntries(ctx context.Context, userID, orgID string, limit int) ([]timelog.TimeLog, error) {
	if err := validatePair(userID, orgID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	entries, err := s.timelogs.ListRecent(ctx, userID, orgID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing recent entries: %w", err)
	}
	return entries, nil
}

// TeamActivity groups an org's timers by user, separating each user's active
// timer from their completed entries and summing completed durations.
func (s *Service) TeamActivity(ctx context.Context, orgID string, rng DateRange) (*TeamActivity, error) {
	if strings.TrimSpace(orgID) == "" {
		return nil, ErrInvalidInput
	}

	entries, err := s.timelogs.ListByOrg(ctx, orgID, rng.From, rng.To)
	if err != nil {
		return nil, fmt.Errorf("listing org timers: %w", err)
	}

	byUser := make(map[string]*MemberSummary)
	for i := range entries {
		entry := entries[i]
		member, ok := byUser[entry.UserID]
		if !ok {
			member = &MemberSummary{UserID: entry.UserID}
			byUser[entry.UserID] = member
		}
		if entry.Active() {
			// Keep the most recently started one should the store ever
			// hold more than one.
			if member.ActiveTimer == nil || entry.Begin.After(member.ActiveTimer.Begin) {
				member.ActiveTimer = &entry
			}
			continue
		}
		member.TotalEntries++
		if entry.Duration != nil {
			member.TotalSeconds += *entry.Duration
		}
	}

	members := make([]MemberSummary, 0, len(byUser))
	for _, member := range byUser {
		members = append(members, *member)
	}
	sort.Slice(members, func(i, j int) bool {
		return members[i].UserID < members[j].UserID
	})

	return &TeamActivity{OrgID: orgID, Members: members}, nil
}

func validatePair(userID, orgID string) error {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(orgID) == "" {
		return ErrInvalidInput
	}
	return nil
}

// startOfWeek returns midnight of the Monday of t's week in loc.
func startOfWeek(t time.Time, loc *time.Location) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	weekday := int(day.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return day.AddDate(0, 0, -(weekday - 1))
}

package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/kstrand/punchclock/internal/domain/audit"
	"github.com/kstrand/punchclock/internal/domain/timelog"
)

// TimeLogRepository mocks the timer store for the engine's and the
// aggregator's repository interfaces.
type TimeLogRepository struct {
	mock.Mock
}

func (m *TimeLogRepository) StartExclusive(ctx context.Context, log *timelog.TimeLog, stopAt time.Time) ([]timelog.TimeLog, error) {
	args := m.Called(ctx, log, stopAt)
	if stopped, ok := args.Get(0).([]timelog.TimeLog); ok {
		return stopped, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TimeLogRepository) Get(ctx context.Context, orgID, id string) (*timelog.TimeLog, error) {
	args := m.Called(ctx, orgID, id)
	if entry, ok := args.Get(0).(*timelog.TimeLog); ok {
		return entry, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TimeLogRepository) GetActive(ctx context.Context, userID, orgID string) ([]timelog.TimeLog, error) {
	args := m.Called(ctx, userID, orgID)
	if active, ok := args.Get(0).([]timelog.TimeLog); ok {
		return active, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TimeLogRepository) Close(ctx context.Context, orgID, id string, end time.Time, duration int64, clockSkew bool) error {
	args := m.Called(ctx, orgID, id, end, duration, clockSkew)
	return args.Error(0)
}

func (m *TimeLogRepository) UpdateMeta(ctx context.Context, orgID, id string, meta timelog.MetaUpdate) error {
	args := m.Called(ctx, orgID, id, meta)
	return args.Error(0)
}

func (m *TimeLogRepository) Delete(ctx context.Context, orgID, id string) error {
	args := m.Called(ctx, orgID, id)
	return args.Error(0)
}

func (m *TimeLogRepository) ListRecent(ctx context.Context, userID, orgID string, limit int) ([]timelog.TimeLog, error) {
	args := m.Called(ctx, userID, orgID, limit)
	if entries, ok := args.Get(0).([]timelog.TimeLog); ok {
		return entries, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TimeLogRepository) SumCompleted(ctx context.Context, userID, orgID string, from, to time.Time) (int64, int64, error) {
	args := m.Called(ctx, userID, orgID, from, to)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

func (m *TimeLogRepository) ListByOrg(ctx context.Context, orgID string, from, to *time.Time) ([]timelog.TimeLog, error) {
	args := m.Called(ctx, orgID, from, to)
	if entries, ok := args.Get(0).([]timelog.TimeLog); ok {
		return entries, args.Error(1)
	}
	return nil, args.Error(1)
}

// AuditRepository is a mock for audit.Repository.
type AuditRepository struct {
	mock.Mock
}

func (m *AuditRepository) Log(ctx context.Context, orgID string, entry *audit.Entry) error {
	args := m.Called(ctx, orgID, entry)
	return args.Error(0)
}

func (m *AuditRepository) List(ctx context.Context, orgID string, opts audit.ListOptions) ([]audit.Entry, error) {
	args := m.Called(ctx, orgID, opts)
	if entries, ok := args.Get(0).([]audit.Entry); ok {
		return entries, args.Error(1)
	}
	return nil, args.Error(1)
}

// AuditRecorder is a mock for timelog.AuditRecorder.
type AuditRecorder struct {
	mock.Mock
}

func (m *AuditRecorder) Record(ctx context.Context, orgID string, entry *audit.Entry) error {
	args := m.Called(ctx, orgID, entry)
	return args.Error(0)
}

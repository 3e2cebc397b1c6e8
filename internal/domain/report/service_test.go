package report_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kstrand/punchclock/internal/clock"
	"github.com/kstrand/punchclock/internal/domain/report"
	"github.com/kstrand/punchclock/internal/domain/timelog"
	"github.com/kstrand/punchclock/internal/repository/mocks"
)

// Wednesday, so the week range is non-trivial.
var testNow = time.Date(2025, 6, 4, 15, 30, 0, 0, time.UTC)

func TestService_TotalActiveTime(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMock(testNow)

	repo := &mocks.TimeLogRepository{}
	repo.On("GetActive", ctx, "u1", "o1").Return([]timelog.TimeLog{
		{ID: "t1", UserID: "u1", OrgID: "o1", Begin: testNow.Add(-10 * time.Minute)},
	}, nil)

	svc := report.NewService(repo, clk, nil)
	total, err := svc.TotalActiveTime(ctx, "u1", "o1")
	require.NoError(t, err)
	require.Equal(t, 10*time.Minute, total)

	// Recomputed fresh on every call.
	clk.Advance(5 * time.Minute)
	total, err = svc.TotalActiveTime(ctx, "u1", "o1")
	require.NoError(t, err)
	require.Equal(t, 15*time.Minute, total)
}

func TestService_TotalActiveTime_NoActive(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.TimeLogRepository{}
	repo.On("GetActive", ctx, "u1", "o1").Return([]timelog.TimeLog{}, nil)

	svc := report.NewService(repo, clock.NewMock(testNow), nil)
	total, err := svc.TotalActiveTime(ctx, "u1", "o1")
	require.NoError(t, err)
	require.Zero(t, total)
}

func TestService_Stats_UTCBoundaries(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMock(testNow)

	dayStart := time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC)
	weekStart := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC) // Monday

	repo := &mocks.TimeLogRepository{}
	repo.On("SumCompleted", ctx, "u1", "o1", dayStart, testNow).
		Return(int64(2), int64(3600), nil)
	repo.On("SumCompleted", ctx, "u1", "o1", weekStart, testNow).
		Return(int64(7), int64(12600), nil)

	svc := report.NewService(repo, clk, nil)
	stats, err := svc.Stats(ctx, "u1", "o1", "")
	require.NoError(t, err)
	require.Equal(t, int64(2), stats.Today.Entries)
	require.Equal(t, int64(3600), stats.Today.Seconds)
	require.Equal(t, int64(7), stats.Week.Entries)
	require.Equal(t, int64(12600), stats.Week.Seconds)
	repo.AssertExpectations(t)
}

func TestService_Stats_UnknownTimezone(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.TimeLogRepository{}
	svc := report.NewService(repo, clock.NewMock(testNow), nil)

	_, err := svc.Stats(ctx, "u1", "o1", "Mars/Olympus_Mons")
	require.ErrorIs(t, err, report.ErrInvalidInput)
}

func TestService_Stats_MissingIdentity(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.TimeLogRepository{}
	svc := report.NewService(repo, clock.NewMock(testNow), nil)

	_, err := svc.Stats(ctx, "", "o1", "")
	require.ErrorIs(t, err, report.ErrInvalidInput)
}

func TestService_RecentEntries_DefaultLimit(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.TimeLogRepository{}
	repo.On("ListRecent", ctx, "u1", "o1", 20).Return([]timelog.TimeLog{}, nil)

	svc := report.NewService(repo, clock.NewMock(testNow), nil)
	_, err := svc.RecentEntries(ctx, "u1", "o1", 0)
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestService_TeamActivity(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMock(testNow)

	d60 := int64(60)
	d90 := int64(90)
	end := testNow.Add(-time.Hour)
	entries := []timelog.TimeLog{
		{ID: "a1", UserID: "u1", OrgID: "o1", Begin: testNow.Add(-5 * time.Minute)},
		{ID: "s1", UserID: "u1", OrgID: "o1", Begin: testNow.Add(-3 * time.Hour), EndAt: &end, Duration: &d60},
		{ID: "s2", UserID: "u1", OrgID: "o1", Begin: testNow.Add(-2 * time.Hour), EndAt: &end, Duration: &d90},
		{ID: "s3", UserID: "u2", OrgID: "o1", Begin: testNow.Add(-4 * time.Hour), EndAt: &end, Duration: &d90},
	}

	repo := &mocks.TimeLogRepository{}
	repo.On("ListByOrg", ctx, "o1", (*time.Time)(nil), (*time.Time)(nil)).Return(entries, nil)

	svc := report.NewService(repo, clk, nil)
	activity, err := svc.TeamActivity(ctx, "o1", report.DateRange{})
	require.NoError(t, err)
	require.Len(t, activity.Members, 2)

	u1 := activity.Members[0]
	require.Equal(t, "u1", u1.UserID)
	require.NotNil(t, u1.ActiveTimer)
	require.Equal(t, "a1", u1.ActiveTimer.ID)
	require.Equal(t, int64(150), u1.TotalSeconds)
	require.Equal(t, 2, u1.TotalEntries)

	u2 := activity.Members[1]
	require.Equal(t, "u2", u2.UserID)
	require.Nil(t, u2.ActiveTimer)
	require.Equal(t, int64(90), u2.TotalSeconds)
	require.Equal(t, 1, u2.TotalEntries)
}

func TestService_TeamActivity_RangePassedThrough(t *testing.T) {
	ctx := context.Background()
	from := testNow.Add(-24 * time.Hour)
	to := testNow

	repo := &mocks.TimeLogRepository{}
	repo.On("ListByOrg", ctx, "o1", &from, &to).Return([]timelog.TimeLog{}, nil)

	svc := report.NewService(repo, clock.NewMock(testNow), nil)
	activity, err := svc.TeamActivity(ctx, "o1", report.DateRange{From: &from, To: &to})
	require.NoError(t, err)
	require.Empty(t, activity.Members)
	repo.AssertExpectations(t)
}

func TestService_ActiveTimers_ToleratesMultiple(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.TimeLogRepository{}
	repo.On("GetActive", ctx, "u1", "o1").Return([]timelog.TimeLog{
		{ID: "t1", Begin: testNow.Add(-time.Minute)},
		{ID: "t2", Begin: testNow.Add(-2 * time.Minute)},
	}, nil)

	svc := report.NewService(repo, clock.NewMock(testNow), nil)
	active, err := svc.ActiveTimers(ctx, "u1", "o1")
	require.NoError(t, err)
	require.Len(t, active, 2)

	total, err := svc.TotalActiveTime(ctx, "u1", "o1")
	require.NoError(t, err)
	require.Equal(t, 3*time.Minute, total)
}

func TestService_TeamActivity_EmptyOrg(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.TimeLogRepository{}
	svc := report.NewService(repo, clock.NewMock(testNow), nil)

	_, err := svc.TeamActivity(ctx, "", report.DateRange{})
	require.ErrorIs(t, err, report.ErrInvalidInput)
	repo.AssertNotCalled(t, "ListByOrg", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

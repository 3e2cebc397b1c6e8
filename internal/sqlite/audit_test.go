package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kstrand/punchclock/internal/domain/audit"
)

func TestAuditRepository_LogAndList(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewAuditRepository(db)

	timerID := "t1"
	entry := &audit.Entry{
		UserID:    "u1",
		TimerID:   &timerID,
		EventType: audit.TypeTimerStarted,
		Summary:   "timer started",
		CreatedAt: baseTime,
	}
	require.NoError(t, repo.Log(ctx, "o1", entry))
	require.NotZero(t, entry.ID)
	require.Equal(t, "o1", entry.OrgID)

	require.NoError(t, repo.Log(ctx, "o1", &audit.Entry{
		UserID:    "u1",
		TimerID:   &timerID,
		EventType: audit.TypeTimerStopped,
		Summary:   "timer stopped",
		CreatedAt: baseTime.Add(time.Minute),
	}))
	require.NoError(t, repo.Log(ctx, "o2", &audit.Entry{
		UserID:    "u9",
		EventType: audit.TypeTimerStarted,
		Summary:   "timer started",
		CreatedAt: baseTime,
	}))

	entries, err := repo.List(ctx, "o1", audit.ListOptions{})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, audit.TypeTimerStopped, entries[0].EventType, "newest first")

	stopped := audit.TypeTimerStopped
	entries, err = repo.List(ctx, "o1", audit.ListOptions{EventType: &stopped})
	require.NoError(t, err)
	require.Len(t, entries, 1)

	entries, err = repo.List(ctx, "o1", audit.ListOptions{UserID: "u9"})
	require.NoError(t, err)
	require.Empty(t, entries, "org isolation")

	entries, err = repo.List(ctx, "o1", audit.ListOptions{Limit: 1})
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestAuditRepository_DefaultsCreatedAt(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewAuditRepository(db)

	entry := &audit.Entry{
		UserID:    "u1",
		EventType: audit.TypeInvariantRepair,
		Summary:   "stopped surplus active timer",
	}
	require.NoError(t, repo.Log(ctx, "o1", entry))
	require.False(t, entry.CreatedAt.IsZero())
}

package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMock(t *testing.T) {
	start := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	m := NewMock(start)

	require.Equal(t, start, m.Now())

	m.Advance(90 * time.Second)
	require.Equal(t, start.Add(90*time.Second), m.Now())
	require.Equal(t, 90*time.Second, m.Since(start))

	m.Set(start.Add(-time.Minute))
	require.Equal(t, -time.Minute, m.Since(start))
}

func TestSystem(t *testing.T) {
	c := System()
	before := time.Now()
	now := c.Now()
	require.False(t, now.Before(before))
	require.GreaterOrEqual(t, c.Since(before), time.Duration(0))
}

// Package clock provides an injectable time source so duration math can be
// tested deterministically. Production code uses the system clock.
package clock

import (
	"sync"
	"time"
)

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
	Since(t time.Time) time.Duration
}

// System returns a Clock backed by the real system time.
func System() Clock {
	return systemClock{}
}

type systemClock struct{}

func (systemClock) Now() time.Time                  { return time.Now() }
func (systemClock) Since(t time.Time) time.Duration { return time.Since(t) }

// Mock is a controllable clock for tests.
type Mock struct {
	mu      sync.RWMutex
	current time.Time
}

// NewMock creates a mock clock set to the given time.
func NewMock(t time.Time) *Mock {
	return &Mock{current: t}
}

// Now returns the mock time.
func (m *Mock) Now() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Since returns the duration from t to the mock time.
func (m *Mock) Since(t time.Time) time.Duration {
	return m.Now().Sub(t)
}

// Set moves the mock clock to t. Moving backwards is allowed; clock skew
// handling depends on it in tests.
func (m *Mock) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = t
}

// Advance moves the mock clock forward by d.
func (m *Mock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = m.current.Add(d)
}

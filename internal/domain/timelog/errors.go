package timelog

import "errors"

var (
	// ErrTimerNotFound indicates the timer doesn't exist or belongs to
	// another user. The two cases are deliberately indistinguishable to
	// callers.
	ErrTimerNotFound = errors.New("timer not found")
	// ErrNoActiveTimer indicates no timer is currently running for the user.
	ErrNoActiveTimer = errors.New("no active timer")
	// ErrAlreadyStopped indicates a stop was requested for a timer whose end
	// is already set.
	ErrAlreadyStopped = errors.New("timer already stopped")
	// ErrInvalidInput indicates invalid timer input.
	ErrInvalidInput = errors.New("invalid timer input")
)

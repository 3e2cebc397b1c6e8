package timelog

import "time"

// ComputeDuration returns the whole seconds between begin and end, truncated.
// A negative span (system clock moved backwards between start and stop) is
// clamped to zero and reported via the second return value so callers can
// flag the record. Any backwards movement counts, even less than a second.
func ComputeDuration(begin, end time.Time) (int64, bool) {
	if end.Before(begin) {
		return 0, true
	}
	return int64(end.Sub(begin) / time.Second), false
}

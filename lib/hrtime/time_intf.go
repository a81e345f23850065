package hrtime

import "time"

// Clock reads a monotonic counter. The durations are relative to the
// process start, so they are only comparable within a process.
type Clock interface {
	Now() time.Duration
	Since(begin time.Duration) time.Duration
}

package hrtime

import "time"

// Stopwatch measures the laps of a single goroutine.
type Stopwatch struct {
	clock Clock
	start time.Duration
	last  time.Duration
}

func NewStopwatch(clock Clock) *Stopwatch {
	if clock == nil {
		clock = MonotonicClock
	}
	now := clock.Now()
	return &Stopwatch{clock: clock, start: now, last: now}
}

// Lap returns the duration since the previous lap or the start.
func (sw *Stopwatch) Lap() time.Duration {
	now := sw.clock.Now()
	d := now - sw.last
	sw.last = now
	return d
}

func (sw *Stopwatch) Elapsed() time.Duration {
	return sw.clock.Since(sw.start)
}

func (sw *Stopwatch) Reset() {
	sw.start = sw.clock.Now()
	sw.last = sw.start
}

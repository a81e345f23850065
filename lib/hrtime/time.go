//go:build !windows
// +build !windows

package hrtime

import (
	"time"

	"github.com/samber/lo"
	"golang.org/x/sys/unix"
)

var (
	MonotonicClock Clock = &unixMonotonicClock{}
	monotonicStart int64
)

func init() {
	ts := unix.Timespec{}
	lo.Must0(unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts))
	monotonicStart = ts.Nano()
}

type unixMonotonicClock struct{}

func (u *unixMonotonicClock) Now() time.Duration {
	ts := unix.Timespec{}
	lo.Must0(unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts))
	return time.Duration(ts.Nano() - monotonicStart)
}

func (u *unixMonotonicClock) Since(begin time.Duration) time.Duration {
	return u.Now() - begin
}

// Resolution returns the CLOCK_MONOTONIC resolution.
func Resolution() time.Duration {
	res := unix.Timespec{}
	if err := unix.ClockGetres(unix.CLOCK_MONOTONIC, &res); err != nil {
		return time.Microsecond
	}
	return time.Duration(res.Nano())
}

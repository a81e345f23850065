package hrtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimerResolution(t *testing.T) {
	res := Resolution()
	require.Greater(t, res, time.Duration(0))
	t.Logf("monotonic clock resolution is %v\n", res)
}

func TestNow(t *testing.T) {
	defaultTZOffset := DefaultTimezoneOffset()
	t1 := NowInDefaultTZ()
	t2 := NowIn(TzAsiaShanghaiOffset)
	assert.Equal(t, 0, int(t2.Sub(t1).Minutes()))
	_, tz1 := t1.Zone()
	_, tz2 := t2.Zone()
	assert.Equal(t, int(TzAsiaShanghaiOffset)-defaultTZOffset, tz2-tz1)
	_, utc := NowInUTC().Zone()
	assert.Equal(t, 0, utc)
}

func TestMonotonicClock(t *testing.T) {
	begin := MonotonicClock.Now()
	time.Sleep(50 * time.Millisecond)
	elapsed := MonotonicClock.Since(begin)
	assert.GreaterOrEqual(t, elapsed, 50*time.Millisecond)
	assert.Less(t, elapsed, 5*time.Second)
}

type fakeClock struct {
	now time.Duration
}

func (c *fakeClock) Now() time.Duration                  { return c.now }
func (c *fakeClock) Since(b time.Duration) time.Duration { return c.now - b }

func TestStopwatch(t *testing.T) {
	clock := &fakeClock{now: 10}
	sw := NewStopwatch(clock)
	clock.now = 25
	require.Equal(t, time.Duration(15), sw.Lap())
	clock.now = 40
	require.Equal(t, time.Duration(15), sw.Lap())
	require.Equal(t, time.Duration(30), sw.Elapsed())
	sw.Reset()
	require.Equal(t, time.Duration(0), sw.Elapsed())

	require.NotNil(t, NewStopwatch(nil).clock)
}

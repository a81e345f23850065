//go:build windows
// +build windows

// High-resolution time for Windows.

package hrtime

// References:
// https://github.com/golang/go/issues/31160
// https://learn.microsoft.com/en-us/windows/win32/sysinfo/acquiring-high-resolution-time-stamps

import (
	"errors"
	"sync/atomic"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	kernel32 = windows.NewLazyDLL("kernel32.dll")
	procQPF  = kernel32.NewProc("QueryPerformanceFrequency")
	procQPC  = kernel32.NewProc("QueryPerformanceCounter")
)

func getFrequency() (int64, bool) {
	var freq int64
	r1, _, err := procQPF.Call(uintptr(unsafe.Pointer(&freq)))
	if err != nil && !errors.Is(err, windows.SEVERITY_SUCCESS) {
		panic(err)
	}
	return freq, r1 == 1
}

// The counter may differ across cores on some old BIOS.
func getCounter() (int64, bool) {
	var counter int64
	r1, _, err := procQPC.Call(uintptr(unsafe.Pointer(&counter)))
	if err != nil && !errors.Is(err, windows.SEVERITY_SUCCESS) {
		panic(err)
	}
	return counter, r1 == 1
}

var (
	MonotonicClock        Clock = &qpcClock{}
	baseProcFreq          int64
	baseProcCounter       int64
	startTime             time.Time
	fallbackLowResolution atomic.Bool
)

func init() {
	startTime = time.Now()
	var ok bool
	if baseProcCounter, ok = getCounter(); !ok {
		fallbackLowResolution.Store(true)
	}
	if baseProcFreq, ok = getFrequency(); !ok || baseProcFreq <= 0 {
		fallbackLowResolution.Store(true)
	}
}

type qpcClock struct{}

func (q *qpcClock) Now() time.Duration {
	if fallbackLowResolution.Load() {
		return time.Since(startTime)
	}
	counter, _ := getCounter()
	ticks := counter - baseProcCounter
	// Split to avoid the overflow of ticks * 1e9.
	secs, rem := ticks/baseProcFreq, ticks%baseProcFreq
	return time.Duration(secs)*time.Second + time.Duration(rem)*time.Second/time.Duration(baseProcFreq)
}

func (q *qpcClock) Since(begin time.Duration) time.Duration {
	return q.Now() - begin
}

func Resolution() time.Duration {
	if fallbackLowResolution.Load() {
		return time.Millisecond
	}
	return time.Second / time.Duration(baseProcFreq)
}

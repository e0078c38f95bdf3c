package testutil

import (
	"testing"
	"time"

	"github.com/coder/quartz"
)

// Now is the instant fixture clocks are pinned to.
var Now = time.Date(2024, 3, 10, 12, 30, 0, 0, time.UTC)

// FixedClock returns a mock clock pinned to Now.
//
// Temporal shorthands ("-3d") resolve against it, so compiled constraints
// are identical across runs.
func FixedClock(tb testing.TB) *quartz.Mock {
	return ClockAt(tb, Now)
}

// ClockAt returns a mock clock pinned to now.
func ClockAt(tb testing.TB, now time.Time) *quartz.Mock {
	clock := quartz.NewMock(tb)
	clock.Set(now)
	return clock
}

package query

import (
	"time"

	"github.com/coder/quartz"
)

// pinnedClock is a real clock whose Now never moves.
type pinnedClock struct {
	quartz.Clock
	now time.Time
}

func (c pinnedClock) Now(...string) time.Time {
	return c.now
}

// PinnedClock returns a clock that reports now forever.
// Timers and tickers still run on the real clock.
func PinnedClock(now time.Time) quartz.Clock {
	return pinnedClock{Clock: quartz.NewReal(), now: now}
}

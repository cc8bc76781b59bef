package engine

import (
	"time"

	"github.com/benbjohnson/clock"
)

// Handle is a pending single-shot task.
type Handle interface {
	// Stop cancels the task and reports whether it had not yet fired.
	Stop() bool
}

// Scheduler runs fn once after d. Callbacks run on their own goroutine.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Handle
}

// ClockScheduler schedules tasks on a clock.Clock.
type ClockScheduler struct {
	clock clock.Clock
}

// NewClockScheduler wraps c; a nil clock means the wall clock.
func NewClockScheduler(c clock.Clock) *ClockScheduler {
	if c == nil {
		c = clock.New()
	}
	return &ClockScheduler{clock: c}
}

func (s *ClockScheduler) AfterFunc(d time.Duration, fn func()) Handle {
	return s.clock.AfterFunc(d, fn)
}

// Clock returns the clock tasks are scheduled against.
func (s *ClockScheduler) Clock() clock.Clock { return s.clock }

// StopAll cancels every non-nil handle.
func StopAll(handles ...Handle) {
	for _, h := range handles {
		if h != nil {
			h.Stop()
		}
	}
}

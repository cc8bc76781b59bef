// Package enginetest provides deterministic time for engine tests.
package enginetest

import (
	"sort"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/MJE43/arcade-engine-go/internal/engine"
)

// ManualScheduler queues tasks against a mock clock and only runs them from
// Advance, on the caller's goroutine, in due order.
type ManualScheduler struct {
	mu    sync.Mutex
	clock *clock.Mock
	tasks []*task
	seq   int
}

type task struct {
	s       *ManualScheduler
	due     time.Time
	seq     int
	fn      func()
	stopped bool
	fired   bool
}

func (t *task) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// NewManualScheduler returns a scheduler whose clock starts at the Unix epoch.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{clock: clock.NewMock()}
}

// Clock returns the mock clock shared with the engines under test.
func (s *ManualScheduler) Clock() *clock.Mock { return s.clock }

func (s *ManualScheduler) AfterFunc(d time.Duration, fn func()) engine.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	t := &task{s: s, due: s.clock.Now().Add(d), seq: s.seq, fn: fn}
	s.tasks = append(s.tasks, t)
	return t
}

// Advance moves the clock forward by d, firing every task that comes due.
// Tasks scheduled by a firing task run in the same call if they fall
// inside the window.
func (s *ManualScheduler) Advance(d time.Duration) {
	target := s.clock.Now().Add(d)
	for {
		next := s.popDue(target)
		if next == nil {
			break
		}
		if next.due.After(s.clock.Now()) {
			s.clock.Set(next.due)
		}
		next.fn()
	}
	if target.After(s.clock.Now()) {
		s.clock.Set(target)
	}
}

// Pending reports how many tasks are scheduled and not yet fired or stopped.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.tasks {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

func (s *ManualScheduler) popDue(target time.Time) *task {
	s.mu.Lock()
	defer s.mu.Unlock()
	live := s.tasks[:0]
	for _, t := range s.tasks {
		if !t.stopped && !t.fired {
			live = append(live, t)
		}
	}
	s.tasks = live
	sort.SliceStable(s.tasks, func(i, j int) bool {
		if s.tasks[i].due.Equal(s.tasks[j].due) {
			return s.tasks[i].seq < s.tasks[j].seq
		}
		return s.tasks[i].due.Before(s.tasks[j].due)
	})
	if len(s.tasks) == 0 || s.tasks[0].due.After(target) {
		return nil
	}
	t := s.tasks[0]
	t.fired = true
	s.tasks = s.tasks[1:]
	return t
}

// Package timertest provides a manually advanced scheduler for tests.
package timertest

import (
	"sort"
	"sync"
	"time"

	"undercover/internal/timer"
)

// Scheduler is a fake clock. Callbacks run synchronously inside Advance.
type Scheduler struct {
	mu      sync.Mutex
	now     time.Time
	seq     int
	pending []*entry
}

type entry struct {
	s       *Scheduler
	at      time.Time
	seq     int
	f       func()
	stopped bool
}

// New creates a scheduler whose clock starts at start
func New(start time.Time) *Scheduler {
	return &Scheduler{now: start}
}

// Now returns the fake current time
func (s *Scheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// AfterFunc implements timer.Scheduler
func (s *Scheduler) AfterFunc(d time.Duration, f func()) timer.Stopper {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	e := &entry{s: s, at: s.now.Add(d), seq: s.seq, f: f}
	s.pending = append(s.pending, e)
	return e
}

// Advance moves the clock forward by d and runs every callback that became
// due, in due order.
func (s *Scheduler) Advance(d time.Duration) {
	s.mu.Lock()
	s.now = s.now.Add(d)
	now := s.now

	due := make([]*entry, 0)
	keep := s.pending[:0]
	for _, e := range s.pending {
		if e.stopped {
			continue
		}
		if !e.at.After(now) {
			due = append(due, e)
		} else {
			keep = append(keep, e)
		}
	}
	s.pending = keep
	s.mu.Unlock()

	sort.Slice(due, func(i, j int) bool {
		if !due[i].at.Equal(due[j].at) {
			return due[i].at.Before(due[j].at)
		}
		return due[i].seq < due[j].seq
	})
	for _, e := range due {
		e.f()
	}
}

// Pending returns the number of callbacks not yet run or stopped
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, e := range s.pending {
		if !e.stopped {
			n++
		}
	}
	return n
}

func (e *entry) Stop() bool {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()

	if e.stopped {
		return false
	}
	for _, p := range e.s.pending {
		if p == e {
			e.stopped = true
			return true
		}
	}
	return false
}

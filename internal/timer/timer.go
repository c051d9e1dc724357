// Package timer provides the single phase timer each room owns.
//
// A Phase timer never runs its callback on the scheduler goroutine. The fire
// is handed to post, which queues it on the owning room's inbox, and the
// callback runs only if no Arm or Cancel happened in between.
package timer

import "time"

// Stopper is a pending scheduled callback
type Stopper interface {
	Stop() bool
}

// Scheduler runs f once after d
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Stopper
}

// System schedules with the runtime timers
type System struct{}

func (System) AfterFunc(d time.Duration, f func()) Stopper {
	return time.AfterFunc(d, f)
}

// Phase holds at most one armed callback. It is not safe for concurrent
// use: Arm, Cancel and the posted fire all run on the owner's goroutine.
type Phase struct {
	sched   Scheduler
	post    func(func())
	epoch   uint64
	pending Stopper
}

// NewPhase creates a phase timer. post must queue the function on the
// owner's serialized goroutine.
func NewPhase(sched Scheduler, post func(func())) *Phase {
	return &Phase{sched: sched, post: post}
}

// Arm cancels any pending callback and schedules onFire after d.
func (t *Phase) Arm(d time.Duration, onFire func()) {
	t.Cancel()

	epoch := t.epoch
	t.pending = t.sched.AfterFunc(d, func() {
		t.post(func() {
			if t.epoch != epoch {
				return
			}
			t.pending = nil
			t.epoch++
			onFire()
		})
	})
}

// Cancel drops the pending callback, if any. A fire already queued on the
// owner's inbox is discarded when it runs.
func (t *Phase) Cancel() {
	if t.pending != nil {
		t.pending.Stop()
		t.pending = nil
	}
	t.epoch++
}

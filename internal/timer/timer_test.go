package timer_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"undercover/internal/timer"
	"undercover/internal/timer/timertest"
)

// queue stands in for a room inbox
type queue struct {
	fns []func()
}

func (q *queue) post(f func()) {
	q.fns = append(q.fns, f)
}

func (q *queue) drain() {
	for len(q.fns) > 0 {
		f := q.fns[0]
		q.fns = q.fns[1:]
		f()
	}
}

func TestPhase_FiresOnce(t *testing.T) {
	sched := timertest.New(time.Unix(0, 0))
	q := &queue{}
	pt := timer.NewPhase(sched, q.post)

	fired := 0
	pt.Arm(time.Second, func() { fired++ })
	assert.Equal(t, 1, sched.Pending())

	sched.Advance(999 * time.Millisecond)
	q.drain()
	assert.Equal(t, 0, fired)

	sched.Advance(time.Millisecond)
	q.drain()
	assert.Equal(t, 1, fired)
	assert.Zero(t, sched.Pending())

	sched.Advance(time.Hour)
	q.drain()
	assert.Equal(t, 1, fired)
}

func TestPhase_ArmReplacesPending(t *testing.T) {
	sched := timertest.New(time.Unix(0, 0))
	q := &queue{}
	pt := timer.NewPhase(sched, q.post)

	var fired []string
	pt.Arm(time.Second, func() { fired = append(fired, "first") })
	pt.Arm(2*time.Second, func() { fired = append(fired, "second") })
	assert.Equal(t, 1, sched.Pending())

	sched.Advance(2 * time.Second)
	q.drain()
	assert.Equal(t, []string{"second"}, fired)
}

func TestPhase_CancelDropsQueuedFire(t *testing.T) {
	sched := timertest.New(time.Unix(0, 0))
	q := &queue{}
	pt := timer.NewPhase(sched, q.post)

	fired := false
	pt.Arm(time.Second, func() { fired = true })

	// The scheduler already handed the fire to the inbox...
	sched.Advance(time.Second)
	assert.Len(t, q.fns, 1)

	// ...but the owner cancelled before processing it.
	pt.Cancel()
	q.drain()
	assert.False(t, fired)
}

func TestPhase_StaleFireAfterRearm(t *testing.T) {
	sched := timertest.New(time.Unix(0, 0))
	q := &queue{}
	pt := timer.NewPhase(sched, q.post)

	var fired []string
	pt.Arm(time.Second, func() { fired = append(fired, "old") })
	sched.Advance(time.Second)

	pt.Arm(time.Second, func() { fired = append(fired, "new") })
	q.drain()
	assert.Empty(t, fired)

	sched.Advance(time.Second)
	q.drain()
	assert.Equal(t, []string{"new"}, fired)
}

// Package timers provides cancellable scheduled callbacks tied to an owner's
// lifetime, plus a manual clock for deterministic tests.
package timers

import (
	"sync"
	"time"
)

// Timer is a scheduled callback that can be stopped before it fires.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d has elapsed.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// Real schedules callbacks on the runtime timer heap.
type Real struct{}

// AfterFunc wraps time.AfterFunc.
func (Real) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Group owns a set of pending tasks. CancelAll stops every task still pending;
// a task whose timer already fired but has not yet run becomes a no-op.
type Group struct {
	sched Scheduler

	mu    sync.Mutex
	epoch uint64
	tasks map[uint64]Timer
	next  uint64
}

// NewGroup creates a Group on top of sched. A nil sched uses Real.
func NewGroup(sched Scheduler) *Group {
	if sched == nil {
		sched = Real{}
	}
	return &Group{sched: sched, tasks: make(map[uint64]Timer)}
}

// Schedule runs f after d unless the group is cancelled first.
func (g *Group) Schedule(d time.Duration, f func()) {
	g.mu.Lock()
	defer g.mu.Unlock()

	epoch := g.epoch
	id := g.next
	g.next++

	g.tasks[id] = g.sched.AfterFunc(d, func() {
		g.mu.Lock()
		if epoch != g.epoch {
			g.mu.Unlock()
			return
		}
		delete(g.tasks, id)
		g.mu.Unlock()
		f()
	})
}

// CancelAll stops every pending task.
func (g *Group) CancelAll() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.epoch++
	for id, t := range g.tasks {
		t.Stop()
		delete(g.tasks, id)
	}
}

// Pending reports how many tasks are still scheduled.
func (g *Group) Pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.tasks)
}

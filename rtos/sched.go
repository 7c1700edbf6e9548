// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rtos

import "github.com/sirupsen/logrus"

// Start builds the idle task, puts every created task in its ready
// bucket, arms the tick and requests the first reschedule.
// On hardware it never returns. On a hosted platform it returns the
// reason the platform stopped.
func (k *Kernel) Start() error {
	k.Suspend()
	if k.started {
		k.Resume()
		return ErrStarted
	}
	entry := k.IdleHook
	if entry == nil {
		entry = k.idleLoop
	}
	idle := &k.tasks[k.idle]
	idle.entry = entry
	idle.stack = k.idleStack
	idle.ctx = k.plat.InitContext(entry, nil, k.idleStack)
	idle.state = TaskReady
	for i := 0; i < k.ntask; i++ {
		k.addReady(TaskID(i), k.tasks[i].priority)
	}
	k.started = true
	k.Resume()

	k.Log.WithFields(logrus.Fields{
		"tasks":      k.ntask,
		"priorities": k.cfg.MaxPriority,
	}).Info("scheduler started")

	k.plat.Arm(k)
	k.plat.RequestReschedule()
	return k.plat.Park()
}

func (k *Kernel) idleLoop(any) {
	for {
		k.plat.WaitForInterrupt()
	}
}

// Reschedule implements Handler. It saves out into the task that was
// running and picks the head of the highest non-empty ready bucket,
// or the idle task when every bucket is empty.
// A running task that was preempted rejoins its bucket at the tail.
// While the guard is held nothing moves and out comes straight back.
func (k *Kernel) Reschedule(out Context) Context {
	prev := k.current
	if prev != NoTask {
		k.tasks[prev].ctx = out
	}
	if k.guard.depth > 0 {
		k.guard.pending = true
		return out
	}
	k.guard.pending = false

	if prev != NoTask {
		t := &k.tasks[prev]
		if t.state == TaskRunning {
			// Preempted, not blocked.
			t.state = TaskReady
			if prev != k.idle {
				k.addReady(prev, t.priority)
			}
		}
	}

	next := k.idle
	for p := range k.ready {
		if k.ready[p].count > 0 {
			next = k.removeReady(uint8(p + 1))
			break
		}
	}
	k.current = next
	t := &k.tasks[next]
	t.state = TaskRunning
	if next != prev && k.Log.Logger.IsLevelEnabled(logrus.TraceLevel) {
		k.Log.WithFields(logrus.Fields{
			"tick": k.ticks,
			"from": k.name(prev),
			"to":   t.name,
		}).Trace("switch")
	}
	return t.ctx
}

func (k *Kernel) name(id TaskID) string {
	if id == NoTask {
		return "-"
	}
	return k.tasks[id].name
}

// Yield puts the running task at the tail of its ready bucket and
// reschedules. It fails with ErrNotRunning when called by the idle
// task or before the scheduler runs.
func (k *Kernel) Yield() error {
	k.Suspend()
	id := k.current
	if id == NoTask || id == k.idle || k.tasks[id].state != TaskRunning {
		k.Resume()
		return ErrNotRunning
	}
	if k.guard.depth == 1 {
		t := &k.tasks[id]
		t.state = TaskReady
		k.addReady(id, t.priority)
	}
	// Otherwise the caller holds the guard: the reschedule below is
	// deferred to its Resume, which finds the task still Running.
	k.Resume()
	k.plat.RequestReschedule()
	return nil
}

// Delay blocks the running task for ticks ticks. MaxDelay blocks until
// a semaphore or queue wakes the task. Delay(0) and Delay from the idle
// task return at once, as does every Delay when Config.UseDelay is off.
func (k *Kernel) Delay(ticks Tick) {
	if !k.cfg.UseDelay || ticks == 0 {
		return
	}
	k.Suspend()
	if !k.block(ticks) {
		k.Resume()
		return
	}
	k.wait()
}

// block marks the running task Blocked for ticks.
// It reports false, and does nothing, for the idle task.
// The caller holds the guard.
func (k *Kernel) block(ticks Tick) bool {
	id := k.current
	if id == NoTask || id == k.idle {
		return false
	}
	t := &k.tasks[id]
	t.state = TaskBlocked
	t.delay = ticks
	return true
}

// TickAdvance implements Handler. It counts the tick, counts down every
// finite delay and moves tasks whose delay ran out to their ready bucket.
// It reports whether this tick is due for a reschedule.
func (k *Kernel) TickAdvance() bool {
	k.Suspend()
	k.ticks++
	if k.cfg.UseDelay {
		for i := 0; i < k.ntask; i++ {
			t := &k.tasks[i]
			if t.state != TaskBlocked || t.delay == 0 || t.delay == MaxDelay {
				continue
			}
			t.delay--
			if t.delay == 0 {
				t.state = TaskReady
				k.addReady(TaskID(i), t.priority)
			}
		}
	}
	due := k.ticks%k.cfg.TicksPerReschedule == 0
	if due && k.cfg.UseTickHook && k.TickHook != nil {
		k.TickHook()
	}
	k.Resume()
	return due
}

// unsuspend moves a Blocked task straight to Ready and clears its delay,
// without waiting for the tick to run it out. Tasks in any other state
// are left alone. The caller holds the guard.
func (k *Kernel) unsuspend(id TaskID) {
	t := &k.tasks[id]
	if t.state != TaskBlocked {
		return
	}
	t.state = TaskReady
	t.delay = 0
	k.addReady(id, t.priority)
}

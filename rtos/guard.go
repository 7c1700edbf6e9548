// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rtos

// The guard is the only kernel critical section.
// While it is held a reschedule still runs, and tick accounting still
// advances, but the running task stays in place; the Resume that drops
// the last level asks for the reschedule again.
//
// It nests: Queue operations hold it while calling into Semaphore
// operations that take it again.
type guard struct {
	depth   int
	pending bool // a reschedule was refused while held
}

// Suspend takes one level of the guard.
func (k *Kernel) Suspend() {
	k.guard.depth++
}

// Resume drops one level of the guard. Extra calls are ignored.
func (k *Kernel) Resume() {
	if k.guard.depth == 0 {
		return
	}
	k.guard.depth--
	if k.guard.depth == 0 && k.guard.pending {
		k.guard.pending = false
		k.plat.RequestReschedule()
	}
}

// Suspended reports whether the guard is held.
func (k *Kernel) Suspended() bool {
	return k.guard.depth > 0
}

// wait switches away from the running task, which the caller has
// already marked Blocked while holding the guard. The guard is dropped
// completely for the switch; when the task runs again the caller gets
// back the levels it held before its own Suspend.
func (k *Kernel) wait() {
	depth := k.guard.depth
	if depth > 0 {
		depth--
	}
	k.guard.depth = 0
	k.plat.RequestReschedule()
	k.guard.depth = depth
}

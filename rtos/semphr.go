// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rtos

import "github.com/sirupsen/logrus"

// A Semaphore is a binary semaphore with room for a single waiter.
// A second task that tries to wait while one is already waiting
// fails with ErrBusy instead of queueing.
//
// The idle task may Give but never Take.
type Semaphore struct {
	k       *Kernel
	value   uint8
	waiter  TaskID
	waiting bool // waiter has not been given the semaphore yet
}

// Init resets s to taken, with no waiter.
func (s *Semaphore) Init(k *Kernel) error {
	if !k.cfg.UseSemaphore {
		return ErrDisabled
	}
	*s = Semaphore{k: k, waiter: NoTask}
	return nil
}

// Available reports whether a Take would succeed without waiting.
func (s *Semaphore) Available() bool {
	return s.value > 0
}

// Waiter returns the task waiting on s, or NoTask.
func (s *Semaphore) Waiter() TaskID {
	return s.waiter
}

// Give hands s to its waiter, if there is one, and reschedules so that
// the waiter runs at once when its priority allows. Otherwise s is left
// available for the next Take. Give is safe from interrupt handlers.
func (s *Semaphore) Give() {
	k := s.k
	k.Suspend()
	if !s.waiting {
		s.value = 1
		k.Resume()
		return
	}
	s.waiting = false
	k.unsuspend(s.waiter)
	k.Resume()
	k.plat.RequestReschedule()
}

// Take takes s, waiting up to timeout ticks for a Give.
// It fails with ErrTimeout when the time runs out (timeout 0 never waits),
// ErrBusy when another task is already waiting, and ErrIdle when called
// from the idle task.
func (s *Semaphore) Take(timeout Tick) error {
	k := s.k
	k.Suspend()
	switch {
	case k.current == NoTask:
		k.Resume()
		return ErrNotRunning
	case k.current == k.idle:
		k.Resume()
		return ErrIdle
	case s.waiter != NoTask:
		k.Resume()
		return ErrBusy
	case s.value > 0:
		s.value = 0
		k.Resume()
		return nil
	}

	s.waiter = k.current
	s.waiting = true
	if timeout > 0 && k.block(timeout) {
		k.wait()
		k.Suspend()
	}
	// Give clears waiting; a timeout leaves it set.
	var err error
	if s.waiting {
		err = ErrTimeout
		k.Log.WithFields(logrus.Fields{
			"task": k.tasks[k.current].name,
			"tick": k.ticks,
		}).Debug("semaphore timeout")
	}
	s.waiter = NoTask
	s.waiting = false
	k.Resume()
	return err
}

// TakeFromISR takes s only if it is available and nobody waits on it.
// It never blocks and fails with ErrWouldBlock or ErrBusy.
func (s *Semaphore) TakeFromISR() error {
	k := s.k
	k.Suspend()
	defer k.Resume()
	if s.waiter != NoTask {
		return ErrBusy
	}
	if s.value == 0 {
		return ErrWouldBlock
	}
	s.value = 0
	return nil
}

// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package rtos is a priority-preemptive real-time kernel for a single core:
// a fixed task table, one FIFO ready bucket per priority, tick driven
// delays, binary semaphores and bounded queues.
//
// The kernel never touches the CPU itself. It asks a Platform to build
// execution contexts and to request reschedules, and the platform calls
// back into Reschedule and TickAdvance.
package rtos

import "github.com/sirupsen/logrus"

// A Kernel is the whole kernel state. There is one per CPU.
type Kernel struct {
	cfg  Config
	plat Platform

	tasks   []task // cfg.MaxTasks user slots, then the idle task
	ntask   int
	idle    TaskID
	current TaskID
	ticks   Tick
	ready   []bucket // ready[p-1] holds priority p
	guard   guard
	started bool

	idleStack []byte

	// TickHook runs on every tick that is due for a reschedule
	// when Config.UseTickHook is set. It runs in interrupt context.
	TickHook func()

	// IdleHook replaces the idle task body. It must never return and
	// must never block. The default sleeps in WaitForInterrupt forever.
	IdleHook TaskFunc

	Log *logrus.Entry
}

// New returns a kernel for cfg running on p.
// All kernel memory is allocated here.
func New(cfg Config, p Platform) (*Kernel, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	k := &Kernel{
		cfg:       cfg,
		plat:      p,
		tasks:     make([]task, cfg.MaxTasks+1),
		idle:      TaskID(cfg.MaxTasks),
		current:   NoTask,
		ready:     make([]bucket, cfg.MaxPriority),
		idleStack: make([]byte, cfg.IdleStackSize),
		Log:       logrus.NewEntry(logrus.StandardLogger()),
	}
	for i := range k.ready {
		k.ready[i].ids = make([]TaskID, cfg.MaxTasks)
	}
	k.tasks[k.idle].name = "idle"
	return k, nil
}

// Config returns the configuration the kernel was built with.
func (k *Kernel) Config() Config { return k.cfg }

// Started reports whether Start has run.
func (k *Kernel) Started() bool { return k.started }

// TickCount returns the number of ticks since Start.
func (k *Kernel) TickCount() Tick { return k.ticks }

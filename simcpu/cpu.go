// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package simcpu is a hosted single-core CPU for package rtos.
//
// Every execution context is a goroutine, and only the goroutine that
// holds the CPU runs; the others are parked on their own channel.
// A switch hands the CPU to the next context and parks the current one.
//
// Interrupts are taken when the running context enters the CPU:
// when it requests a reschedule, waits for an interrupt or calls Poll.
// Pending interrupt lines are served first, then the tick, then the
// deferred reschedule. Handlers run in handler mode, where a reschedule
// request only marks the reschedule pending.
package simcpu

import (
	"fmt"
	"math/bits"
	"runtime"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"rsc.io/rtos/rtos"
)

var (
	ErrStopped  = fmt.Errorf("simcpu: stopped")
	ErrReturned = fmt.Errorf("simcpu: task returned")
	ErrAttached = fmt.Errorf("simcpu: handler already attached")
	ErrDetached = fmt.Errorf("simcpu: no handler attached")
	ErrLine     = fmt.Errorf("simcpu: invalid interrupt line")
)

// A CPU is a hosted CPU. It implements rtos.Platform.
type CPU struct {
	mu       sync.Mutex
	cond     sync.Cond
	irq      uint64 // raised lines not yet served
	ticks    int    // ticks not yet served
	sleeping bool   // idle in WaitForInterrupt with nothing pending
	halted   bool
	err      error
	halt     chan struct{}

	// Owned by whichever context holds the CPU.
	h        rtos.Handler
	vectors  [NumIRQ]func()
	depth    int // handler nesting
	pendSV   bool
	active   *thread
	nthread  int
	switches int

	period time.Duration

	Log *logrus.Entry
}

// A thread is an execution context.
type thread struct {
	id      int
	entry   rtos.TaskFunc
	arg     any
	stack   []byte
	run     chan struct{}
	started bool
	boot    bool
}

// New returns a CPU whose tick fires every period.
// A zero period leaves the tick to Tick and Step.
func New(period time.Duration) *CPU {
	c := &CPU{
		halt:   make(chan struct{}),
		period: period,
		Log:    logrus.NewEntry(logrus.StandardLogger()),
	}
	c.cond.L = &c.mu
	c.active = &thread{id: -1, boot: true, run: make(chan struct{}, 1)}
	return c
}

// InitContext returns a context that starts entry(arg) on stack the
// first time it is switched to. The stack is cleared.
func (c *CPU) InitContext(entry rtos.TaskFunc, arg any, stack []byte) rtos.Context {
	clear(stack)
	t := &thread{
		id:    c.nthread,
		entry: entry,
		arg:   arg,
		stack: stack,
		run:   make(chan struct{}, 1),
	}
	c.nthread++
	return t
}

// Arm installs h and starts the tick.
func (c *CPU) Arm(h rtos.Handler) {
	c.h = h
	if c.period > 0 {
		go c.ticker()
	}
}

// RequestReschedule marks a reschedule pending. Outside handler mode
// it is taken at once, along with anything else pending.
func (c *CPU) RequestReschedule() {
	c.pendSV = true
	if c.depth == 0 {
		c.service()
	}
}

// Poll takes pending interrupts. A task that computes for a long time
// without calling into the kernel calls Poll to let the tick in.
func (c *CPU) Poll() {
	if c.depth == 0 {
		c.service()
	}
}

// WaitForInterrupt sleeps until an interrupt line is raised or a tick
// arrives, then serves it.
func (c *CPU) WaitForInterrupt() {
	c.mu.Lock()
	for !c.halted && c.irq == 0 && c.ticks == 0 {
		if !c.sleeping {
			c.sleeping = true
			c.cond.Broadcast()
		}
		c.cond.Wait()
	}
	c.sleeping = false
	c.mu.Unlock()
	c.service()
}

// Park blocks the boot context until the CPU halts and returns the reason.
func (c *CPU) Park() error {
	<-c.halt
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Stop halts the CPU. Park returns ErrStopped.
func (c *CPU) Stop() {
	c.stop(ErrStopped)
}

// Err returns the reason the CPU halted, or nil while it runs.
func (c *CPU) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *CPU) stop(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.halted {
		return
	}
	c.halted = true
	c.err = err
	close(c.halt)
	c.cond.Broadcast()
}

// Switches returns the number of context switches so far.
// Only code running on the CPU may call it.
func (c *CPU) Switches() int {
	return c.switches
}

// service serves pending work until there is none.
func (c *CPU) service() {
	self := c.active
	for {
		c.mu.Lock()
		if c.halted {
			c.mu.Unlock()
			c.exit(self)
			return
		}
		var fn func()
		line := -1
		switch {
		case c.irq != 0:
			line = bits.TrailingZeros64(c.irq)
			c.irq &^= 1 << line
			fn = c.vectors[line]
		case c.ticks > 0 && c.h != nil:
			c.ticks--
			fn = c.tick
		}
		c.mu.Unlock()

		switch {
		case fn != nil:
			c.depth++
			fn()
			c.depth--
		case line >= 0:
			c.Log.WithField("line", line).Warn("spurious interrupt")
		case c.pendSV:
			c.pendSV = false
			c.swtch()
		default:
			return
		}
	}
}

func (c *CPU) tick() {
	if c.h.TickAdvance() {
		c.RequestReschedule()
	}
}

// swtch asks the handler for the next context and hands it the CPU.
func (c *CPU) swtch() {
	if c.h == nil {
		return
	}
	out := c.active
	var ctx rtos.Context
	if !out.boot {
		ctx = out
	}
	in, _ := c.h.Reschedule(ctx).(*thread)
	if in == nil || in == out {
		return
	}
	c.switches++
	c.active = in
	if !in.started {
		in.started = true
		go c.run(in)
	} else {
		in.run <- struct{}{}
	}
	c.park(out)
}

// park waits until t gets the CPU back.
func (c *CPU) park(t *thread) {
	select {
	case <-t.run:
	case <-c.halt:
		c.exit(t)
	}
}

// exit ends context t on a halted CPU.
// The boot context returns to Park instead.
func (c *CPU) exit(t *thread) {
	if t.boot {
		return
	}
	runtime.Goexit()
}

func (c *CPU) run(t *thread) {
	c.service()
	t.entry(t.arg)

	err := fmt.Errorf("%w: context %d", ErrReturned, t.id)
	c.Log.WithField("context", t.id).Error("task returned")
	c.stop(err)
	runtime.Goexit()
}

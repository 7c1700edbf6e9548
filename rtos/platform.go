// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rtos

// A Context is a saved execution context.
// Only the Platform that built it knows what is inside.
type Context any

// A TaskFunc is a task entry point. Entry points never return;
// the platform traps if one does.
type TaskFunc func(arg any)

// A Handler is the kernel side of the platform contract.
// *Kernel implements it.
type Handler interface {
	// Reschedule saves out as the context of the task that was
	// running and returns the context to run next.
	Reschedule(out Context) Context

	// TickAdvance accounts for one tick and reports whether
	// a reschedule is due.
	TickAdvance() bool
}

// A Platform is the CPU port the kernel runs on.
type Platform interface {
	// InitContext builds a context that starts entry(arg) on stack
	// the first time it is resumed.
	InitContext(entry TaskFunc, arg any, stack []byte) Context

	// Arm installs h as the reschedule and tick handler and starts
	// the periodic tick. Every tick calls h.TickAdvance and, when it
	// reports true, RequestReschedule.
	Arm(h Handler)

	// RequestReschedule asks for h.Reschedule to run at the lowest
	// interrupt priority. It is safe from any context. From task code
	// the switch happens before RequestReschedule returns; from an
	// interrupt handler it waits until no handler is active.
	RequestReschedule()

	// WaitForInterrupt sleeps until an interrupt is pending and
	// services it. The default idle task calls it forever.
	WaitForInterrupt()

	// Park holds the boot context once the first reschedule has been
	// requested. Hardware ports never return; hosted ports return the
	// reason the CPU stopped.
	Park() error
}

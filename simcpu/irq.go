// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package simcpu

// NumIRQ is the number of interrupt lines.
const NumIRQ = 64

// Attach installs fn as the handler for line.
// It fails if a handler is already attached.
// Any raise of line still pending is discarded.
//
// Attach and Detach must be called before the kernel starts
// or from code running on the CPU.
func (c *CPU) Attach(line int, fn func()) error {
	if line < 0 || line >= NumIRQ || fn == nil {
		return ErrLine
	}
	if c.vectors[line] != nil {
		return ErrAttached
	}
	c.mu.Lock()
	c.irq &^= 1 << line
	c.mu.Unlock()
	c.vectors[line] = fn
	return nil
}

// Detach removes the handler for line.
func (c *CPU) Detach(line int) error {
	if line < 0 || line >= NumIRQ {
		return ErrLine
	}
	if c.vectors[line] == nil {
		return ErrDetached
	}
	c.vectors[line] = nil
	return nil
}

// Raise marks line pending. It may be called from any goroutine.
func (c *CPU) Raise(line int) error {
	if line < 0 || line >= NumIRQ {
		return ErrLine
	}
	c.mu.Lock()
	c.irq |= 1 << line
	c.cond.Broadcast()
	c.mu.Unlock()
	return nil
}

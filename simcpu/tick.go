// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package simcpu

import "time"

// Tick marks one tick pending. It may be called from any goroutine.
func (c *CPU) Tick() {
	c.mu.Lock()
	c.ticks++
	c.cond.Broadcast()
	c.mu.Unlock()
}

// Step delivers n ticks one at a time, waiting after each
// for the CPU to settle.
func (c *CPU) Step(n int) {
	for i := 0; i < n; i++ {
		c.Tick()
		c.Settle()
	}
}

// Settle waits until the CPU is idle with nothing pending, or halted.
// It only returns if every task eventually blocks.
func (c *CPU) Settle() {
	c.mu.Lock()
	for !c.halted && !(c.sleeping && c.irq == 0 && c.ticks == 0) {
		c.cond.Wait()
	}
	c.mu.Unlock()
}

func (c *CPU) ticker() {
	t := time.NewTicker(c.period)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			c.Tick()
		case <-c.halt:
			return
		}
	}
}

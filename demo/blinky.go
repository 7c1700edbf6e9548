// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package demo

import "rsc.io/rtos/rtos"

// Blinky runs three tasks around one semaphore.
//
// Task a waits up to 500 ticks for the semaphore and toggles led1 when
// it gets it, blue when it times out. Task b gives the semaphore every
// 2500 ticks and task c toggles red every 1000 ticks.
func Blinky(b *Board) error {
	sem := new(rtos.Semaphore)
	if err := sem.Init(b.K); err != nil {
		return err
	}

	a := func(any) {
		for {
			if sem.Take(500) == nil {
				b.Toggle(LED1)
			} else {
				b.Toggle(LEDB)
			}
		}
	}
	give := func(any) {
		for {
			sem.Give()
			b.K.Delay(2500)
		}
	}
	c := func(arg any) {
		led := arg.(LED)
		for {
			b.Toggle(led)
			b.K.Delay(1000)
		}
	}

	tasks := []struct {
		entry rtos.TaskFunc
		prio  uint8
		name  string
		arg   any
	}{
		{a, 3, "taskA", nil},
		{give, 2, "taskB", nil},
		{c, 2, "taskC", LEDR},
	}
	for _, t := range tasks {
		if _, err := b.K.CreateTask(t.entry, t.prio, stack(b), t.name, t.arg); err != nil {
			return err
		}
	}
	return nil
}

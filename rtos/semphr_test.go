// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rtos_test

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	"rsc.io/rtos/rtos"
	"rsc.io/rtos/simcpu"
)

// A machine is a kernel on a manually stepped CPU.
type machine struct {
	t    *testing.T
	k    *rtos.Kernel
	cpu  *simcpu.CPU
	errc chan error
}

func newMachine(t *testing.T) *machine {
	t.Helper()
	l := logrus.New()
	l.SetOutput(io.Discard)
	cpu := simcpu.New(0)
	cpu.Log = logrus.NewEntry(l)
	k, err := rtos.New(rtos.DefaultConfig(), cpu)
	if err != nil {
		t.Fatal(err)
	}
	k.Log = logrus.NewEntry(l)
	return &machine{t: t, k: k, cpu: cpu}
}

func (m *machine) task(prio uint8, name string, fn func()) {
	m.t.Helper()
	_, err := m.k.CreateTask(func(any) { fn() }, prio, make([]byte, 256), name, nil)
	if err != nil {
		m.t.Fatalf("CreateTask(%s): %v", name, err)
	}
}

// start starts the kernel and waits for every task to block.
func (m *machine) start() {
	m.errc = make(chan error, 1)
	go func() { m.errc <- m.k.Start() }()
	m.cpu.Settle()
	m.t.Cleanup(m.stop)
}

func (m *machine) stop() {
	m.cpu.Stop()
	if err := <-m.errc; err != simcpu.ErrStopped {
		m.t.Errorf("Start: have %v, want %v", err, simcpu.ErrStopped)
	}
}

// park blocks the calling task for good.
func (m *machine) park() {
	for {
		m.k.Delay(rtos.MaxDelay)
	}
}

func newSem(t *testing.T, k *rtos.Kernel) *rtos.Semaphore {
	t.Helper()
	s := new(rtos.Semaphore)
	if err := s.Init(k); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestSemaphoreGiveWakesWaiter(t *testing.T) {
	m := newMachine(t)
	sem := newSem(t, m.k)
	done := false
	var err error
	var at rtos.Tick
	m.task(1, "waiter", func() {
		err = sem.Take(100)
		at = m.k.TickCount()
		done = true
		m.park()
	})
	m.task(2, "giver", func() {
		m.k.Delay(50)
		sem.Give()
		m.park()
	})
	m.start()

	if sem.Waiter() == rtos.NoTask {
		t.Fatal("no waiter recorded")
	}
	m.cpu.Step(49)
	if done {
		t.Fatalf("Take returned at tick %d", at)
	}
	m.cpu.Step(1)
	if !done || err != nil || at != 50 {
		t.Fatalf("Take: have done=%v err=%v at tick %d, want success at tick 50", done, err, at)
	}
	if sem.Waiter() != rtos.NoTask || sem.Available() {
		t.Fatalf("after Take: waiter %d available %v", sem.Waiter(), sem.Available())
	}
}

func TestSemaphoreTimeout(t *testing.T) {
	m := newMachine(t)
	sem := newSem(t, m.k)
	done := false
	var err error
	var at rtos.Tick
	m.task(1, "waiter", func() {
		err = sem.Take(50)
		at = m.k.TickCount()
		done = true
		m.park()
	})
	m.start()

	m.cpu.Step(49)
	if done {
		t.Fatalf("Take returned early at tick %d", at)
	}
	m.cpu.Step(1)
	if !done || err != rtos.ErrTimeout || at != 50 {
		t.Fatalf("Take: have done=%v err=%v at tick %d, want %v at tick 50", done, err, at, rtos.ErrTimeout)
	}
	if sem.Waiter() != rtos.NoTask {
		t.Fatalf("waiter %d still recorded after timeout", sem.Waiter())
	}
}

func TestSemaphoreBusy(t *testing.T) {
	m := newMachine(t)
	sem := newSem(t, m.k)
	var err error
	m.task(1, "first", func() {
		sem.Take(rtos.MaxDelay)
		m.park()
	})
	m.task(2, "second", func() {
		err = sem.Take(10)
		m.park()
	})
	m.start()
	if err != rtos.ErrBusy {
		t.Fatalf("second Take: have %v, want %v", err, rtos.ErrBusy)
	}
}

func TestSemaphoreNoWait(t *testing.T) {
	m := newMachine(t)
	sem := newSem(t, m.k)
	var errs [3]error
	m.task(1, "t", func() {
		errs[0] = sem.Take(0)
		sem.Give()
		sem.Give() // binary: still one
		errs[1] = sem.Take(0)
		errs[2] = sem.Take(0)
		m.park()
	})
	m.start()
	want := [3]error{rtos.ErrTimeout, nil, rtos.ErrTimeout}
	if errs != want {
		t.Fatalf("have %v, want %v", errs, want)
	}
}

func TestSemaphoreIdle(t *testing.T) {
	m := newMachine(t)
	sem := newSem(t, m.k)
	var err error
	m.k.IdleHook = func(any) {
		err = sem.Take(5)
		for {
			m.cpu.WaitForInterrupt()
		}
	}
	m.start()
	if err != rtos.ErrIdle {
		t.Fatalf("Take from idle: have %v, want %v", err, rtos.ErrIdle)
	}
}

func TestSemaphoreFromISR(t *testing.T) {
	m := newMachine(t)
	sem := newSem(t, m.k)
	var errs []error
	m.cpu.Attach(1, sem.Give)
	m.cpu.Attach(2, func() { errs = append(errs, sem.TakeFromISR()) })
	m.start()

	m.cpu.Raise(2)
	m.cpu.Settle()
	m.cpu.Raise(1)
	m.cpu.Settle()
	m.cpu.Raise(2)
	m.cpu.Settle()
	if len(errs) != 2 || errs[0] != rtos.ErrWouldBlock || errs[1] != nil {
		t.Fatalf("have %v, want [%v <nil>]", errs, rtos.ErrWouldBlock)
	}
}

func TestSemaphoreDisabled(t *testing.T) {
	cfg := rtos.DefaultConfig()
	cfg.UseSemaphore = false
	cfg.UseQueue = false
	k, err := rtos.New(cfg, simcpu.New(0))
	if err != nil {
		t.Fatal(err)
	}
	var sem rtos.Semaphore
	if err := sem.Init(k); err != rtos.ErrDisabled {
		t.Fatalf("Init: have %v, want %v", err, rtos.ErrDisabled)
	}
}

// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rtos_test

import (
	"fmt"
	"testing"

	"rsc.io/rtos/rtos"
)

func newQueue(t *testing.T, k *rtos.Kernel, capacity int) *rtos.Queue {
	t.Helper()
	q := new(rtos.Queue)
	if err := q.Init(k, capacity, make([]byte, capacity), 1); err != nil {
		t.Fatal(err)
	}
	return q
}

func TestQueueFIFO(t *testing.T) {
	m := newMachine(t)
	q := newQueue(t, m.k, 4)
	var log []string
	m.task(1, "t", func() {
		for i := byte(1); i <= 4; i++ {
			err := q.Push([]byte{i}, 0)
			log = append(log, fmt.Sprintf("push %d: %v", i, err))
		}
		for i := 0; i < 4; i++ {
			b := []byte{0}
			err := q.Pull(b, 0)
			log = append(log, fmt.Sprintf("pull %d: %v", b[0], err))
		}
		m.park()
	})
	m.start()

	want := []string{
		"push 1: <nil>",
		"push 2: <nil>",
		"push 3: <nil>",
		"push 4: timeout",
		"pull 1: <nil>",
		"pull 2: <nil>",
		"pull 3: <nil>",
		"pull 0: timeout",
	}
	if fmt.Sprint(log) != fmt.Sprint(want) {
		t.Fatalf("have %q\nwant %q", log, want)
	}
	if q.Len() != 0 || q.Cap() != 3 {
		t.Fatalf("have len %d cap %d, want 0 and 3", q.Len(), q.Cap())
	}
}

// After three pushes and three pulls the items signal from the last
// push is still given, though the queue is empty. A pull must not
// mistake it for an element.
func TestQueueStaleSignal(t *testing.T) {
	m := newMachine(t)
	q := newQueue(t, m.k, 4)
	var err error
	var lenBefore int
	m.task(1, "t", func() {
		b := []byte{0}
		for i := byte(1); i <= 3; i++ {
			q.Push([]byte{i}, 0)
			q.Pull(b, 0)
		}
		lenBefore = q.Len()
		b[0] = 0xAA
		err = q.Pull(b, 0)
		if b[0] != 0xAA {
			err = fmt.Errorf("pull wrote %#x", b[0])
		}
		m.park()
	})
	m.start()
	if lenBefore != 0 {
		t.Fatalf("have len %d before final pull, want 0", lenBefore)
	}
	if err != rtos.ErrTimeout {
		t.Fatalf("pull on empty queue: have %v, want %v", err, rtos.ErrTimeout)
	}
	if q.Len() != 0 {
		t.Fatalf("have len %d after failed pull, want 0", q.Len())
	}
}

func TestQueuePullWaits(t *testing.T) {
	m := newMachine(t)
	q := newQueue(t, m.k, 4)
	var got byte
	var at rtos.Tick
	m.task(1, "consumer", func() {
		b := []byte{0}
		if q.Pull(b, rtos.MaxDelay) == nil {
			got, at = b[0], m.k.TickCount()
		}
		m.park()
	})
	m.task(2, "producer", func() {
		m.k.Delay(10)
		q.Push([]byte{42}, 0)
		m.park()
	})
	m.start()
	m.cpu.Step(10)
	if got != 42 || at != 10 {
		t.Fatalf("have %d at tick %d, want 42 at tick 10", got, at)
	}
}

func TestQueuePushWaits(t *testing.T) {
	m := newMachine(t)
	q := newQueue(t, m.k, 4)
	var errs []error
	var at rtos.Tick
	m.task(1, "producer", func() {
		for i := byte(1); i <= 4; i++ {
			errs = append(errs, q.Push([]byte{i}, rtos.MaxDelay))
		}
		at = m.k.TickCount()
		m.park()
	})
	m.task(2, "consumer", func() {
		m.k.Delay(20)
		q.Pull(make([]byte, 1), 0)
		m.park()
	})
	m.start()
	if len(errs) != 3 {
		t.Fatalf("before any pull: have %d pushes done, want 3", len(errs))
	}
	m.cpu.Step(20)
	if len(errs) != 4 || errs[3] != nil || at != 20 {
		t.Fatalf("have %v at tick %d, want 4 pushes done at tick 20", errs, at)
	}
	if q.Len() != 3 {
		t.Fatalf("have len %d, want 3", q.Len())
	}
}

func TestQueuePullTimeout(t *testing.T) {
	m := newMachine(t)
	q := newQueue(t, m.k, 2)
	var err error
	var at rtos.Tick
	m.task(1, "t", func() {
		err = q.Pull(make([]byte, 1), 30)
		at = m.k.TickCount()
		m.park()
	})
	m.start()
	m.cpu.Step(30)
	if err != rtos.ErrTimeout || at != 30 {
		t.Fatalf("have %v at tick %d, want %v at tick 30", err, at, rtos.ErrTimeout)
	}
}

func TestQueueFromISR(t *testing.T) {
	m := newMachine(t)
	q := newQueue(t, m.k, 4)
	var pushErrs []error
	next := byte(1)
	m.cpu.Attach(0, func() {
		pushErrs = append(pushErrs, q.PushFromISR([]byte{next}))
		next++
	})
	var pulled []byte
	var pullErr error
	m.cpu.Attach(1, func() {
		b := []byte{0}
		if pullErr = q.PullFromISR(b); pullErr == nil {
			pulled = append(pulled, b[0])
		}
	})
	m.start()

	for i := 0; i < 4; i++ {
		m.cpu.Raise(0)
		m.cpu.Settle()
	}
	if len(pushErrs) != 4 || pushErrs[3] != rtos.ErrWouldBlock {
		t.Fatalf("pushes: have %v, want 3 successes then %v", pushErrs, rtos.ErrWouldBlock)
	}
	if q.Len() != 3 {
		t.Fatalf("full queue: have len %d, want 3", q.Len())
	}
	for i := 0; i < 4; i++ {
		m.cpu.Raise(1)
		m.cpu.Settle()
	}
	if string(pulled) != "\x01\x02\x03" || pullErr != rtos.ErrWouldBlock {
		t.Fatalf("pulls: have %v, last error %v", pulled, pullErr)
	}
}

// A failed interrupt-side call leaves the condition signals alone,
// even when one is still given from an earlier push or pull.
func TestQueueFromISRKeepsSignals(t *testing.T) {
	m := newMachine(t)
	q := newQueue(t, m.k, 4)
	m.task(1, "t", func() {
		b := []byte{0}
		for i := byte(1); i <= 3; i++ {
			q.Push([]byte{i}, 0)
		}
		q.Pull(b, 0)
		q.Push([]byte{4}, 0)
		m.park()
	})
	var err error
	m.cpu.Attach(0, func() { err = q.PushFromISR([]byte{5}) })
	m.cpu.Attach(1, func() { err = q.PullFromISR([]byte{0}) })
	m.start()

	space, items := q.Signals()
	if q.Len() != 3 || !space || !items {
		t.Fatalf("before: have len %d space %v items %v, want 3 true true", q.Len(), space, items)
	}
	m.cpu.Raise(0)
	m.cpu.Settle()
	if err != rtos.ErrWouldBlock {
		t.Fatalf("PushFromISR on full queue: have %v, want %v", err, rtos.ErrWouldBlock)
	}
	if s, i := q.Signals(); q.Len() != 3 || s != space || i != items {
		t.Fatalf("after full push: have len %d space %v items %v, want 3 %v %v", q.Len(), s, i, space, items)
	}

	for i := 0; i < 3; i++ {
		m.cpu.Raise(1)
		m.cpu.Settle()
		if err != nil {
			t.Fatalf("PullFromISR %d: %v", i, err)
		}
	}
	_, items = q.Signals()
	m.cpu.Raise(1)
	m.cpu.Settle()
	if err != rtos.ErrWouldBlock {
		t.Fatalf("PullFromISR on empty queue: have %v, want %v", err, rtos.ErrWouldBlock)
	}
	if _, i := q.Signals(); q.Len() != 0 || !i || i != items {
		t.Fatalf("after empty pull: have len %d items %v, want 0 true", q.Len(), i)
	}
}

func TestQueueIdle(t *testing.T) {
	m := newMachine(t)
	q := newQueue(t, m.k, 2)
	var err error
	m.k.IdleHook = func(any) {
		err = q.Push([]byte{1}, 0)
		for {
			m.cpu.WaitForInterrupt()
		}
	}
	m.start()
	if err != rtos.ErrIdle {
		t.Fatalf("Push from idle: have %v, want %v", err, rtos.ErrIdle)
	}
}

func TestQueueInit(t *testing.T) {
	m := newMachine(t)
	var q rtos.Queue
	tests := []struct {
		capacity int
		buf      int
		size     int
		err      error
	}{
		{1, 8, 1, rtos.ErrInvalid},
		{4, 8, 0, rtos.ErrInvalid},
		{4, 7, 2, rtos.ErrInvalid},
		{4, 8, 2, nil},
	}
	for _, tt := range tests {
		err := q.Init(m.k, tt.capacity, make([]byte, tt.buf), tt.size)
		if err != tt.err {
			t.Errorf("Init(%d, [%d]byte, %d): have %v, want %v", tt.capacity, tt.buf, tt.size, err, tt.err)
		}
	}
	if err := q.Push([]byte{1}, 0); err != rtos.ErrInvalid {
		t.Errorf("short Push: have %v, want %v", err, rtos.ErrInvalid)
	}
}

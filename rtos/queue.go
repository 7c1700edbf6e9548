// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rtos

// A Queue is a bounded FIFO of fixed-size elements copied in and out
// of a caller-supplied buffer. One slot always stays free, so a queue
// of capacity n holds n-1 elements.
//
// Waiting uses two semaphores as condition signals: space is given
// after every pull, items after every push. A give that nobody waits
// for stays in the semaphore, so a waiter re-checks the queue after
// every successful take.
type Queue struct {
	k     *Kernel
	buf   []byte
	size  int // element size
	n     int // capacity in elements
	read  int
	write int
	space Semaphore
	items Semaphore
}

// Init makes q an empty queue of capacity elements of elemSize bytes
// stored in buf. capacity must be at least 2 and buf must hold
// capacity*elemSize bytes.
func (q *Queue) Init(k *Kernel, capacity int, buf []byte, elemSize int) error {
	if !k.cfg.UseQueue {
		return ErrDisabled
	}
	if capacity < 2 || elemSize < 1 || len(buf) < capacity*elemSize {
		return ErrInvalid
	}
	*q = Queue{
		k:    k,
		buf:  buf[:capacity*elemSize],
		size: elemSize,
		n:    capacity,
	}
	if err := q.space.Init(k); err != nil {
		return err
	}
	return q.items.Init(k)
}

func (q *Queue) full() bool  { return (q.write+1)%q.n == q.read }
func (q *Queue) empty() bool { return q.read == q.write }

// Len returns the number of queued elements.
func (q *Queue) Len() int {
	return (q.write - q.read + q.n) % q.n
}

// Cap returns the number of elements q can hold.
func (q *Queue) Cap() int {
	return q.n - 1
}

// Push copies one element from data to the tail of q, waiting up to
// timeout ticks for room. The idle task may not push; it gets ErrIdle.
func (q *Queue) Push(data []byte, timeout Tick) error {
	if len(data) < q.size {
		return ErrInvalid
	}
	k := q.k
	if k.current == k.idle {
		return ErrIdle
	}
	k.Suspend()
	defer k.Resume()
	w := k.newWaitTimer(timeout)
	for q.full() {
		if err := q.space.Take(w.left()); err != nil {
			return err
		}
	}
	q.put(data)
	return nil
}

// Pull copies the element at the head of q into out, waiting up to
// timeout ticks for one to arrive. The idle task may not pull; it gets ErrIdle.
func (q *Queue) Pull(out []byte, timeout Tick) error {
	if len(out) < q.size {
		return ErrInvalid
	}
	k := q.k
	if k.current == k.idle {
		return ErrIdle
	}
	k.Suspend()
	defer k.Resume()
	w := k.newWaitTimer(timeout)
	for q.empty() {
		if err := q.items.Take(w.left()); err != nil {
			return err
		}
	}
	q.get(out)
	return nil
}

// PushFromISR is Push for interrupt handlers. When q is full it fails
// at once with ErrWouldBlock, or ErrBusy if a task is waiting to push,
// and changes nothing.
func (q *Queue) PushFromISR(data []byte) error {
	if len(data) < q.size {
		return ErrInvalid
	}
	k := q.k
	k.Suspend()
	defer k.Resume()
	if q.full() {
		return isrWaitErr(&q.space)
	}
	q.put(data)
	return nil
}

// PullFromISR is Pull for interrupt handlers. When q is empty it fails
// at once with ErrWouldBlock, or ErrBusy if a task is waiting to pull,
// and changes nothing.
func (q *Queue) PullFromISR(out []byte) error {
	if len(out) < q.size {
		return ErrInvalid
	}
	k := q.k
	k.Suspend()
	defer k.Resume()
	if q.empty() {
		return isrWaitErr(&q.items)
	}
	q.get(out)
	return nil
}

// isrWaitErr is the result of an interrupt handler call that would
// have to wait on s. The signal in s is left alone.
func isrWaitErr(s *Semaphore) error {
	if s.Waiter() != NoTask {
		return ErrBusy
	}
	return ErrWouldBlock
}

func (q *Queue) put(data []byte) {
	copy(q.buf[q.write*q.size:(q.write+1)*q.size], data)
	q.write = (q.write + 1) % q.n
	q.items.Give()
}

func (q *Queue) get(out []byte) {
	copy(out, q.buf[q.read*q.size:(q.read+1)*q.size])
	q.read = (q.read + 1) % q.n
	q.space.Give()
}

// A waitTimer spreads one timeout over several waits.
type waitTimer struct {
	k       *Kernel
	start   Tick
	timeout Tick
}

func (k *Kernel) newWaitTimer(timeout Tick) waitTimer {
	return waitTimer{k: k, start: k.ticks, timeout: timeout}
}

// left returns the ticks remaining, 0 once the timeout has passed.
// MaxDelay never runs down.
func (w waitTimer) left() Tick {
	if w.timeout == MaxDelay {
		return MaxDelay
	}
	elapsed := w.k.ticks - w.start
	if elapsed >= w.timeout {
		return 0
	}
	return w.timeout - elapsed
}

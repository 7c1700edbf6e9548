// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rtos

// A bucket is the ready list of one priority: a circular FIFO of task ids.
// Tasks join at the tail and leave from the head, which gives round robin
// among tasks of the same priority.
type bucket struct {
	ids   []TaskID
	first int
	count int
}

func (b *bucket) add(id TaskID) {
	if b.count == len(b.ids) {
		panic("rtos: ready bucket overflow")
	}
	b.ids[(b.first+b.count)%len(b.ids)] = id
	b.count++
}

func (b *bucket) remove() TaskID {
	id := b.ids[b.first]
	b.count--
	if b.count == 0 {
		b.first = 0
	} else {
		b.first = (b.first + 1) % len(b.ids)
	}
	return id
}

// addReady appends id to the bucket of priority.
// The caller holds the guard.
func (k *Kernel) addReady(id TaskID, priority uint8) {
	k.ready[priority-1].add(id)
}

// removeReady takes the head of the bucket of priority.
// The caller holds the guard and knows the bucket is not empty.
func (k *Kernel) removeReady(priority uint8) TaskID {
	return k.ready[priority-1].remove()
}

// ReadyCount returns the number of tasks waiting in the bucket of priority.
func (k *Kernel) ReadyCount(priority uint8) int {
	if priority == 0 || int(priority) > len(k.ready) {
		return 0
	}
	return k.ready[priority-1].count
}

// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rtos

// Signals reports whether q's space and items semaphores are given.
func (q *Queue) Signals() (space, items bool) {
	return q.space.Available(), q.items.Available()
}

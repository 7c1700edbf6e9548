// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package demo

// An App installs its tasks, semaphores, queues and interrupt handlers
// on a board whose kernel has not started.
type App func(b *Board) error

// Apps lists the applications by name.
var Apps = map[string]App{
	"blinky": Blinky,
	"pulse":  PulseDetector,
}

// stack allocates the stack of one demo task.
func stack(b *Board) []byte {
	return make([]byte, b.K.Config().MinStackSize)
}

// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rtos

import "fmt"

// An Errno is a kernel result code.
// The zero value is never returned as an error.
type Errno int8

const (
	ErrTableFull  Errno = 1 + iota // task table is full
	ErrStackSize                   // stack below the configured minimum
	ErrPriority                    // priority 0 or above the maximum
	ErrStarted                     // operation not allowed once the scheduler runs
	ErrTimeout                     // wait expired
	ErrIdle                        // blocking call made by the idle task
	ErrBusy                        // semaphore already has a waiter
	ErrNotRunning                  // caller is not the running task
	ErrDisabled                    // feature turned off in the configuration
	ErrInvalid                     // bad argument
	ErrWouldBlock                  // non-blocking call found nothing to do
)

func (e Errno) Error() string {
	if 0 < e && int(e) < len(enames) {
		return enames[e]
	}
	return fmt.Sprintf("Errno(%d)", int(e))
}

var enames = []string{
	"",
	"task table full",
	"stack too small",
	"invalid priority",
	"scheduler already started",
	"timeout",
	"not allowed from idle task",
	"semaphore busy",
	"task not running",
	"feature disabled",
	"invalid argument",
	"operation would block",
}

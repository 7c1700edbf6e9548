// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rtos

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// A TaskID indexes the task table. It is stable for the life of the kernel.
type TaskID uint8

type TaskState uint8

const (
	TaskInvalid TaskState = iota
	TaskReady
	TaskRunning
	TaskBlocked
)

func (ts TaskState) String() string {
	switch ts {
	case TaskInvalid:
		return "Invalid"
	case TaskReady:
		return "Ready"
	case TaskRunning:
		return "Running"
	case TaskBlocked:
		return "Blocked"
	}
	return fmt.Sprintf("TaskState(%d)", ts)
}

type task struct {
	ctx      Context
	stack    []byte // caller's memory, never reallocated
	entry    TaskFunc
	arg      any
	priority uint8 /* 1 is highest */
	state    TaskState
	delay    Tick /* ticks left in Delay, or MaxDelay */
	name     string
}

// TaskInfo is a snapshot of one task record.
type TaskInfo struct {
	ID       TaskID
	Name     string
	Priority uint8 // 0 for the idle task
	State    TaskState
	Delay    Tick
	Idle     bool
}

// CreateTask registers a task that will start at entry(arg) on stack
// once the scheduler starts. Tasks can only be created before Start.
// The task is Ready but sits in no ready bucket until Start.
func (k *Kernel) CreateTask(entry TaskFunc, priority uint8, stack []byte, name string, arg any) (TaskID, error) {
	k.Suspend()
	defer k.Resume()

	var err error
	switch {
	case k.started:
		err = ErrStarted
	case entry == nil:
		err = ErrInvalid
	case k.ntask >= k.cfg.MaxTasks:
		err = ErrTableFull
	case priority == 0 || int(priority) > k.cfg.MaxPriority:
		err = ErrPriority
	case len(stack) < k.cfg.MinStackSize:
		err = ErrStackSize
	}
	if err != nil {
		k.Log.WithFields(logrus.Fields{
			"name":  name,
			"prio":  priority,
			"stack": len(stack),
		}).Warnf("create task: %v", err)
		return NoTask, err
	}

	if len(name) > k.cfg.MaxNameLen {
		name = name[:k.cfg.MaxNameLen]
	}
	id := TaskID(k.ntask)
	k.tasks[id] = task{
		ctx:      k.plat.InitContext(entry, arg, stack),
		stack:    stack,
		entry:    entry,
		arg:      arg,
		priority: priority,
		state:    TaskReady,
		name:     name,
	}
	k.ntask++
	k.Log.WithFields(logrus.Fields{"task": name, "id": id, "prio": priority}).Debug("task created")
	return id, nil
}

func (k *Kernel) info(id TaskID) TaskInfo {
	t := &k.tasks[id]
	return TaskInfo{
		ID:       id,
		Name:     t.name,
		Priority: t.priority,
		State:    t.state,
		Delay:    t.delay,
		Idle:     id == k.idle,
	}
}

// Task returns a snapshot of task id. The idle task is IdleTask().
func (k *Kernel) Task(id TaskID) (TaskInfo, bool) {
	if int(id) >= k.ntask && id != k.idle {
		return TaskInfo{}, false
	}
	return k.info(id), true
}

// Tasks returns a snapshot of every created task, in creation order.
func (k *Kernel) Tasks() []TaskInfo {
	list := make([]TaskInfo, k.ntask)
	for i := range list {
		list[i] = k.info(TaskID(i))
	}
	return list
}

// IdleTask returns the id of the idle task.
func (k *Kernel) IdleTask() TaskID { return k.idle }

// Current returns the running task, or NoTask before the first reschedule.
func (k *Kernel) Current() TaskID { return k.current }

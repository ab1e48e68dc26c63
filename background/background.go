// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2024 Universal Auto Brokers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package background - run processes in the background
//
// e.g. the janitor sweep and the mirror change watcher
package background

// Process - interface for a background process
type Process interface {
	Run(args interface{}, shutdown <-chan struct{})
}

// Processes - list of processes to start
type Processes []Process

// single process control channels
type task struct {
	shutdown chan struct{}
	finished chan struct{}
}

// T - handle type for the stop call
type T struct {
	tasks []task
}

// Start - start up a set of background processes
// all are sent the same arguments
func Start(processes Processes, args interface{}) *T {

	register := &T{
		tasks: make([]task, len(processes)),
	}

	for i, p := range processes {
		shutdown := make(chan struct{})
		finished := make(chan struct{})
		register.tasks[i].shutdown = shutdown
		register.tasks[i].finished = finished
		go func(p Process) {
			p.Run(args, shutdown)
			close(finished)
		}(p)
	}
	return register
}

// Stop - stop the set of background processes and wait for them
// to finish
func (t *T) Stop() {
	if nil == t {
		return
	}

	for _, task := range t.tasks {
		close(task.shutdown)
	}

	for _, task := range t.tasks {
		<-task.finished
	}
}

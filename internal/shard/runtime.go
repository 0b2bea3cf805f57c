package shard

import (
	"context"
	"fmt"
	"runtime"
)

// Workload is an asynchronous unit of work run to completion on a shard's
// execution context. The context is the one passed to the group's Run call;
// workloads wanting early shutdown should watch it themselves.
type Workload func(ctx context.Context) (any, error)

// Runtime is one independently scheduled execution context. Start launches a
// workload on it; Wait blocks until that workload finishes and returns its
// result. A Runtime runs exactly one workload over its lifetime here: the
// group creates one per shard plus one for init.
type Runtime interface {
	Start(ctx context.Context, w Workload)
	Wait() (any, error)
}

// RuntimeFactory creates Runtimes. Injected so tests can substitute spies
// and callers can plug in their own executors.
type RuntimeFactory interface {
	New() Runtime
}

// RuntimeFactoryFunc adapts a function to RuntimeFactory.
type RuntimeFactoryFunc func() Runtime

// New implements RuntimeFactory.
func (f RuntimeFactoryFunc) New() Runtime { return f() }

// ThreadRuntime backs each workload with its own goroutine locked to a
// dedicated OS thread. The lock matters: sched_setaffinity pins the calling
// thread, so the bind and the workload must share one, and the Go scheduler
// must not migrate the workload off it afterwards.
type ThreadRuntime struct {
	result chan outcome
}

type outcome struct {
	value any
	err   error
}

// NewThreadRuntime returns the default OS-thread-backed runtime.
func NewThreadRuntime() *ThreadRuntime {
	return &ThreadRuntime{result: make(chan outcome, 1)}
}

// DefaultFactory creates ThreadRuntimes.
func DefaultFactory() RuntimeFactory {
	return RuntimeFactoryFunc(func() Runtime { return NewThreadRuntime() })
}

// Start implements Runtime.
func (r *ThreadRuntime) Start(ctx context.Context, w Workload) {
	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		defer func() {
			if p := recover(); p != nil {
				r.result <- outcome{err: fmt.Errorf("workload panicked: %v", p)}
			}
		}()
		value, err := w(ctx)
		r.result <- outcome{value: value, err: err}
	}()
}

// Wait implements Runtime.
func (r *ThreadRuntime) Wait() (any, error) {
	out := <-r.result
	return out.value, out.err
}

// Package shard owns the lifecycle of one planned shard: an independent
// execution context that pins itself to its assigned resources and then runs
// the group's entry workload to completion.
package shard

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/ethe/numagroup/internal/affinity"
	"github.com/ethe/numagroup/internal/ctxlog"
	"github.com/ethe/numagroup/internal/plan"
)

// State is a shard's lifecycle position. Transitions only move forward:
// Planned → Starting → Bound → Running → Finished, with a bind failure
// jumping straight from Starting to Finished. Finished is terminal.
type State int32

const (
	Planned State = iota
	Starting
	Bound
	Running
	Finished
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case Planned:
		return "planned"
	case Starting:
		return "starting"
	case Bound:
		return "bound"
	case Running:
		return "running"
	case Finished:
		return "finished"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// AffinityError marks an outcome as a placement failure: the shard's bind was
// rejected, so its entry workload never ran.
type AffinityError struct {
	Err error
}

func (e *AffinityError) Error() string {
	return fmt.Sprintf("shard affinity: %v", e.Err)
}

func (e *AffinityError) Unwrap() error { return e.Err }

// Outcome is the immutable result of one shard's run.
type Outcome struct {
	Shard int
	Value any
	Err   error
}

// Shard is one planned execution context. It is created by the group
// orchestrator, started once, and joined exactly once.
type Shard struct {
	entry plan.Entry
	state atomic.Int32
	rt    Runtime
}

// New returns a Shard in the Planned state for the given plan entry.
func New(entry plan.Entry) *Shard {
	return &Shard{entry: entry}
}

// Index returns the shard's position in the plan.
func (s *Shard) Index() int { return s.entry.Shard }

// Entry returns the shard's planned resources.
func (s *Shard) Entry() plan.Entry { return s.entry }

// State returns the shard's current lifecycle state.
func (s *Shard) State() State { return State(s.state.Load()) }

// advance moves the state machine forward, refusing to leave Finished.
func (s *Shard) advance(next State) {
	for {
		cur := s.state.Load()
		if State(cur) == Finished {
			return
		}
		if s.state.CompareAndSwap(cur, int32(next)) {
			return
		}
	}
}

// Start launches the shard: its runtime's execution context binds itself via
// the binder, then runs the entry workload. A bind failure skips the entry
// entirely (a shard that cannot honor its placement must not run unplaced)
// and surfaces as an AffinityError in the outcome. Siblings are unaffected.
func (s *Shard) Start(ctx context.Context, binder affinity.Binder, factory RuntimeFactory, entry Workload) {
	logger := ctxlog.FromContext(ctx).With("shard", s.entry.Shard)
	s.advance(Starting)
	s.rt = factory.New()
	s.rt.Start(ctx, func(ctx context.Context) (any, error) {
		if err := s.bind(binder); err != nil {
			logger.Warn("Shard bind failed, skipping entry workload.", "error", err)
			return nil, &AffinityError{Err: err}
		}
		s.advance(Bound)
		logger.Debug("Shard bound.", "cores", s.entry.Cores, "node", nodeAttr(s.entry))
		s.advance(Running)
		return entry(ctx)
	})
}

// bind pins the calling thread to the entry's resources. Entries with cores
// bind the core set; node-only entries bind the whole node; unbound entries
// are a no-op.
func (s *Shard) bind(binder affinity.Binder) error {
	switch {
	case len(s.entry.Cores) > 0:
		return binder.BindCores(s.entry.Cores)
	case s.entry.Node != nil:
		return binder.BindNode(*s.entry.Node)
	default:
		return nil
	}
}

// Join blocks until the shard's workload finishes and returns its immutable
// outcome, moving the shard to Finished. Must follow Start.
func (s *Shard) Join() Outcome {
	value, err := s.rt.Wait()
	s.advance(Finished)
	return Outcome{Shard: s.entry.Shard, Value: value, Err: err}
}

func nodeAttr(e plan.Entry) any {
	if e.Node == nil {
		return "none"
	}
	return *e.Node
}

// Package group builds and runs a set of independent, CPU-pinned execution
// runtimes. Configuration accumulates on a Builder; Run plans the shards from
// the machine topology, executes the init workload once, launches the entry
// workload on every shard concurrently, and joins them all into one ordered
// result.
package group

import (
	"errors"
	"fmt"

	"github.com/ethe/numagroup/internal/shard"
)

// Workload is the unit of work the group runs: once for init, once per shard
// for entry. See shard.Workload.
type Workload = shard.Workload

// Outcome is one shard's result. See shard.Outcome.
type Outcome = shard.Outcome

// Stage names the orchestration phase a top-level failure happened in. When
// Run returns a *Error, nothing ran: stage failures abort before any shard is
// created.
type Stage string

const (
	StageTopology Stage = "topology"
	StagePlan     Stage = "plan"
	StageInit     Stage = "init"
)

// ErrNumaUnavailable reports that NUMA awareness was requested but the
// platform offers no NUMA topology. Requested affinity is part of the
// caller's contract, so this aborts the run instead of silently degrading.
var ErrNumaUnavailable = errors.New("group: NUMA awareness requested but unavailable")

// Error is the top-level failure of a run: topology discovery, planning, or
// init failed before any shard started.
type Error struct {
	Stage Stage
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("group %s: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

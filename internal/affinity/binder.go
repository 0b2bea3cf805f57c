// Package affinity pins the calling execution context to CPU resources. The
// orchestrator consumes the Binder interface; the OS-backed implementation
// lives behind build tags so everything above it stays platform-neutral and
// testable with a recording fake.
package affinity

import (
	"errors"
	"fmt"

	"github.com/ethe/numagroup/internal/topology"
)

// Binder pins the calling OS thread to a core set or to a NUMA node's cores.
// Each method is called at most once per shard, from inside the shard's own
// execution context, before any workload runs there.
type Binder interface {
	BindCores(cores []topology.CoreID) error
	BindNode(node topology.NodeID) error
}

// ErrUnsupported reports that thread affinity is not available on this platform.
var ErrUnsupported = errors.New("affinity: thread affinity not supported on this platform")

// BindError wraps an OS-level affinity rejection (permission, invalid core
// id, unsupported platform). It is fatal to the shard that hit it, never to
// its siblings.
type BindError struct {
	Op  string // "cores" or "node"
	Err error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("affinity: bind %s: %v", e.Op, e.Err)
}

func (e *BindError) Unwrap() error { return e.Err }

// Noop is a Binder that accepts every bind without touching the OS. Used when
// affinity is disabled and as a base for test fakes.
type Noop struct{}

// BindCores implements Binder.
func (Noop) BindCores([]topology.CoreID) error { return nil }

// BindNode implements Binder.
func (Noop) BindNode(topology.NodeID) error { return nil }

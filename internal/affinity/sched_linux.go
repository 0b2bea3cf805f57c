//go:build linux

package affinity

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/ethe/numagroup/internal/topology"
)

// OS binds through sched_setaffinity(2). Pid 0 means "the calling thread",
// which is why binding must happen on the goroutine that has locked itself to
// the shard's OS thread.
type OS struct {
	// Topo resolves a node id to its cores for BindNode.
	Topo topology.Topology
}

// NewOS returns the sched_setaffinity-backed binder.
func NewOS(topo topology.Topology) *OS {
	return &OS{Topo: topo}
}

// BindCores implements Binder.
func (b *OS) BindCores(cores []topology.CoreID) error {
	if len(cores) == 0 {
		return &BindError{Op: "cores", Err: fmt.Errorf("empty core set")}
	}
	var set unix.CPUSet
	for _, c := range cores {
		if c < 0 {
			return &BindError{Op: "cores", Err: fmt.Errorf("invalid core id %d", c)}
		}
		set.Set(int(c))
	}
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return &BindError{Op: "cores", Err: err}
	}
	return nil
}

// BindNode implements Binder.
func (b *OS) BindNode(node topology.NodeID) error {
	for _, n := range b.Topo.Nodes {
		if n.ID == node {
			if err := b.BindCores(n.Cores); err != nil {
				return &BindError{Op: "node", Err: err.(*BindError).Err}
			}
			return nil
		}
	}
	return &BindError{Op: "node", Err: fmt.Errorf("unknown node id %d", node)}
}

//go:build !linux

package affinity

import "github.com/ethe/numagroup/internal/topology"

// OS is the platform binder. Outside Linux there is no portable thread
// affinity call, so every bind is rejected with ErrUnsupported; shards report
// it in their outcomes rather than running unplaced.
type OS struct {
	Topo topology.Topology
}

// NewOS returns the platform binder.
func NewOS(topo topology.Topology) *OS {
	return &OS{Topo: topo}
}

// BindCores implements Binder.
func (b *OS) BindCores([]topology.CoreID) error {
	return &BindError{Op: "cores", Err: ErrUnsupported}
}

// BindNode implements Binder.
func (b *OS) BindNode(topology.NodeID) error {
	return &BindError{Op: "node", Err: ErrUnsupported}
}

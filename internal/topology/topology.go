// Package topology models the CPU resources a process can place work on: a
// set of cores grouped into NUMA nodes. The model is static data; discovery
// happens once and planning and binding consume the result.
package topology

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// CoreID identifies a single hardware execution unit (a logical CPU).
type CoreID int

// NodeID identifies a NUMA node.
type NodeID int

// Node is one NUMA node and the cores that belong to it.
type Node struct {
	ID    NodeID
	Cores []CoreID // sorted ascending
}

// Topology describes all cores available to the process, grouped by NUMA
// node. Node order is the stable iteration order used for planning, so a
// given Topology always produces the same plan.
type Topology struct {
	Nodes []Node
}

// ErrUnsupported reports that NUMA topology enumeration is not available on
// this platform.
var ErrUnsupported = errors.New("topology: NUMA enumeration not supported on this platform")

// SingleNode returns the degenerate one-node topology holding cores 0..n-1.
// It is the fallback shape when NUMA discovery is unavailable or disabled.
func SingleNode(n int) Topology {
	cores := make([]CoreID, n)
	for i := range cores {
		cores[i] = CoreID(i)
	}
	return Topology{Nodes: []Node{{ID: 0, Cores: cores}}}
}

// TotalCores returns the number of cores across all nodes.
func (t Topology) TotalCores() int {
	total := 0
	for _, n := range t.Nodes {
		total += len(n.Cores)
	}
	return total
}

// Cores returns every core in the topology, sorted ascending.
func (t Topology) Cores() []CoreID {
	out := make([]CoreID, 0, t.TotalCores())
	for _, n := range t.Nodes {
		out = append(out, n.Cores...)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Validate checks the structural invariants: at least one node, at least one
// core, every core in exactly one node, per-node cores sorted.
func (t Topology) Validate() error {
	if len(t.Nodes) == 0 {
		return errors.New("topology: no nodes")
	}
	seen := make(map[CoreID]NodeID)
	total := 0
	for _, n := range t.Nodes {
		for i, c := range n.Cores {
			if i > 0 && n.Cores[i-1] >= c {
				return fmt.Errorf("topology: node %d cores not sorted ascending", n.ID)
			}
			if prev, ok := seen[c]; ok {
				return fmt.Errorf("topology: core %d appears in both node %d and node %d", c, prev, n.ID)
			}
			seen[c] = n.ID
			total++
		}
	}
	if total == 0 {
		return errors.New("topology: no cores")
	}
	return nil
}

// String renders the topology compactly, e.g. "node0[0 1 2 3] node1[4 5 6 7]".
func (t Topology) String() string {
	var b strings.Builder
	for i, n := range t.Nodes {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "node%d%v", n.ID, n.Cores)
	}
	return b.String()
}

// Package plan turns a topology plus group configuration into the list of
// shards to create and the core set each one owns. Planning is a pure
// function: same topology and options in, same entries out, so a shard's
// resources are reproducible across runs on identical hardware.
package plan

import (
	"errors"
	"fmt"

	"github.com/ethe/numagroup/internal/topology"
)

// Mode selects how shards are pinned to hardware.
type Mode int

const (
	// ModeNone creates unbound shards; affinity is a no-op.
	ModeNone Mode = iota
	// ModeCoreOnly partitions all cores into disjoint groups, ignoring node
	// boundaries.
	ModeCoreOnly
	// ModeNumaAware groups shards by NUMA node, splitting each node's cores
	// among the shards that share it.
	ModeNumaAware
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeCoreOnly:
		return "core-only"
	case ModeNumaAware:
		return "numa-aware"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Options is the planning half of the group configuration.
type Options struct {
	Mode Mode

	// Workers overrides the shard count for ModeNone and ModeCoreOnly.
	// Zero means the default: one shard for ModeNone, one shard per core
	// for ModeCoreOnly.
	Workers int

	// WorkersPerNode is the number of shards sharing one NUMA node under
	// ModeNumaAware. Must be >= 1 there; ignored otherwise.
	WorkersPerNode int
}

// Entry is one planned shard: its index, the cores it exclusively owns, and
// the NUMA node it belongs to when planning was node-aware. Core sets are
// pairwise disjoint across a plan and their union never exceeds the topology.
type Entry struct {
	Shard int
	Cores []topology.CoreID
	Node  *topology.NodeID
}

// ErrNoCores reports a topology with nothing to place shards on.
var ErrNoCores = errors.New("plan: topology has no cores")

// EmptyNodeError reports a node with fewer cores than the shards asked to
// share it: at least one shard would own no core. This is a hard failure,
// not silent degradation; an empty-affinity shard would quietly violate the
// caller's placement intent.
type EmptyNodeError struct {
	Node    topology.NodeID
	Cores   int
	Workers int
}

func (e *EmptyNodeError) Error() string {
	return fmt.Sprintf("plan: node %d has %d cores for %d workers; every worker needs at least one core", e.Node, e.Cores, e.Workers)
}

// TooManyWorkersError reports a core-only worker count exceeding the core count.
type TooManyWorkersError struct {
	Workers int
	Cores   int
}

func (e *TooManyWorkersError) Error() string {
	return fmt.Sprintf("plan: %d workers requested but only %d cores available", e.Workers, e.Cores)
}

// Plan computes the shard entries for the given topology and options. Shard
// indices follow the enumeration order: topology node order, then worker
// order within a node.
func Plan(topo topology.Topology, opts Options) ([]Entry, error) {
	switch opts.Mode {
	case ModeNone:
		return planUnbound(opts)
	case ModeCoreOnly:
		return planCoreOnly(topo, opts)
	case ModeNumaAware:
		return planNumaAware(topo, opts)
	default:
		return nil, fmt.Errorf("plan: unknown mode %d", int(opts.Mode))
	}
}

// planUnbound produces entries owning no cores at all.
func planUnbound(opts Options) ([]Entry, error) {
	count := opts.Workers
	if count <= 0 {
		count = 1
	}
	entries := make([]Entry, count)
	for i := range entries {
		entries[i] = Entry{Shard: i}
	}
	return entries, nil
}

// planCoreOnly splits all cores, sorted by id, into k contiguous groups of
// size ±1.
func planCoreOnly(topo topology.Topology, opts Options) ([]Entry, error) {
	cores := topo.Cores()
	if len(cores) == 0 {
		return nil, ErrNoCores
	}

	k := opts.Workers
	if k <= 0 {
		k = len(cores)
	}
	if k > len(cores) {
		return nil, &TooManyWorkersError{Workers: k, Cores: len(cores)}
	}

	entries := make([]Entry, 0, k)
	for i, group := range splitCores(cores, k) {
		entries = append(entries, Entry{Shard: i, Cores: group})
	}
	return entries, nil
}

// planNumaAware creates WorkersPerNode entries per node, splitting that
// node's cores among them.
func planNumaAware(topo topology.Topology, opts Options) ([]Entry, error) {
	if topo.TotalCores() == 0 {
		return nil, ErrNoCores
	}
	w := opts.WorkersPerNode
	if w <= 0 {
		w = 1
	}

	var entries []Entry
	for _, node := range topo.Nodes {
		if len(node.Cores) < w {
			return nil, &EmptyNodeError{Node: node.ID, Cores: len(node.Cores), Workers: w}
		}
		nodeID := node.ID
		for _, group := range splitCores(node.Cores, w) {
			id := nodeID
			entries = append(entries, Entry{Shard: len(entries), Cores: group, Node: &id})
		}
	}
	return entries, nil
}

// splitCores partitions cores into k contiguous groups. The first
// len(cores)%k groups get one extra core, keeping the imbalance at most one.
func splitCores(cores []topology.CoreID, k int) [][]topology.CoreID {
	base := len(cores) / k
	rem := len(cores) % k

	out := make([][]topology.CoreID, 0, k)
	idx := 0
	for i := 0; i < k; i++ {
		size := base
		if i < rem {
			size++
		}
		group := make([]topology.CoreID, size)
		copy(group, cores[idx:idx+size])
		out = append(out, group)
		idx += size
	}
	return out
}

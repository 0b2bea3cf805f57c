package group

import (
	"context"

	"github.com/ethe/numagroup/internal/affinity"
	"github.com/ethe/numagroup/internal/shard"
	"github.com/ethe/numagroup/internal/topology"
)

// Builder accumulates group configuration. Zero values mean: affinity off,
// one worker per NUMA node, one shard per core when a core-partitioned mode
// is in effect, no-op init, no-op entry. All setters return the Builder for
// chaining; Run consumes it.
type Builder struct {
	numa           bool
	noAffinity     bool
	workersPerNode int
	workers        int
	init           Workload
	entry          Workload

	discoverer topology.Discoverer
	binder     affinity.Binder
	factory    shard.RuntimeFactory
}

// New returns a Builder with defaults.
func New() *Builder {
	return &Builder{
		workersPerNode: 1,
		init:           func(context.Context) (any, error) { return nil, nil },
		entry:          func(context.Context) (any, error) { return nil, nil },
	}
}

// Numa selects NUMA-aware planning: shards are grouped by node and each
// node's cores are split among the shards sharing it. When false, planning is
// core-only: shards own disjoint core sets with no regard for node
// boundaries.
func (b *Builder) Numa(enabled bool) *Builder {
	b.numa = enabled
	return b
}

// NoAffinity disables pinning entirely: the group runs a single unbound
// shard (or Workers of them) and never touches the OS affinity mask. Numa
// wins if both are set.
func (b *Builder) NoAffinity(enabled bool) *Builder {
	b.noAffinity = enabled
	return b
}

// WorkersPerNode sets the shard density per NUMA node. Only meaningful with
// Numa(true); values below one are treated as one.
func (b *Builder) WorkersPerNode(n int) *Builder {
	b.workersPerNode = n
	return b
}

// Workers overrides the shard count for non-NUMA planning. Zero keeps the
// default of one shard per core.
func (b *Builder) Workers(n int) *Builder {
	b.workers = n
	return b
}

// Init sets the run-once setup workload. It executes on an unbound context,
// strictly before any shard's entry workload; if it fails, no shard is ever
// created.
func (b *Builder) Init(w Workload) *Builder {
	if w != nil {
		b.init = w
	}
	return b
}

// Entry sets the per-shard payload. It runs independently on every shard, in
// any interleaving; one shard's failure never cancels its siblings.
func (b *Builder) Entry(w Workload) *Builder {
	if w != nil {
		b.entry = w
	}
	return b
}

// WithTopology injects a topology source, replacing platform discovery.
func (b *Builder) WithTopology(d topology.Discoverer) *Builder {
	b.discoverer = d
	return b
}

// WithBinder injects the affinity binder, replacing the OS one.
func (b *Builder) WithBinder(binder affinity.Binder) *Builder {
	b.binder = binder
	return b
}

// WithRuntime injects the runtime factory, replacing OS-thread-backed
// runtimes.
func (b *Builder) WithRuntime(f shard.RuntimeFactory) *Builder {
	b.factory = f
	return b
}

package group

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"github.com/ethe/numagroup/internal/affinity"
	"github.com/ethe/numagroup/internal/ctxlog"
	"github.com/ethe/numagroup/internal/plan"
	"github.com/ethe/numagroup/internal/shard"
	"github.com/ethe/numagroup/internal/topology"
)

// Run executes the configured group and blocks until every shard has
// produced an outcome. It returns either a *Error, meaning topology, planning,
// or init failed and nothing ran, or the complete list of outcomes ordered by
// shard index. Per-shard failures (bind rejections, entry workload errors)
// are data inside the outcomes, never control signals: siblings always run
// to completion.
func (b *Builder) Run(ctx context.Context) ([]Outcome, error) {
	logger := ctxlog.FromContext(ctx)

	topo, err := b.resolveTopology()
	if err != nil {
		return nil, &Error{Stage: StageTopology, Err: err}
	}

	entries, err := plan.Plan(topo, b.planOptions())
	if err != nil {
		return nil, &Error{Stage: StagePlan, Err: err}
	}
	logger.Debug("Shard plan computed.", "shards", len(entries), "topology", topo.String())

	factory := b.factory
	if factory == nil {
		factory = shard.DefaultFactory()
	}

	// Init runs exactly once, on its own unbound runtime, before any shard
	// exists. Its failure leaves no partial shard set behind.
	initRT := factory.New()
	initRT.Start(ctx, b.init)
	if _, err := initRT.Wait(); err != nil {
		return nil, &Error{Stage: StageInit, Err: err}
	}
	logger.Debug("Init workload complete.")

	binder := b.binder
	if binder == nil {
		binder = b.defaultBinder(topo)
	}

	// Spawn in index order; execution order is whatever the shards make of
	// it. The only cross-shard synchronization is the join barrier below.
	shards := make([]*shard.Shard, len(entries))
	for i, entry := range entries {
		shards[i] = shard.New(entry)
		shards[i].Start(ctx, binder, factory, b.entry)
	}
	logger.Info("Shards launched.", "count", len(shards))

	outcomes := make([]Outcome, len(shards))
	var wg sync.WaitGroup
	wg.Add(len(shards))
	for i, s := range shards {
		go func(i int, s *shard.Shard) {
			defer wg.Done()
			outcomes[i] = s.Join()
		}(i, s)
	}
	wg.Wait()
	logger.Info("All shards finished.", "count", len(outcomes))

	return outcomes, nil
}

// resolveTopology picks the topology for this run. NUMA-aware runs insist on
// real discovery; other modes fall back to a single-node view of the CPU
// count when the platform has no NUMA enumeration.
func (b *Builder) resolveTopology() (topology.Topology, error) {
	d := b.discoverer
	if d == nil {
		d = topology.Default()
	}
	topo, err := d.Discover()
	if err != nil {
		if b.numa {
			if errors.Is(err, topology.ErrUnsupported) {
				return topology.Topology{}, ErrNumaUnavailable
			}
			return topology.Topology{}, err
		}
		if errors.Is(err, topology.ErrUnsupported) {
			return topology.SingleNode(availableCores()), nil
		}
		return topology.Topology{}, err
	}
	return topo, nil
}

func (b *Builder) planOptions() plan.Options {
	switch {
	case b.numa:
		return plan.Options{Mode: plan.ModeNumaAware, WorkersPerNode: b.workersPerNode}
	case b.noAffinity:
		return plan.Options{Mode: plan.ModeNone, Workers: b.workers}
	default:
		return plan.Options{Mode: plan.ModeCoreOnly, Workers: b.workers}
	}
}

func (b *Builder) defaultBinder(topo topology.Topology) affinity.Binder {
	if b.noAffinity {
		return affinity.Noop{}
	}
	return affinity.NewOS(topo)
}

// availableCores is the single-node fallback width when the platform has no
// NUMA enumeration.
func availableCores() int {
	return runtime.NumCPU()
}

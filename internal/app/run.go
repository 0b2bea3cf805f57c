package app

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/ethe/numagroup/internal/config"
	"github.com/ethe/numagroup/internal/ctxlog"
	"github.com/ethe/numagroup/internal/group"
	"github.com/ethe/numagroup/internal/plan"
	"github.com/ethe/numagroup/internal/topology"
)

// defaultSpin is how long the built-in benchmark workload runs per shard
// when neither the file nor the flags say otherwise.
const defaultSpin = 500 * time.Millisecond

// Run executes the main application logic: resolve the model, then either
// inspect the plan or run the group with the built-in spin workload.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	model, err := a.resolveModel(ctx)
	if err != nil {
		return err
	}

	if a.config.HealthcheckPort > 0 {
		a.startHealthcheckServer(a.config.HealthcheckPort)
	}

	if a.config.Inspect {
		return a.inspect(model)
	}
	return a.runGroup(ctx, model)
}

// inspect prints the discovered topology and the plan it would produce,
// without starting any shard.
func (a *App) inspect(model config.Model) error {
	topo, err := discoverForInspect(model)
	if err != nil {
		return err
	}
	entries, err := plan.Plan(topo, planOptions(model))
	if err != nil {
		return err
	}

	fmt.Fprintf(a.outW, "topology: %s\n", topo)
	fmt.Fprintf(a.outW, "mode: %s, shards: %d\n", planOptions(model).Mode, len(entries))
	for _, e := range entries {
		if e.Node != nil {
			fmt.Fprintf(a.outW, "  shard %d: node %d, cores %v\n", e.Shard, *e.Node, e.Cores)
		} else {
			fmt.Fprintf(a.outW, "  shard %d: cores %v\n", e.Shard, e.Cores)
		}
	}
	return nil
}

// runGroup runs the group with the built-in spin benchmark as the entry
// workload and prints one line per shard outcome.
func (a *App) runGroup(ctx context.Context, model config.Model) error {
	spin := defaultSpin
	if model.Spin != nil {
		spin = *model.Spin
	}

	builder := group.New().
		Entry(spinWorkload(spin)).
		Init(func(ctx context.Context) (any, error) {
			ctxlog.FromContext(ctx).Info("Init complete, launching shards.", "spin", spin)
			return nil, nil
		})
	applyModel(builder, model)

	a.setPhase("running")
	start := time.Now()
	outcomes, err := builder.Run(ctx)
	if err != nil {
		a.setPhase("failed")
		var groupErr *group.Error
		if errors.As(err, &groupErr) {
			return fmt.Errorf("group never started (%s stage): %w", groupErr.Stage, groupErr.Err)
		}
		return err
	}
	a.setPhase("finished")
	a.logger.Info("Group run complete.", "shards", len(outcomes), "elapsed", time.Since(start))

	failed := 0
	for _, out := range outcomes {
		if out.Err != nil {
			failed++
			fmt.Fprintf(a.outW, "shard %d: error: %v\n", out.Shard, out.Err)
			continue
		}
		fmt.Fprintf(a.outW, "shard %d: %v iterations\n", out.Shard, out.Value)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d shards failed", failed, len(outcomes))
	}
	return nil
}

// applyModel transfers the resolved settings onto the builder.
func applyModel(b *group.Builder, model config.Model) {
	if model.Numa != nil {
		b.Numa(*model.Numa)
	}
	if model.NoAffinity != nil {
		b.NoAffinity(*model.NoAffinity)
	}
	if model.WorkersPerNode != nil {
		b.WorkersPerNode(*model.WorkersPerNode)
	}
	if model.Workers != nil {
		b.Workers(*model.Workers)
	}
}

// planOptions mirrors the builder's mode selection for the inspect path.
func planOptions(model config.Model) plan.Options {
	opts := plan.Options{Mode: plan.ModeCoreOnly, WorkersPerNode: 1}
	if model.WorkersPerNode != nil {
		opts.WorkersPerNode = *model.WorkersPerNode
	}
	if model.Workers != nil {
		opts.Workers = *model.Workers
	}
	switch {
	case model.Numa != nil && *model.Numa:
		opts.Mode = plan.ModeNumaAware
	case model.NoAffinity != nil && *model.NoAffinity:
		opts.Mode = plan.ModeNone
	}
	return opts
}

// discoverForInspect matches the group's topology resolution: real discovery,
// with a single-node fallback unless NUMA awareness was requested.
func discoverForInspect(model config.Model) (topology.Topology, error) {
	topo, err := topology.Default().Discover()
	if err == nil {
		return topo, nil
	}
	numa := model.Numa != nil && *model.Numa
	if errors.Is(err, topology.ErrUnsupported) && !numa {
		return topology.SingleNode(availableCores()), nil
	}
	if errors.Is(err, topology.ErrUnsupported) {
		return topology.Topology{}, group.ErrNumaUnavailable
	}
	return topology.Topology{}, err
}

func availableCores() int {
	return runtime.NumCPU()
}

// spinWorkload busy-loops for the given duration and reports how many
// iterations it managed, a crude per-shard throughput probe that makes
// placement effects visible.
func spinWorkload(d time.Duration) group.Workload {
	return func(ctx context.Context) (any, error) {
		deadline := time.Now().Add(d)
		var iterations uint64
		for time.Now().Before(deadline) {
			for i := 0; i < 10000; i++ {
				iterations++
			}
			select {
			case <-ctx.Done():
				return iterations, ctx.Err()
			default:
			}
		}
		return iterations, nil
	}
}

package testutil

import (
	"context"
	"sync"

	"github.com/ethe/numagroup/internal/shard"
	"github.com/ethe/numagroup/internal/topology"
)

// RecordingBinder records every bind call and can be told to reject specific
// core sets. Safe for concurrent use, since shards bind in parallel.
type RecordingBinder struct {
	mu        sync.Mutex
	coreCalls [][]topology.CoreID
	nodeCalls []topology.NodeID

	// FailCore rejects any BindCores call whose set contains this core.
	FailCore *topology.CoreID
	// Err is returned for rejected binds.
	Err error
}

// BindCores implements affinity.Binder.
func (b *RecordingBinder) BindCores(cores []topology.CoreID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.coreCalls = append(b.coreCalls, append([]topology.CoreID(nil), cores...))
	if b.FailCore != nil {
		for _, c := range cores {
			if c == *b.FailCore {
				return b.Err
			}
		}
	}
	return nil
}

// BindNode implements affinity.Binder.
func (b *RecordingBinder) BindNode(node topology.NodeID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nodeCalls = append(b.nodeCalls, node)
	return nil
}

// CoreCalls returns a copy of the recorded BindCores arguments.
func (b *RecordingBinder) CoreCalls() [][]topology.CoreID {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([][]topology.CoreID(nil), b.coreCalls...)
}

// NodeCalls returns a copy of the recorded BindNode arguments.
func (b *RecordingBinder) NodeCalls() []topology.NodeID {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]topology.NodeID(nil), b.nodeCalls...)
}

// CountingFactory wraps the default runtime factory and counts how many
// runtimes the orchestrator creates and starts. The first runtime of a run is
// the init runtime; the rest are shards.
type CountingFactory struct {
	mu      sync.Mutex
	created int
	started int
}

// New implements shard.RuntimeFactory.
func (f *CountingFactory) New() shard.Runtime {
	f.mu.Lock()
	f.created++
	f.mu.Unlock()
	return &countingRuntime{factory: f, inner: shard.NewThreadRuntime()}
}

// Created returns how many runtimes have been created.
func (f *CountingFactory) Created() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.created
}

// Started returns how many runtimes have had a workload started on them.
func (f *CountingFactory) Started() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.started
}

type countingRuntime struct {
	factory *CountingFactory
	inner   *shard.ThreadRuntime
}

func (r *countingRuntime) Start(ctx context.Context, w shard.Workload) {
	r.factory.mu.Lock()
	r.factory.started++
	r.factory.mu.Unlock()
	r.inner.Start(ctx, w)
}

func (r *countingRuntime) Wait() (any, error) {
	return r.inner.Wait()
}

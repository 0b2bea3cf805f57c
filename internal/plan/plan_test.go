package plan

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethe/numagroup/internal/topology"
)

func twoByFour() topology.Topology {
	return topology.Topology{Nodes: []topology.Node{
		{ID: 0, Cores: []topology.CoreID{0, 1, 2, 3}},
		{ID: 1, Cores: []topology.CoreID{4, 5, 6, 7}},
	}}
}

// checkDisjoint asserts the plan's core sets are pairwise disjoint and a
// subset of the topology's cores.
func checkDisjoint(t *testing.T, topo topology.Topology, entries []Entry) {
	t.Helper()
	available := make(map[topology.CoreID]bool)
	for _, c := range topo.Cores() {
		available[c] = true
	}
	seen := make(map[topology.CoreID]int)
	for _, e := range entries {
		for _, c := range e.Cores {
			require.True(t, available[c], "core %d not in topology", c)
			prev, dup := seen[c]
			require.False(t, dup, "core %d owned by shards %d and %d", c, prev, e.Shard)
			seen[c] = e.Shard
		}
	}
}

func TestNumaAwareTwoNodesTwoWorkers(t *testing.T) {
	entries, err := Plan(twoByFour(), Options{Mode: ModeNumaAware, WorkersPerNode: 2})
	require.NoError(t, err)

	node0, node1 := topology.NodeID(0), topology.NodeID(1)
	want := []Entry{
		{Shard: 0, Cores: []topology.CoreID{0, 1}, Node: &node0},
		{Shard: 1, Cores: []topology.CoreID{2, 3}, Node: &node0},
		{Shard: 2, Cores: []topology.CoreID{4, 5}, Node: &node1},
		{Shard: 3, Cores: []topology.CoreID{6, 7}, Node: &node1},
	}
	if diff := cmp.Diff(want, entries); diff != "" {
		t.Fatalf("plan mismatch (-want +got):\n%s", diff)
	}
	checkDisjoint(t, twoByFour(), entries)
}

func TestNumaAwareRemainderSpread(t *testing.T) {
	topo := topology.Topology{Nodes: []topology.Node{
		{ID: 0, Cores: []topology.CoreID{0, 1, 2, 3, 4, 5, 6}},
	}}
	entries, err := Plan(topo, Options{Mode: ModeNumaAware, WorkersPerNode: 3})
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// 7 cores over 3 workers: 3+2+2, extras to the earliest entries.
	assert.Len(t, entries[0].Cores, 3)
	assert.Len(t, entries[1].Cores, 2)
	assert.Len(t, entries[2].Cores, 2)
	checkDisjoint(t, topo, entries)
}

func TestNumaAwareImbalanceAtMostOne(t *testing.T) {
	topos := []topology.Topology{
		twoByFour(),
		topology.SingleNode(13),
		{Nodes: []topology.Node{
			{ID: 0, Cores: []topology.CoreID{0, 1, 2, 3, 4}},
			{ID: 1, Cores: []topology.CoreID{5, 6, 7}},
			{ID: 2, Cores: []topology.CoreID{8, 9, 10, 11, 12, 13}},
		}},
	}
	for _, topo := range topos {
		for w := 1; w <= 3; w++ {
			entries, err := Plan(topo, Options{Mode: ModeNumaAware, WorkersPerNode: w})
			if err != nil {
				var empty *EmptyNodeError
				require.True(t, errors.As(err, &empty))
				continue
			}
			require.Len(t, entries, len(topo.Nodes)*w)
			checkDisjoint(t, topo, entries)

			perNode := make(map[topology.NodeID][]int)
			for _, e := range entries {
				require.NotNil(t, e.Node)
				perNode[*e.Node] = append(perNode[*e.Node], len(e.Cores))
			}
			for node, sizes := range perNode {
				require.Len(t, sizes, w)
				min, max := sizes[0], sizes[0]
				for _, s := range sizes {
					if s < min {
						min = s
					}
					if s > max {
						max = s
					}
				}
				assert.LessOrEqual(t, max-min, 1, "node %d sizes %v", node, sizes)
				assert.GreaterOrEqual(t, min, 1)
			}
		}
	}
}

func TestNumaAwareNodeTooSmall(t *testing.T) {
	topo := topology.Topology{Nodes: []topology.Node{
		{ID: 0, Cores: []topology.CoreID{0, 1, 2, 3}},
		{ID: 1, Cores: []topology.CoreID{4}},
	}}
	_, err := Plan(topo, Options{Mode: ModeNumaAware, WorkersPerNode: 2})
	require.Error(t, err)

	var empty *EmptyNodeError
	require.True(t, errors.As(err, &empty))
	assert.Equal(t, topology.NodeID(1), empty.Node)
	assert.Equal(t, 1, empty.Cores)
	assert.Equal(t, 2, empty.Workers)
}

func TestNumaAwareSingleNodeDegenerateStillFails(t *testing.T) {
	_, err := Plan(topology.SingleNode(2), Options{Mode: ModeNumaAware, WorkersPerNode: 3})
	var empty *EmptyNodeError
	require.True(t, errors.As(err, &empty))
}

func TestCoreOnlyDefaultOneShardPerCore(t *testing.T) {
	entries, err := Plan(topology.SingleNode(8), Options{Mode: ModeCoreOnly})
	require.NoError(t, err)
	require.Len(t, entries, 8)
	for i, e := range entries {
		assert.Equal(t, i, e.Shard)
		assert.Equal(t, []topology.CoreID{topology.CoreID(i)}, e.Cores)
		assert.Nil(t, e.Node)
	}
}

func TestCoreOnlyWorkerOverrideCoversAllCores(t *testing.T) {
	for _, k := range []int{1, 2, 3, 5, 8} {
		entries, err := Plan(topology.SingleNode(8), Options{Mode: ModeCoreOnly, Workers: k})
		require.NoError(t, err)
		require.Len(t, entries, k)
		checkDisjoint(t, topology.SingleNode(8), entries)

		total := 0
		for _, e := range entries {
			total += len(e.Cores)
		}
		assert.Equal(t, 8, total, "k=%d", k)
	}
}

func TestCoreOnlyTooManyWorkers(t *testing.T) {
	_, err := Plan(topology.SingleNode(4), Options{Mode: ModeCoreOnly, Workers: 5})
	var tooMany *TooManyWorkersError
	require.True(t, errors.As(err, &tooMany))
	assert.Equal(t, 5, tooMany.Workers)
	assert.Equal(t, 4, tooMany.Cores)
}

func TestCoreOnlyIgnoresNodeBoundaries(t *testing.T) {
	entries, err := Plan(twoByFour(), Options{Mode: ModeCoreOnly, Workers: 3})
	require.NoError(t, err)
	require.Len(t, entries, 3)
	// 8 cores into 3 groups: 3, 3, 2; the middle group straddles the nodes.
	assert.Equal(t, []topology.CoreID{0, 1, 2}, entries[0].Cores)
	assert.Equal(t, []topology.CoreID{3, 4, 5}, entries[1].Cores)
	assert.Equal(t, []topology.CoreID{6, 7}, entries[2].Cores)
}

func TestCoreOnlyEmptyTopology(t *testing.T) {
	_, err := Plan(topology.Topology{}, Options{Mode: ModeCoreOnly})
	assert.True(t, errors.Is(err, ErrNoCores))
}

func TestNoneModeSingleUnboundShard(t *testing.T) {
	entries, err := Plan(topology.SingleNode(8), Options{Mode: ModeNone})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Empty(t, entries[0].Cores)
	assert.Nil(t, entries[0].Node)
}

func TestNoneModeWorkerOverride(t *testing.T) {
	entries, err := Plan(topology.Topology{}, Options{Mode: ModeNone, Workers: 3})
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for i, e := range entries {
		assert.Equal(t, i, e.Shard)
		assert.Empty(t, e.Cores)
	}
}

func TestPlanIsDeterministic(t *testing.T) {
	first, err := Plan(twoByFour(), Options{Mode: ModeNumaAware, WorkersPerNode: 2})
	require.NoError(t, err)
	second, err := Plan(twoByFour(), Options{Mode: ModeNumaAware, WorkersPerNode: 2})
	require.NoError(t, err)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("plans differ across runs:\n%s", diff)
	}
}

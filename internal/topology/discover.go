package topology

// Discoverer enumerates the machine's NUMA topology. It is a consumed
// capability: the orchestrator calls it once per run and treats the result as
// immutable. Implementations must return ErrUnsupported (possibly wrapped)
// when the platform has no NUMA enumeration, so callers can distinguish
// "no NUMA here" from an actual I/O failure.
type Discoverer interface {
	Discover() (Topology, error)
}

// DiscovererFunc adapts a plain function to the Discoverer interface.
type DiscovererFunc func() (Topology, error)

// Discover implements Discoverer.
func (f DiscovererFunc) Discover() (Topology, error) { return f() }

// Static returns a Discoverer that always reports the given topology.
// Useful for tests and for callers that already know their placement.
func Static(t Topology) Discoverer {
	return DiscovererFunc(func() (Topology, error) { return t, nil })
}

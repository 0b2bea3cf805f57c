//go:build !linux

package topology

// Default returns the platform discoverer. Non-Linux systems have no NUMA
// enumeration here, so discovery reports ErrUnsupported; callers that don't
// need NUMA awareness fall back to SingleNode.
func Default() Discoverer {
	return DiscovererFunc(func() (Topology, error) {
		return Topology{}, ErrUnsupported
	})
}

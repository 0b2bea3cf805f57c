package topology

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
)

// defaultSysfsRoot is where the Linux kernel exposes NUMA nodes.
const defaultSysfsRoot = "/sys/devices/system/node"

var (
	nodeDirRe = regexp.MustCompile(`^node(\d+)$`)
	cpuDirRe  = regexp.MustCompile(`^cpu(\d+)$`)
)

// Sysfs discovers topology by walking a sysfs node tree: each node<N>
// directory contributes one NUMA node, and the cpu<M> entries inside it are
// that node's cores. The root is parameterized so tests can point it at a
// fake tree.
type Sysfs struct {
	Root string
}

// NewSysfs returns a Sysfs discoverer rooted at the kernel's node directory.
func NewSysfs() *Sysfs {
	return &Sysfs{Root: defaultSysfsRoot}
}

// Discover implements Discoverer.
func (s *Sysfs) Discover() (Topology, error) {
	root := s.Root
	if root == "" {
		root = defaultSysfsRoot
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return Topology{}, fmt.Errorf("%w: %s missing", ErrUnsupported, root)
		}
		return Topology{}, fmt.Errorf("topology: reading %s: %w", root, err)
	}

	var nodes []Node
	for _, e := range entries {
		m := nodeDirRe.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		id, _ := strconv.Atoi(m[1])
		cores, err := s.nodeCores(filepath.Join(root, e.Name()))
		if err != nil {
			return Topology{}, err
		}
		nodes = append(nodes, Node{ID: NodeID(id), Cores: cores})
	}
	if len(nodes) == 0 {
		return Topology{}, fmt.Errorf("%w: no node directories under %s", ErrUnsupported, root)
	}

	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
	t := Topology{Nodes: nodes}
	if err := t.Validate(); err != nil {
		return Topology{}, err
	}
	return t, nil
}

// nodeCores lists the cpu<M> entries of one node directory.
func (s *Sysfs) nodeCores(dir string) ([]CoreID, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("topology: reading %s: %w", dir, err)
	}
	var cores []CoreID
	for _, e := range entries {
		m := cpuDirRe.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		id, _ := strconv.Atoi(m[1])
		cores = append(cores, CoreID(id))
	}
	sort.Slice(cores, func(i, j int) bool { return cores[i] < cores[j] })
	return cores, nil
}

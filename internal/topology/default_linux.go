//go:build linux

package topology

// Default returns the platform discoverer: the kernel's sysfs node tree.
func Default() Discoverer {
	return NewSysfs()
}

package config

import (
	"fmt"
	"time"
)

// Model is the loaded group configuration. Optional fields are pointers so a
// merge can tell "not set" from a zero value: flags only override what the
// file left out.
type Model struct {
	Numa           *bool
	WorkersPerNode *int
	Workers        *int
	NoAffinity     *bool
	Spin           *time.Duration
}

// Merge overlays other onto m, with other winning where both are set, and
// returns the combined model. Neither receiver nor argument is mutated.
func (m Model) Merge(other Model) Model {
	out := m
	if other.Numa != nil {
		out.Numa = other.Numa
	}
	if other.WorkersPerNode != nil {
		out.WorkersPerNode = other.WorkersPerNode
	}
	if other.Workers != nil {
		out.Workers = other.Workers
	}
	if other.NoAffinity != nil {
		out.NoAffinity = other.NoAffinity
	}
	if other.Spin != nil {
		out.Spin = other.Spin
	}
	return out
}

// Validate rejects models no plan could satisfy.
func (m Model) Validate() error {
	if m.WorkersPerNode != nil && *m.WorkersPerNode < 1 {
		return fmt.Errorf("config: workers_per_node must be at least 1, got %d", *m.WorkersPerNode)
	}
	if m.Workers != nil && *m.Workers < 0 {
		return fmt.Errorf("config: workers cannot be negative, got %d", *m.Workers)
	}
	if m.Spin != nil && *m.Spin < 0 {
		return fmt.Errorf("config: spin duration cannot be negative, got %s", *m.Spin)
	}
	return nil
}

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunHelp(t *testing.T) {
	var out bytes.Buffer
	err := run(&out, []string{"-h"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Usage:")
}

func TestRunInspectPrintsPlan(t *testing.T) {
	var out bytes.Buffer
	err := run(&out, []string{"-inspect", "-workers", "2", "-log-level", "error"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "topology:")
	assert.Contains(t, out.String(), "shard 0:")
	assert.Contains(t, out.String(), "shard 1:")
}

func TestRunUnpinnedGroup(t *testing.T) {
	var out bytes.Buffer
	err := run(&out, []string{"-no-affinity", "-workers", "2", "-spin", "10ms", "-log-level", "error"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "shard 0:")
	assert.Contains(t, out.String(), "shard 1:")
	assert.Contains(t, out.String(), "iterations")
}

func TestRunWithConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "group.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`
group {
  no_affinity = true
  workers     = 3
  spin        = "10ms"
}
`), 0o644))

	var out bytes.Buffer
	err := run(&out, []string{"-log-level", "error", path})
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(out.String(), "iterations"))
}

func TestRunInvalidFlag(t *testing.T) {
	var out bytes.Buffer
	err := run(&out, []string{"-log-format", "yaml"})
	require.Error(t, err)
}

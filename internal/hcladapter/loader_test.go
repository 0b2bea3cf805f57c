package hcladapter

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "group.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadGroupBlock(t *testing.T) {
	path := writeConfig(t, `
group {
  numa             = true
  workers_per_node = 2
  spin             = "750ms"
}
`)

	model, err := NewLoader().Load(context.Background(), path)
	require.NoError(t, err)

	require.NotNil(t, model.Numa)
	assert.True(t, *model.Numa)
	require.NotNil(t, model.WorkersPerNode)
	assert.Equal(t, 2, *model.WorkersPerNode)
	require.NotNil(t, model.Spin)
	assert.Equal(t, 750*time.Millisecond, *model.Spin)
	assert.Nil(t, model.Workers)
}

func TestLoadEmptyFile(t *testing.T) {
	path := writeConfig(t, "")
	model, err := NewLoader().Load(context.Background(), path)
	require.NoError(t, err)
	assert.Nil(t, model.Numa)
	assert.Nil(t, model.Workers)
}

func TestLoadNumCPUsExpression(t *testing.T) {
	path := writeConfig(t, `
group {
  workers = num_cpus
}
`)
	model, err := NewLoader().Load(context.Background(), path)
	require.NoError(t, err)
	require.NotNil(t, model.Workers)
	assert.Equal(t, runtime.NumCPU(), *model.Workers)
}

func TestLoadRejectsInvalidSyntax(t *testing.T) {
	path := writeConfig(t, `group {`)
	_, err := NewLoader().Load(context.Background(), path)
	assert.Error(t, err)
}

func TestLoadRejectsWrongType(t *testing.T) {
	path := writeConfig(t, `
group {
  numa = "definitely"
}
`)
	_, err := NewLoader().Load(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "numa")
}

func TestLoadRejectsInvalidDuration(t *testing.T) {
	path := writeConfig(t, `
group {
  spin = "a while"
}
`)
	_, err := NewLoader().Load(context.Background(), path)
	assert.Error(t, err)
}

func TestLoadRejectsZeroWorkersPerNode(t *testing.T) {
	path := writeConfig(t, `
group {
  workers_per_node = 0
}
`)
	_, err := NewLoader().Load(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "workers_per_node")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := NewLoader().Load(context.Background(), filepath.Join(t.TempDir(), "missing.hcl"))
	assert.Error(t, err)
}

func TestLoadLaterBlockWins(t *testing.T) {
	path := writeConfig(t, `
group {
  workers = 2
}

group {
  workers = 4
}
`)
	model, err := NewLoader().Load(context.Background(), path)
	require.NoError(t, err)
	require.NotNil(t, model.Workers)
	assert.Equal(t, 4, *model.Workers)
}

package affinity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethe/numagroup/internal/topology"
)

func TestNoopAcceptsEverything(t *testing.T) {
	var b Noop
	assert.NoError(t, b.BindCores([]topology.CoreID{0, 1}))
	assert.NoError(t, b.BindCores(nil))
	assert.NoError(t, b.BindNode(3))
}

func TestBindErrorUnwraps(t *testing.T) {
	cause := errors.New("EPERM")
	err := &BindError{Op: "cores", Err: cause}
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "bind cores")
}

func TestOSBindNodeUnknownNode(t *testing.T) {
	b := NewOS(topology.SingleNode(2))
	err := b.BindNode(7)
	require.Error(t, err)
	var bindErr *BindError
	require.True(t, errors.As(err, &bindErr))
	assert.Equal(t, "node", bindErr.Op)
}

func TestOSBindCoresRejectsEmptySet(t *testing.T) {
	b := NewOS(topology.SingleNode(2))
	err := b.BindCores(nil)
	require.Error(t, err)
	var bindErr *BindError
	assert.True(t, errors.As(err, &bindErr))
}

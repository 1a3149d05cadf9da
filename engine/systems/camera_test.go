package systems

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/lumina/engine/scene"
)

func newCameraSystem(t *testing.T, maxCameras uint16) *CameraSystem {
	t.Helper()
	cs, err := NewCameraSystem(CameraSystemConfig{MaxCameraCount: maxCameras})
	require.NoError(t, err)
	return cs
}

func TestNewCameraSystemValidation(t *testing.T) {
	_, err := NewCameraSystem(CameraSystemConfig{})
	assert.Error(t, err)
}

func TestDefaultCameraAlwaysResolves(t *testing.T) {
	cs := newCameraSystem(t, 4)

	def := cs.GetDefault()
	require.NotNil(t, def)
	assert.Equal(t, scene.DEFAULT_CAMERA_NAME, def.Name)
	assert.Equal(t, scene.NodeKindCamera, def.Kind)
	assert.NotNil(t, def.Camera)

	acquired, err := cs.Acquire(scene.DEFAULT_CAMERA_NAME)
	require.NoError(t, err)
	assert.Same(t, def, acquired)

	// Releasing the default is a no-op.
	cs.Release(scene.DEFAULT_CAMERA_NAME)
	assert.Same(t, def, cs.GetDefault())
}

func TestAcquireCreatesOncePerName(t *testing.T) {
	cs := newCameraSystem(t, 4)

	chase, err := cs.Acquire("chase")
	require.NoError(t, err)
	require.NotNil(t, chase)
	assert.Equal(t, "chase", chase.Name)
	assert.Equal(t, scene.NodeKindCamera, chase.Kind)

	again, err := cs.Acquire("chase")
	require.NoError(t, err)
	assert.Same(t, chase, again)

	overhead, err := cs.Acquire("overhead")
	require.NoError(t, err)
	assert.NotSame(t, chase, overhead)
}

func TestReleaseReclaimsSlotAtZeroReferences(t *testing.T) {
	cs := newCameraSystem(t, 4)

	chase, err := cs.Acquire("chase")
	require.NoError(t, err)
	_, err = cs.Acquire("chase")
	require.NoError(t, err)

	cs.Release("chase")
	_, held := cs.lookup["chase"]
	assert.True(t, held)

	cs.Release("chase")
	_, held = cs.lookup["chase"]
	assert.False(t, held)

	// The name resolves again, but to a fresh node.
	reborn, err := cs.Acquire("chase")
	require.NoError(t, err)
	assert.NotSame(t, chase, reborn)
}

func TestAcquireFailsWhenOutOfSlots(t *testing.T) {
	cs := newCameraSystem(t, 2)

	_, err := cs.Acquire("left")
	require.NoError(t, err)
	_, err = cs.Acquire("right")
	require.NoError(t, err)

	_, err = cs.Acquire("rear")
	assert.Error(t, err)

	// The default camera never occupies a slot.
	_, err = cs.Acquire(scene.DEFAULT_CAMERA_NAME)
	assert.NoError(t, err)

	// Releasing frees the slot for the next name.
	cs.Release("left")
	_, err = cs.Acquire("rear")
	assert.NoError(t, err)
}

func TestReleaseUnknownCameraIsHarmless(t *testing.T) {
	cs := newCameraSystem(t, 2)

	cs.Release("ghost")

	_, err := cs.Acquire("real")
	assert.NoError(t, err)
}

func TestCameraSystemShutdown(t *testing.T) {
	cs := newCameraSystem(t, 2)

	before, err := cs.Acquire("chase")
	require.NoError(t, err)

	require.NoError(t, cs.Shutdown())
	assert.Empty(t, cs.lookup)

	after, err := cs.Acquire("chase")
	require.NoError(t, err)
	assert.NotSame(t, before, after)
}

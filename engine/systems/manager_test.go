package systems

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *SystemManager {
	t.Helper()
	sm, err := NewSystemManager(SystemManagerConfig{AssetsDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sm.Shutdown() })
	return sm
}

func TestNewSystemManagerWiresEverySystem(t *testing.T) {
	sm := newTestManager(t)

	assert.NotNil(t, sm.AssetManager)
	assert.NotNil(t, sm.JobSystem)
	assert.NotNil(t, sm.BufferManager)
	assert.NotNil(t, sm.MaterialRegistry)
	assert.NotNil(t, sm.ShaderSystem)
	assert.NotNil(t, sm.CameraSystem)
	assert.NotNil(t, sm.FontSystem)
}

func TestSystemManagerConfigDefaults(t *testing.T) {
	config := SystemManagerConfig{}
	config.applyDefaults()

	assert.Equal(t, "assets", config.AssetsDir)
	assert.Equal(t, uint32(1024), config.MaxMeshCount)
	assert.Equal(t, uint32(1024), config.MaxTextureCount)
	assert.Equal(t, uint32(1024), config.MaxMaterialCount)
	assert.Equal(t, uint32(512), config.MaxShaderVariantCount)
	assert.Equal(t, uint16(16), config.MaxCameraCount)
	assert.Equal(t, 4, config.JobWorkerCount)
	assert.Equal(t, 128, config.JobQueueSize)
	require.NotNil(t, config.Fonts)
	assert.Equal(t, uint8(16), config.Fonts.MaxBitmapFontCount)
	assert.Equal(t, uint8(16), config.Fonts.MaxSystemFontCount)
}

func TestSystemManagerConfigKeepsExplicitValues(t *testing.T) {
	config := SystemManagerConfig{MaxMeshCount: 7, JobWorkerCount: 2}
	config.applyDefaults()

	assert.Equal(t, uint32(7), config.MaxMeshCount)
	assert.Equal(t, 2, config.JobWorkerCount)
}

func TestSystemManagerRequiresExistingAssetsDir(t *testing.T) {
	_, err := NewSystemManager(SystemManagerConfig{AssetsDir: "/definitely/not/a/real/path"})
	assert.Error(t, err)
}

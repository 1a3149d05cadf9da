package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spaghettifunk/lumina/engine/math"
	"github.com/spaghettifunk/lumina/engine/scene"
)

func TestPrepResultFlagAccessors(t *testing.T) {
	empty := &LayerPrepResult{}
	assert.False(t, empty.WasDirty())
	assert.False(t, empty.WasLayerDataDirty())
	assert.False(t, empty.RequiresDepthTexture())
	assert.False(t, empty.RequiresSsaoPass())
	assert.False(t, empty.RequiresShadowMapPass())
	assert.False(t, empty.RequiresScreenTexture())
	assert.False(t, empty.RequiresScreenMipTexture())

	full := &LayerPrepResult{Flags: PrepResultWasDirty | PrepResultLayerDataDirty |
		PrepResultRequiresDepthTexture | PrepResultRequiresSsaoPass |
		PrepResultRequiresShadowMapPass | PrepResultRequiresScreenTexture |
		PrepResultRequiresScreenMipTexture}
	assert.True(t, full.WasDirty())
	assert.True(t, full.WasLayerDataDirty())
	assert.True(t, full.RequiresDepthTexture())
	assert.True(t, full.RequiresSsaoPass())
	assert.True(t, full.RequiresShadowMapPass())
	assert.True(t, full.RequiresScreenTexture())
	assert.True(t, full.RequiresScreenMipTexture())
}

func TestPrepResultFlagsSet(t *testing.T) {
	var flags PrepResultFlags
	flags.Set(PrepResultWasDirty, true)
	flags.Set(PrepResultRequiresSsaoPass, true)
	flags.Set(PrepResultWasDirty, false)

	assert.False(t, flags.Has(PrepResultWasDirty))
	assert.True(t, flags.Has(PrepResultRequiresSsaoPass))
}

func TestViewProjectionWithoutCamera(t *testing.T) {
	result := &LayerPrepResult{}
	assert.Equal(t, math.NewMat4Identity(), result.ViewProjection())
}

func TestViewProjectionUsesCamera(t *testing.T) {
	cam := scene.NewNode("camera", scene.NodeKindCamera)
	cam.SetPosition(math.NewVec3(0, 0, 20))
	cam.CalculateGlobalVariables()
	cam.CalculateCameraGlobals(800, 600)

	result := &LayerPrepResult{Camera: cam}
	assert.Equal(t, cam.Camera.ViewProjection(), result.ViewProjection())
}

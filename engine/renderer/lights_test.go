package renderer

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/lumina/engine/math"
	"github.com/spaghettifunk/lumina/engine/renderer/metadata"
	"github.com/spaghettifunk/lumina/engine/scene"
)

func lightNames(lights []metadata.ShaderLight) []string {
	names := make([]string, 0, len(lights))
	for _, l := range lights {
		names = append(names, l.Light.Name)
	}
	return names
}

func TestSelectLightsNewestClassifiedFirst(t *testing.T) {
	f := newLayerFixture(LayerConfig{MaxLights: 2})
	f.addCamera("camera", 20)
	f.addLight("a", scene.LightTypePoint)
	f.addLight("b", scene.LightTypePoint)
	f.addLight("c", scene.LightTypePoint)

	f.prepare(t)

	// Later scene additions win the budget.
	assert.Equal(t, []string{"c", "b"}, lightNames(f.ld.GlobalLights()))
}

func TestSelectLightsDirection(t *testing.T) {
	f := newLayerFixture(LayerConfig{})
	f.addCamera("camera", 20)
	f.addLight("sun", scene.LightTypeDirectional)

	f.prepare(t)

	require.Len(t, f.ld.GlobalLights(), 1)
	// An unrotated light points down the forward axis.
	assert.Equal(t, math.NewVec3(0, 0, -1), f.ld.GlobalLights()[0].Direction)
}

func TestShadowMapAllocation(t *testing.T) {
	f := newLayerFixture(LayerConfig{})
	f.addCamera("camera", 20)

	point := f.addLight("point", scene.LightTypePoint)
	point.Light.CastShadow = true
	f.addLight("spot", scene.LightTypeSpot)
	sun := f.addLight("sun", scene.LightTypeDirectional)
	sun.Light.CastShadow = true
	sun.Light.ShadowMapResolution = 9

	f.prepare(t)

	// Selection runs newest first, so the sun leads the light list.
	require.Equal(t, []string{"sun", "spot", "point"}, lightNames(f.ld.GlobalLights()))
	assert.True(t, f.ld.GlobalLights()[0].Shadows)
	assert.False(t, f.ld.GlobalLights()[1].Shadows)
	assert.True(t, f.ld.GlobalLights()[2].Shadows)

	entries := f.ld.ShadowMapEntries()
	require.Len(t, entries, 2)
	// Directional lights render into a vsm map, everything else a cube map.
	assert.Equal(t, uint32(0), entries[0].LightIndex)
	assert.Equal(t, metadata.ShadowMapModeVsm, entries[0].Mode)
	assert.Equal(t, uint32(512), entries[0].Size)
	assert.Equal(t, uint32(2), entries[1].LightIndex)
	assert.Equal(t, metadata.ShadowMapModeCube, entries[1].Mode)
	assert.Equal(t, uint32(1024), entries[1].Size)
}

func TestShadowMapBudgetExhaustion(t *testing.T) {
	f := newLayerFixture(LayerConfig{MaxShadowMaps: 1})
	f.addCamera("camera", 20)
	for i := 0; i < 3; i++ {
		light := f.addLight(fmt.Sprintf("light%d", i), scene.LightTypePoint)
		light.Light.CastShadow = true
	}

	f.prepare(t)

	assert.Len(t, f.ld.ShadowMapEntries(), 1)
	assert.Len(t, f.ld.GlobalLights(), 3)
	_, tooManyShadow, _, _ := f.ld.diagnostics.Fired()
	assert.True(t, tooManyShadow)
}

func TestShadowMapBudgetExactlyMetDoesNotWarn(t *testing.T) {
	f := newLayerFixture(LayerConfig{MaxShadowMaps: 2})
	f.addCamera("camera", 20)
	for i := 0; i < 2; i++ {
		light := f.addLight(fmt.Sprintf("light%d", i), scene.LightTypePoint)
		light.Light.CastShadow = true
	}

	f.prepare(t)

	assert.Len(t, f.ld.ShadowMapEntries(), 2)
	_, tooManyShadow, _, _ := f.ld.diagnostics.Fired()
	assert.False(t, tooManyShadow)
}

func TestShadowMapBudgetConfigCannotRaiseCap(t *testing.T) {
	f := newLayerFixture(LayerConfig{MaxShadowMaps: 20})
	f.addCamera("camera", 20)
	for i := 0; i < metadata.MaxShadowMaps+2; i++ {
		light := f.addLight(fmt.Sprintf("light%d", i), scene.LightTypePoint)
		light.Light.CastShadow = true
	}

	f.prepare(t)

	assert.Len(t, f.ld.ShadowMapEntries(), metadata.MaxShadowMaps)
}

func TestFullyBakedLightsGetNoShadowMap(t *testing.T) {
	f := newLayerFixture(LayerConfig{})
	f.addCamera("camera", 20)
	baked := f.addLight("baked", scene.LightTypePoint)
	baked.Light.CastShadow = true
	baked.Light.FullyBaked = true

	f.prepare(t)

	require.Len(t, f.ld.GlobalLights(), 1)
	assert.False(t, f.ld.GlobalLights()[0].Shadows)
	assert.Empty(t, f.ld.ShadowMapEntries())
}

func TestScopedLightLists(t *testing.T) {
	f := newLayerFixture(LayerConfig{DepthTestEnabled: true})
	f.addCamera("camera", 20)

	group := scene.NewNode("group", scene.NodeKindTransform)
	f.root.AddChild(group)
	f.meshes.meshes["cube"] = testMesh("cube")
	scopedModel := scene.NewNode("scopedModel", scene.NodeKindModel)
	scopedModel.Model.MeshName = "cube"
	scopedModel.Model.MaterialNames = []string{"default"}
	group.AddChild(scopedModel)

	f.addModel("plainModel", "cube", "default", math.NewVec3(4, 0, 0))

	f.addLight("global", scene.LightTypeDirectional)
	scoped := f.addLight("scoped", scene.LightTypePoint)
	scoped.Light.Scope = group

	f.prepare(t)

	contexts := f.ld.ModelContexts()
	require.Len(t, contexts, 2)
	scopedCtx, plainCtx := contexts[0], contexts[1]
	require.Same(t, scopedModel, scopedCtx.Model)

	// The scoped model sees everything; the rest of the scene only the
	// global list, shared by pointer rather than copied.
	assert.Equal(t, []string{"scoped", "global"}, lightNames(scopedCtx.Lights))
	require.Equal(t, []string{"global"}, lightNames(plainCtx.Lights))
	global := f.ld.GlobalLights()
	assert.Same(t, &global[0], &plainCtx.Lights[0])
}

func TestScopeOnModelNodeItself(t *testing.T) {
	f := newLayerFixture(LayerConfig{DepthTestEnabled: true})
	f.addCamera("camera", 20)
	model := f.addModel("lamp", "cube", "default", math.NewVec3(0, 0, 0))
	light := f.addLight("glow", scene.LightTypePoint)
	light.Light.Scope = model

	f.prepare(t)

	contexts := f.ld.ModelContexts()
	require.Len(t, contexts, 1)
	assert.Equal(t, []string{"glow"}, lightNames(contexts[0].Lights))
	assert.Empty(t, f.ld.GlobalLights())
}

func TestResolveCameraFirstActiveWins(t *testing.T) {
	f := newLayerFixture(LayerConfig{})
	first := f.addCamera("first", 20)
	second := f.addCamera("second", 30)

	result := f.prepare(t)

	assert.Same(t, first, result.Camera)
	// Every classified camera had its derived state refreshed, not just
	// the chosen one.
	assert.True(t, second.Camera.FrustumValid)
}

func TestResolveCameraExplicitOverride(t *testing.T) {
	f := newLayerFixture(LayerConfig{})
	f.addCamera("implicit", 20)
	override := f.addCamera("override", 30)
	f.ld.ExplicitCamera = override

	result := f.prepare(t)

	assert.Same(t, override, result.Camera)
}

func TestResolveCameraInactiveOverrideHasNoFallback(t *testing.T) {
	f := newLayerFixture(LayerConfig{})
	f.addCamera("implicit", 20)
	override := f.addCamera("override", 30)
	override.Active = false
	f.ld.ExplicitCamera = override

	result := f.prepare(t)

	// An inactive override means no camera at all; the implicit search is
	// not consulted behind its back.
	assert.Nil(t, result.Camera)
	assert.Nil(t, f.ld.Camera)
}

func TestResolveCameraDetachedOverride(t *testing.T) {
	f := newLayerFixture(LayerConfig{DepthTestEnabled: true})
	f.addModel("crate", "cube", "default", math.NewVec3(0, 0, 0))

	// The override need not live in the layer's scene graph at all.
	floating := scene.NewNode("floating", scene.NodeKindCamera)
	floating.SetPosition(math.NewVec3(0, 0, 20))
	f.ld.ExplicitCamera = floating

	result := f.prepare(t)

	assert.Same(t, floating, result.Camera)
	assert.Equal(t, []string{"crate"}, handleNames(f.ld.SortedOpaqueObjects()))
}

package systems

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/lumina/engine/math"
	"github.com/spaghettifunk/lumina/engine/renderer/metadata"
)

func TestDefaultMaterial(t *testing.T) {
	mr := newTestManager(t).MaterialRegistry

	def := mr.DefaultMaterial()
	require.NotNil(t, def)
	assert.Equal(t, metadata.DefaultMaterialName, def.Name)
	assert.Equal(t, metadata.MaterialKindPrincipled, def.Kind)
	assert.Equal(t, metadata.MaterialLightingFragment, def.Lighting)
	assert.Equal(t, metadata.FaceCullModeBack, def.CullMode)
	assert.Equal(t, float32(1.0), def.Opacity)
	assert.Equal(t, math.NewVec4One(), def.BaseColour)
	require.NotNil(t, def.BaseColourMap)
	assert.NotNil(t, def.BaseColourMap.Texture)

	// The default name always resolves to the same material.
	assert.Same(t, def, mr.AcquireMaterial(metadata.DefaultMaterialName))
}

func TestAcquireMaterialUnresolvableNames(t *testing.T) {
	mr := newTestManager(t).MaterialRegistry

	assert.Nil(t, mr.AcquireMaterial(""))
	// Unknown names fail this frame and are retried later.
	assert.Nil(t, mr.AcquireMaterial("no-such-material"))
	assert.Nil(t, mr.AcquireMaterial("no-such-material"))

	_, err := mr.Acquire("no-such-material")
	assert.Error(t, err)
}

func TestAcquireFromConfigResolvesEveryField(t *testing.T) {
	mr := newTestManager(t).MaterialRegistry

	opacity := float32(0.25)
	material, err := mr.AcquireFromConfig(&metadata.MaterialConfig{
		Name:               "glass",
		Kind:               "custom",
		ShaderName:         "my_glass",
		Lighting:           "none",
		BlendMode:          "screen",
		AlphaMode:          "mask",
		AlphaCutoff:        0.5,
		CullMode:           "none",
		DepthDraw:          "never",
		BaseColour:         [4]float32{1, 0, 0, 1},
		Opacity:            &opacity,
		Metalness:          0.7,
		Roughness:          0.3,
		EmissiveColour:     [3]float32{1, 1, 0},
		TransmissionFactor: 0.5,
		ThicknessFactor:    2,
		Capabilities:       []string{"blending", "screen_texture"},
		Maps: map[string]metadata.MaterialMapConfig{
			"base_colour": {Image: "glass_albedo", Channel: "a"},
			"normal":      {Image: "glass_normals"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "glass", material.Name)
	assert.Equal(t, metadata.MaterialKindCustom, material.Kind)
	assert.Equal(t, "my_glass", material.ShaderName)
	assert.Equal(t, metadata.MaterialLightingNone, material.Lighting)
	assert.Equal(t, metadata.BlendModeScreen, material.BlendMode)
	assert.Equal(t, metadata.AlphaModeMask, material.AlphaMode)
	assert.Equal(t, float32(0.5), material.AlphaCutoff)
	assert.Equal(t, metadata.FaceCullModeNone, material.CullMode)
	assert.Equal(t, metadata.DepthDrawNever, material.DepthDraw)
	assert.Equal(t, math.NewVec4Create(1, 0, 0, 1), material.BaseColour)
	assert.Equal(t, float32(0.25), material.Opacity)
	assert.Equal(t, float32(0.7), material.Metalness)
	assert.Equal(t, math.NewVec3(1, 1, 0), material.EmissiveColour)
	assert.Equal(t, float32(0.5), material.TransmissionFactor)
	assert.True(t, material.Capabilities.Has(metadata.CustomMaterialBlending))
	assert.True(t, material.Capabilities.Has(metadata.CustomMaterialScreenTexture))
	assert.False(t, material.Capabilities.Has(metadata.CustomMaterialDepthTexture))
	require.NotNil(t, material.BaseColourMap)
	assert.Equal(t, metadata.TextureChannelAlpha, material.BaseColourMap.Channel)
	require.NotNil(t, material.NormalMap)
	assert.Nil(t, material.DiffuseMap)
	assert.Equal(t, uint32(0), material.Generation)
	assert.True(t, material.Dirty)

	// Frame preparation resolves the registered name to the same pointer.
	assert.Same(t, material, mr.AcquireMaterial("glass"))
}

func TestAcquireFromConfigReResolvesInPlace(t *testing.T) {
	mr := newTestManager(t).MaterialRegistry

	material, err := mr.AcquireFromConfig(&metadata.MaterialConfig{
		Name: "skin",
		Maps: map[string]metadata.MaterialMapConfig{"base_colour": {Image: "skin_albedo"}},
	})
	require.NoError(t, err)
	assert.Equal(t, float32(1.0), material.Opacity)
	assert.Equal(t, uint32(0), material.Generation)
	require.NotNil(t, material.BaseColourMap)

	// Registering the same name again updates the existing material so
	// every holder of the pointer observes the new state.
	updated, err := mr.AcquireFromConfig(&metadata.MaterialConfig{Name: "skin", BlendMode: "multiply"})
	require.NoError(t, err)
	assert.Same(t, material, updated)
	assert.Equal(t, metadata.BlendModeMultiply, material.BlendMode)
	assert.Equal(t, uint32(1), material.Generation)
	assert.Nil(t, material.BaseColourMap)
}

func TestAcquireFromConfigAnonymous(t *testing.T) {
	mr := newTestManager(t).MaterialRegistry

	_, err := mr.AcquireFromConfig(nil)
	assert.Error(t, err)

	first, err := mr.AcquireFromConfig(&metadata.MaterialConfig{})
	require.NoError(t, err)
	second, err := mr.AcquireFromConfig(&metadata.MaterialConfig{})
	require.NoError(t, err)

	assert.NotEmpty(t, first.Name)
	assert.NotEmpty(t, second.Name)
	assert.NotEqual(t, first.Name, second.Name)
}

func TestClearcoatMapSlots(t *testing.T) {
	mr := newTestManager(t).MaterialRegistry

	material, err := mr.AcquireFromConfig(&metadata.MaterialConfig{
		Name: "lacquer",
		Kind: "principled",
		Maps: map[string]metadata.MaterialMapConfig{
			"clearcoat":           {Image: "coat_amount", Channel: "g"},
			"clearcoat_roughness": {Image: "coat_rough"},
		},
	})
	require.NoError(t, err)

	require.NotNil(t, material.ClearcoatMap)
	assert.Equal(t, metadata.TextureChannelGreen, material.ClearcoatMap.Channel)
	require.NotNil(t, material.ClearcoatRoughnessMap)
	// No selector authored: the single channel map reads red.
	assert.Equal(t, metadata.TextureChannelRed, material.ClearcoatRoughnessMap.EffectiveChannel())
}

func TestOmittedBaseColourReadsOpaqueWhite(t *testing.T) {
	mr := newTestManager(t).MaterialRegistry

	material, err := mr.AcquireFromConfig(&metadata.MaterialConfig{Name: "plain"})
	require.NoError(t, err)

	assert.Equal(t, math.NewVec4One(), material.BaseColour)
	assert.Equal(t, float32(1.0), material.Opacity)
}

func TestReleaseDropsAutoReleaseMaterials(t *testing.T) {
	mr := newTestManager(t).MaterialRegistry

	material, err := mr.AcquireFromConfig(&metadata.MaterialConfig{Name: "prop", AutoRelease: true})
	require.NoError(t, err)

	// Releasing the default or an unknown name is harmless.
	mr.Release(metadata.DefaultMaterialName)
	mr.Release("never-registered")

	mr.Release("prop")
	assert.Nil(t, mr.AcquireMaterial("prop"))

	again, err := mr.AcquireFromConfig(&metadata.MaterialConfig{Name: "prop", AutoRelease: true})
	require.NoError(t, err)
	assert.NotSame(t, material, again)
}

func TestMaterialTokenParsing(t *testing.T) {
	// Unknown or empty tokens settle on the workhorse defaults.
	assert.Equal(t, metadata.MaterialKindPrincipled, parseMaterialKind(""))
	assert.Equal(t, metadata.MaterialKindDefault, parseMaterialKind("default"))
	assert.Equal(t, metadata.MaterialKindSpecularGlossy, parseMaterialKind("specular_glossy"))

	assert.Equal(t, metadata.MaterialLightingFragment, parseMaterialLighting(""))
	assert.Equal(t, metadata.MaterialLightingNone, parseMaterialLighting("none"))

	assert.Equal(t, metadata.BlendModeSourceOver, parseBlendMode("bogus"))
	assert.Equal(t, metadata.BlendModeMultiply, parseBlendMode("multiply"))

	assert.Equal(t, metadata.AlphaModeDefault, parseAlphaMode(""))
	assert.Equal(t, metadata.AlphaModeOpaque, parseAlphaMode("opaque"))

	assert.Equal(t, metadata.FaceCullModeBack, parseCullMode(""))
	assert.Equal(t, metadata.FaceCullModeFront, parseCullMode("front"))
	assert.Equal(t, metadata.FaceCullModeFrontAndBack, parseCullMode("front_and_back"))

	assert.Equal(t, metadata.DepthDrawOpaqueOnly, parseDepthDraw(""))
	assert.Equal(t, metadata.DepthDrawAlways, parseDepthDraw("always"))
	assert.Equal(t, metadata.DepthDrawOpaquePrePass, parseDepthDraw("opaque_pre_pass"))

	assert.Equal(t, metadata.CustomMaterialFlags(0), parseCapability("bogus"))
	assert.Equal(t, metadata.CustomMaterialAlwaysDirty, parseCapability("always_dirty"))

	assert.Equal(t, metadata.TextureChannelRed, parseTextureChannel(""))
	assert.Equal(t, metadata.TextureChannelGreen, parseTextureChannel("g"))
}

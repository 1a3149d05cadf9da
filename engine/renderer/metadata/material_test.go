package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnconditionalTransparency(t *testing.T) {
	opaque := &Material{Kind: MaterialKindPrincipled}
	assert.False(t, opaque.HasUnconditionalTransparency())

	screen := &Material{Kind: MaterialKindPrincipled, BlendMode: BlendModeScreen}
	assert.True(t, screen.HasUnconditionalTransparency())

	multiply := &Material{Kind: MaterialKindPrincipled, BlendMode: BlendModeMultiply}
	assert.True(t, multiply.HasUnconditionalTransparency())

	cutout := &Material{Kind: MaterialKindPrincipled, AlphaMode: AlphaModeMask}
	assert.False(t, cutout.HasUnconditionalTransparency())

	blended := &Material{Kind: MaterialKindPrincipled, AlphaMode: AlphaModeBlend}
	assert.True(t, blended.HasUnconditionalTransparency())

	mapped := &Material{Kind: MaterialKindPrincipled, OpacityMap: &TextureMap{}}
	assert.True(t, mapped.HasUnconditionalTransparency())
}

func TestCustomMaterialTransparencyIsCapabilityDriven(t *testing.T) {
	// Custom materials declare blending explicitly; their blend mode and
	// alpha mode carry no meaning for classification.
	custom := &Material{Kind: MaterialKindCustom, BlendMode: BlendModeScreen, AlphaMode: AlphaModeBlend}
	assert.False(t, custom.HasUnconditionalTransparency())

	custom.Capabilities = CustomMaterialBlending
	assert.True(t, custom.HasUnconditionalTransparency())
}

func TestScreenTextureRequirements(t *testing.T) {
	plain := &Material{Kind: MaterialKindPrincipled}
	assert.False(t, plain.RequiresScreenTexture())
	assert.False(t, plain.RequiresScreenMipTexture())

	transmissive := &Material{Kind: MaterialKindPrincipled, TransmissionFactor: 0.5}
	assert.True(t, transmissive.RequiresScreenTexture())
	assert.True(t, transmissive.RequiresScreenMipTexture())

	// Custom materials only listen to their capability bits.
	custom := &Material{Kind: MaterialKindCustom, TransmissionFactor: 0.5}
	assert.False(t, custom.RequiresScreenTexture())

	custom.Capabilities = CustomMaterialScreenTexture
	assert.True(t, custom.RequiresScreenTexture())
	assert.False(t, custom.RequiresScreenMipTexture())

	custom.Capabilities = CustomMaterialScreenMipTexture
	assert.True(t, custom.RequiresScreenTexture())
	assert.True(t, custom.RequiresScreenMipTexture())
}

func TestDepthAndAoTexturesAreCustomOnly(t *testing.T) {
	plain := &Material{Kind: MaterialKindPrincipled}
	assert.False(t, plain.RequiresDepthTexture())
	assert.False(t, plain.RequiresAoTexture())

	custom := &Material{Kind: MaterialKindCustom, Capabilities: CustomMaterialDepthTexture | CustomMaterialAoTexture}
	assert.True(t, custom.RequiresDepthTexture())
	assert.True(t, custom.RequiresAoTexture())
}

func TestEachTextureMapVisitsBoundSlotsInOrder(t *testing.T) {
	m := &Material{
		ClearcoatRoughnessMap: &TextureMap{},
		TransmissionMap:       &TextureMap{},
		NormalMap:             &TextureMap{},
		ClearcoatMap:          &TextureMap{},
		BaseColourMap:         &TextureMap{},
	}

	var visited []ImageMapType
	m.EachTextureMap(func(mapType ImageMapType, tm *TextureMap) bool {
		visited = append(visited, mapType)
		return true
	})

	assert.Equal(t, []ImageMapType{ImageMapBaseColour, ImageMapNormal,
		ImageMapTransmission, ImageMapClearcoat, ImageMapClearcoatRoughness}, visited)
}

func TestEachTextureMapStopsWhenAsked(t *testing.T) {
	m := &Material{BaseColourMap: &TextureMap{}, NormalMap: &TextureMap{}}

	count := 0
	m.EachTextureMap(func(ImageMapType, *TextureMap) bool {
		count++
		return false
	})

	assert.Equal(t, 1, count)
}

func TestImageMapTransparencyContribution(t *testing.T) {
	assert.True(t, ImageMapDiffuse.ContributesTransparency())
	assert.True(t, ImageMapOpacity.ContributesTransparency())
	assert.True(t, ImageMapTranslucency.ContributesTransparency())

	// Base colour alpha is honoured through the alpha mode only.
	assert.False(t, ImageMapBaseColour.ContributesTransparency())
	assert.False(t, ImageMapNormal.ContributesTransparency())
	assert.False(t, ImageMapEmissive.ContributesTransparency())
}

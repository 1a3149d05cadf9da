package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/lumina/engine/math"
	"github.com/spaghettifunk/lumina/engine/renderer/metadata"
	"github.com/spaghettifunk/lumina/engine/scene"
)

func transparentTexture(name string) *metadata.Texture {
	return &metadata.Texture{
		Name:         name,
		Width:        4,
		Height:       4,
		ChannelCount: 4,
		Flags:        metadata.TextureFlagBits(metadata.TextureFlagHasTransparency),
	}
}

func opaqueTexture(name string) *metadata.Texture {
	return &metadata.Texture{Name: name, Width: 4, Height: 4, ChannelCount: 4}
}

func TestBucketClassification(t *testing.T) {
	f := newLayerFixture(LayerConfig{DepthTestEnabled: true})
	f.materials.add(blendedMaterial("glassy"))
	f.materials.add(screenMaterial("refractive"))
	// Screen texture beats transparency in bucket precedence.
	both := f.materials.add(screenMaterial("both"))
	both.AlphaMode = metadata.AlphaModeBlend

	f.addCamera("camera", 20)
	f.addModel("solid", "cube", "default", math.NewVec3(0, 0, 0))
	f.addModel("veil", "cube", "glassy", math.NewVec3(2, 0, 0))
	f.addModel("pane", "cube", "refractive", math.NewVec3(4, 0, 0))
	f.addModel("panel", "cube", "both", math.NewVec3(6, 0, 0))

	f.prepare(t)

	assert.Equal(t, []string{"solid"}, handleNames(f.ld.OpaqueObjects()))
	assert.Equal(t, []string{"veil"}, handleNames(f.ld.TransparentObjects()))
	assert.Equal(t, []string{"pane", "panel"}, handleNames(f.ld.ScreenTextureObjects()))
}

func TestOpacityThresholds(t *testing.T) {
	f := newLayerFixture(LayerConfig{DepthTestEnabled: true})
	f.addCamera("camera", 20)

	nearOpaque := f.addModel("nearOpaque", "cube", "default", math.NewVec3(0, 0, 0))
	nearOpaque.SetOpacity(0.995)
	half := f.addModel("half", "cube", "default", math.NewVec3(2, 0, 0))
	half.SetOpacity(0.5)
	gone := f.addModel("gone", "cube", "default", math.NewVec3(4, 0, 0))
	gone.SetOpacity(0.005)

	f.prepare(t)

	// Nearly opaque snaps to fully opaque.
	require.Equal(t, []string{"nearOpaque"}, handleNames(f.ld.OpaqueObjects()))
	assert.Equal(t, float32(1.0), f.ld.OpaqueObjects()[0].Record.Opacity)

	require.Equal(t, []string{"half", "gone"}, handleNames(f.ld.TransparentObjects()))
	halfRecord := f.ld.TransparentObjects()[0].Record
	assert.Equal(t, float32(0.5), halfRecord.Opacity)
	assert.True(t, halfRecord.Flags.Has(metadata.RenderableHasTransparency))
	assert.False(t, halfRecord.Flags.Has(metadata.RenderableCompletelyTransparent))

	goneRecord := f.ld.TransparentObjects()[1].Record
	assert.Equal(t, float32(0.0), goneRecord.Opacity)
	assert.True(t, goneRecord.Flags.Has(metadata.RenderableCompletelyTransparent))
}

func TestBaseColourAlphaModulatesOpacity(t *testing.T) {
	f := newLayerFixture(LayerConfig{DepthTestEnabled: true})
	f.addCamera("camera", 20)

	invisible := f.materials.add(opaqueMaterial("invisible"))
	invisible.BaseColour = math.NewVec4Create(1, 1, 1, 0.005)
	smoked := f.materials.add(opaqueMaterial("smoked"))
	smoked.BaseColour = math.NewVec4Create(1, 1, 1, 0.5)

	f.addModel("ghost", "cube", "invisible", math.NewVec3(0, 0, 0))
	f.addModel("glass", "cube", "smoked", math.NewVec3(2, 0, 0))

	f.prepare(t)

	// A base colour alpha below the epsilon forces full transparency even
	// though the node and material opacities are both 1.
	assert.Empty(t, f.ld.OpaqueObjects())
	require.Equal(t, []string{"ghost", "glass"}, handleNames(f.ld.TransparentObjects()))

	ghost := f.ld.TransparentObjects()[0].Record
	assert.Equal(t, float32(0.0), ghost.Opacity)
	assert.True(t, ghost.Flags.Has(metadata.RenderableCompletelyTransparent))

	glass := f.ld.TransparentObjects()[1].Record
	assert.Equal(t, float32(0.5), glass.Opacity)
	assert.True(t, glass.Flags.Has(metadata.RenderableHasTransparency))
	assert.False(t, glass.Flags.Has(metadata.RenderableCompletelyTransparent))
}

func TestCustomMaterialIgnoresBaseColourAlpha(t *testing.T) {
	f := newLayerFixture(LayerConfig{DepthTestEnabled: true})
	f.addCamera("camera", 20)

	custom := f.materials.add(opaqueMaterial("fx"))
	custom.Kind = metadata.MaterialKindCustom
	custom.BaseColour = math.NewVec4Create(1, 1, 1, 0.0)

	f.addModel("panel", "cube", "fx", math.NewVec3(0, 0, 0))

	f.prepare(t)

	// Custom shader code owns its alpha; the factor must not leak in.
	require.Equal(t, []string{"panel"}, handleNames(f.ld.OpaqueObjects()))
	assert.Equal(t, float32(1.0), f.ld.OpaqueObjects()[0].Record.Opacity)
}

func TestUnresolvedMaterialRetriesNextFrame(t *testing.T) {
	f := newLayerFixture(LayerConfig{DepthTestEnabled: true})
	f.addCamera("camera", 20)
	f.addModel("crate", "cube", "steel", math.NewVec3(0, 0, 0))

	f.prepare(t)

	// The mesh resolved so the model counts as prepared, but without a
	// material no record can be emitted yet.
	assert.Equal(t, 1, f.ld.FrameStats().ModelsPrepared)
	assert.Equal(t, 0, f.ld.FrameStats().RecordsEmitted)
	assert.Empty(t, f.ld.OpaqueObjects())

	f.materials.add(opaqueMaterial("steel"))
	f.nextFrame(t)

	assert.Equal(t, 1, f.ld.FrameStats().RecordsEmitted)
	assert.Equal(t, []string{"crate"}, handleNames(f.ld.OpaqueObjects()))
}

func TestFewerMaterialNamesReuseLast(t *testing.T) {
	f := newLayerFixture(LayerConfig{DepthTestEnabled: true})
	first := f.materials.add(opaqueMaterial("first"))
	second := f.materials.add(opaqueMaterial("second"))

	bounds := math.Extents3D{Min: math.NewVec3(-1, -1, -1), Max: math.NewVec3(1, 1, 1)}
	mesh := testMesh("multi")
	mesh.Subsets = []*metadata.MeshSubset{
		{Name: "multi.0", IndexCount: 36, Bounds: bounds},
		{Name: "multi.1", IndexCount: 36, Bounds: bounds},
		{Name: "multi.2", IndexCount: 36, Bounds: bounds},
	}
	f.meshes.meshes["multi"] = mesh

	f.addCamera("camera", 20)
	node := f.addModel("crate", "multi", "first", math.NewVec3(0, 0, 0))
	node.Model.MaterialNames = []string{"first", "second"}

	f.prepare(t)

	handles := f.ld.OpaqueObjects()
	require.Len(t, handles, 3)
	assert.Same(t, first, handles[0].Record.Material)
	assert.Same(t, second, handles[1].Record.Material)
	// The last name covers every remaining subset.
	assert.Same(t, second, handles[2].Record.Material)
	assert.Same(t, mesh.Subsets[2], handles[2].Record.Subset)
}

func TestImageChainOrderAndShaderKeyBits(t *testing.T) {
	f := newLayerFixture(LayerConfig{DepthTestEnabled: true})
	m := f.materials.add(opaqueMaterial("textured"))
	m.BaseColourMap = &metadata.TextureMap{}
	m.NormalMap = &metadata.TextureMap{}
	m.RoughnessMap = &metadata.TextureMap{}
	m.ClearcoatMap = &metadata.TextureMap{}

	f.meshes.images[m.BaseColourMap] = opaqueTexture("albedo")
	f.meshes.images[m.NormalMap] = opaqueTexture("normals")
	f.meshes.images[m.ClearcoatMap] = opaqueTexture("coat")
	// Roughness is not resident yet; the chain goes on without it.

	f.addCamera("camera", 20)
	f.addModel("crate", "cube", "textured", math.NewVec3(0, 0, 0))

	f.prepare(t)

	require.Len(t, f.ld.OpaqueObjects(), 1)
	record := f.ld.OpaqueObjects()[0].Record

	first := record.FirstImage
	require.NotNil(t, first)
	assert.Equal(t, metadata.ImageMapBaseColour, first.MapType)
	assert.Same(t, m.BaseColourMap, first.Map)
	require.NotNil(t, first.Next)
	assert.Equal(t, metadata.ImageMapNormal, first.Next.MapType)
	require.NotNil(t, first.Next.Next)
	assert.Equal(t, metadata.ImageMapClearcoat, first.Next.Next.MapType)
	assert.Nil(t, first.Next.Next.Next)

	assert.True(t, record.ShaderKey.HasImageMap(metadata.ImageMapBaseColour))
	assert.True(t, record.ShaderKey.HasImageMap(metadata.ImageMapNormal))
	assert.True(t, record.ShaderKey.HasImageMap(metadata.ImageMapClearcoat))
	assert.False(t, record.ShaderKey.HasImageMap(metadata.ImageMapRoughness))
}

func TestTextureTransparencyContribution(t *testing.T) {
	f := newLayerFixture(LayerConfig{DepthTestEnabled: true})

	// A base colour map never contributes transparency, no matter what its
	// texels carry.
	base := f.materials.add(opaqueMaterial("base"))
	base.BaseColourMap = &metadata.TextureMap{}
	f.meshes.images[base.BaseColourMap] = transparentTexture("albedo")

	// A diffuse map with transparent texels does.
	diffuse := f.materials.add(opaqueMaterial("diffuse"))
	diffuse.Kind = metadata.MaterialKindDefault
	diffuse.DiffuseMap = &metadata.TextureMap{}
	f.meshes.images[diffuse.DiffuseMap] = transparentTexture("diffuse")

	f.addCamera("camera", 20)
	f.addModel("solid", "cube", "base", math.NewVec3(0, 0, 0))
	f.addModel("seeThrough", "cube", "diffuse", math.NewVec3(2, 0, 0))

	f.prepare(t)

	assert.Equal(t, []string{"solid"}, handleNames(f.ld.OpaqueObjects()))
	assert.Equal(t, []string{"seeThrough"}, handleNames(f.ld.TransparentObjects()))
}

func TestFrustumCulling(t *testing.T) {
	f := newLayerFixture(LayerConfig{DepthTestEnabled: true})
	cam := f.addCamera("camera", 20)
	cam.Camera.FrustumCullingEnabled = true

	f.addModel("inView", "cube", "default", math.NewVec3(0, 0, 0))
	f.addModel("behind", "cube", "default", math.NewVec3(0, 0, 200))
	// Closer than the near plane counts as outside too.
	f.addModel("tooClose", "cube", "default", math.NewVec3(0, 0, 15))

	f.prepare(t)

	assert.Equal(t, []string{"inView"}, handleNames(f.ld.OpaqueObjects()))
	assert.Equal(t, 1, f.ld.FrameStats().RecordsEmitted)
	assert.Equal(t, 3, f.ld.FrameStats().ModelsPrepared)
}

func TestFrustumCullingDisabledByDefault(t *testing.T) {
	f := newLayerFixture(LayerConfig{DepthTestEnabled: true})
	f.addCamera("camera", 20)
	f.addModel("inView", "cube", "default", math.NewVec3(0, 0, 0))
	f.addModel("behind", "cube", "default", math.NewVec3(0, 0, 200))

	f.prepare(t)

	assert.Len(t, f.ld.OpaqueObjects(), 2)
}

func TestPickAccelerationBuiltOnce(t *testing.T) {
	f := newLayerFixture(LayerConfig{DepthTestEnabled: true})
	f.addCamera("camera", 20)
	crate := f.addModel("crate", "cube", "default", math.NewVec3(0, 0, 0))
	crate.Model.Pickable = true

	f.prepare(t)
	assert.Equal(t, 1, f.meshes.bvhCalls)
	assert.NotNil(t, f.meshes.meshes["cube"].Bvh)

	// Residency is checked, not rebuilt.
	f.nextFrame(t)
	assert.Equal(t, 1, f.meshes.bvhCalls)
}

func TestPickAccelerationRequiresPickableOrGlobalPicking(t *testing.T) {
	f := newLayerFixture(LayerConfig{DepthTestEnabled: true})
	f.addCamera("camera", 20)
	f.addModel("crate", "cube", "default", math.NewVec3(0, 0, 0))

	f.prepare(t)
	assert.Equal(t, 0, f.meshes.bvhCalls)

	g := newLayerFixture(LayerConfig{DepthTestEnabled: true, GlobalPickingEnabled: true})
	g.addCamera("camera", 20)
	g.addModel("crate", "cube", "default", math.NewVec3(0, 0, 0))

	g.prepare(t)
	assert.Equal(t, 1, g.meshes.bvhCalls)
}

func TestPickAccelerationSkipsInvisibleModels(t *testing.T) {
	f := newLayerFixture(LayerConfig{DepthTestEnabled: true})
	f.addCamera("camera", 20)
	ghost := f.addModel("ghost", "cube", "default", math.NewVec3(0, 0, 0))
	ghost.Model.Pickable = true
	ghost.SetOpacity(0.005)

	f.prepare(t)

	assert.Equal(t, 0, f.meshes.bvhCalls)
	assert.Nil(t, f.meshes.meshes["cube"].Bvh)
}

func TestCommitUploadsOncePerFrame(t *testing.T) {
	f := newLayerFixture(LayerConfig{DepthTestEnabled: true})
	f.addCamera("camera", 20)
	f.addModel("a", "cube", "default", math.NewVec3(0, 0, 0))
	f.addModel("b", "cube", "default", math.NewVec3(2, 0, 0))
	f.addModel("c", "cube", "default", math.NewVec3(4, 0, 0))

	f.prepare(t)
	assert.Equal(t, 1, f.meshes.commitCalls)

	f.nextFrame(t)
	assert.Equal(t, 2, f.meshes.commitCalls)
}

func lodFixture(cameraZ float32) *layerFixture {
	f := newLayerFixture(LayerConfig{DepthTestEnabled: true})
	bounds := math.Extents3D{Min: math.NewVec3(-1, -1, -1), Max: math.NewVec3(1, 1, 1)}
	mesh := testMesh("lodded")
	mesh.Subsets[0].Lods = []metadata.SubsetLevelOfDetail{
		{IndexOffset: 36, IndexCount: 18, Distance: 1},
		{IndexOffset: 54, IndexCount: 9, Distance: 2},
	}
	mesh.Subsets[0].Bounds = bounds
	f.meshes.meshes["lodded"] = mesh
	f.addCamera("camera", cameraZ)
	f.addModel("crate", "lodded", "default", math.NewVec3(0, 0, 0))
	return f
}

func preparedLodLevel(t *testing.T, f *layerFixture) uint32 {
	t.Helper()
	f.prepare(t)
	require.Len(t, f.ld.OpaqueObjects(), 1)
	return f.ld.OpaqueObjects()[0].Record.SubsetLevelOfDetail
}

func TestLevelOfDetailSelection(t *testing.T) {
	// Coarser ranges win as the camera backs away.
	assert.Equal(t, uint32(0), preparedLodLevel(t, lodFixture(100)))
	assert.Equal(t, uint32(1), preparedLodLevel(t, lodFixture(750)))
	assert.Equal(t, uint32(2), preparedLodLevel(t, lodFixture(1600)))
}

func TestLevelOfDetailDisabledByBias(t *testing.T) {
	f := lodFixture(1600)
	node := f.root.Children[1]
	node.Model.LevelOfDetailBias = 0

	assert.Equal(t, uint32(0), preparedLodLevel(t, f))
}

func TestLevelOfDetailDisabledByCameraThreshold(t *testing.T) {
	f := lodFixture(1600)
	f.root.Children[0].Camera.LevelOfDetailPixelThreshold = 0

	assert.Equal(t, uint32(0), preparedLodLevel(t, f))
}

func TestLevelOfDetailFullDetailWhenCameraInsideBounds(t *testing.T) {
	// The camera plane cuts the box: distance is meaningless, keep full detail.
	f := lodFixture(0)

	assert.Equal(t, uint32(0), preparedLodLevel(t, f))
}

func TestLevelOfDetailOrthographic(t *testing.T) {
	f := newLayerFixture(LayerConfig{DepthTestEnabled: true})
	mesh := testMesh("lodded")
	mesh.Subsets[0].Lods = []metadata.SubsetLevelOfDetail{{IndexOffset: 36, IndexCount: 18, Distance: 0.001}}
	f.meshes.meshes["lodded"] = mesh

	cam := f.addCamera("camera", 1600)
	cam.Camera.Projection = scene.CameraProjectionOrthographic
	f.addModel("crate", "lodded", "default", math.NewVec3(0, 0, 0))

	// Orthographic projection never shrinks with distance; only the range
	// thresholds themselves decide.
	assert.Equal(t, uint32(1), preparedLodLevel(t, f))
}

func TestInstanceDepthSorting(t *testing.T) {
	f := newLayerFixture(LayerConfig{DepthTestEnabled: true})
	f.addCamera("camera", 20)

	table := &scene.InstanceTable{
		Entries: []scene.InstanceTableEntry{
			{Row0: math.NewVec4Create(1, 0, 0, 0), Row1: math.NewVec4Create(0, 1, 0, 0), Row2: math.NewVec4Create(0, 0, 1, 10)},
			{Row0: math.NewVec4Create(1, 0, 0, 0), Row1: math.NewVec4Create(0, 1, 0, 0), Row2: math.NewVec4Create(0, 0, 1, 0)},
		},
		DepthSortingEnabled: true,
		Serial:              7,
	}
	crate := f.addModel("crate", "cube", "default", math.NewVec3(0, 0, 0))
	crate.Model.InstanceTable = table

	f.prepare(t)

	// Farthest instance first; the authored serial is untouched.
	assert.Equal(t, float32(0), table.Entries[0].Row2.W)
	assert.Equal(t, float32(10), table.Entries[1].Row2.W)
	assert.Equal(t, uint32(7), table.Serial)

	require.Len(t, f.ld.OpaqueObjects(), 1)
	record := f.ld.OpaqueObjects()[0].Record
	assert.Equal(t, uint32(7), record.InstanceSerial)
	assert.True(t, record.ShaderKey.HasFeature(metadata.ShaderFeatureInstancing))
}

func TestInstanceSortingNeedsOptIn(t *testing.T) {
	f := newLayerFixture(LayerConfig{DepthTestEnabled: true})
	f.addCamera("camera", 20)

	table := &scene.InstanceTable{
		Entries: []scene.InstanceTableEntry{
			{Row2: math.NewVec4Create(0, 0, 1, 10)},
			{Row2: math.NewVec4Create(0, 0, 1, 0)},
		},
	}
	crate := f.addModel("crate", "cube", "default", math.NewVec3(0, 0, 0))
	crate.Model.InstanceTable = table

	f.prepare(t)

	assert.Equal(t, float32(10), table.Entries[0].Row2.W)
	assert.Equal(t, float32(0), table.Entries[1].Row2.W)
}

func TestParticleRecords(t *testing.T) {
	f := newLayerFixture(LayerConfig{DepthTestEnabled: true})
	f.addCamera("camera", 20)

	smoke := scene.NewNode("smoke", scene.NodeKindParticles)
	smoke.Particles.ParticleCount = 128
	smoke.Particles.HasTransparency = true
	smoke.Particles.CastsReflections = true
	smoke.Particles.Seed = 0xC0FFEE
	smoke.Particles.Bounds = math.Extents3D{Min: math.NewVec3(-1, -1, -1), Max: math.NewVec3(1, 1, 1)}
	f.root.AddChild(smoke)

	sparks := scene.NewNode("sparks", scene.NodeKindParticles)
	sparks.Particles.ParticleCount = 16
	sparks.Particles.Bounds = math.Extents3D{Min: math.NewVec3(-1, -1, -1), Max: math.NewVec3(1, 1, 1)}
	f.root.AddChild(sparks)

	f.prepare(t)

	require.Equal(t, []string{"smoke"}, handleNames(f.ld.TransparentObjects()))
	require.Equal(t, []string{"sparks"}, handleNames(f.ld.OpaqueObjects()))

	record := f.ld.TransparentObjects()[0].Record
	assert.Equal(t, metadata.RenderableKindParticles, record.Kind)
	assert.Nil(t, record.Material)
	assert.True(t, record.Flags.Has(metadata.RenderableHasAttributeColour))
	assert.True(t, record.Flags.Has(metadata.RenderableCastsReflections))
	assert.False(t, record.Flags.Has(metadata.RenderableCastsShadows))
	// The emitter's stream seed rides the record so the backend replays
	// the same particle stream every frame.
	assert.Equal(t, uint64(0xC0FFEE), record.ParticleSeed)
	assert.True(t, record.ShaderKey.HasFeature(metadata.ShaderFeatureTransparency))
	assert.Equal(t, 2, f.ld.FrameStats().RecordsEmitted)
}

func TestParticleEmittersSkippedWhenDead(t *testing.T) {
	f := newLayerFixture(LayerConfig{DepthTestEnabled: true})
	f.addCamera("camera", 20)

	empty := scene.NewNode("empty", scene.NodeKindParticles)
	f.root.AddChild(empty)

	faded := scene.NewNode("faded", scene.NodeKindParticles)
	faded.Particles.ParticleCount = 64
	faded.SetOpacity(0)
	f.root.AddChild(faded)

	f.prepare(t)

	assert.Empty(t, f.ld.OpaqueObjects())
	assert.Empty(t, f.ld.TransparentObjects())
	assert.Equal(t, 0, f.ld.FrameStats().RecordsEmitted)
}

func TestItem2DPreparation(t *testing.T) {
	f := newLayerFixture(LayerConfig{})
	f.text.glyphs["mono"] = 5
	f.addCamera("camera", 20)

	label := scene.NewNode("label", scene.NodeKindItem2D)
	label.Item2D.Text = "hello"
	label.Item2D.FontName = "mono"
	f.root.AddChild(label)

	f.prepare(t)

	assert.Equal(t, 5, label.Item2D.GlyphCount)
	expected := item2DFlip.Mul(label.Global).Mul(f.ld.Camera.Camera.ViewProjection())
	assert.Equal(t, expected, label.Item2D.MVP)
	assert.Equal(t, []string{"label"}, nodeNames(f.ld.SortedItem2Ds()))
}

func TestItem2DFailedMeasurementKeepsPreviousCount(t *testing.T) {
	f := newLayerFixture(LayerConfig{})
	f.addCamera("camera", 20)

	label := scene.NewNode("label", scene.NodeKindItem2D)
	label.Item2D.Text = "hello"
	label.Item2D.FontName = "mono"
	label.Item2D.GlyphCount = 7
	f.root.AddChild(label)

	f.prepare(t)

	// The font is not loaded yet: keep the stale count, try again later.
	assert.Equal(t, 7, label.Item2D.GlyphCount)
	assert.Equal(t, 1, f.text.calls)

	f.text.glyphs["mono"] = 3
	f.nextFrame(t)

	assert.Equal(t, 3, label.Item2D.GlyphCount)
	assert.Equal(t, 2, f.text.calls)
}

func TestItem2DWithoutTextSkipsMeasurement(t *testing.T) {
	f := newLayerFixture(LayerConfig{})
	f.addCamera("camera", 20)

	icon := scene.NewNode("icon", scene.NodeKindItem2D)
	f.root.AddChild(icon)

	f.prepare(t)

	assert.Equal(t, 0, f.text.calls)
	assert.Equal(t, []string{"icon"}, nodeNames(f.ld.SortedItem2Ds()))
}

func TestModelContextFields(t *testing.T) {
	f := newLayerFixture(LayerConfig{DepthTestEnabled: true})
	f.addCamera("camera", 20)
	crate := f.addModel("crate", "cube", "default", math.NewVec3(3, 1, 0))
	f.addLight("sun", scene.LightTypeDirectional)

	f.prepare(t)

	contexts := f.ld.ModelContexts()
	require.Len(t, contexts, 1)
	ctx := contexts[0]

	assert.Same(t, crate, ctx.Model)
	assert.Equal(t, crate.Global, ctx.GlobalTransform)
	assert.Equal(t, math.NewMat4Transposed(crate.Global.Inverse()), ctx.NormalMatrix)
	assert.Equal(t, crate.Global.Mul(f.ld.Camera.Camera.ViewProjection()), ctx.ModelViewProjection)
	assert.Equal(t, []string{"sun"}, lightNames(ctx.Lights))
	assert.Nil(t, ctx.BoneTexture)
	assert.Empty(t, ctx.MorphWeights)

	require.Len(t, f.ld.OpaqueObjects(), 1)
	assert.Same(t, ctx, f.ld.OpaqueObjects()[0].Record.ModelContext)
}

func TestModelContextBuiltEvenWithoutMaterials(t *testing.T) {
	f := newLayerFixture(LayerConfig{DepthTestEnabled: true})
	f.addCamera("camera", 20)
	f.addModel("bare", "cube", "", math.NewVec3(0, 0, 0))

	f.prepare(t)

	assert.Len(t, f.ld.ModelContexts(), 1)
	assert.Equal(t, 1, f.ld.FrameStats().ModelsPrepared)
	assert.Equal(t, 0, f.ld.FrameStats().RecordsEmitted)
	assert.Empty(t, f.ld.OpaqueObjects())
}

func TestShaderKeyLightsAndMaterialState(t *testing.T) {
	f := newLayerFixture(LayerConfig{DepthTestEnabled: true, SsaoEnabled: true})
	f.addCamera("camera", 20)
	f.addModel("crate", "cube", "default", math.NewVec3(0, 0, 0))

	f.addLight("fill", scene.LightTypePoint)
	sun := f.addLight("sun", scene.LightTypeDirectional)
	sun.Light.CastShadow = true

	f.prepare(t)

	require.Len(t, f.ld.OpaqueObjects(), 1)
	key := f.ld.OpaqueObjects()[0].Record.ShaderKey

	assert.Equal(t, uint32(2), key.LightCount())
	assert.Equal(t, uint32(1), key.ShadowMapCount())
	// Selection runs newest first, so the shadowed sun is light zero.
	assert.True(t, key.LightShadows(0))
	assert.False(t, key.LightShadows(1))

	assert.Equal(t, metadata.MaterialKindPrincipled, key.MaterialKind())
	assert.Equal(t, metadata.FaceCullModeBack, key.CullMode())
	assert.True(t, key.HasFeature(metadata.ShaderFeatureLighting))
	assert.True(t, key.HasFeature(metadata.ShaderFeatureShadows))
	assert.True(t, key.HasFeature(metadata.ShaderFeatureSsao))
	assert.False(t, key.HasFeature(metadata.ShaderFeatureTransparency))
	assert.False(t, key.HasFeature(metadata.ShaderFeatureInstancing))
}

func TestShaderKeyUnlitMaterial(t *testing.T) {
	f := newLayerFixture(LayerConfig{DepthTestEnabled: true})
	unlit := f.materials.add(opaqueMaterial("unlit"))
	unlit.Lighting = metadata.MaterialLightingNone

	f.addCamera("camera", 20)
	f.addModel("crate", "cube", "unlit", math.NewVec3(0, 0, 0))
	f.addLight("sun", scene.LightTypeDirectional)

	f.prepare(t)

	key := f.ld.OpaqueObjects()[0].Record.ShaderKey
	assert.Equal(t, uint32(1), key.LightCount())
	assert.False(t, key.HasFeature(metadata.ShaderFeatureLighting))
}

func TestShaderKeyGeometryFeatures(t *testing.T) {
	f := newLayerFixture(LayerConfig{DepthTestEnabled: true})

	mesh := testMesh("deformable")
	mesh.Attributes |= metadata.VertexAttributeColour |
		metadata.VertexAttributeJointAndWeight |
		metadata.VertexAttributeMorphTarget
	f.meshes.meshes["deformable"] = mesh

	f.addCamera("camera", 20)
	crate := f.addModel("crate", "deformable", "default", math.NewVec3(0, 0, 0))
	crate.Model.Skin = &scene.Skin{BoneData: make([]float32, 2*scene.FloatsPerBone)}
	crate.Model.MorphTargets = []*scene.MorphTarget{
		{Weight: 0.25, Attributes: scene.MorphAttributePosition},
		{Weight: 0.5, Attributes: scene.MorphAttributePosition},
	}
	crate.Model.UsedInBakedLighting = true
	crate.Model.LightmapKey = "crate.lm"

	f.prepare(t)

	require.Len(t, f.ld.OpaqueObjects(), 1)
	key := f.ld.OpaqueObjects()[0].Record.ShaderKey
	assert.True(t, key.HasFeature(metadata.ShaderFeatureSkinning))
	assert.True(t, key.HasFeature(metadata.ShaderFeatureMorphing))
	assert.True(t, key.HasFeature(metadata.ShaderFeatureVertexColours))
	assert.True(t, key.HasFeature(metadata.ShaderFeatureLightmap))
	assert.Equal(t, uint32(2), key.MorphTargetCount())
}

func TestLightmapUVPresenceBit(t *testing.T) {
	f := newLayerFixture(LayerConfig{DepthTestEnabled: true})

	baked := testMesh("baked")
	baked.Attributes |= metadata.VertexAttributeTexCoord1 | metadata.VertexAttributeLightmapUV
	f.meshes.meshes["baked"] = baked

	f.addCamera("camera", 20)
	f.addModel("house", "baked", "default", math.NewVec3(0, 0, 0))
	f.addModel("crate", "cube", "default", math.NewVec3(2, 0, 0))

	f.prepare(t)

	require.Equal(t, []string{"house", "crate"}, handleNames(f.ld.OpaqueObjects()))
	house := f.ld.OpaqueObjects()[0].Record
	assert.True(t, house.Flags.Has(metadata.RenderableHasAttributeTexCoord1))
	assert.True(t, house.Flags.Has(metadata.RenderableHasAttributeLightmapUV))

	// The plain cube authored neither coordinate set.
	crate := f.ld.OpaqueObjects()[1].Record
	assert.False(t, crate.Flags.Has(metadata.RenderableHasAttributeTexCoord1))
	assert.False(t, crate.Flags.Has(metadata.RenderableHasAttributeLightmapUV))
}

func TestShaderKeyPointsTopology(t *testing.T) {
	f := newLayerFixture(LayerConfig{DepthTestEnabled: true})
	mesh := testMesh("cloud")
	mesh.PointsTopology = true
	f.meshes.meshes["cloud"] = mesh

	f.addCamera("camera", 20)
	f.addModel("scan", "cloud", "default", math.NewVec3(0, 0, 0))

	f.prepare(t)

	record := f.ld.OpaqueObjects()[0].Record
	assert.True(t, record.Flags.Has(metadata.RenderablePointsTopology))
	assert.True(t, record.ShaderKey.HasFeature(metadata.ShaderFeaturePointsTopology))
}

func TestMorphTargetClampAndDegradation(t *testing.T) {
	f := newLayerFixture(LayerConfig{DepthTestEnabled: true})
	mesh := testMesh("morphy")
	mesh.Attributes |= metadata.VertexAttributeMorphTarget
	f.meshes.meshes["morphy"] = mesh

	f.addCamera("camera", 20)
	face := f.addModel("face", "morphy", "default", math.NewVec3(0, 0, 0))

	all := scene.MorphAttributePosition | scene.MorphAttributeNormal |
		scene.MorphAttributeTangent | scene.MorphAttributeBinormal
	for i := 0; i < 10; i++ {
		face.Model.MorphTargets = append(face.Model.MorphTargets,
			&scene.MorphTarget{Weight: float32(i) * 0.1, Attributes: all})
	}

	f.prepare(t)

	_, _, tooManyMorphs, _ := f.ld.diagnostics.Fired()
	assert.True(t, tooManyMorphs)

	// Full attributes survive on the first two targets, normals up to index
	// three, position only beyond.
	assert.Equal(t, all, face.Model.MorphAttributes[1])
	assert.Equal(t, scene.MorphAttributePosition|scene.MorphAttributeNormal, face.Model.MorphAttributes[3])
	assert.Equal(t, scene.MorphAttributePosition, face.Model.MorphAttributes[5])

	ctx := f.ld.ModelContexts()[0]
	assert.Len(t, ctx.MorphWeights, scene.MaxMorphTargets)
	assert.InDelta(t, 0.5, ctx.MorphWeights[5], 0.0001)
}

func TestSkinnedBoneTextureLifecycle(t *testing.T) {
	f := newLayerFixture(LayerConfig{DepthTestEnabled: true})
	mesh := testMesh("skinned")
	mesh.Attributes |= metadata.VertexAttributeJointAndWeight
	f.meshes.meshes["skinned"] = mesh

	f.addCamera("camera", 20)
	actor := f.addModel("actor", "skinned", "default", math.NewVec3(0, 0, 0))
	actor.Model.Skin = &scene.Skin{BoneData: make([]float32, 2*scene.FloatsPerBone)}

	result := f.prepare(t)

	ctx := f.ld.ModelContexts()[0]
	require.NotNil(t, ctx.BoneTexture)
	assert.Equal(t, metadata.BoneTextureSize(2), ctx.BoneTexture.Size)
	assert.Equal(t, uint32(2), ctx.BoneTexture.BoneCount)
	assert.True(t, result.WasLayerDataDirty())
	firstBacking := ctx.BoneTexture

	// Same bone count next frame: the backing is reused untouched.
	result = f.nextFrame(t)
	assert.Same(t, firstBacking, f.ld.ModelContexts()[0].BoneTexture)
	assert.False(t, result.WasLayerDataDirty())

	// Growing the skin past the texture size reallocates.
	actor.Model.Skin = &scene.Skin{BoneData: make([]float32, 50*scene.FloatsPerBone)}
	result = f.nextFrame(t)
	grown := f.ld.ModelContexts()[0].BoneTexture
	assert.NotSame(t, firstBacking, grown)
	assert.Equal(t, metadata.BoneTextureSize(50), grown.Size)
	assert.True(t, result.WasLayerDataDirty())

	// Dropping the skin releases the backing.
	actor.Model.Skin = nil
	result = f.nextFrame(t)
	assert.Nil(t, f.ld.ModelContexts()[0].BoneTexture)
	assert.True(t, result.WasLayerDataDirty())
}

func TestSkeletonPaletteFlattened(t *testing.T) {
	f := newLayerFixture(LayerConfig{DepthTestEnabled: true})
	mesh := testMesh("rigged")
	mesh.Attributes |= metadata.VertexAttributeJointAndWeight
	f.meshes.meshes["rigged"] = mesh

	f.addCamera("camera", 20)

	skeleton := scene.NewNode("skeleton", scene.NodeKindSkeleton)
	skeleton.Skeleton.MaxIndex = 1
	f.root.AddChild(skeleton)
	rootJoint := scene.NewNode("hip", scene.NodeKindJoint)
	rootJoint.Joint.Index = 0
	rootJoint.Joint.InverseBindPose = math.NewMat4Identity()
	skeleton.AddChild(rootJoint)
	childJoint := scene.NewNode("knee", scene.NodeKindJoint)
	childJoint.Joint.Index = 1
	childJoint.Joint.InverseBindPose = math.NewMat4Identity()
	rootJoint.AddChild(childJoint)

	actor := f.addModel("actor", "rigged", "default", math.NewVec3(0, 0, 0))
	actor.Model.SkeletonNode = skeleton

	f.prepare(t)

	assert.Equal(t, 2, actor.Model.BoneCount)
	require.Len(t, actor.Model.BoneData, 2*scene.FloatsPerBone)
	// Identity joints flatten to identity palettes.
	assert.Equal(t, float32(1), actor.Model.BoneData[0])
	assert.Equal(t, float32(1), actor.Model.BoneData[5])
	assert.False(t, skeleton.Skeleton.BoneTransformsDirty)

	ctx := f.ld.ModelContexts()[0]
	require.NotNil(t, ctx.BoneTexture)
	assert.Equal(t, uint32(2), ctx.BoneTexture.BoneCount)
}

func TestBakedLightingGrouping(t *testing.T) {
	f := newLayerFixture(LayerConfig{DepthTestEnabled: true})

	bounds := math.Extents3D{Min: math.NewVec3(-1, -1, -1), Max: math.NewVec3(1, 1, 1)}
	mesh := testMesh("twoPart")
	mesh.Subsets = []*metadata.MeshSubset{
		{Name: "twoPart.0", IndexCount: 36, Bounds: bounds},
		{Name: "twoPart.1", IndexCount: 36, Bounds: bounds},
	}
	f.meshes.meshes["twoPart"] = mesh

	f.addCamera("camera", 20)
	house := f.addModel("house", "twoPart", "default", math.NewVec3(0, 0, 0))
	house.Model.UsedInBakedLighting = true
	f.addModel("prop", "cube", "default", math.NewVec3(2, 0, 0))
	tree := f.addModel("tree", "cube", "default", math.NewVec3(4, 0, 0))
	tree.Model.UsedInBakedLighting = true

	f.prepare(t)

	groups := f.ld.bakedLightingModels
	require.Len(t, groups, 2)
	assert.Same(t, house, groups[0].Model)
	assert.Len(t, groups[0].Renderables, 2)
	assert.Same(t, tree, groups[1].Model)
	assert.Len(t, groups[1].Renderables, 1)
}

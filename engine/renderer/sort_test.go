package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/lumina/engine/math"
	"github.com/spaghettifunk/lumina/engine/renderer/metadata"
	"github.com/spaghettifunk/lumina/engine/scene"
)

func nodeNames(nodes []*scene.Node) []string {
	names := make([]string, 0, len(nodes))
	for _, n := range nodes {
		names = append(names, n.Name)
	}
	return names
}

func TestSortedOpaqueFrontToBack(t *testing.T) {
	f := newLayerFixture(LayerConfig{DepthTestEnabled: true})
	f.addCamera("camera", 20)
	f.addModel("far", "cube", "default", math.NewVec3(0, 0, 0))
	f.addModel("near", "cube", "default", math.NewVec3(0, 0, 15))
	f.addModel("mid", "cube", "default", math.NewVec3(0, 0, 10))

	f.prepare(t)

	assert.Equal(t, []string{"near", "mid", "far"}, handleNames(f.ld.SortedOpaqueObjects()))
	// The bucket itself keeps classification order; sorting happens in the view.
	assert.Equal(t, []string{"far", "near", "mid"}, handleNames(f.ld.OpaqueObjects()))
}

func TestSortedOpaqueKeepsClassificationOrderWithoutDepthTest(t *testing.T) {
	f := newLayerFixture(LayerConfig{DepthTestEnabled: false})
	f.addCamera("camera", 20)
	f.addModel("far", "cube", "default", math.NewVec3(0, 0, 0))
	f.addModel("near", "cube", "default", math.NewVec3(0, 0, 15))
	f.addModel("mid", "cube", "default", math.NewVec3(0, 0, 10))

	f.prepare(t)

	// Painter ordering is the transparent list's job in this mode.
	assert.Equal(t, []string{"far", "near", "mid"}, handleNames(f.ld.SortedOpaqueObjects()))
}

func TestSortedTransparentBackToFront(t *testing.T) {
	f := newLayerFixture(LayerConfig{DepthTestEnabled: true})
	f.materials.add(blendedMaterial("glassy"))
	f.addCamera("camera", 20)
	f.addModel("near", "cube", "glassy", math.NewVec3(0, 0, 15))
	f.addModel("far", "cube", "glassy", math.NewVec3(0, 0, 0))
	f.addModel("mid", "cube", "glassy", math.NewVec3(0, 0, 10))

	f.prepare(t)

	assert.Equal(t, []string{"far", "mid", "near"}, handleNames(f.ld.SortedTransparentObjects()))
	assert.Empty(t, f.ld.SortedOpaqueObjects())
}

func TestSortedTransparentAbsorbsOpaquesWithoutDepthTest(t *testing.T) {
	f := newLayerFixture(LayerConfig{DepthTestEnabled: false})
	f.materials.add(blendedMaterial("glassy"))
	f.addCamera("camera", 20)
	f.addModel("solidFar", "cube", "default", math.NewVec3(0, 0, 5))
	f.addModel("glassFar", "cube", "glassy", math.NewVec3(0, 0, 0))
	f.addModel("solidNear", "cube", "default", math.NewVec3(0, 0, 12))
	f.addModel("glassNear", "cube", "glassy", math.NewVec3(0, 0, 14))

	f.prepare(t)

	// One painter-ordered list, opaques interleaved by distance.
	assert.Equal(t, []string{"glassFar", "solidFar", "solidNear", "glassNear"},
		handleNames(f.ld.SortedTransparentObjects()))
}

func TestSortedScreenTextureAlwaysBackToFront(t *testing.T) {
	f := newLayerFixture(LayerConfig{DepthTestEnabled: false})
	f.materials.add(screenMaterial("glass"))
	f.addCamera("camera", 20)
	f.addModel("near", "cube", "glass", math.NewVec3(0, 0, 15))
	f.addModel("far", "cube", "glass", math.NewVec3(0, 0, 0))

	f.prepare(t)

	assert.Equal(t, []string{"far", "near"}, handleNames(f.ld.SortedScreenTextureObjects()))
	// Screen texture consumers never ride the transparent list.
	assert.Empty(t, f.ld.TransparentObjects())
}

func TestSortedItem2DsParentDepthThenZOrder(t *testing.T) {
	f := newLayerFixture(LayerConfig{DepthTestEnabled: true})
	f.addCamera("camera", 20)

	anchorFar := scene.NewNode("anchorFar", scene.NodeKindTransform)
	f.root.AddChild(anchorFar)
	anchorNear := scene.NewNode("anchorNear", scene.NodeKindTransform)
	anchorNear.SetPosition(math.NewVec3(0, 0, 10))
	f.root.AddChild(anchorNear)

	farA := scene.NewNode("farA", scene.NodeKindItem2D)
	farA.Item2D.ZOrder = 1
	anchorFar.AddChild(farA)
	farB := scene.NewNode("farB", scene.NodeKindItem2D)
	anchorFar.AddChild(farB)

	nearA := scene.NewNode("nearA", scene.NodeKindItem2D)
	anchorNear.AddChild(nearA)
	nearB := scene.NewNode("nearB", scene.NodeKindItem2D)
	anchorNear.AddChild(nearB)

	f.prepare(t)

	// Farther parents draw first; z-order breaks ties within a parent
	// depth; items tying on both keys keep their classified order, which
	// runs newest first.
	assert.Equal(t, []string{"farB", "farA", "nearB", "nearA"}, nodeNames(f.ld.SortedItem2Ds()))
}

func TestSortedItem2DsZOrderNeverCrossesParents(t *testing.T) {
	f := newLayerFixture(LayerConfig{DepthTestEnabled: true})
	f.addCamera("camera", 20)

	anchorA := scene.NewNode("anchorA", scene.NodeKindTransform)
	f.root.AddChild(anchorA)
	anchorB := scene.NewNode("anchorB", scene.NodeKindTransform)
	f.root.AddChild(anchorB)

	hudLow := scene.NewNode("hudLow", scene.NodeKindItem2D)
	hudLow.Item2D.ZOrder = 1
	anchorA.AddChild(hudLow)
	hudHigh := scene.NewNode("hudHigh", scene.NodeKindItem2D)
	hudHigh.Item2D.ZOrder = 5
	anchorB.AddChild(hudHigh)

	f.prepare(t)

	// The anchors sit at the same camera depth, and z-order must not
	// decide between items under different parents: the classified order
	// (newest first) stands, even though hudLow's z-order is smaller.
	assert.Equal(t, []string{"hudHigh", "hudLow"}, nodeNames(f.ld.SortedItem2Ds()))
}

func TestDepthWritePartitionOpaque(t *testing.T) {
	f := newLayerFixture(LayerConfig{DepthTestEnabled: true})
	always := f.materials.add(opaqueMaterial("always"))
	always.DepthDraw = metadata.DepthDrawAlways
	prepass := f.materials.add(opaqueMaterial("prepass"))
	prepass.DepthDraw = metadata.DepthDrawOpaquePrePass

	f.addCamera("camera", 20)
	f.addModel("plain", "cube", "default", math.NewVec3(0, 0, 15))
	f.addModel("forced", "cube", "always", math.NewVec3(0, 0, 10))
	f.addModel("staged", "cube", "prepass", math.NewVec3(0, 0, 0))

	f.prepare(t)

	assert.Equal(t, []string{"plain", "forced"}, handleNames(f.ld.SortedDepthWriteObjects()))
	assert.Equal(t, []string{"staged"}, handleNames(f.ld.SortedOpaquePrePassObjects()))
}

func TestDepthWritePartitionWithDepthPrePass(t *testing.T) {
	f := newLayerFixture(LayerConfig{DepthTestEnabled: true, DepthPrePassEnabled: true})
	always := f.materials.add(opaqueMaterial("always"))
	always.DepthDraw = metadata.DepthDrawAlways

	f.addCamera("camera", 20)
	f.addModel("plain", "cube", "default", math.NewVec3(0, 0, 15))
	f.addModel("forced", "cube", "always", math.NewVec3(0, 0, 10))

	f.prepare(t)

	// The layer-wide prepass absorbs the opaque-only default; an explicit
	// always keeps writing in its own pass.
	assert.Equal(t, []string{"forced"}, handleNames(f.ld.SortedDepthWriteObjects()))
	assert.Equal(t, []string{"plain"}, handleNames(f.ld.SortedOpaquePrePassObjects()))

	zp := findZPrePass(t, f.ld)
	assert.Equal(t, []string{"forced"}, handleNames(zp.DepthWriteObjects))
	assert.Equal(t, []string{"plain"}, handleNames(zp.PrePassObjects))
}

func TestDepthWritePartitionBlended(t *testing.T) {
	f := newLayerFixture(LayerConfig{DepthTestEnabled: true})
	f.materials.add(blendedMaterial("glassy"))
	bAlways := f.materials.add(blendedMaterial("balways"))
	bAlways.DepthDraw = metadata.DepthDrawAlways
	bPrepass := f.materials.add(blendedMaterial("bprepass"))
	bPrepass.DepthDraw = metadata.DepthDrawOpaquePrePass

	f.addCamera("camera", 20)
	f.addModel("quiet", "cube", "glassy", math.NewVec3(0, 0, 0))
	f.addModel("writer", "cube", "balways", math.NewVec3(0, 0, 5))
	f.addModel("staged", "cube", "bprepass", math.NewVec3(0, 0, 10))

	f.prepare(t)

	// Blended surfaces only write depth when their material says so.
	assert.Equal(t, []string{"writer"}, handleNames(f.ld.SortedDepthWriteObjects()))
	assert.Equal(t, []string{"staged"}, handleNames(f.ld.SortedOpaquePrePassObjects()))
}

func TestDepthWritePartitionSkipsCompletelyTransparent(t *testing.T) {
	f := newLayerFixture(LayerConfig{DepthTestEnabled: true})
	bAlways := f.materials.add(blendedMaterial("balways"))
	bAlways.DepthDraw = metadata.DepthDrawAlways

	f.addCamera("camera", 20)
	ghost := f.addModel("ghost", "cube", "balways", math.NewVec3(0, 0, 0))
	ghost.SetOpacity(0.001)

	f.prepare(t)

	require.Len(t, f.ld.TransparentObjects(), 1)
	assert.Empty(t, f.ld.SortedDepthWriteObjects())
	assert.Empty(t, f.ld.SortedOpaquePrePassObjects())
}

func TestDepthWritePartitionAbsorbedOpaques(t *testing.T) {
	f := newLayerFixture(LayerConfig{DepthTestEnabled: false, DepthPrePassEnabled: true})
	f.materials.add(blendedMaterial("glassy"))
	prepass := f.materials.add(opaqueMaterial("prepass"))
	prepass.DepthDraw = metadata.DepthDrawOpaquePrePass

	f.addCamera("camera", 20)
	f.addModel("solid", "cube", "default", math.NewVec3(0, 0, 0))
	f.addModel("staged", "cube", "prepass", math.NewVec3(0, 0, 5))
	f.addModel("glass", "cube", "glassy", math.NewVec3(0, 0, 10))

	f.prepare(t)

	// Opaques absorbed into the transparent list still write depth under
	// the opaque rules; the layer prepass flag does not reroute them here.
	assert.Equal(t, []string{"solid"}, handleNames(f.ld.SortedDepthWriteObjects()))
	assert.Equal(t, []string{"staged"}, handleNames(f.ld.SortedOpaquePrePassObjects()))
}

func TestDepthWritePartitionRequiresCamera(t *testing.T) {
	f := newLayerFixture(LayerConfig{DepthTestEnabled: true})
	f.addModel("crate", "cube", "default", math.NewVec3(0, 0, 0))

	f.prepare(t)

	assert.Empty(t, f.ld.SortedDepthWriteObjects())
	assert.Empty(t, f.ld.SortedOpaquePrePassObjects())
}

func TestDepthBiasShiftsSortDistance(t *testing.T) {
	f := newLayerFixture(LayerConfig{DepthTestEnabled: true})
	f.addCamera("camera", 20)

	pulled := f.addModel("pulled", "cube", "default", math.NewVec3(0, 0, 0))
	pulled.Model.DepthBias = -2
	f.addModel("center", "cube", "default", math.NewVec3(0, 0, 0))
	pushed := f.addModel("pushed", "cube", "default", math.NewVec3(0, 0, 0))
	pushed.Model.DepthBias = 2

	f.prepare(t)

	// The bias squares with its sign kept: -2 pulls by 4, +2 pushes by 4.
	sorted := f.ld.SortedOpaqueObjects()
	require.Len(t, sorted, 3)
	assert.Equal(t, []string{"pulled", "center", "pushed"}, handleNames(sorted))
	assert.InDelta(t, 16.0, sorted[0].CameraDistanceSq, 0.001)
	assert.InDelta(t, 20.0, sorted[1].CameraDistanceSq, 0.001)
	assert.InDelta(t, 24.0, sorted[2].CameraDistanceSq, 0.001)
}

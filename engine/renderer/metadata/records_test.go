package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spaghettifunk/lumina/engine/scene"
)

func TestRenderableFlagsSetAndHas(t *testing.T) {
	var flags RenderableFlags
	flags.Set(RenderableCastsShadows, true)
	flags.Set(RenderablePickable, true)

	assert.True(t, flags.Has(RenderableCastsShadows))
	assert.True(t, flags.Has(RenderablePickable))
	assert.False(t, flags.Has(RenderableDirty))

	flags.Set(RenderablePickable, false)
	assert.False(t, flags.Has(RenderablePickable))
	assert.True(t, flags.Has(RenderableCastsShadows))
}

func TestTransparencyNeverDowngrades(t *testing.T) {
	var flags RenderableFlags
	flags.SetHasTransparency(true)
	flags.SetHasTransparency(false)

	assert.True(t, flags.Has(RenderableHasTransparency))
}

func TestAppendImagePreservesOrder(t *testing.T) {
	record := &RenderableRecord{}
	first := &RenderableImage{MapType: ImageMapBaseColour}
	second := &RenderableImage{MapType: ImageMapNormal}
	third := &RenderableImage{MapType: ImageMapRoughness}

	record.AppendImage(first)
	record.AppendImage(second)
	record.AppendImage(third)

	assert.Same(t, first, record.FirstImage)
	assert.Same(t, second, record.FirstImage.Next)
	assert.Same(t, third, record.FirstImage.Next.Next)
	assert.Nil(t, record.FirstImage.Next.Next.Next)
}

func TestRecordInstancing(t *testing.T) {
	assert.False(t, (&RenderableRecord{}).Instancing())

	bare := &RenderableRecord{Node: &scene.Node{}}
	assert.False(t, bare.Instancing())

	node := scene.NewNode("crate", scene.NodeKindModel)
	record := &RenderableRecord{Node: node}
	assert.False(t, record.Instancing())

	node.Model.InstanceTable = &scene.InstanceTable{Entries: make([]scene.InstanceTableEntry, 3)}
	assert.True(t, record.Instancing())
}

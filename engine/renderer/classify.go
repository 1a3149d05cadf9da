package renderer

import (
	"github.com/spaghettifunk/lumina/engine/scene"
)

/**
 * @brief Walks the scene graph depth first, recomputes stale global
 * transforms lazily and buckets every active renderable node into its
 * typed list. The root itself is treated as a plain container and never
 * classified. Inactive nodes hide their whole subtree.
 *
 * Parent-before-child traversal order is what makes the lazy global
 * recomputation sound: by the time a node recomputes, every ancestor
 * already has. Returns whether any recomputation actually changed a
 * cached global.
 */
func (ld *LayerData) classifyNodes() bool {
	ld.renderableModels.Reset()
	ld.renderableParticles.Reset()
	ld.renderableItem2Ds.Reset()
	ld.cameras.Reset()
	ld.lights.Reset()
	ld.reflectionProbes.Reset()

	wasDirty := false
	dfsIndex := uint32(0)
	if ld.Root != nil {
		for _, child := range ld.Root.Children {
			if ld.classifyNode(child, &dfsIndex) {
				wasDirty = true
			}
		}
	}

	ld.renderableModels.Trim()
	ld.renderableParticles.Trim()
	ld.renderableItem2Ds.Trim()
	ld.cameras.Trim()
	ld.lights.Trim()
	ld.reflectionProbes.Trim()

	return wasDirty
}

func (ld *LayerData) classifyNode(n *scene.Node, dfsIndex *uint32) bool {
	if !n.Active {
		return false
	}

	wasDirty := false
	if n.IsDirty(scene.DirtyGlobal) || n.IsDirty(scene.DirtyTransform) {
		wasDirty = n.CalculateGlobalVariables()
	}

	n.DFSIndex = *dfsIndex
	*dfsIndex++
	ld.stats.NodesVisited++

	switch n.Kind {
	case scene.NodeKindModel:
		ld.renderableModels.Collect(n)
	case scene.NodeKindParticles:
		ld.renderableParticles.Collect(n)
	case scene.NodeKindItem2D:
		// Front collection keeps the later stable sorts cheap: authored
		// z-ordering resolves against this sequence.
		ld.renderableItem2Ds.CollectFront(n)
	case scene.NodeKindCamera:
		ld.cameras.Collect(n)
	case scene.NodeKindLight:
		ld.lights.Collect(n)
	case scene.NodeKindReflectionProbe:
		ld.reflectionProbes.Collect(n)
	}

	for _, child := range n.Children {
		if ld.classifyNode(child, dfsIndex) {
			wasDirty = true
		}
	}
	return wasDirty
}

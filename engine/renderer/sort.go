package renderer

import (
	"sort"

	"github.com/spaghettifunk/lumina/engine/renderer/metadata"
	"github.com/spaghettifunk/lumina/engine/scene"
)

/**
 * @brief Opaque renderables front to back (ascending camera distance).
 * Computed at most once per frame. With depth testing disabled the bucket
 * is returned in classification order, unsorted: ordering is then the
 * transparent list's problem, which absorbs the opaques. Nil when no
 * camera was resolved.
 */
func (ld *LayerData) SortedOpaqueObjects() []metadata.RenderableHandle {
	if ld.Camera == nil {
		return nil
	}
	if ld.sortedOpaqueValid {
		return ld.sortedOpaque
	}
	ld.sortedOpaque = append(ld.sortedOpaque[:0], ld.opaqueObjects...)
	if ld.Config.DepthTestEnabled && len(ld.sortedOpaque) > 0 {
		sort.Slice(ld.sortedOpaque, func(i, j int) bool {
			return ld.sortedOpaque[i].CameraDistanceSq < ld.sortedOpaque[j].CameraDistanceSq
		})
	}
	ld.sortedOpaqueValid = true
	return ld.sortedOpaque
}

/**
 * @brief Blended renderables back to front (descending camera distance).
 * With depth testing disabled the opaque bucket is folded in first, since
 * painter ordering is then the only thing keeping the frame correct.
 * Computed at most once per frame; nil when no camera was resolved.
 */
func (ld *LayerData) SortedTransparentObjects() []metadata.RenderableHandle {
	if ld.Camera == nil {
		return nil
	}
	if ld.sortedTransparentValid {
		return ld.sortedTransparent
	}
	ld.sortedTransparent = ld.sortedTransparent[:0]
	if !ld.Config.DepthTestEnabled {
		ld.sortedTransparent = append(ld.sortedTransparent, ld.opaqueObjects...)
	}
	ld.sortedTransparent = append(ld.sortedTransparent, ld.transparentObjects...)
	sort.Slice(ld.sortedTransparent, func(i, j int) bool {
		return ld.sortedTransparent[i].CameraDistanceSq > ld.sortedTransparent[j].CameraDistanceSq
	})
	ld.sortedTransparentValid = true
	return ld.sortedTransparent
}

/**
 * @brief Screen texture consumers back to front, regardless of the depth
 * test flag. Computed at most once per frame; nil when no camera was
 * resolved.
 */
func (ld *LayerData) SortedScreenTextureObjects() []metadata.RenderableHandle {
	if ld.Camera == nil {
		return nil
	}
	if ld.sortedScreenTextureValid {
		return ld.sortedScreenTexture
	}
	ld.sortedScreenTexture = append(ld.sortedScreenTexture[:0], ld.screenTextureObjects...)
	sort.Slice(ld.sortedScreenTexture, func(i, j int) bool {
		return ld.sortedScreenTexture[i].CameraDistanceSq > ld.sortedScreenTexture[j].CameraDistanceSq
	})
	ld.sortedScreenTextureValid = true
	return ld.sortedScreenTexture
}

/**
 * @brief 2d overlay items in final draw order: primarily by the camera
 * depth of each item's parent (back to front), then by authored z-order
 * among items sharing a parent. Both stages are stable and z-order never
 * compares across parents, so items under different parents at equal
 * depth keep their classified relative order. Nil when no camera was
 * resolved.
 */
func (ld *LayerData) SortedItem2Ds() []*scene.Node {
	if ld.Camera == nil {
		return nil
	}
	if ld.sortedItem2DsValid {
		return ld.sortedItem2Ds
	}
	ld.sortedItem2Ds = append(ld.sortedItem2Ds[:0], ld.renderableItem2Ds.Items()...)

	sort.SliceStable(ld.sortedItem2Ds, func(i, j int) bool {
		return ld.item2DParentDepth(ld.sortedItem2Ds[i]) > ld.item2DParentDepth(ld.sortedItem2Ds[j])
	})
	// Z-order only reorders siblings: the comparator never moves items
	// across parents, so equal parent depths keep their classified order.
	sort.SliceStable(ld.sortedItem2Ds, func(i, j int) bool {
		a, b := ld.sortedItem2Ds[i], ld.sortedItem2Ds[j]
		if a.Parent != b.Parent {
			return false
		}
		return a.Item2D.ZOrder < b.Item2D.ZOrder
	})

	ld.sortedItem2DsValid = true
	return ld.sortedItem2Ds
}

func (ld *LayerData) item2DParentDepth(item *scene.Node) float32 {
	anchor := item.Parent
	if anchor == nil {
		anchor = item
	}
	return ld.cameraDistanceSq(anchor.GlobalPosition(), 0)
}

/**
 * @brief Renderables whose depth is written during the color passes,
 * derived from the already sorted lists. See SortedOpaquePrePassObjects
 * for the pre-pass half of the partition.
 */
func (ld *LayerData) SortedDepthWriteObjects() []metadata.RenderableHandle {
	ld.partitionDepthWrites()
	return ld.depthWriteObjects
}

/**
 * @brief Renderables whose depth is written by the z pre-pass instead of
 * the color passes.
 */
func (ld *LayerData) SortedOpaquePrePassObjects() []metadata.RenderableHandle {
	ld.partitionDepthWrites()
	return ld.prePassObjects
}

/**
 * @brief Splits the sorted lists by per-material depth draw mode, once per
 * frame. Opaque renderables default to writing depth in their own pass,
 * or in the pre-pass when the layer forces depth pre-passing; blended and
 * screen texture renderables only write depth when their material says
 * Always or explicitly requests the pre-pass. Records forced completely
 * transparent never write depth. With depth testing disabled the opaque
 * bucket already rides the transparent list, so only that list is
 * consulted.
 */
func (ld *LayerData) partitionDepthWrites() {
	if ld.depthPartitionValid || ld.Camera == nil {
		return
	}
	ld.depthWriteObjects = ld.depthWriteObjects[:0]
	ld.prePassObjects = ld.prePassObjects[:0]

	if ld.Config.DepthTestEnabled {
		for _, handle := range ld.SortedOpaqueObjects() {
			switch recordDepthDrawMode(handle.Record) {
			case metadata.DepthDrawAlways:
				ld.depthWriteObjects = append(ld.depthWriteObjects, handle)
			case metadata.DepthDrawOpaqueOnly:
				if ld.Config.DepthPrePassEnabled {
					ld.prePassObjects = append(ld.prePassObjects, handle)
				} else {
					ld.depthWriteObjects = append(ld.depthWriteObjects, handle)
				}
			case metadata.DepthDrawOpaquePrePass:
				ld.prePassObjects = append(ld.prePassObjects, handle)
			}
		}
	}

	blended := ld.SortedTransparentObjects()
	screen := ld.SortedScreenTextureObjects()
	for _, list := range [][]metadata.RenderableHandle{blended, screen} {
		for _, handle := range list {
			if handle.Record.Flags.Has(metadata.RenderableCompletelyTransparent) {
				continue
			}
			if !ld.Config.DepthTestEnabled && !handle.Record.Flags.Has(metadata.RenderableHasTransparency) {
				// An absorbed opaque record: depth writes follow the opaque rules.
				switch recordDepthDrawMode(handle.Record) {
				case metadata.DepthDrawAlways, metadata.DepthDrawOpaqueOnly:
					ld.depthWriteObjects = append(ld.depthWriteObjects, handle)
				case metadata.DepthDrawOpaquePrePass:
					ld.prePassObjects = append(ld.prePassObjects, handle)
				}
				continue
			}
			switch recordDepthDrawMode(handle.Record) {
			case metadata.DepthDrawAlways:
				ld.depthWriteObjects = append(ld.depthWriteObjects, handle)
			case metadata.DepthDrawOpaquePrePass:
				ld.prePassObjects = append(ld.prePassObjects, handle)
			}
		}
	}

	ld.depthPartitionValid = true
}

// Particle records carry no material; they follow the opaque-only default.
func recordDepthDrawMode(record *metadata.RenderableRecord) metadata.DepthDrawMode {
	if record.Material == nil {
		return metadata.DepthDrawOpaqueOnly
	}
	return record.Material.DepthDraw
}

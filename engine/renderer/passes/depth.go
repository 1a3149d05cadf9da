package passes

import (
	"github.com/spaghettifunk/lumina/engine/renderer/metadata"
)

/**
 * @brief Renders scene depth into a standalone texture ahead of shading,
 * for materials and effects that sample depth. Scheduled only when the
 * frame's preparation flags request a depth texture.
 */
type DepthMapPass struct {
	/** @brief Opaque renderables, front to back. */
	SortedOpaque []metadata.RenderableHandle
	/** @brief Blended renderables, back to front. */
	SortedTransparent []metadata.RenderableHandle
	/** @brief The target depth texture, owned by the pass. */
	DepthTexture *metadata.Texture
}

func (p *DepthMapPass) Name() string { return "depth_map" }

func (p *DepthMapPass) Release() {
	p.SortedOpaque = nil
	p.SortedTransparent = nil
}

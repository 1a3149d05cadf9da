package passes

import (
	"github.com/spaghettifunk/lumina/engine/renderer/metadata"
)

/**
 * @brief Computes screen space ambient occlusion from the depth texture.
 * Scheduled only when ambient occlusion is enabled for the layer, and
 * always after the depth map pass its input comes from.
 */
type SsaoMapPass struct {
	/** @brief The depth texture produced by the depth map pass. */
	DepthTexture *metadata.Texture
	/** @brief The occlusion texture, owned by the pass. */
	AoTexture *metadata.Texture
}

func (p *SsaoMapPass) Name() string { return "ssao_map" }

func (p *SsaoMapPass) Release() {
	p.DepthTexture = nil
}

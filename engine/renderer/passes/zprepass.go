package passes

import (
	"github.com/spaghettifunk/lumina/engine/renderer/metadata"
)

/**
 * @brief Writes depth for the main render target ahead of shading.
 * Always scheduled; with empty lists it degenerates to a clear.
 */
type ZPrePass struct {
	/** @brief Renderables whose material writes depth during normal rendering. */
	DepthWriteObjects []metadata.RenderableHandle
	/** @brief Renderables whose material requests a dedicated depth prepass. */
	PrePassObjects []metadata.RenderableHandle
}

func (p *ZPrePass) Name() string { return "z_prepass" }

func (p *ZPrePass) Release() {
	p.DepthWriteObjects = nil
	p.PrePassObjects = nil
}

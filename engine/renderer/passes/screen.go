package passes

import (
	"github.com/spaghettifunk/lumina/engine/renderer/metadata"
)

/**
 * @brief Renders the opaque scene into a standalone color texture that
 * refractive and custom materials sample. Scheduled only when a material
 * in the frame requires the backbuffer copy.
 */
type ScreenMapPass struct {
	/** @brief Opaque renderables, front to back. */
	SortedOpaque []metadata.RenderableHandle
	/** @brief The copy must carry a full mip chain. */
	WantsMips bool
	/** @brief The target color texture, owned by the pass. */
	ScreenTexture *metadata.Texture
}

func (p *ScreenMapPass) Name() string { return "screen_map" }

func (p *ScreenMapPass) Release() {
	p.SortedOpaque = nil
}

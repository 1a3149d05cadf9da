package passes

import (
	"github.com/spaghettifunk/lumina/engine/renderer/metadata"
	"github.com/spaghettifunk/lumina/engine/scene"
)

/**
 * @brief The final color pass: opaque front to back, then blended and
 * screen texture consumers back to front, then 2d overlay items. Always
 * scheduled, always last. Completely transparent renderables are filtered
 * out before the lists land here; they participate in picking but never
 * in drawing.
 */
type MainPass struct {
	/** @brief Opaque renderables, front to back. */
	SortedOpaque []metadata.RenderableHandle
	/** @brief Blended renderables, back to front, drawable only. */
	SortedTransparent []metadata.RenderableHandle
	/** @brief Backbuffer copy consumers, back to front, drawable only. */
	SortedScreenTexture []metadata.RenderableHandle
	/** @brief 2d overlay items in final draw order. */
	Item2Ds []*scene.Node
	/** @brief The frame's global light list. */
	GlobalLights []metadata.ShaderLight
}

func (p *MainPass) Name() string { return "main" }

func (p *MainPass) Release() {
	p.SortedOpaque = nil
	p.SortedTransparent = nil
	p.SortedScreenTexture = nil
	p.Item2Ds = nil
	p.GlobalLights = nil
}

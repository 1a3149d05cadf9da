package passes

import (
	"github.com/spaghettifunk/lumina/engine/renderer/metadata"
)

/**
 * @brief Renders one shadow map per allocated slot. Scheduled only when
 * at least one selected light was granted a shadow map this frame.
 */
type ShadowMapPass struct {
	/** @brief The shadow map slots allocated by light selection. */
	Entries []metadata.ShadowMapEntry
	/** @brief Every renderable flagged as a shadow caster, unsorted. */
	CastingObjects []metadata.RenderableHandle
	/** @brief The frame's global light list, index-aligned with Entries' light indices. */
	GlobalLights []metadata.ShaderLight
}

func (p *ShadowMapPass) Name() string { return "shadow_map" }

func (p *ShadowMapPass) Release() {
	p.Entries = nil
	p.CastingObjects = nil
	p.GlobalLights = nil
}

package passes

import (
	"github.com/spaghettifunk/lumina/engine/scene"
)

/**
 * @brief Captures reflection probe cubemaps. Always scheduled, even with
 * zero probes, so downstream bind group layouts stay stable frame over
 * frame.
 */
type ReflectionMapPass struct {
	/** @brief Probes with a baked texture; registered unconditionally. */
	TexturedProbes []*scene.Node
	/** @brief Probes captured live; registered only when a renderable was assigned. */
	LiveProbes []*scene.Node
	/**
	 * @brief Cubemap identity per live probe, parallel to LiveProbes. The
	 * name is stable across frames so the capture target is reused, not
	 * reallocated.
	 */
	CaptureTargets []string
}

func (p *ReflectionMapPass) Name() string { return "reflection_map" }

func (p *ReflectionMapPass) Release() {
	p.TexturedProbes = nil
	p.LiveProbes = nil
	p.CaptureTargets = nil
}

package metadata

import (
	"github.com/spaghettifunk/lumina/engine/math"
	"github.com/spaghettifunk/lumina/engine/scene"
)

const (
	/** @brief The most lights a single frame may carry. */
	MaxShaderLights = 15
	/** @brief The light cap applied on devices with small uniform buffers. */
	ReducedMaxShaderLights = 5
	/** @brief Uniform buffer ranges below this force the reduced light cap. */
	ReducedMaxLightsUniformThreshold = 4096
	/** @brief The most shadow casting lights a single frame may carry. */
	MaxShadowMaps = 8
)

/**
 * @brief A light selected for the frame, paired with the state shaders
 * consume: whether its shadow map is live this frame and its world-space
 * direction, extracted once from the light node's global transform.
 */
type ShaderLight struct {
	/** @brief The light node. Its Light payload is never nil. */
	Light *scene.Node
	/** @brief Set when the light casts shadows and a shadow map slot was available. */
	Shadows bool
	/** @brief The world-space direction the light points in. */
	Direction math.Vec3
}

/** @brief The shadow map representations a light can render into. */
type ShadowMapMode int

const (
	/** @brief A cube map, used by point and spot lights. */
	ShadowMapModeCube ShadowMapMode = iota
	/** @brief A 2d variance shadow map, used by directional lights. */
	ShadowMapModeVsm
)

func (m ShadowMapMode) String() string {
	if m == ShadowMapModeCube {
		return "cube"
	}
	return "vsm"
}

/** @brief Resolves the shadow map mode a light type renders into. */
func ShadowMapModeForLight(t scene.LightType) ShadowMapMode {
	if t == scene.LightTypeDirectional {
		return ShadowMapModeVsm
	}
	return ShadowMapModeCube
}

/**
 * @brief One allocated shadow map slot for the frame. The index refers
 * into the frame's global light list.
 */
type ShadowMapEntry struct {
	/** @brief The index of the casting light within the frame's light list. */
	LightIndex uint32
	/** @brief The map representation the light renders into. */
	Mode ShadowMapMode
	/** @brief The edge length of the map in texels. */
	Size uint32
}

/** @brief Returns the shadow map edge length for a resolution exponent. */
func ShadowMapSize(resolution uint8) uint32 {
	return uint32(1) << resolution
}

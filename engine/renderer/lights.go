package renderer

import (
	"github.com/spaghettifunk/lumina/engine/core"
	"github.com/spaghettifunk/lumina/engine/renderer/metadata"
	"github.com/spaghettifunk/lumina/engine/scene"
)

/**
 * @brief Picks the frame's camera and refreshes its derived view,
 * projection and frustum for the viewport.
 *
 * An explicit camera wins outright: if it turns out inactive after its
 * globals are recomputed, no camera is resolved at all and the frame
 * renders nothing; the implicit search is deliberately not consulted as a
 * fallback. Without an override, every classified camera has its globals
 * recomputed (keeping per-camera caches warm) and the first globally
 * active one in traversal order is selected.
 *
 * Frustum extraction failure is recoverable: it is logged and the camera
 * simply culls nothing this frame. Returns whether any camera's cached
 * state changed.
 */
func (ld *LayerData) resolveCamera(viewportWidth, viewportHeight float32) bool {
	wasDirty := false
	var chosen *scene.Node

	if ld.ExplicitCamera != nil {
		cam := ld.ExplicitCamera
		result := cam.CalculateCameraGlobals(viewportWidth, viewportHeight)
		wasDirty = result.WasDirty
		if !result.FrustumOK {
			core.LogError("camera '%s': %v", cam.Name, core.ErrDegenerateFrustum)
		}
		if cam.GloballyActive() {
			chosen = cam
		}
	} else {
		for i := 0; i < ld.cameras.Len(); i++ {
			cam := ld.cameras.At(i)
			result := cam.CalculateCameraGlobals(viewportWidth, viewportHeight)
			if result.WasDirty {
				wasDirty = true
			}
			if !result.FrustumOK {
				core.LogError("camera '%s': %v", cam.Name, core.ErrDegenerateFrustum)
			}
			if chosen == nil && cam.GloballyActive() {
				chosen = cam
			}
		}
	}

	ld.Camera = chosen
	ld.meshLodThreshold = 0
	if chosen != nil {
		ld.cameraPosition = chosen.GlobalPosition()
		ld.cameraDirection = chosen.ScalingCorrectDirection()
		if chosen.Camera.LevelOfDetailPixelThreshold > 0 && viewportWidth > 0 {
			ld.meshLodThreshold = chosen.Camera.LevelOfDetailPixelThreshold / viewportWidth
		}
	}
	return wasDirty
}

/**
 * @brief Selects the lights participating in the frame, newest classified
 * first, up to the layer's light budget; the excess is dropped with a
 * one-time warning. Within the selection, shadow maps are granted in the
 * same order to lights that ask for shadows and are not fully baked,
 * until the shadow budget runs out.
 *
 * The global light list holds only unscoped selected lights; when any
 * selected light is scoped, per-node lists are derived later from the
 * full selection via lightListForNode.
 */
func (ld *LayerData) selectLights() {
	classified := ld.lights.Len()
	if classified > ld.maxLights {
		ld.diagnostics.WarnTooManyLights(classified, ld.maxLights)
	}

	shadowBudget := ld.maxShadowMaps()
	shadowMapCount := 0
	shadowDenied := false

	for i := classified - 1; i >= 0 && len(ld.frameLights) < ld.maxLights; i-- {
		lightNode := ld.lights.At(i)
		lightNode.CalculateGlobalVariables()
		light := lightNode.Light

		entry := metadata.ShaderLight{
			Light:     lightNode,
			Direction: lightNode.ScalingCorrectDirection(),
		}
		if light.CastShadow && !light.FullyBaked {
			if shadowMapCount < shadowBudget {
				entry.Shadows = true
				ld.shadowMapEntries = append(ld.shadowMapEntries, metadata.ShadowMapEntry{
					LightIndex: uint32(len(ld.frameLights)),
					Mode:       metadata.ShadowMapModeForLight(light.Type),
					Size:       metadata.ShadowMapSize(light.ShadowMapResolution),
				})
				shadowMapCount++
			} else {
				shadowDenied = true
			}
		}
		if light.Scope != nil {
			ld.hasScopedLights = true
		}
		ld.frameLights = append(ld.frameLights, entry)
	}

	if shadowDenied {
		ld.diagnostics.WarnTooManyShadowLights(shadowBudget)
	}

	for _, entry := range ld.frameLights {
		if entry.Light.Light.Scope == nil {
			ld.globalLights = append(ld.globalLights, entry)
		}
	}
}

/**
 * @brief The light list in effect for the given node: the global list,
 * unless scoped lights exist, in which case a bespoke list of every
 * unscoped light plus the scoped lights whose scope contains the node.
 * A bespoke list identical in content to the global one is not kept;
 * the global list is shared instead.
 */
func (ld *LayerData) lightListForNode(node *scene.Node) []metadata.ShaderLight {
	if !ld.hasScopedLights {
		return ld.globalLights
	}

	bespoke := make([]metadata.ShaderLight, 0, len(ld.frameLights))
	for _, entry := range ld.frameLights {
		scope := entry.Light.Light.Scope
		if scope == nil || scope == node || scope.IsAncestorOf(node) {
			bespoke = append(bespoke, entry)
		}
	}
	if len(bespoke) == len(ld.globalLights) {
		return ld.globalLights
	}
	return bespoke
}

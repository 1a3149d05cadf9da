package metadata

import (
	"github.com/spaghettifunk/lumina/engine/math"
	"github.com/spaghettifunk/lumina/engine/scene"
)

/** @brief State bits summarizing the outcome of a frame's preparation. */
type PrepResultFlags uint8

const (
	/** @brief Something in the frame changed since the previous one. */
	PrepResultWasDirty PrepResultFlags = 1 << iota
	/** @brief The layer's own data (camera, lights, renderables) changed. */
	PrepResultLayerDataDirty
	/** @brief At least one material samples the pre-rendered depth texture. */
	PrepResultRequiresDepthTexture
	/** @brief Ambient occlusion is enabled or a material samples its texture. */
	PrepResultRequiresSsaoPass
	/** @brief At least one selected light casts shadows. */
	PrepResultRequiresShadowMapPass
	/** @brief At least one material samples a backbuffer copy. */
	PrepResultRequiresScreenTexture
	/** @brief The backbuffer copy must carry mip levels. */
	PrepResultRequiresScreenMipTexture
)

func (f PrepResultFlags) Has(flag PrepResultFlags) bool { return f&flag != 0 }

func (f *PrepResultFlags) Set(flag PrepResultFlags, on bool) {
	if on {
		*f |= flag
	} else {
		*f &^= flag
	}
}

/**
 * @brief The product of preparing a layer for one frame: which passes the
 * frame needs, the viewport it was prepared for and the camera that ended
 * up driving rendering. A nil result on the layer means the frame has not
 * been prepared yet; preparation is idempotent per frame.
 */
type LayerPrepResult struct {
	/** @brief Pass requirements and dirty state for the frame. */
	Flags PrepResultFlags
	/** @brief The viewport the frame was prepared for, x/y/width/height. */
	Viewport math.Vec4
	/** @brief The camera driving rendering, or nil when none resolved. */
	Camera *scene.Node
}

func (r *LayerPrepResult) WasDirty() bool {
	return r.Flags.Has(PrepResultWasDirty)
}

func (r *LayerPrepResult) WasLayerDataDirty() bool {
	return r.Flags.Has(PrepResultLayerDataDirty)
}

func (r *LayerPrepResult) RequiresDepthTexture() bool {
	return r.Flags.Has(PrepResultRequiresDepthTexture)
}

func (r *LayerPrepResult) RequiresSsaoPass() bool {
	return r.Flags.Has(PrepResultRequiresSsaoPass)
}

func (r *LayerPrepResult) RequiresShadowMapPass() bool {
	return r.Flags.Has(PrepResultRequiresShadowMapPass)
}

func (r *LayerPrepResult) RequiresScreenTexture() bool {
	return r.Flags.Has(PrepResultRequiresScreenTexture)
}

func (r *LayerPrepResult) RequiresScreenMipTexture() bool {
	return r.Flags.Has(PrepResultRequiresScreenMipTexture)
}

/**
 * @brief The resolved camera's combined view-projection, identity when no
 * camera was resolved for the frame.
 */
func (r *LayerPrepResult) ViewProjection() math.Mat4 {
	if r.Camera == nil || r.Camera.Camera == nil {
		return math.NewMat4Identity()
	}
	return r.Camera.Camera.ViewProjection()
}

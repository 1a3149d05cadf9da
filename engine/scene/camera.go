package scene

import (
	"github.com/spaghettifunk/lumina/engine/math"
)

const DEFAULT_CAMERA_NAME = "default"

type CameraProjection uint8

const (
	CameraProjectionPerspective CameraProjection = iota
	CameraProjectionOrthographic
)

/**
 * @brief Camera payload. View/projection/frustum are derived caches,
 * recomputed by CalculateGlobals whenever the owning node or the viewport
 * changed; they stay valid for reuse across frames otherwise.
 */
type Camera struct {
	Projection CameraProjection

	/** @brief Vertical field of view in radians (perspective only). */
	FieldOfView float32
	ClipNear    float32
	ClipFar     float32

	/** @brief Magnifications scale the orthographic view volume. */
	HorizontalMagnification float32
	VerticalMagnification   float32

	/** @brief Device pixel ratio of the output surface. */
	DPR float32

	/**
	 * @brief Pixel-error budget for mesh LOD selection. The per-frame
	 * distance threshold is this value divided by the viewport width.
	 * Zero or negative disables LOD selection.
	 */
	LevelOfDetailPixelThreshold float32

	FrustumCullingEnabled bool

	/** @brief Derived, valid after CalculateGlobals. */
	ProjectionMatrix math.Mat4
	ViewMatrix       math.Mat4
	Frustum          math.Frustum
	FrustumValid     bool

	lastViewport math.Vec2
}

func NewCamera() *Camera {
	return &Camera{
		Projection:                  CameraProjectionPerspective,
		FieldOfView:                 math.DegToRad(60.0),
		ClipNear:                    10.0,
		ClipFar:                     10000.0,
		HorizontalMagnification:     1.0,
		VerticalMagnification:       1.0,
		DPR:                         1.0,
		LevelOfDetailPixelThreshold: 1.0,
	}
}

/** @brief Restores construction-time defaults. */
func (c *Camera) Reset() {
	*c = *NewCamera()
}

/** @brief The result of recomputing a camera's derived state. */
type CameraGlobalResult struct {
	/** @brief The cached view or projection actually changed. */
	WasDirty bool
	/** @brief Frustum extraction succeeded; false disables culling. */
	FrustumOK bool
}

/**
 * @brief Recomputes the camera node's global transform plus the derived
 * view, projection and frustum for the given viewport. Must be invoked on
 * a camera-kind node. Frustum extraction failure is recoverable: culling
 * is treated as disabled for the frame.
 */
func (n *Node) CalculateCameraGlobals(viewportWidth, viewportHeight float32) CameraGlobalResult {
	c := n.Camera
	wasDirty := false
	if n.IsDirty(DirtyGlobal) || n.IsDirty(DirtyTransform) {
		wasDirty = n.CalculateGlobalVariables()
	}

	viewport := math.NewVec2(viewportWidth, viewportHeight)
	if viewport != c.lastViewport {
		wasDirty = true
		c.lastViewport = viewport
	}

	if wasDirty || !c.FrustumValid {
		c.ViewMatrix = n.Global.Inverse()

		switch c.Projection {
		case CameraProjectionOrthographic:
			halfWidth := viewportWidth / (2.0 * c.HorizontalMagnification)
			halfHeight := viewportHeight / (2.0 * c.VerticalMagnification)
			c.ProjectionMatrix = math.NewMat4Orthographic(-halfWidth, halfWidth, -halfHeight, halfHeight, c.ClipNear, c.ClipFar)
		default:
			aspect := float32(1.0)
			if viewportHeight > 0 {
				aspect = viewportWidth / viewportHeight
			}
			c.ProjectionMatrix = math.NewMat4Perspective(c.FieldOfView, aspect, c.ClipNear, c.ClipFar)
		}

		frustum, err := math.NewFrustumFromViewProjection(c.ViewProjection())
		if err != nil {
			c.FrustumValid = false
			return CameraGlobalResult{WasDirty: wasDirty, FrustumOK: false}
		}
		c.Frustum = frustum
		c.FrustumValid = true
	}

	return CameraGlobalResult{WasDirty: wasDirty, FrustumOK: c.FrustumValid}
}

/** @brief view then projection, composed for row-vector transforms. */
func (c *Camera) ViewProjection() math.Mat4 {
	return c.ViewMatrix.Mul(c.ProjectionMatrix)
}

/**
 * @brief Scales the LOD distance threshold to account for how much screen
 * space one world unit covers: wider fields of view shrink on-screen
 * error, orthographic magnification grows it.
 */
func (c *Camera) LevelOfDetailMultiplier() float32 {
	if c.Projection == CameraProjectionOrthographic {
		if c.VerticalMagnification > 0 {
			return 1.0 / c.VerticalMagnification
		}
		return 1.0
	}
	return 2.0 * math.Tan(c.FieldOfView*0.5)
}

package math

import (
	"fmt"

	"github.com/chewxy/math32"
)

/**
 * @brief An infinite plane in 3D space, stored as a unit normal and the
 * signed distance term d so that dot(Normal, p) + D == 0 for points on
 * the plane.
 */
type Plane struct {
	Normal Vec3
	D      float32
}

/** @brief Creates a plane from a point lying on it and its normal. */
func NewPlane(point, normal Vec3) Plane {
	n := normal.Normalized()
	return Plane{
		Normal: n,
		D:      -n.Dot(point),
	}
}

/** @brief Signed distance from p to the plane. Positive is in front. */
func (p Plane) Distance(point Vec3) float32 {
	return p.Normal.Dot(point) + p.D
}

const (
	FrustumPlaneLeft = iota
	FrustumPlaneRight
	FrustumPlaneBottom
	FrustumPlaneTop
	FrustumPlaneNear
	FrustumPlaneFar
	frustumPlaneCount
)

/**
 * @brief A view frustum as six inward-facing planes, extracted from a
 * combined view-projection matrix.
 */
type Frustum struct {
	Planes [frustumPlaneCount]Plane
}

/**
 * @brief Extracts the six clipping planes of a view-projection matrix.
 * Returns an error when the matrix is degenerate (a plane normal of zero
 * length), in which case the caller should treat culling as disabled.
 */
func NewFrustumFromViewProjection(vp Mat4) (Frustum, error) {
	m := vp.Data
	rows := [4]Vec4{
		{m[0], m[4], m[8], m[12]},
		{m[1], m[5], m[9], m[13]},
		{m[2], m[6], m[10], m[14]},
		{m[3], m[7], m[11], m[15]},
	}

	raw := [frustumPlaneCount]Vec4{
		FrustumPlaneLeft:   rows[3].Add(rows[0]),
		FrustumPlaneRight:  rows[3].Sub(rows[0]),
		FrustumPlaneBottom: rows[3].Add(rows[1]),
		FrustumPlaneTop:    rows[3].Sub(rows[1]),
		FrustumPlaneNear:   rows[3].Add(rows[2]),
		FrustumPlaneFar:    rows[3].Sub(rows[2]),
	}

	f := Frustum{}
	for i, r := range raw {
		n := Vec3{r.X, r.Y, r.Z}
		length := n.Length()
		// NaN and Inf lengths both mean the matrix collapsed somewhere.
		if !(length > K_FLOAT_EPSILON) || math32.IsInf(length, 0) {
			return Frustum{}, fmt.Errorf("degenerate view-projection: frustum plane %d has no usable normal", i)
		}
		f.Planes[i] = Plane{
			Normal: n.MulScalar(1.0 / length),
			D:      r.W / length,
		}
	}
	return f, nil
}

/** @brief Indicates if a sphere intersects or is contained by the frustum. */
func (f Frustum) IntersectsSphere(center Vec3, radius float32) bool {
	for _, p := range f.Planes {
		if p.Distance(center) < -radius {
			return false
		}
	}
	return true
}

/**
 * @brief Indicates if an axis-aligned box intersects or is contained by
 * the frustum. Conservative: may report true for boxes slightly outside.
 */
func (f Frustum) IntersectsAABB(e Extents3D) bool {
	for _, p := range f.Planes {
		// Test the corner furthest along the plane normal. If even that
		// corner is behind the plane, the whole box is outside.
		if p.Distance(e.Support(p.Normal)) < 0.0 {
			return false
		}
	}
	return true
}

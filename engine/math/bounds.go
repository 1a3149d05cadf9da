package math

/**
 * @brief Creates and returns a 3d extents whose bounds are inverted
 * (min=+inf, max=-inf), suitable as the seed for accumulating points.
 */
func NewExtents3DEmpty() Extents3D {
	return Extents3D{
		Min: Vec3{K_INFINITY, K_INFINITY, K_INFINITY},
		Max: Vec3{-K_INFINITY, -K_INFINITY, -K_INFINITY},
	}
}

/**
 * @brief Creates and returns a 3d extents from a center point and a
 * half-size extent along each axis.
 */
func NewExtents3DCenterExtents(center, extent Vec3) Extents3D {
	return Extents3D{
		Min: center.Sub(extent),
		Max: center.Add(extent),
	}
}

/** @brief Indicates if the extents hold no volume (never accumulated a point). */
func (e Extents3D) IsEmpty() bool {
	return e.Min.X > e.Max.X || e.Min.Y > e.Max.Y || e.Min.Z > e.Max.Z
}

/** @brief Returns the center point of the extents. */
func (e Extents3D) Center() Vec3 {
	return e.Min.Add(e.Max).MulScalar(0.5)
}

/** @brief Returns the half-size of the extents along each axis. */
func (e Extents3D) Extent() Vec3 {
	return e.Max.Sub(e.Min).MulScalar(0.5)
}

/** @brief Grows the extents to include the provided point. */
func (e Extents3D) Include(p Vec3) Extents3D {
	out := e
	if p.X < out.Min.X {
		out.Min.X = p.X
	}
	if p.Y < out.Min.Y {
		out.Min.Y = p.Y
	}
	if p.Z < out.Min.Z {
		out.Min.Z = p.Z
	}
	if p.X > out.Max.X {
		out.Max.X = p.X
	}
	if p.Y > out.Max.Y {
		out.Max.Y = p.Y
	}
	if p.Z > out.Max.Z {
		out.Max.Z = p.Z
	}
	return out
}

/**
 * @brief Indicates if the two extents overlap on all three axes. Touching
 * faces count as an intersection.
 */
func (e Extents3D) Intersects(other Extents3D) bool {
	if e.Max.X < other.Min.X || e.Min.X > other.Max.X {
		return false
	}
	if e.Max.Y < other.Min.Y || e.Min.Y > other.Max.Y {
		return false
	}
	if e.Max.Z < other.Min.Z || e.Min.Z > other.Max.Z {
		return false
	}
	return true
}

/**
 * @brief Returns the corner of the extents furthest along the provided
 * direction (the support point of the box for that direction).
 */
func (e Extents3D) Support(direction Vec3) Vec3 {
	out := e.Min
	if direction.X > 0.0 {
		out.X = e.Max.X
	}
	if direction.Y > 0.0 {
		out.Y = e.Max.Y
	}
	if direction.Z > 0.0 {
		out.Z = e.Max.Z
	}
	return out
}

/**
 * @brief Returns a new extents enclosing all eight corners of e after
 * transforming them by m. Produces a conservative world-space box for a
 * local-space one.
 */
func (e Extents3D) Transformed(m Mat4) Extents3D {
	if e.IsEmpty() {
		return e
	}
	corners := [8]Vec3{
		{e.Min.X, e.Min.Y, e.Min.Z},
		{e.Max.X, e.Min.Y, e.Min.Z},
		{e.Min.X, e.Max.Y, e.Min.Z},
		{e.Max.X, e.Max.Y, e.Min.Z},
		{e.Min.X, e.Min.Y, e.Max.Z},
		{e.Max.X, e.Min.Y, e.Max.Z},
		{e.Min.X, e.Max.Y, e.Max.Z},
		{e.Max.X, e.Max.Y, e.Max.Z},
	}
	out := NewExtents3DEmpty()
	for _, c := range corners {
		out = out.Include(c.Transform(m))
	}
	return out
}
